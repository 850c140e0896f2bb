package app

import (
	"context"
	"testing"

	"ecgdx/adapters/dsp"
	"ecgdx/adapters/model"
	"ecgdx/internal/testkit"
)

const segmentLength = 250

func newTestService(classifier *model.MockClassifier, batchSize int) *DiagnosisService {
	log := testkit.NopLogger{}
	return NewDiagnosisService(
		dsp.NewConditioner(log),
		dsp.NewPeakDetector(log),
		dsp.NewSegmentExtractor(segmentLength, log),
		dsp.NewSegmentValidator(segmentLength, log),
		dsp.NewNormalizer(testkit.IdentityTransform(segmentLength)),
		classifier,
		testkit.Labels(),
		batchSize,
		log,
	)
}

func TestDiagnosisService_EndToEnd(t *testing.T) {
	classifier := &model.MockClassifier{NumClasses: 3}
	service := newTestService(classifier, 100)

	raw := testkit.SyntheticECG(testkit.DefaultECGConfig())
	result, err := service.Diagnose(context.Background(), raw)
	if err != nil {
		t.Fatalf("Diagnose failed: %v", err)
	}

	if result.Diagnosis != "Normal" {
		t.Errorf("expected Normal diagnosis, got %q", result.Diagnosis)
	}
	if result.TotalSegments < 9 || result.TotalSegments > 11 {
		t.Errorf("expected ~10 segments for a 10s recording at 60 bpm, got %d", result.TotalSegments)
	}
	if result.OverallConfidence != 0.9 {
		t.Errorf("expected overall confidence 0.9, got %v", result.OverallConfidence)
	}
	share, ok := result.Distribution["Normal"]
	if !ok {
		t.Fatal("distribution missing majority class")
	}
	if share.Percentage != 100.0 {
		t.Errorf("unanimous vote should be exactly 100.0%%, got %v", share.Percentage)
	}
	if share.SegmentCount != result.TotalSegments {
		t.Errorf("majority count %d != total %d", share.SegmentCount, result.TotalSegments)
	}
}

// TestClassifyBatched_ChunkingAndOrder covers the reference scenario:
// 237 segments with batch size 100 are classified in three calls of sizes
// 100, 100 and 37, and the 237 predictions come back in input order.
func TestClassifyBatched_ChunkingAndOrder(t *testing.T) {
	classifier := &model.MockClassifier{
		NumClasses: 3,
		Respond: func(rows [][]float64) [][]float64 {
			out := make([][]float64, len(rows))
			for i, row := range rows {
				// Encode the row's identity in its winning probability.
				out[i] = []float64{0.5 + row[0]/1000, 0.1, 0.1}
			}
			return out
		},
	}
	service := newTestService(classifier, 100)

	rows := make([][]float64, 237)
	for i := range rows {
		rows[i] = []float64{float64(i), 0, 0}
	}

	predictions, err := service.classifyBatched(context.Background(), rows)
	if err != nil {
		t.Fatalf("classifyBatched failed: %v", err)
	}

	if len(predictions) != 237 {
		t.Fatalf("expected 237 predictions, got %d", len(predictions))
	}
	if len(classifier.Calls) != 3 {
		t.Fatalf("expected 3 classifier calls, got %d", len(classifier.Calls))
	}
	for i, want := range []int{100, 100, 37} {
		if len(classifier.Calls[i]) != want {
			t.Errorf("call %d had %d rows, want %d", i, len(classifier.Calls[i]), want)
		}
	}
	for i, p := range predictions {
		if p.Class != 0 {
			t.Fatalf("prediction %d voted class %d", i, p.Class)
		}
		want := 0.5 + float64(i)/1000
		if p.Confidence != want {
			t.Fatalf("prediction %d out of order: confidence %v, want %v", i, p.Confidence, want)
		}
	}
}

func TestClassifyBatched_SchemaChecks(t *testing.T) {
	// Wrong row count back from the model.
	classifier := &model.MockClassifier{
		NumClasses: 3,
		Respond: func(rows [][]float64) [][]float64 {
			return [][]float64{{1, 0, 0}}
		},
	}
	service := newTestService(classifier, 100)
	rows := [][]float64{{0}, {1}, {2}}
	if _, err := service.classifyBatched(context.Background(), rows); err == nil {
		t.Error("expected schema error for short batch")
	}

	// Wrong class count per row.
	classifier = &model.MockClassifier{
		NumClasses: 3,
		Respond: func(rows [][]float64) [][]float64 {
			out := make([][]float64, len(rows))
			for i := range rows {
				out[i] = []float64{1, 0}
			}
			return out
		},
	}
	service = newTestService(classifier, 100)
	if _, err := service.classifyBatched(context.Background(), rows); err == nil {
		t.Error("expected schema error for narrow probability rows")
	}
}

package app

import (
	"context"

	"ecgdx/adapters/dsp"
	"ecgdx/domain/core"
	"ecgdx/domain/diagnosis"
	"ecgdx/domain/signal"
	"ecgdx/ports"
)

// DiagnosisService runs the seven-stage pipeline that turns one continuous
// ECG recording into an aggregate diagnosis. Stages execute strictly
// sequentially; each consumes the complete output of its predecessor. The
// classifier, scaling transform and label map are process-wide, read-only
// and shared across concurrent requests without locking.
type DiagnosisService struct {
	conditioner *dsp.Conditioner
	detector    *dsp.PeakDetector
	extractor   *dsp.SegmentExtractor
	validator   *dsp.SegmentValidator
	normalizer  *dsp.Normalizer
	classifier  ports.Classifier
	aggregator  *Aggregator
	batchSize   int
	logger      logger
}

// NewDiagnosisService wires the pipeline stages around the loaded serving
// artifacts.
func NewDiagnosisService(
	conditioner *dsp.Conditioner,
	detector *dsp.PeakDetector,
	extractor *dsp.SegmentExtractor,
	validator *dsp.SegmentValidator,
	normalizer *dsp.Normalizer,
	classifier ports.Classifier,
	labels diagnosis.ClassLabelMap,
	batchSize int,
	log logger,
) *DiagnosisService {
	return &DiagnosisService{
		conditioner: conditioner,
		detector:    detector,
		extractor:   extractor,
		validator:   validator,
		normalizer:  normalizer,
		classifier:  classifier,
		aggregator:  NewAggregator(labels),
		batchSize:   batchSize,
		logger:      log,
	}
}

// Diagnose executes the full pipeline for one recording. Every stage fails
// fast; emptiness is surfaced, never substituted with a default.
func (s *DiagnosisService) Diagnose(ctx context.Context, raw signal.RawSignal) (*diagnosis.Aggregate, error) {
	conditioned, err := s.conditioner.Condition(raw)
	if err != nil {
		return nil, err
	}

	peaks, err := s.detector.Detect(ctx, conditioned)
	if err != nil {
		return nil, err
	}

	segments, err := s.extractor.Extract(conditioned, peaks)
	if err != nil {
		return nil, err
	}

	valid, err := s.validator.Validate(segments)
	if err != nil {
		return nil, err
	}

	normalized, err := s.normalizer.Normalize(valid)
	if err != nil {
		return nil, err
	}

	predictions, err := s.classifyBatched(ctx, normalized)
	if err != nil {
		return nil, err
	}
	s.logger.Info("generated predictions for %d heartbeat segments", len(predictions))

	return s.aggregator.Aggregate(predictions)
}

// classifyBatched splits the normalized matrix into bounded chunks before
// each classifier call, capping peak transient memory regardless of
// recording length, and reassembles the returned rows in input order.
func (s *DiagnosisService) classifyBatched(ctx context.Context, rows [][]float64) ([]diagnosis.Prediction, error) {
	classes := s.classifier.Classes()
	predictions := make([]diagnosis.Prediction, 0, len(rows))

	for start := 0; start < len(rows); start += s.batchSize {
		end := start + s.batchSize
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		probs, err := s.classifier.PredictBatch(ctx, chunk)
		if err != nil {
			return nil, err
		}
		if len(probs) != len(chunk) {
			return nil, core.NewSchemaError("classifier batch rows", len(chunk), len(probs))
		}
		for _, row := range probs {
			if len(row) != classes {
				return nil, core.NewSchemaError("classifier class count", classes, len(row))
			}
			predictions = append(predictions, argmax(row))
		}
		s.logger.Debug("classified chunk [%d:%d]", start, end)
	}
	return predictions, nil
}

// argmax reduces one probability row to its predicted class and confidence.
func argmax(probs []float64) diagnosis.Prediction {
	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}
	return diagnosis.Prediction{Class: best, Confidence: probs[best]}
}

// logger mirrors the leveled logger used across the application.
type logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
}

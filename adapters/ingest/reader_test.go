package ingest

import (
	"strings"
	"testing"

	"ecgdx/internal/testkit"

	"github.com/stretchr/testify/assert"
)

func TestRecordingReader_SelectsLeadColumn(t *testing.T) {
	csvData := "time,MLII,V5\n0,-0.145,0.3\n1,-0.120,0.2\n2,-0.135,0.1\n"
	reader := NewRecordingReader(360, testkit.NopLogger{})

	raw, err := reader.ReadCSV(strings.NewReader(csvData))
	assert.NoError(t, err)
	assert.Equal(t, 360.0, raw.Rate)
	assert.Equal(t, []float64{-0.145, -0.120, -0.135}, raw.Samples)
}

func TestRecordingReader_LowercaseECGColumn(t *testing.T) {
	csvData := "t,ecg\n0,1.5\n1,2.5\n"
	reader := NewRecordingReader(250, testkit.NopLogger{})

	raw, err := reader.ReadCSV(strings.NewReader(csvData))
	assert.NoError(t, err)
	assert.Equal(t, []float64{1.5, 2.5}, raw.Samples)
}

func TestRecordingReader_PositionalFallback(t *testing.T) {
	// No known lead name: the first column is used.
	csvData := "ch_a,ch_b\n0.1,9\n0.2,9\n"
	reader := NewRecordingReader(360, testkit.NopLogger{})

	raw, err := reader.ReadCSV(strings.NewReader(csvData))
	assert.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2}, raw.Samples)
}

func TestRecordingReader_ScrubsNonFiniteSamples(t *testing.T) {
	csvData := "ECG\n1.0\nNaN\n2.0\n+Inf\nnot-a-number\n3.0\n"
	reader := NewRecordingReader(360, testkit.NopLogger{})

	raw, err := reader.ReadCSV(strings.NewReader(csvData))
	assert.NoError(t, err)
	assert.Equal(t, []float64{1.0, 2.0, 3.0}, raw.Samples)
}

func TestRecordingReader_EmptyAfterCleaning(t *testing.T) {
	csvData := "ECG\nNaN\nInf\n"
	reader := NewRecordingReader(360, testkit.NopLogger{})

	_, err := reader.ReadCSV(strings.NewReader(csvData))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no valid samples")
}

func TestRecordingReader_HeaderOnly(t *testing.T) {
	reader := NewRecordingReader(360, testkit.NopLogger{})
	_, err := reader.ReadCSV(strings.NewReader("ECG\n"))
	assert.Error(t, err)
}

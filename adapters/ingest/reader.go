package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"ecgdx/domain/core"
	"ecgdx/domain/signal"

	"github.com/xuri/excelize/v2"
)

// candidateColumns are the ECG lead names tried in order when selecting the
// signal column. Positional fallbacks come last.
var candidateColumns = []string{"MLII", "MLI", "V1", "V2", "Lead II", "lead_II", "ECG", "ecg", "0", "1"}

// RecordingReader turns an uploaded CSV or XLSX file into a RawSignal the
// core can accept: one lead selected, floats parsed, non-finite samples
// stripped.
type RecordingReader struct {
	rate   float64
	logger logger
}

// NewRecordingReader creates a reader for recordings sampled at rate Hz.
func NewRecordingReader(rate float64, log logger) *RecordingReader {
	return &RecordingReader{rate: rate, logger: log}
}

// Read parses the recording at path. The extension decides the format.
func (r *RecordingReader) Read(path string) (signal.RawSignal, error) {
	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		rows, err = readXLSXRows(path)
	default:
		rows, err = readCSVRows(path)
	}
	if err != nil {
		return signal.RawSignal{}, err
	}
	return r.fromRows(rows)
}

// ReadCSV parses a CSV recording from a stream, for upload handlers that
// never touch the filesystem.
func (r *RecordingReader) ReadCSV(src io.Reader) (signal.RawSignal, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return signal.RawSignal{}, core.NewInputError(fmt.Sprintf("cannot parse CSV: %v", err))
	}
	return r.fromRows(rows)
}

func (r *RecordingReader) fromRows(rows [][]string) (signal.RawSignal, error) {
	if len(rows) < 2 {
		return signal.RawSignal{}, core.NewInputError("recording must have a header row and at least one data row")
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	col, name, err := selectColumn(headers)
	if err != nil {
		return signal.RawSignal{}, err
	}
	r.logger.Info("using column %q as ECG signal", name)

	samples := make([]float64, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if col >= len(row) {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			// Ingestion owns the non-finite scrub; the core assumes
			// a finite signal.
			continue
		}
		samples = append(samples, v)
	}

	if len(samples) == 0 {
		return signal.RawSignal{}, core.NewInputError("recording contains no valid samples after cleaning")
	}

	r.logger.Info("loaded continuous ECG signal with %d samples", len(samples))
	return signal.RawSignal{Samples: samples, Rate: r.rate}, nil
}

// selectColumn picks the ECG lead column: known lead names first, then the
// positional fallbacks.
func selectColumn(headers []string) (int, string, error) {
	for _, candidate := range candidateColumns {
		for i, h := range headers {
			if h == candidate {
				return i, h, nil
			}
		}
		if idx, err := strconv.Atoi(candidate); err == nil && idx < len(headers) {
			return idx, headers[idx], nil
		}
	}
	return 0, "", core.NewInputError(fmt.Sprintf("no ECG column found; available: %v, expected one of: %v", headers, candidateColumns))
}

func readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.NewInputError(fmt.Sprintf("cannot open recording: %v", err))
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, core.NewInputError(fmt.Sprintf("cannot parse CSV: %v", err))
	}
	return rows, nil
}

func readXLSXRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, core.NewInputError(fmt.Sprintf("cannot open XLSX: %v", err))
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, core.NewInputError("XLSX recording has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, core.NewInputError(fmt.Sprintf("cannot read XLSX sheet: %v", err))
	}
	return rows, nil
}

// logger mirrors the leveled logger slice used across adapters.
type logger interface {
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
}

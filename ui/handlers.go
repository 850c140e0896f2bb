package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"ecgdx/domain/diagnosis"
	"ecgdx/internal/errors"
)

// handleHealth reports serving readiness: artifacts and classifier wired.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "healthy",
		"model_loaded":    s.service != nil,
		"classes_loaded":  len(s.labels) > 0,
		"history_enabled": s.history != nil,
	})
}

// handleClasses returns the available diagnosis classes.
func (s *Server) handleClasses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"classes":       s.labels,
		"total_classes": len(s.labels),
	})
}

// handlePredict classifies one uploaded recording.
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadMB<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload too large (max %d MB)", s.maxUploadMB))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	result, err := s.processUpload(r.Context(), file, header.Filename)
	if err != nil {
		s.logger.Error("prediction failed for %s: %v", header.Filename, err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	s.logger.Info("processed %s: %s (%.4f)", header.Filename, result.Diagnosis, result.OverallConfidence)
	writeJSON(w, http.StatusOK, result)
}

// batchResult is the per-file outcome of a batch prediction.
type batchResult struct {
	Filename  string               `json:"filename"`
	Result    *diagnosis.Aggregate `json:"result,omitempty"`
	Error     string               `json:"error,omitempty"`
	ErrorCode string               `json:"error_code,omitempty"`
}

// handlePredictBatch classifies several recordings with bounded concurrency.
// Per-file failures are isolated; one bad recording never fails the batch.
func (s *Server) handlePredictBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadMB<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload too large (max %d MB)", s.maxUploadMB))
		return
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File["files"]) == 0 {
		writeError(w, http.StatusBadRequest, "no files uploaded")
		return
	}
	headers := r.MultipartForm.File["files"]

	results := make([]batchResult, len(headers))
	var wg sync.WaitGroup
	for i, fh := range headers {
		if err := s.batchSem.Acquire(r.Context(), 1); err != nil {
			results[i] = batchResult{Filename: fh.Filename, Error: "request cancelled"}
			continue
		}
		wg.Add(1)
		go func(i int, fh *multipart.FileHeader) {
			defer wg.Done()
			defer s.batchSem.Release(1)
			results[i] = s.processBatchFile(r.Context(), fh)
		}(i, fh)
	}
	wg.Wait()

	succeeded := 0
	for _, res := range results {
		if res.Error == "" {
			succeeded++
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"batch_results":          results,
		"total_files":            len(headers),
		"successful_predictions": succeeded,
	})
}

func (s *Server) processBatchFile(ctx context.Context, fh *multipart.FileHeader) batchResult {
	file, err := fh.Open()
	if err != nil {
		return batchResult{Filename: fh.Filename, Error: err.Error()}
	}
	defer file.Close()

	result, err := s.processUpload(ctx, file, fh.Filename)
	if err != nil {
		s.logger.Error("batch prediction failed for %s: %v", fh.Filename, err)
		return batchResult{Filename: fh.Filename, Error: err.Error(), ErrorCode: errors.GetCode(err)}
	}
	return batchResult{Filename: fh.Filename, Result: result}
}

// processUpload spools the upload to a temp file, runs ingestion and the
// diagnosis pipeline, and records the result when history is enabled.
func (s *Server) processUpload(ctx context.Context, src io.Reader, filename string) (*diagnosis.Aggregate, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".csv" && ext != ".xlsx" {
		return nil, errors.InvalidInput("invalid file type, upload a CSV or XLSX recording")
	}

	tmp, err := os.CreateTemp("", "ecg_*"+ext)
	if err != nil {
		return nil, errors.Wrap(err, "cannot create temp file")
	}
	tmpPath := tmp.Name()
	defer func() {
		if err := os.Remove(tmpPath); err != nil {
			s.logger.Warn("failed to delete temp file %s: %v", tmpPath, err)
		}
	}()
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return nil, errors.Wrap(err, "cannot spool upload")
	}
	tmp.Close()

	raw, err := s.reader.Read(tmpPath)
	if err != nil {
		return nil, err
	}

	result, err := s.service.Diagnose(ctx, raw)
	if err != nil {
		return nil, err
	}

	if s.history != nil {
		if err := s.history.Save(ctx, filename, result); err != nil {
			// History is best-effort; the diagnosis already succeeded.
			s.logger.Warn("failed to record diagnosis history: %v", err)
		}
	}
	return result, nil
}

// handleHistory returns recent persisted diagnoses.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, "diagnosis history is not enabled")
		return
	}
	records, err := s.history.ListRecent(r.Context(), 50)
	if err != nil {
		s.logger.Error("history query failed: %v", err)
		writeError(w, http.StatusInternalServerError, "cannot load diagnosis history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"diagnoses": records,
		"total":     len(records),
	})
}

// statusFor maps a pipeline error to its transport status. Unprocessable
// recordings are the client's problem; artifact inconsistencies and model
// failures are ours.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput:
		return http.StatusBadRequest
	case errors.CodeFilterUnstable, errors.CodeNoPeaks, errors.CodeNoSegments, errors.CodeNoValidSegments:
		return http.StatusUnprocessableEntity
	case errors.CodeExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

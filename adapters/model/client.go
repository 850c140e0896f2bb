package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ecgdx/ports"
)

// HTTPClassifier implements ports.Classifier against a model server that
// exposes the trained CNN+LSTM over HTTP. The server owns the model's
// architecture and weights; this adapter only moves matrices.
type HTTPClassifier struct {
	BaseURL    string
	Timeout    time.Duration
	NumClasses int
}

// NewHTTPClassifier creates a classifier client for the given model server.
func NewHTTPClassifier(baseURL string, timeout time.Duration, numClasses int) (*HTTPClassifier, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("missing model server URL")
	}
	if numClasses <= 0 {
		return nil, fmt.Errorf("model must have at least one class")
	}
	return &HTTPClassifier{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Timeout:    timeout,
		NumClasses: numClasses,
	}, nil
}

// Classes reports the model's output width.
func (c *HTTPClassifier) Classes() int { return c.NumClasses }

// PredictBatch sends one chunk of normalized segments and returns per-class
// probability rows in input order.
func (c *HTTPClassifier) PredictBatch(ctx context.Context, rows [][]float64) ([][]float64, error) {
	type reqBody struct {
		Segments [][]float64 `json:"segments"`
	}
	raw, err := json.Marshal(reqBody{Segments: rows})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	client := &http.Client{Timeout: c.Timeout}
	url := c.BaseURL + "/predict"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("model request failed: %w", err)
	}
	defer resp.Body.Close()

	respRaw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("model server http %d: %s", resp.StatusCode, string(respRaw))
	}

	type respBody struct {
		Probabilities [][]float64 `json:"probabilities"`
	}
	var decoded respBody
	if err := json.Unmarshal(respRaw, &decoded); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(decoded.Probabilities) == 0 {
		return nil, fmt.Errorf("model response missing probabilities")
	}
	return decoded.Probabilities, nil
}

// MockClassifier is a scripted classifier for testing. Rows receives every
// chunk the pipeline sends, in call order.
type MockClassifier struct {
	NumClasses int
	Respond    func(rows [][]float64) [][]float64 // optional; default peaks on class 0
	Error      error
	Calls      [][][]float64
}

func (m *MockClassifier) Classes() int { return m.NumClasses }

func (m *MockClassifier) PredictBatch(ctx context.Context, rows [][]float64) ([][]float64, error) {
	if m.Error != nil {
		return nil, m.Error
	}
	m.Calls = append(m.Calls, rows)
	if m.Respond != nil {
		return m.Respond(rows), nil
	}
	out := make([][]float64, len(rows))
	for i := range rows {
		probs := make([]float64, m.NumClasses)
		probs[0] = 0.9
		for j := 1; j < m.NumClasses; j++ {
			probs[j] = 0.1 / float64(m.NumClasses-1)
		}
		out[i] = probs
	}
	return out, nil
}

var _ ports.Classifier = (*HTTPClassifier)(nil)
var _ ports.Classifier = (*MockClassifier)(nil)

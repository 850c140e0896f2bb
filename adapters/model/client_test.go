package model

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHTTPClassifier_PredictBatch(t *testing.T) {
	var gotPath string
	var gotSegments [][]float64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		var req struct {
			Segments [][]float64 `json:"segments"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotSegments = req.Segments

		probs := make([][]float64, len(req.Segments))
		for i := range probs {
			probs[i] = []float64{0.8, 0.15, 0.05}
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"probabilities": probs})
	}))
	defer server.Close()

	client, err := NewHTTPClassifier(server.URL, 5*time.Second, 3)
	assert.NoError(t, err)

	rows := [][]float64{{1, 2, 3}, {4, 5, 6}}
	probs, err := client.PredictBatch(context.Background(), rows)
	assert.NoError(t, err)
	assert.Equal(t, "/predict", gotPath)
	assert.Equal(t, rows, gotSegments)
	assert.Len(t, probs, 2)
	assert.Equal(t, []float64{0.8, 0.15, 0.05}, probs[0])
}

func TestHTTPClassifier_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model exploded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewHTTPClassifier(server.URL, 5*time.Second, 3)
	assert.NoError(t, err)

	_, err = client.PredictBatch(context.Background(), [][]float64{{1}})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "http 500")
}

func TestNewHTTPClassifier_Validation(t *testing.T) {
	_, err := NewHTTPClassifier("", time.Second, 3)
	assert.Error(t, err)

	_, err = NewHTTPClassifier("http://localhost:5000", time.Second, 0)
	assert.Error(t, err)
}

package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"ecgdx/domain/core"
	"ecgdx/domain/diagnosis"
)

const (
	scalerFile  = "scaler.json"
	classesFile = "classes.json"
)

// scalerDocument is the on-disk shape of the scaling transform, exported at
// training time together with the model.
type scalerDocument struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// LoadScalingTransform reads and validates the pretrained per-position
// scaler. segmentLength is the serving window length the transform must
// match.
func LoadScalingTransform(dir string, segmentLength int) (diagnosis.ScalingTransform, error) {
	var doc scalerDocument
	if err := readJSON(filepath.Join(dir, scalerFile), &doc); err != nil {
		return diagnosis.ScalingTransform{}, err
	}

	if len(doc.Mean) != segmentLength {
		return diagnosis.ScalingTransform{}, core.NewSchemaError("scaler mean length", segmentLength, len(doc.Mean))
	}
	if len(doc.Std) != len(doc.Mean) {
		return diagnosis.ScalingTransform{}, core.NewSchemaError("scaler std length", len(doc.Mean), len(doc.Std))
	}
	for i, s := range doc.Std {
		if s <= 0 {
			return diagnosis.ScalingTransform{}, core.NewConfigError(fmt.Sprintf("scaler std must be positive at position %d", i))
		}
	}

	return diagnosis.ScalingTransform{Mean: doc.Mean, Std: doc.Std}, nil
}

// LoadClassLabelMap reads the class index to diagnosis label mapping. The
// file is a JSON object keyed by class index; indices must be dense from 0.
func LoadClassLabelMap(dir string) (diagnosis.ClassLabelMap, error) {
	var raw map[string]string
	if err := readJSON(filepath.Join(dir, classesFile), &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, core.NewConfigError("class mapping is empty")
	}

	labels := make(diagnosis.ClassLabelMap, len(raw))
	for key, label := range raw {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= len(raw) {
			return nil, core.NewConfigError(fmt.Sprintf("class indices must be dense from 0, got %q", key))
		}
		if labels[idx] != "" {
			return nil, core.NewConfigError(fmt.Sprintf("duplicate class index %d", idx))
		}
		if label == "" {
			return nil, core.NewConfigError(fmt.Sprintf("empty label for class %d", idx))
		}
		labels[idx] = label
	}
	return labels, nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.NewConfigError(fmt.Sprintf("cannot read artifact %s: %v", path, err))
	}
	if err := json.Unmarshal(data, v); err != nil {
		return core.NewConfigError(fmt.Sprintf("cannot parse artifact %s: %v", path, err))
	}
	return nil
}

package artifacts

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"ecgdx/domain/core"

	"github.com/stretchr/testify/assert"
)

func writeArtifact(t *testing.T, dir, name string, v interface{}) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal artifact: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
}

func TestLoadScalingTransform(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, scalerFile, map[string][]float64{
		"mean": {0, 1, 2, 3},
		"std":  {1, 1, 2, 2},
	})

	transform, err := LoadScalingTransform(dir, 4)
	assert.NoError(t, err)
	assert.Equal(t, 4, transform.Len())
	assert.Equal(t, []float64{0, 1, 2, 3}, transform.Mean)
}

func TestLoadScalingTransform_LengthMismatch(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, scalerFile, map[string][]float64{
		"mean": {0, 1},
		"std":  {1, 1},
	})

	_, err := LoadScalingTransform(dir, 250)
	assert.ErrorIs(t, err, core.ErrSchemaMismatch)
}

func TestLoadScalingTransform_NonPositiveStd(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, scalerFile, map[string][]float64{
		"mean": {0, 0},
		"std":  {1, 0},
	})

	_, err := LoadScalingTransform(dir, 2)
	assert.ErrorIs(t, err, core.ErrConfigInconsistent)
}

func TestLoadScalingTransform_MissingFile(t *testing.T) {
	_, err := LoadScalingTransform(t.TempDir(), 250)
	assert.ErrorIs(t, err, core.ErrConfigInconsistent)
}

func TestLoadClassLabelMap(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, classesFile, map[string]string{
		"0": "Normal",
		"1": "Atrial Fibrillation",
		"2": "Ventricular Tachycardia",
	})

	labels, err := LoadClassLabelMap(dir)
	assert.NoError(t, err)
	assert.Len(t, labels, 3)

	label, ok := labels.Label(1)
	assert.True(t, ok)
	assert.Equal(t, "Atrial Fibrillation", label)

	_, ok = labels.Label(3)
	assert.False(t, ok)
}

func TestLoadClassLabelMap_SparseIndices(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, classesFile, map[string]string{
		"0": "Normal",
		"2": "Ventricular Tachycardia",
	})

	_, err := LoadClassLabelMap(dir)
	assert.ErrorIs(t, err, core.ErrConfigInconsistent)
}

func TestLoadClassLabelMap_Empty(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, classesFile, map[string]string{})

	_, err := LoadClassLabelMap(dir)
	assert.ErrorIs(t, err, core.ErrConfigInconsistent)
}

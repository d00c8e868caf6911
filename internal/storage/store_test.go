package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/radinterp/internal/field"
)

func testSpectrum() *Spectrum {
	return &Spectrum{
		Frequency: []float64{22.235e9, 60e9, 118.75e9},
		Species:   []string{"H2O", "O2"},
		Values:    mat.NewDense(2, 3, []float64{1.5e-25, 2e-27, 3e-28, 4e-30, 5.25e-24, 6e-25}),
	}
}

func testMeta() RunMetadata {
	return RunMetadata{
		Scenario:    "test",
		Query:       field.Position{Alt: 1500, Lat: 45, Lon: 7},
		Pressure:    84555.3,
		Temperature: 278.4,
		VMR:         map[string]float64{"H2O": 0.0047, "O2": 0.2095},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir(), zaptest.NewLogger(t))
	require.NoError(t, st.Init())

	runID, err := st.Save(testMeta(), testSpectrum())
	require.NoError(t, err)
	assert.NotEmpty(t, runID)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, runID, meta.ID)
	assert.Equal(t, "test", meta.Scenario)
	assert.Equal(t, 1500.0, meta.Query.Alt)
	assert.Equal(t, 0.0047, meta.VMR["H2O"])
	assert.Equal(t, []string{"H2O", "O2"}, meta.Species)
	assert.Equal(t, 3, meta.Frequencies)
	assert.False(t, meta.Timestamp.IsZero())

	sp, err := st.LoadSpectrum(runID)
	require.NoError(t, err)
	want := testSpectrum()
	assert.Equal(t, want.Frequency, sp.Frequency)
	assert.Equal(t, want.Species, sp.Species)
	assert.True(t, mat.Equal(want.Values, sp.Values))
}

func TestStoreSaveRejectsMismatchedSpectrum(t *testing.T) {
	st := New(t.TempDir(), nil)
	sp := testSpectrum()
	sp.Species = sp.Species[:1]
	_, err := st.Save(testMeta(), sp)
	assert.Error(t, err)
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir, zaptest.NewLogger(t))
	require.NoError(t, st.Init())

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	_, err = st.Save(testMeta(), testSpectrum())
	require.NoError(t, err)
	_, err = st.Save(testMeta(), testSpectrum())
	require.NoError(t, err)

	// corrupt runs and stray files are skipped
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "broken"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken", "metadata.json"), []byte("{"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0644))

	runs, err = st.List()
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestStoreListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "absent"), nil).List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestLoadSpectrumCorrupt(t *testing.T) {
	dir := t.TempDir()
	st := New(dir, nil)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "run"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "run", "spectrum.csv"), []byte("frequency,O2\n1e9,abc\n"), 0644))

	_, err := st.LoadSpectrum("run")
	assert.ErrorIs(t, err, ErrCorruptRun)

	_, err = st.LoadSpectrum("missing")
	assert.Error(t, err)
}

func TestExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	meta := testMeta()
	require.NoError(t, Export(path, &meta, testSpectrum()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc struct {
		Scenario string               `json:"scenario"`
		Values   map[string][]float64 `json:"values"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "test", doc.Scenario)
	assert.Equal(t, []float64{4e-30, 5.25e-24, 6e-25}, doc.Values["O2"])
}

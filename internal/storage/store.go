// Package storage keeps extracted spectra on disk, one directory per run
// holding metadata.json and spectrum.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/radinterp/internal/field"
)

var ErrCorruptRun = errors.New("storage: corrupt run")

type Store struct {
	baseDir string
	log     *zap.Logger
}

func New(baseDir string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{baseDir: baseDir, log: log}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Scenario    string             `json:"scenario"`
	Timestamp   time.Time          `json:"timestamp"`
	Query       field.Position     `json:"query"`
	Pressure    float64            `json:"pressure"`
	Temperature float64            `json:"temperature"`
	VMR         map[string]float64 `json:"vmr"`
	Species     []string           `json:"species"`
	Frequencies int                `json:"frequencies"`
}

// Spectrum is one cross-section per species and frequency.
type Spectrum struct {
	Frequency []float64
	Species   []string
	Values    *mat.Dense // [species, frequency]
}

// Save writes a run and returns its id. meta.ID and meta.Timestamp are
// filled in.
func (s *Store) Save(meta RunMetadata, sp *Spectrum) (string, error) {
	rows, cols := sp.Values.Dims()
	if rows != len(sp.Species) || cols != len(sp.Frequency) {
		return "", errors.Errorf("storage: spectrum is %dx%d for %d species and %d frequencies",
			rows, cols, len(sp.Species), len(sp.Frequency))
	}

	now := time.Now()
	runID := fmt.Sprintf("%s_%d", meta.Scenario, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.Species = sp.Species
	meta.Frequencies = cols

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "spectrum.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	header := append([]string{"frequency"}, sp.Species...)
	if err := w.Write(header); err != nil {
		return "", err
	}
	for j, f := range sp.Frequency {
		row := []string{strconv.FormatFloat(f, 'g', -1, 64)}
		for i := range sp.Species {
			row = append(row, strconv.FormatFloat(sp.Values.At(i, j), 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	s.log.Debug("saved run", zap.String("id", runID), zap.Int("frequencies", cols))
	return runID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			s.log.Debug("skipping run", zap.String("dir", entry.Name()), zap.Error(err))
			continue
		}
		runs = append(runs, *meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, errors.Wrapf(ErrCorruptRun, "%s: %v", runID, err)
	}

	return &meta, nil
}

// LoadSpectrum reads the spectrum of a run. Unlike List it rejects
// malformed rows instead of skipping them.
func (s *Store) LoadSpectrum(runID string) (*Spectrum, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "spectrum.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, errors.Wrapf(ErrCorruptRun, "%s: %v", runID, err)
	}
	if len(records) < 2 || len(records[0]) < 2 {
		return nil, errors.Wrapf(ErrCorruptRun, "%s: empty spectrum", runID)
	}

	sp := &Spectrum{Species: records[0][1:]}
	ns := len(sp.Species)
	values := make([][]float64, ns)
	for n, record := range records[1:] {
		f, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, errors.Wrapf(ErrCorruptRun, "%s: row %d: %v", runID, n+1, err)
		}
		sp.Frequency = append(sp.Frequency, f)
		for i := range ns {
			v, err := strconv.ParseFloat(record[i+1], 64)
			if err != nil {
				return nil, errors.Wrapf(ErrCorruptRun, "%s: row %d: %v", runID, n+1, err)
			}
			values[i] = append(values[i], v)
		}
	}

	sp.Values = mat.NewDense(ns, len(sp.Frequency), nil)
	for i, row := range values {
		sp.Values.SetRow(i, row)
	}
	return sp, nil
}

// Export writes a run and its spectrum as a single JSON document.
func Export(path string, meta *RunMetadata, sp *Spectrum) error {
	doc := struct {
		*RunMetadata
		Frequency []float64            `json:"frequency"`
		Values    map[string][]float64 `json:"values"`
	}{RunMetadata: meta, Frequency: sp.Frequency, Values: make(map[string][]float64, len(sp.Species))}
	for i, name := range sp.Species {
		doc.Values[name] = mat.Row(nil, i, sp.Values)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

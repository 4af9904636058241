package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/isingsim/internal/export"
	"github.com/san-kum/isingsim/internal/lattice"
	"github.com/san-kum/isingsim/internal/sampler"
)

var (
	// ErrRunNotFound indicates no stored run has the requested id.
	ErrRunNotFound = errors.New("storage: run not found")
	// ErrCorruptRun indicates a stored run file could not be parsed.
	ErrCorruptRun = errors.New("storage: corrupt run data")
)

const (
	metadataFile = "metadata.json"
	energyFile   = "energy.csv"
	latticeFile  = "lattice.csv"

	// snapshotPixels is the target edge length of saved lattice images.
	snapshotPixels = 512
)

// snapshotFile's extension selects the image encoder.
var snapshotFile = "lattice.png"

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// Dir returns the directory holding the files of run id.
func (s *Store) Dir(id string) string {
	return filepath.Join(s.baseDir, id)
}

type RunMetadata struct {
	ID             string             `json:"id"`
	Timestamp      time.Time          `json:"timestamp"`
	Size           int                `json:"size"`
	Steps          int                `json:"steps"`
	Beta           float64            `json:"beta"`
	Coupling       float64            `json:"coupling"`
	Seed           int64              `json:"seed"`
	Init           string             `json:"init"`
	Accepted       int                `json:"accepted"`
	FinalEnergy    float64            `json:"final_energy"`
	Magnetization  float64            `json:"magnetization"`
	AcceptanceRate float64            `json:"acceptance_rate"`
	Metrics        map[string]float64 `json:"metrics"`
}

// NewMetadata fills the result-derived fields of a run record.
func NewMetadata(cfg sampler.Config, result *sampler.Result) RunMetadata {
	meta := RunMetadata{
		Size:           cfg.Size,
		Steps:          cfg.Steps,
		Beta:           cfg.Beta,
		Coupling:       cfg.Coupling,
		Seed:           cfg.Seed,
		Init:           string(cfg.Init),
		Accepted:       result.Accepted,
		Magnetization:  result.Magnetization(),
		AcceptanceRate: result.AcceptanceRate(),
		Metrics:        result.Metrics,
	}
	if len(result.Energy) > 0 {
		meta.FinalEnergy = result.Energy[len(result.Energy)-1]
	}
	if meta.Init == "" {
		meta.Init = string(sampler.InitRandom)
	}
	return meta
}

// Save writes metadata, energy trace, final lattice and a PNG snapshot into a
// fresh run directory and returns the run id. meta.ID and meta.Timestamp are
// assigned here. On failure the run directory is removed.
func (s *Store) Save(meta *RunMetadata, result *sampler.Result) (string, error) {
	now := time.Now()
	meta.ID = fmt.Sprintf("ising%d_%d", meta.Size, now.UnixNano())
	meta.Timestamp = now
	runDir := s.Dir(meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	if err := writeRun(runDir, meta, result); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}

	return meta.ID, nil
}

func writeRun(runDir string, meta *RunMetadata, result *sampler.Result) error {
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return err
	}
	if err := writeEnergy(filepath.Join(runDir, energyFile), result.Energy); err != nil {
		return err
	}
	if result.Lattice == nil {
		return nil
	}
	if err := writeLattice(filepath.Join(runDir, latticeFile), result.Lattice); err != nil {
		return err
	}

	scale := snapshotPixels / result.Lattice.Size()
	return SaveSnapshot(filepath.Join(runDir, snapshotFile), result.Lattice, scale)
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return export.JSON(f, v)
}

func writeEnergy(path string, energy []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return export.EnergyCSV(f, energy)
}

func writeLattice(path string, lat *lattice.Lattice) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for _, row := range lat.Rows() {
		record := make([]string, len(row))
		for j, v := range row {
			record[j] = strconv.Itoa(v)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns all stored runs, newest first. Directories without readable
// metadata are skipped.
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
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(id string) (*RunMetadata, error) {
	data, err := s.read(id, metadataFile)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %v", ErrCorruptRun, id, metadataFile, err)
	}
	return &meta, nil
}

func (s *Store) LoadEnergy(id string) ([]float64, error) {
	records, err := s.readCSV(id, energyFile)
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []float64{}, nil
	}

	energy := make([]float64, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) < 2 {
			return nil, fmt.Errorf("%w: %s/%s line %d", ErrCorruptRun, id, energyFile, i+2)
		}
		e, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s/%s line %d: %v", ErrCorruptRun, id, energyFile, i+2, err)
		}
		energy = append(energy, e)
	}
	return energy, nil
}

func (s *Store) LoadLattice(id string) (*lattice.Lattice, error) {
	records, err := s.readCSV(id, latticeFile)
	if err != nil {
		return nil, err
	}

	rows := make([][]int, len(records))
	for i, record := range records {
		rows[i] = make([]int, len(record))
		for j, field := range record {
			v, err := strconv.Atoi(field)
			if err != nil {
				return nil, fmt.Errorf("%w: %s/%s: %v", ErrCorruptRun, id, latticeFile, err)
			}
			rows[i][j] = v
		}
	}

	lat, err := lattice.FromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %v", ErrCorruptRun, id, latticeFile, err)
	}
	return lat, nil
}

func (s *Store) read(id, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(id), name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		return nil, err
	}
	return data, nil
}

func (s *Store) readCSV(id, name string) ([][]string, error) {
	f, err := os.Open(filepath.Join(s.Dir(id), name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %v", ErrCorruptRun, id, name, err)
	}
	return records, nil
}

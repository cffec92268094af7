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

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"
)

const (
	reportFile = "report.json"
	gainFile   = "gain.csv"
)

// ErrNotFound is returned when no report has the requested id.
var ErrNotFound = errors.New("storage: report not found")

// Store keeps one directory per synthesis report under baseDir.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// Save writes the report and its gain matrix and returns the report id. A
// report without an id gets a fresh one.
func (s *Store) Save(r *Report, gain mat.Matrix) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}
	r.GainRows, r.GainCols = gain.Dims()

	dir := filepath.Join(s.baseDir, r.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(dir, reportFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(dir, gainFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	header := []string{"input"}
	for j := 0; j < r.GainCols; j++ {
		header = append(header, fmt.Sprintf("x%d", j))
	}
	if err := w.Write(header); err != nil {
		return "", err
	}
	for i := 0; i < r.GainRows; i++ {
		row := []string{fmt.Sprintf("u%d", i)}
		for j := 0; j < r.GainCols; j++ {
			row = append(row, strconv.FormatFloat(gain.At(i, j), 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return r.ID, nil
}

// List returns every readable report, newest first.
func (s *Store) List() ([]Report, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Report{}, nil
		}
		return nil, err
	}

	reports := make([]Report, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		r, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		reports = append(reports, *r)
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Timestamp.After(reports[j].Timestamp)
	})
	return reports, nil
}

func (s *Store) Load(id string) (*Report, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, reportFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// LoadGain reads the gain matrix of report id.
func (s *Store) LoadGain(id string) (*mat.Dense, error) {
	file, err := os.Open(filepath.Join(s.baseDir, id, gainFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 || len(records[0]) < 2 {
		return &mat.Dense{}, nil
	}

	rows, cols := len(records)-1, len(records[0])-1
	gain := mat.NewDense(rows, cols, nil)
	for i, record := range records[1:] {
		if len(record) != cols+1 {
			return nil, fmt.Errorf("storage: %s row %d has %d fields, want %d", gainFile, i, len(record), cols+1)
		}
		for j, field := range record[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("storage: %s row %d: %w", gainFile, i, err)
			}
			gain.Set(i, j, v)
		}
	}
	return gain, nil
}

// Package storage persists script run traces: JSON metadata plus a CSV of
// sampled outputs per run, under a flat data directory.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/mjbridge/internal/script"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string    `json:"id"`
	Model     string    `json:"model"`
	Script    string    `json:"script"`
	Timestamp time.Time `json:"timestamp"`
	Timestep  float64   `json:"timestep"`
	Steps     int       `json:"steps"`
	FinalTime float64   `json:"final_time"`
	Outputs   []string  `json:"outputs"`
}

// Save writes one script run: metadata.json plus samples.csv with a time
// and step column followed by one column per sampled output.
func (s *Store) Save(modelPath, scriptName string, timestep float64, result *script.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", sanitize(scriptName), time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	steps, finalTime := 0, 0.0
	if n := len(result.Rows); n > 0 {
		steps = result.Rows[n-1].Step
		finalTime = result.Rows[n-1].Time
	}

	meta := RunMetadata{
		ID:        runID,
		Model:     modelPath,
		Script:    scriptName,
		Timestamp: time.Now(),
		Timestep:  timestep,
		Steps:     steps,
		FinalTime: finalTime,
		Outputs:   result.Names,
	}

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

	csvFile, err := os.Create(filepath.Join(runDir, "samples.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	header := append([]string{"time", "step"}, result.Names...)
	if err := w.Write(header); err != nil {
		return "", err
	}
	for _, row := range result.Rows {
		rec := make([]string, 0, len(header))
		rec = append(rec,
			strconv.FormatFloat(row.Time, 'f', 6, 64),
			strconv.Itoa(row.Step),
		)
		for _, name := range result.Names {
			rec = append(rec, strconv.FormatFloat(row.Values[name], 'f', 6, 64))
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	raw, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadSamples reads a run's trace back: the output names and one series
// per name, plus the time column.
func (s *Store) LoadSamples(runID string) (names []string, times []float64, series map[string][]float64, err error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "samples.csv"))
	if err != nil {
		return nil, nil, nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, nil, fmt.Errorf("run %s: empty samples file", runID)
	}

	header := records[0]
	if len(header) < 2 {
		return nil, nil, nil, fmt.Errorf("run %s: malformed samples header", runID)
	}
	names = header[2:]
	series = make(map[string][]float64, len(names))

	for _, rec := range records[1:] {
		t, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("run %s: bad time value %q", runID, rec[0])
		}
		times = append(times, t)
		for i, name := range names {
			v, err := strconv.ParseFloat(rec[2+i], 64)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("run %s: bad sample %q", runID, rec[2+i])
			}
			series[name] = append(series[name], v)
		}
	}
	return names, times, series, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var runs []RunMetadata
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		meta, err := s.Load(e.Name())
		if err != nil {
			continue // skip partial or foreign directories
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func sanitize(name string) string {
	if name == "" {
		return "run"
	}
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const metadataFile = "metadata.json"

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) BaseDir() string { return s.baseDir }

type RunMetadata struct {
	ID           string    `json:"id"`
	Scene        string    `json:"scene"`
	Timestamp    time.Time `json:"timestamp"`
	Seed         uint64    `json:"seed"`
	Backend      string    `json:"backend"`
	Stars        int       `json:"stars"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	SpawnRate    float64   `json:"spawn_rate"`
	TTL          int       `json:"ttl"`
	WindowCap    int       `json:"window_cap"`
	FadeOutSpeed float64   `json:"fade_out_speed"`
	Iterations   int       `json:"iterations"`
	Frames       []string  `json:"frames"`
	GIF          string    `json:"gif,omitempty"`

	Totals  Totals  `json:"totals"`
	Elapsed float64 `json:"elapsed_seconds"`
}

// Totals are run-wide photon counts.
type Totals struct {
	Spawned  int `json:"spawned"`
	Absorbed int `json:"absorbed"`
	Expired  int `json:"expired"`
	Evicted  int `json:"evicted"`
}

// Create makes a new run directory named after the scene and the current
// time.
func (s *Store) Create(meta RunMetadata) (*Run, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}
	scene := meta.Scene
	if scene == "" {
		scene = "run"
	}

	base := fmt.Sprintf("%s_%d", scene, time.Now().Unix())
	runID := base
	for i := 2; ; i++ {
		err := os.Mkdir(filepath.Join(s.baseDir, runID), 0755)
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, err
		}
		runID = fmt.Sprintf("%s_%d", base, i)
	}

	meta.ID = runID
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	return openRun(filepath.Join(s.baseDir, runID), meta)
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
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func writeMetadata(dir string, meta *RunMetadata) error {
	f, err := os.Create(filepath.Join(dir, metadataFile))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/photonsim/internal/world"
)

const statsFile = "stats.csv"

var statsHeader = []string{"iteration", "spawned", "absorbed", "expired", "evicted", "live", "batches", "elapsed_ns", "canvas_weight", "energy"}

// intFields is the number of leading integer columns.
const intFields = 8

func statsRow(st world.TickStats) []string {
	return []string{
		strconv.Itoa(st.Iteration),
		strconv.Itoa(st.Spawned),
		strconv.Itoa(st.Absorbed),
		strconv.Itoa(st.Expired),
		strconv.Itoa(st.Evicted),
		strconv.Itoa(st.Live),
		strconv.Itoa(st.Batches),
		strconv.FormatInt(st.Elapsed.Nanoseconds(), 10),
		strconv.FormatFloat(st.CanvasWeight, 'g', -1, 64),
		strconv.FormatFloat(st.Energy, 'g', -1, 64),
	}
}

// LoadStats reads the per-tick statistics of a run.
func (s *Store) LoadStats(runID string) ([]world.TickStats, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statsFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []world.TickStats{}, nil
	}

	stats := make([]world.TickStats, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != len(statsHeader) {
			return nil, fmt.Errorf("%s line %d: expected %d fields, got %d", statsFile, i+2, len(statsHeader), len(record))
		}
		var v [intFields]int64
		for j, field := range record[:intFields] {
			n, err := strconv.ParseInt(field, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", statsFile, i+2, err)
			}
			v[j] = n
		}
		var f [2]float64
		for j, field := range record[intFields:] {
			x, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", statsFile, i+2, err)
			}
			f[j] = x
		}
		stats = append(stats, world.TickStats{
			Iteration: int(v[0]),
			Spawned:   int(v[1]),
			Absorbed:  int(v[2]),
			Expired:   int(v[3]),
			Evicted:   int(v[4]),
			Live:      int(v[5]),
			Batches:   int(v[6]),
			Elapsed:   time.Duration(v[7]),

			CanvasWeight: f[0],
			Energy:       f[1],
		})
	}
	return stats, nil
}

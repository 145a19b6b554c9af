package storage

import (
	"encoding/csv"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/san-kum/photonsim/internal/world"
)

const gifFile = "frames.gif"

// GIFDelay is the delay between animation frames in 100ths of a second.
const GIFDelay = 5

// Run is an open run directory receiving frames and statistics.
type Run struct {
	dir   string
	meta  RunMetadata
	start time.Time

	statsFile *os.File
	stats     *csv.Writer

	animate bool
	anim    gif.GIF
}

func openRun(dir string, meta RunMetadata) (*Run, error) {
	f, err := os.Create(filepath.Join(dir, statsFile))
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(f)
	if err := w.Write(statsHeader); err != nil {
		f.Close()
		return nil, err
	}
	return &Run{
		dir:       dir,
		meta:      meta,
		start:     time.Now(),
		statsFile: f,
		stats:     w,
	}, nil
}

func (r *Run) ID() string  { return r.meta.ID }
func (r *Run) Dir() string { return r.dir }

// EnableGIF collects every saved frame into frames.gif on Close.
func (r *Run) EnableGIF() { r.animate = true }

// WriteFrame encodes img as frame_<iteration>.png and returns its path.
func (r *Run) WriteFrame(iteration int, img image.Image) (string, error) {
	name := fmt.Sprintf("frame_%05d.png", iteration)
	path := filepath.Join(r.dir, name)
	if err := SavePNG(path, img); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	r.meta.Frames = append(r.meta.Frames, name)

	if r.animate {
		pimg := image.NewPaletted(img.Bounds(), palette.Plan9)
		draw.FloydSteinberg.Draw(pimg, pimg.Bounds(), img, image.Point{})
		r.anim.Image = append(r.anim.Image, pimg)
		r.anim.Delay = append(r.anim.Delay, GIFDelay)
	}
	return path, nil
}

// Record appends one tick to stats.csv and the run totals.
func (r *Run) Record(st world.TickStats) error {
	r.meta.Totals.Spawned += st.Spawned
	r.meta.Totals.Absorbed += st.Absorbed
	r.meta.Totals.Expired += st.Expired
	r.meta.Totals.Evicted += st.Evicted
	r.meta.Iterations = st.Iteration + 1
	return r.stats.Write(statsRow(st))
}

// Close flushes statistics, writes the animation if enabled and the
// metadata file.
func (r *Run) Close() error {
	r.stats.Flush()
	err := r.stats.Error()
	if cerr := r.statsFile.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", statsFile, err)
	}

	if r.animate && len(r.anim.Image) > 0 {
		path := filepath.Join(r.dir, gifFile)
		if err := SaveGIF(path, &r.anim); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		r.meta.GIF = gifFile
	}

	r.meta.Elapsed = time.Since(r.start).Seconds()
	return writeMetadata(r.dir, &r.meta)
}

// Metadata returns the run metadata as it currently stands.
func (r *Run) Metadata() RunMetadata { return r.meta }

func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func SaveGIF(path string, anim *gif.GIF) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gif.EncodeAll(f, anim); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

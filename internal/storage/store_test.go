package storage

import (
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/photonsim/internal/world"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	img.SetRGBA(3, 2, color.RGBA{R: 200, G: 10, B: 40, A: 255})
	return img
}

func TestCreateAndLoad(t *testing.T) {
	s := New(t.TempDir())
	run, err := s.Create(RunMetadata{Scene: "single", Seed: 7, Width: 8, Height: 4})
	if err != nil {
		t.Fatal(err)
	}
	if err := run.Record(world.TickStats{Iteration: 0, Spawned: 10, Absorbed: 2}); err != nil {
		t.Fatal(err)
	}
	if err := run.Close(); err != nil {
		t.Fatal(err)
	}

	meta, err := s.Load(run.ID())
	if err != nil {
		t.Fatal(err)
	}
	if meta.Seed != 7 || meta.Scene != "single" {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Totals.Spawned != 10 || meta.Totals.Absorbed != 2 || meta.Iterations != 1 {
		t.Errorf("unexpected totals %+v iterations %d", meta.Totals, meta.Iterations)
	}
}

func TestCreateUniqueIDs(t *testing.T) {
	s := New(t.TempDir())
	a, err := s.Create(RunMetadata{Scene: "x"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.Create(RunMetadata{Scene: "x"})
	if err != nil {
		t.Fatal(err)
	}
	if a.ID() == b.ID() {
		t.Errorf("expected distinct run ids, both %s", a.ID())
	}
	a.Close()
	b.Close()
}

func TestWriteFrameDecodes(t *testing.T) {
	s := New(t.TempDir())
	run, err := s.Create(RunMetadata{Scene: "frames"})
	if err != nil {
		t.Fatal(err)
	}
	path, err := run.WriteFrame(12, testImage())
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "frame_00012.png" {
		t.Errorf("unexpected frame name %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("expected decodable png: %v", err)
	}
	r, g, b, _ := img.At(3, 2).RGBA()
	if r>>8 != 200 || g>>8 != 10 || b>>8 != 40 {
		t.Errorf("unexpected pixel %d %d %d", r>>8, g>>8, b>>8)
	}
	run.Close()
}

func TestGIF(t *testing.T) {
	s := New(t.TempDir())
	run, err := s.Create(RunMetadata{Scene: "anim"})
	if err != nil {
		t.Fatal(err)
	}
	run.EnableGIF()
	for i := 0; i < 3; i++ {
		if _, err := run.WriteFrame(i, testImage()); err != nil {
			t.Fatal(err)
		}
	}
	if err := run.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(filepath.Join(run.Dir(), "frames.gif"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	anim, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(anim.Image) != 3 {
		t.Errorf("expected 3 frames, got %d", len(anim.Image))
	}

	meta, _ := s.Load(run.ID())
	if meta.GIF != "frames.gif" || len(meta.Frames) != 3 {
		t.Errorf("unexpected metadata %+v", meta)
	}
}

func TestStatsRoundTrip(t *testing.T) {
	s := New(t.TempDir())
	run, err := s.Create(RunMetadata{Scene: "stats"})
	if err != nil {
		t.Fatal(err)
	}
	want := []world.TickStats{
		{Iteration: 0, Spawned: 100, Absorbed: 1, Live: 99, Batches: 1, Elapsed: 3 * time.Millisecond, CanvasWeight: 0.95},
		{Iteration: 1, Spawned: 100, Absorbed: 4, Expired: 2, Evicted: 10, Live: 183, Batches: 2, Elapsed: 42,
			CanvasWeight: 4.7025, Energy: -1.5622749726e-13},
	}
	for _, st := range want {
		if err := run.Record(st); err != nil {
			t.Fatal(err)
		}
	}
	if err := run.Close(); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadStats(run.ID())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestListEmpty(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "missing"))
	runs, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestListSkipsIncomplete(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	run, _ := s.Create(RunMetadata{Scene: "done"})
	run.Close()
	os.Mkdir(filepath.Join(dir, "junk"), 0755)

	runs, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].ID != run.ID() {
		t.Errorf("expected only the finished run, got %+v", runs)
	}
}

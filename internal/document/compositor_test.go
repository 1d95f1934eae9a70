package document

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"vid2pdf/internal/scratch"
)

type placeCall struct {
	page       int
	path       string
	x, y, w, h float64
}

// recordingWriter records calls and optionally fails at a given step.
type recordingWriter struct {
	pages    int
	placed   []placeCall
	written  string
	failOn   string
	failErr  error
	seenPath map[string]bool
}

func (r *recordingWriter) AddPage() error {
	if r.failOn == "add" {
		return r.failErr
	}
	r.pages++
	return nil
}

func (r *recordingWriter) PlaceImage(path string, x, y, w, h float64) error {
	if r.failOn == "place" {
		return r.failErr
	}
	if _, err := os.Stat(path); err != nil {
		return err
	}
	if r.seenPath == nil {
		r.seenPath = map[string]bool{}
	}
	r.seenPath[path] = true
	r.placed = append(r.placed, placeCall{page: r.pages, path: path, x: x, y: y, w: w, h: h})
	return nil
}

func (r *recordingWriter) Write(outputPath string) error {
	if r.failOn == "write" {
		return r.failErr
	}
	r.written = outputPath
	return nil
}

func strip(w, h int) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	return img
}

func strips(heights ...int) []image.Image {
	out := make([]image.Image, len(heights))
	for i, h := range heights {
		out[i] = strip(100, h)
	}
	return out
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read %s: %v", dir, err)
	}
	if len(entries) != 0 {
		t.Errorf("scratch root still holds %d entries, want none", len(entries))
	}
}

func pageHeights(pages []Page) [][]int {
	out := make([][]int, len(pages))
	for i, p := range pages {
		for _, pl := range p.Placements {
			out[i] = append(out[i], pl.Height)
		}
	}
	return out
}

func TestComposePagination(t *testing.T) {
	tests := []struct {
		name    string
		heights []int
		max     int
		want    [][]int
	}{
		{"two pages", []int{400, 300, 200}, 842, [][]int{{400, 300}, {200}}},
		{"exact fit", []int{421, 421}, 842, [][]int{{421, 421}}},
		{"single strip", []int{10}, 842, [][]int{{10}}},
		{"oversized first strip", []int{1000, 100}, 842, [][]int{{1000}, {100}}},
		{"oversized middle strip", []int{100, 1000, 100}, 842, [][]int{{100}, {1000}, {100}}},
		{"every strip its own page", []int{500, 500, 500}, 842, [][]int{{500}, {500}, {500}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			w := &recordingWriter{}
			cfg := Config{ScratchRoot: root, MaxPageHeight: tt.max}

			pages, err := Compose(context.Background(), w, strips(tt.heights...), cfg, "out.pdf")
			if err != nil {
				t.Fatalf("Compose() error: %v", err)
			}

			got := pageHeights(pages)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d pages %v, want %v", len(got), got, tt.want)
			}
			for i := range got {
				if len(got[i]) != len(tt.want[i]) {
					t.Fatalf("page %d = %v, want %v", i, got[i], tt.want[i])
				}
				for j := range got[i] {
					if got[i][j] != tt.want[i][j] {
						t.Errorf("page %d strip %d height = %d, want %d", i, j, got[i][j], tt.want[i][j])
					}
				}
			}
			if w.pages != len(tt.want) {
				t.Errorf("writer saw %d AddPage calls, want %d", w.pages, len(tt.want))
			}
			if w.written != "out.pdf" {
				t.Errorf("writer output = %q, want out.pdf", w.written)
			}
			assertEmptyDir(t, root)
		})
	}
}

func TestComposePlacementOffsets(t *testing.T) {
	w := &recordingWriter{}
	cfg := Config{ScratchRoot: t.TempDir(), MaxPageHeight: 842}

	if _, err := Compose(context.Background(), w, strips(400, 300, 200), cfg, "out.pdf"); err != nil {
		t.Fatalf("Compose() error: %v", err)
	}

	want := []placeCall{
		{page: 1, x: 0, y: 0, w: 100, h: 400},
		{page: 1, x: 0, y: 400, w: 100, h: 300},
		{page: 2, x: 0, y: 0, w: 100, h: 200},
	}
	if len(w.placed) != len(want) {
		t.Fatalf("got %d placements, want %d", len(w.placed), len(want))
	}
	for i, got := range w.placed {
		if got.page != want[i].page || got.x != want[i].x || got.y != want[i].y || got.w != want[i].w || got.h != want[i].h {
			t.Errorf("placement %d = %+v, want %+v", i, got, want[i])
		}
	}
	if len(w.seenPath) != 3 {
		t.Errorf("strips staged to %d distinct files, want 3", len(w.seenPath))
	}
}

func TestPageHeightNeverExceedsLimit(t *testing.T) {
	heights := []int{120, 700, 30, 842, 1, 900, 400, 400, 43}
	const max = 842

	w := &recordingWriter{}
	pages, err := Compose(context.Background(), w, strips(heights...), Config{ScratchRoot: t.TempDir(), MaxPageHeight: max}, "x.pdf")
	if err != nil {
		t.Fatalf("Compose() error: %v", err)
	}
	for i, p := range pages {
		if len(p.Placements) == 0 {
			t.Errorf("page %d is empty", i)
		}
		if p.Height() > max && len(p.Placements) != 1 {
			t.Errorf("page %d height %d exceeds %d with %d strips", i, p.Height(), max, len(p.Placements))
		}
	}
}

func TestComposeReleasesScratchOnFailure(t *testing.T) {
	boom := errors.New("boom")

	for _, step := range []string{"add", "place", "write"} {
		t.Run(step, func(t *testing.T) {
			root := t.TempDir()
			w := &recordingWriter{failOn: step, failErr: boom}

			_, err := Compose(context.Background(), w, strips(10, 20), Config{ScratchRoot: root, MaxPageHeight: 842}, "out.pdf")
			if !errors.Is(err, ErrWriterFailure) {
				t.Errorf("error = %v, want ErrWriterFailure", err)
			}
			if !errors.Is(err, boom) {
				t.Errorf("error = %v, want it to wrap the writer error", err)
			}
			assertEmptyDir(t, root)
		})
	}
}

func TestComposeScratchFailure(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Compose(context.Background(), &recordingWriter{}, strips(10), Config{ScratchRoot: file, MaxPageHeight: 842}, "out.pdf")
	if !errors.Is(err, scratch.ErrScratchIO) {
		t.Errorf("error = %v, want ErrScratchIO", err)
	}
}

func TestComposeCancelled(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := &recordingWriter{}
	_, err := Compose(ctx, w, strips(10, 20, 30), Config{ScratchRoot: root, MaxPageHeight: 842}, "out.pdf")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if w.pages != 0 || w.written != "" {
		t.Errorf("writer used after cancellation: %d pages, written %q", w.pages, w.written)
	}
	assertEmptyDir(t, root)
}

func TestComposeStagesSequentiallyByDefault(t *testing.T) {
	root := t.TempDir()
	w := &recordingWriter{}

	if _, err := Compose(context.Background(), w, strips(10, 20, 30), Config{ScratchRoot: root, MaxPageHeight: 842}, "out.pdf"); err != nil {
		t.Fatalf("Compose() error: %v", err)
	}

	// sequential staging hands out file names in input order
	for i, pl := range w.placed {
		want := fmt.Sprintf("strip_%05d.jpg", i+1)
		if got := filepath.Base(pl.path); got != want {
			t.Errorf("strip %d staged as %s, want %s", i, got, want)
		}
	}
}

func TestComposeLayoutIndependentOfWorkers(t *testing.T) {
	heights := []int{300, 500, 100, 842, 20, 600, 250}

	var want [][]int
	for _, n := range []int{1, 2, 8} {
		w := &recordingWriter{}
		cfg := Config{ScratchRoot: t.TempDir(), MaxPageHeight: 842, Workers: n}
		pages, err := Compose(context.Background(), w, strips(heights...), cfg, "out.pdf")
		if err != nil {
			t.Fatalf("workers=%d: Compose() error: %v", n, err)
		}

		got := pageHeights(pages)
		if want == nil {
			want = got
			continue
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("workers=%d: layout %v, want %v", n, got, want)
		}
		for i, pl := range w.placed {
			if int(pl.h) != heights[i] {
				t.Errorf("workers=%d: placement %d has height %v, want %d", n, i, pl.h, heights[i])
			}
		}
	}
}

func TestCompositorRejectsPlaceAfterFinalize(t *testing.T) {
	dir, err := scratch.Acquire(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer dir.Release()

	c := NewCompositor(&recordingWriter{}, dir, Config{MaxPageHeight: 842})
	if err := c.Place(strip(10, 10)); err != nil {
		t.Fatalf("Place() error: %v", err)
	}
	pages, err := c.Finalize("out.pdf")
	if err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}
	if got := pageHeights(pages); !reflect.DeepEqual(got, [][]int{{10}}) {
		t.Errorf("Finalize() layout = %v, want [[10]]", got)
	}
	if err := c.Place(strip(10, 10)); err == nil {
		t.Error("Place after Finalize should fail")
	}
	if _, err := c.Finalize("out.pdf"); err == nil {
		t.Error("second Finalize should fail")
	}
}

func TestStateString(t *testing.T) {
	tests := map[state]string{
		awaitingStrip: "awaiting-strip",
		placing:       "placing",
		newPage:       "new-page",
		finalized:     "finalized",
		state(99):     "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("state(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}

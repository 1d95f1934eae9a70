package media

import (
	"errors"
	"image"
	"testing"
)

func TestThumbnailerFit(t *testing.T) {
	tests := []struct {
		name           string
		width, height  int
		box            int
		wantW, wantH   int
	}{
		{"Wide frame", 1280, 720, 595, 595, 334},
		{"Tall strip", 300, 1200, 595, 148, 595},
		{"Already small", 200, 100, 595, 200, 100},
		{"Very wide sliver", 1000, 10, 100, 100, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := NewThumbnailer(tt.box, false)
			out, err := th.Fit(image.NewGray(image.Rect(0, 0, tt.width, tt.height)))
			if err != nil {
				t.Fatalf("Fit() error: %v", err)
			}
			b := out.Bounds()
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("Fit() = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
			if b.Dx() > tt.box || b.Dy() > tt.box {
				t.Errorf("result %dx%d exceeds box %d", b.Dx(), b.Dy(), tt.box)
			}
		})
	}
}

func TestThumbnailerRejectsDegenerateStrip(t *testing.T) {
	th := NewThumbnailer(595, false)

	for _, r := range []image.Rectangle{image.Rect(0, 0, 640, 0), image.Rect(0, 0, 0, 10)} {
		_, err := th.Fit(image.NewGray(r))
		if !errors.Is(err, ErrDegenerateStrip) {
			t.Errorf("Fit(%v) error = %v, want ErrDegenerateStrip", r, err)
		}
	}
}

func TestThumbnailerFallsBackWithoutVips(t *testing.T) {
	if IsVipsAvailable() {
		t.Skip("libvips already initialized in this process")
	}
	th := NewThumbnailer(100, true)
	if th.useVips {
		t.Error("useVips should be disabled when libvips is not initialized")
	}
	if th.Box() != 100 {
		t.Errorf("Box() = %d, want 100", th.Box())
	}
}

package media

import (
	"image"
	"image/color"
	"testing"
)

// grayRows builds a gray image whose row y is filled with values[y]
func grayRows(t *testing.T, width int, values ...uint8) *image.Gray {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, width, len(values)))
	for y, v := range values {
		for x := 0; x < width; x++ {
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func rowValues(img *image.Gray) []uint8 {
	b := img.Bounds()
	out := make([]uint8, b.Dy())
	for y := 0; y < b.Dy(); y++ {
		out[y] = img.GrayAt(b.Min.X, b.Min.Y+y).Y
	}
	return out
}

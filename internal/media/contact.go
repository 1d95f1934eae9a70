package media

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// ContactSheet stacks strips top to bottom, left aligned, on a black canvas
// as wide as the widest strip.
func ContactSheet(strips []*image.Gray) (*image.NRGBA, error) {
	if len(strips) == 0 {
		return nil, errors.New("contact sheet: no strips")
	}

	width, height := 0, 0
	for _, s := range strips {
		b := s.Bounds()
		width = max(width, b.Dx())
		height += b.Dy()
	}

	sheet := imaging.New(width, height, color.Black)
	y := 0
	for _, s := range strips {
		b := s.Bounds()
		draw.Draw(sheet, image.Rect(0, y, b.Dx(), y+b.Dy()), s, b.Min, draw.Src)
		y += b.Dy()
	}

	return sheet, nil
}

// SaveContactSheet renders strips with ContactSheet and writes the result to
// path; the format follows the file extension.
func SaveContactSheet(strips []*image.Gray, path string) error {
	sheet, err := ContactSheet(strips)
	if err != nil {
		return err
	}
	if err := imaging.Save(sheet, path); err != nil {
		return fmt.Errorf("save contact sheet %s: %w", path, err)
	}
	return nil
}

package media

import (
	"image"
)

// BackgroundRows returns the indices of rows in which every sample is strictly
// below threshold. A single brighter sample keeps the whole row.
func BackgroundRows(img *image.Gray, threshold int) []int {
	b := img.Bounds()
	var rows []int

	for y := 0; y < b.Dy(); y++ {
		off := y * img.Stride
		row := img.Pix[off : off+b.Dx()]

		background := true
		for _, v := range row {
			if int(v) >= threshold {
				background = false
				break
			}
		}
		if background {
			rows = append(rows, y)
		}
	}

	return rows
}

// TrimBackground removes every background row from img in one pass and
// returns the result along with the number of rows removed. Surviving rows
// keep their order and the width is unchanged. When nothing qualifies the
// input image is returned.
func TrimBackground(img *image.Gray, threshold int) (*image.Gray, int) {
	rows := BackgroundRows(img, threshold)
	if len(rows) == 0 {
		return img, 0
	}

	b := img.Bounds()
	width := b.Dx()
	out := image.NewGray(image.Rect(0, 0, width, b.Dy()-len(rows)))

	// rows is sorted and indexes the original image
	next, dst := 0, 0
	for y := 0; y < b.Dy(); y++ {
		if next < len(rows) && rows[next] == y {
			next++
			continue
		}
		copy(out.Pix[dst*out.Stride:dst*out.Stride+width], img.Pix[y*img.Stride:y*img.Stride+width])
		dst++
	}

	return out, len(rows)
}

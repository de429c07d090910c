package model

import (
	"image"

	"github.com/nfnt/resize"
)

// Preprocess scales img to size x size and lays out its normalized RGB
// values channel by channel (CHW).
func Preprocess(img image.Image, size int) []float32 {
	resized := resize.Resize(uint(size), uint(size), img, resize.Lanczos3)

	bounds := resized.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	plane := width * height
	input := make([]float32, 3*plane)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := resized.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			i := y*width + x
			input[i] = float32(r) / 65535.0
			input[plane+i] = float32(g) / 65535.0
			input[2*plane+i] = float32(b) / 65535.0
		}
	}
	return input
}

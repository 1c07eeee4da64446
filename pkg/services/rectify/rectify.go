// Package rectify prepares receipt images: a grayscale/blur pass before OCR
// and a perspective correction of the detected text region afterwards.
package rectify

import (
	"image"

	"github.com/disintegration/imaging"
)

// Preprocess converts to grayscale and applies a light gaussian blur so text
// edges survive recompression.
func Preprocess(img image.Image) *image.NRGBA {
	return imaging.Blur(imaging.Grayscale(img), 1.0)
}

// Correct maps the axis-aligned bounding box of the detected text vertices
// onto a rectangle of matching size at the origin. Fewer than 4 vertices is
// a soft no-op: the input image is returned unchanged. The bounding box is a
// deliberate approximation of the text region; this is not a quadrilateral
// corner detector.
func Correct(img image.Image, vertices []image.Point) image.Image {
	if len(vertices) < 4 {
		return img
	}

	minX, minY := vertices[0].X, vertices[0].Y
	maxX, maxY := minX, minY
	for _, v := range vertices[1:] {
		if v.X < minX {
			minX = v.X
		}
		if v.X > maxX {
			maxX = v.X
		}
		if v.Y < minY {
			minY = v.Y
		}
		if v.Y > maxY {
			maxY = v.Y
		}
	}

	width := maxX - minX
	height := maxY - minY
	if width <= 0 || height <= 0 {
		return img
	}

	src := [4]point{
		{float64(minX), float64(minY)},
		{float64(maxX), float64(minY)},
		{float64(maxX), float64(maxY)},
		{float64(minX), float64(maxY)},
	}
	dst := [4]point{
		{0, 0},
		{float64(width), 0},
		{float64(width), float64(height)},
		{0, float64(height)},
	}

	// Warp by inverse mapping: for each output pixel, find its source
	// position under dst->src and sample there.
	back, err := perspectiveMatrix(dst, src)
	if err != nil {
		return img
	}

	in := imaging.Clone(img)
	out := image.NewNRGBA(image.Rect(0, 0, width, height))
	inBounds := in.Bounds()

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			sx, sy := back.apply(float64(x), float64(y))
			ix, iy := int(sx+0.5), int(sy+0.5)
			if ix < inBounds.Min.X || ix >= inBounds.Max.X || iy < inBounds.Min.Y || iy >= inBounds.Max.Y {
				continue
			}
			out.SetNRGBA(x, y, in.NRGBAAt(ix, iy))
		}
	}
	return out
}

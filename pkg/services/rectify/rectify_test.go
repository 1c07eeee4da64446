package rectify

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func TestCorrect_FewerThanFourVerticesIsIdentity(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	vertices := []image.Point{{1, 1}, {8, 1}, {8, 8}}

	got := Correct(img, vertices)
	if got != image.Image(img) {
		t.Fatal("expected the exact input image back for <4 vertices")
	}

	if got := Correct(img, nil); got != image.Image(img) {
		t.Fatal("expected the exact input image back for nil vertices")
	}
}

func TestCorrect_OutputMatchesBoundingBox(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 100, 80))
	vertices := []image.Point{{10, 5}, {90, 5}, {90, 70}, {10, 70}, {40, 30}}

	got := Correct(img, vertices)
	bounds := got.Bounds()
	if bounds.Dx() != 80 || bounds.Dy() != 65 {
		t.Fatalf("expected 80x65 output, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestCorrect_TranslatesBoundingBoxToOrigin(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	mark := color.NRGBA{R: 255, A: 255}
	img.SetNRGBA(7, 9, mark)

	vertices := []image.Point{{4, 6}, {15, 6}, {15, 17}, {4, 17}}
	got := Correct(img, vertices)

	nrgba, ok := got.(*image.NRGBA)
	if !ok {
		t.Fatalf("expected *image.NRGBA, got %T", got)
	}
	if c := nrgba.NRGBAAt(3, 3); c != mark {
		t.Fatalf("expected mark at (3,3), got %v", c)
	}
}

func TestCorrect_DegenerateBoxIsIdentity(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	vertices := []image.Point{{3, 3}, {3, 3}, {3, 9}, {3, 9}}
	if got := Correct(img, vertices); got != image.Image(img) {
		t.Fatal("zero-width bounding box must be a no-op")
	}
}

func TestPerspectiveMatrix_MapsCorners(t *testing.T) {
	src := [4]point{{10, 5}, {90, 5}, {90, 70}, {10, 70}}
	dst := [4]point{{0, 0}, {80, 0}, {80, 65}, {0, 65}}

	h, err := perspectiveMatrix(src, dst)
	if err != nil {
		t.Fatalf("perspectiveMatrix: %v", err)
	}
	for i := 0; i < 4; i++ {
		x, y := h.apply(src[i].x, src[i].y)
		if math.Abs(x-dst[i].x) > 1e-6 || math.Abs(y-dst[i].y) > 1e-6 {
			t.Fatalf("corner %d mapped to (%f,%f), expected (%f,%f)", i, x, y, dst[i].x, dst[i].y)
		}
	}
}

func TestPreprocess_KeepsDimensions(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 33, 21))
	got := Preprocess(img)
	if got.Bounds().Dx() != 33 || got.Bounds().Dy() != 21 {
		t.Fatalf("unexpected dimensions %v", got.Bounds())
	}
}

package scan

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"nota-scan/pkg/apperr"
	"nota-scan/pkg/services/ocr"
)

type fakeDetector struct {
	annotation *ocr.Annotation
	err        error
	calls      int
}

func (f *fakeDetector) DetectText(ctx context.Context, imageData []byte) (*ocr.Annotation, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.annotation, nil
}

type fakeStore struct {
	urls  []string
	errAt int // 1-based upload call that fails; 0 disables
	calls int
}

func (f *fakeStore) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	f.calls++
	if f.errAt > 0 && f.calls == f.errAt {
		return "", apperr.External("storage", errors.New("bucket unreachable"))
	}
	url := fmt.Sprintf("https://storage.googleapis.com/receipts/obj-%d", f.calls)
	f.urls = append(f.urls, url)
	return url, nil
}

func testImageBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 40, 30)), imaging.JPEG); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(bytes.NewBuffer(nil))
	return logger
}

func TestProcess_HappyPath(t *testing.T) {
	detector := &fakeDetector{annotation: &ocr.Annotation{
		Text:     "VALOR TOTAL 199,90 em 05/01/2025",
		Vertices: []image.Point{{2, 2}, {30, 2}, {30, 20}, {2, 20}},
	}}
	store := &fakeStore{}
	o := NewOrchestrator(detector, store, testLogger())

	draft, err := o.Process(context.Background(), testImageBytes(t), "image/jpeg")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if draft.Valor != "199,90" {
		t.Fatalf("expected valor 199,90, got %s", draft.Valor)
	}
	if draft.Data != "05/01/2025" {
		t.Fatalf("expected data 05/01/2025, got %s", draft.Data)
	}
	if draft.ImagemOriginalURL != store.urls[0] || draft.ImagemProcessadaURL != store.urls[1] {
		t.Fatalf("draft URLs do not match uploads: %+v", draft)
	}
	if store.calls != 2 {
		t.Fatalf("expected 2 uploads, got %d", store.calls)
	}
}

func TestProcess_RejectsContentTypeBeforeAnyCall(t *testing.T) {
	detector := &fakeDetector{}
	store := &fakeStore{}
	o := NewOrchestrator(detector, store, testLogger())

	_, err := o.Process(context.Background(), testImageBytes(t), "application/pdf")
	var verr *apperr.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if detector.calls != 0 || store.calls != 0 {
		t.Fatal("no external call may happen for an invalid content type")
	}
}

func TestProcess_NoTextIsSoftFailure(t *testing.T) {
	detector := &fakeDetector{annotation: &ocr.Annotation{}}
	store := &fakeStore{}
	o := NewOrchestrator(detector, store, testLogger())

	draft, err := o.Process(context.Background(), testImageBytes(t), "image/png")
	if err != nil {
		t.Fatalf("no text must not abort the request: %v", err)
	}
	if draft.Valor != "0,00" || draft.Data != "" {
		t.Fatalf("expected zero draft, got %+v", draft)
	}
	if draft.ImagemProcessadaURL == "" {
		t.Fatal("processed image must still be uploaded")
	}
}

func TestProcess_OCRFailureShortCircuits(t *testing.T) {
	detector := &fakeDetector{err: apperr.External("vision", errors.New("quota"))}
	store := &fakeStore{}
	o := NewOrchestrator(detector, store, testLogger())

	_, err := o.Process(context.Background(), testImageBytes(t), "image/jpeg")
	var eerr *apperr.ExternalServiceError
	if !errors.As(err, &eerr) {
		t.Fatalf("expected ExternalServiceError, got %v", err)
	}
	if store.calls != 1 {
		t.Fatalf("expected only the original upload before the OCR failure, got %d", store.calls)
	}
}

func TestProcess_UploadFailureShortCircuits(t *testing.T) {
	detector := &fakeDetector{annotation: &ocr.Annotation{Text: "VALOR TOTAL 10,00"}}
	store := &fakeStore{errAt: 1}
	o := NewOrchestrator(detector, store, testLogger())

	_, err := o.Process(context.Background(), testImageBytes(t), "image/jpeg")
	if err == nil {
		t.Fatal("expected upload failure to surface")
	}
	if detector.calls != 0 {
		t.Fatal("OCR must not run after the original upload failed")
	}
}

func TestProcess_UndecodableImage(t *testing.T) {
	o := NewOrchestrator(&fakeDetector{}, &fakeStore{}, testLogger())
	_, err := o.Process(context.Background(), []byte("not an image"), "image/jpeg")
	var verr *apperr.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

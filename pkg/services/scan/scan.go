// Package scan sequences the receipt pipeline: upload the original, detect
// text, extract fields, rectify the image, upload the processed copy. The
// result is a draft for the user to review; nothing is persisted here.
package scan

import (
	"bytes"
	"context"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"nota-scan/pkg/apperr"
	"nota-scan/pkg/services/extract"
	"nota-scan/pkg/services/ocr"
	"nota-scan/pkg/services/rectify"
)

// TextDetector is the external OCR call.
type TextDetector interface {
	DetectText(ctx context.Context, imageData []byte) (*ocr.Annotation, error)
}

// ObjectStore uploads opaque blobs and returns their URLs.
type ObjectStore interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
}

// Draft is the reviewable result of one processed receipt. It lives
// client-side between process and confirm; the server keeps nothing.
type Draft struct {
	Valor               string `json:"valor"`
	Data                string `json:"data"`
	ImagemOriginalURL   string `json:"imagem_original_url"`
	ImagemProcessadaURL string `json:"imagem_processada_url"`
}

var acceptedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

type Orchestrator struct {
	detector TextDetector
	store    ObjectStore
	logger   *logrus.Logger
}

func NewOrchestrator(detector TextDetector, store ObjectStore, logger *logrus.Logger) *Orchestrator {
	return &Orchestrator{detector: detector, store: store, logger: logger}
}

// Process runs the pipeline strictly in order, short-circuiting on the
// first hard failure. OCR finding no text is a soft failure: the draft
// comes back with a zero amount and empty date instead of an error. A blob
// uploaded before a later step fails is left behind; the reject flow is the
// cleanup path once the client abandons the draft.
func (o *Orchestrator) Process(ctx context.Context, data []byte, contentType string) (*Draft, error) {
	if !acceptedImageTypes[contentType] {
		return nil, apperr.Validation("unsupported image type %q", contentType)
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperr.Validation("cannot decode image: %v", err)
	}

	originalURL, err := o.store.Upload(ctx, data, contentType)
	if err != nil {
		return nil, err
	}

	annotation, err := o.detector.DetectText(ctx, data)
	if err != nil {
		return nil, err
	}
	if annotation.Text == "" {
		o.logger.WithField("original_url", originalURL).Info("[scan] no text detected")
	}

	fields := extract.Extract(annotation.Text)

	// Correct is an identity pass-through when OCR returned too little
	// geometry, so the processed upload always happens.
	processed := rectify.Correct(rectify.Preprocess(img), annotation.Vertices)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, processed, imaging.JPEG); err != nil {
		return nil, fmt.Errorf("encode processed image: %w", err)
	}
	processedURL, err := o.store.Upload(ctx, buf.Bytes(), "image/jpeg")
	if err != nil {
		return nil, err
	}

	o.logger.WithFields(logrus.Fields{
		"valor":         fields.Valor,
		"data":          fields.Data,
		"original_url":  originalURL,
		"processed_url": processedURL,
	}).Info("[scan] draft ready")

	return &Draft{
		Valor:               fields.Valor,
		Data:                fields.Data,
		ImagemOriginalURL:   originalURL,
		ImagemProcessadaURL: processedURL,
	}, nil
}

package ocr

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"time"

	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"

	"nota-scan/pkg/apperr"
)

const featureDocumentTextDetection = "DOCUMENT_TEXT_DETECTION"

// Annotation is the OCR result: the full recognized text plus the bounding
// polygon vertices of every detected block. Vertices may be empty when the
// service found no text; callers must treat that as a soft failure.
type Annotation struct {
	Text     string
	Vertices []image.Point
}

// Client performs document text detection against the Vision endpoint.
// Calls are billed and not assumed safe to retry, so no retry is attempted.
type Client struct {
	svc     *vision.Service
	timeout time.Duration
}

// NewClient builds a Vision client. An empty apiKey is allowed so tests can
// point the client at a fake endpoint via opts.
func NewClient(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Client, error) {
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	svc, err := vision.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("vision.NewService: %w", err)
	}
	return &Client{svc: svc, timeout: 30 * time.Second}, nil
}

// DetectText runs one synchronous full-document text detection over the
// image bytes. A response without text yields an empty annotation, not an
// error.
func (c *Client) DetectText(ctx context.Context, imageData []byte) (*Annotation, error) {
	if len(imageData) == 0 {
		return nil, apperr.Validation("image is empty")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{
			{
				Image:    &vision.Image{Content: base64.StdEncoding.EncodeToString(imageData)},
				Features: []*vision.Feature{{Type: featureDocumentTextDetection}},
			},
		},
	}

	resp, err := c.svc.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return nil, apperr.External("vision", err)
	}
	if len(resp.Responses) == 0 {
		return nil, apperr.External("vision", errors.New("empty annotate response"))
	}

	r := resp.Responses[0]
	if r.Error != nil {
		return nil, apperr.External("vision", fmt.Errorf("annotate failed: %s", r.Error.Message))
	}

	ann := &Annotation{}
	full := r.FullTextAnnotation
	if full == nil || len(full.Pages) == 0 {
		return ann, nil
	}

	ann.Text = full.Text
	for _, block := range full.Pages[0].Blocks {
		if block.BoundingBox == nil {
			continue
		}
		for _, v := range block.BoundingBox.Vertices {
			ann.Vertices = append(ann.Vertices, image.Point{X: int(v.X), Y: int(v.Y)})
		}
	}
	return ann, nil
}

package mock

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg" // register decoders for DecodeConfig
	_ "image/png"

	"github.com/retroconnect/idverify/internal/provider"
)

// Provider implements provider.VisionProvider for tests and local development.
// Every image gets one centered face covering half of the frame.
type Provider struct {
	SelfieConfidence float64
	IDConfidence     float64
	IDText           string
	Err              error
}

// New returns a provider whose faces always clear the primary check
func New() *Provider {
	return &Provider{
		SelfieConfidence: 0.99,
		IDConfidence:     0.98,
	}
}

func (p *Provider) Name() string {
	return "mock"
}

// Annotate returns the configured confidences and text
func (p *Provider) Annotate(ctx context.Context, req provider.AnnotateRequest) (*provider.Annotation, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	if len(req.Selfie) == 0 || len(req.IDFront) == 0 {
		return nil, provider.ErrInvalidImage
	}

	annotation := &provider.Annotation{IDText: p.IDText}
	if p.SelfieConfidence > 0 {
		annotation.SelfieFace = centeredFace(req.Selfie, p.SelfieConfidence)
	}
	if p.IDConfidence > 0 {
		annotation.IDFace = centeredFace(req.IDFront, p.IDConfidence)
	}
	return annotation, nil
}

// DetectFaces returns a single centered face
func (p *Provider) DetectFaces(ctx context.Context, image []byte) ([]provider.DetectedFace, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	if len(image) == 0 {
		return nil, provider.ErrInvalidImage
	}
	return []provider.DetectedFace{*centeredFace(image, p.SelfieConfidence)}, nil
}

// centeredFace falls back to a unit box when the bytes are not a decodable image.
func centeredFace(img []byte, confidence float64) *provider.DetectedFace {
	width, height := 1.0, 1.0
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(img)); err == nil {
		width, height = float64(cfg.Width), float64(cfg.Height)
	}

	return &provider.DetectedFace{
		BoundingBox: provider.BoundingBox{
			X:      width / 4,
			Y:      height / 4,
			Width:  width / 2,
			Height: height / 2,
		},
		Confidence: confidence,
	}
}

var _ provider.VisionProvider = (*Provider)(nil)

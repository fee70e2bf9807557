package googlevision

import (
	"context"
	"encoding/base64"
	"fmt"
	"math"
	"strconv"

	"github.com/retroconnect/idverify/internal/audit"
	"github.com/retroconnect/idverify/internal/provider"
)

// maxImageSize is the request payload limit for inline images (10MB after encoding)
const maxImageSize = 7 * 1024 * 1024

// maxDetectedFaces caps DetectFaces results.
const maxDetectedFaces = 10

// Provider implements provider.VisionProvider on the Google Cloud Vision REST API
type Provider struct {
	client      *Client
	auditLogger audit.Logger
}

// ProviderOption defines optional configuration for Provider
type ProviderOption func(*Provider)

// WithAuditLogger sets the audit logger for the provider
func WithAuditLogger(logger audit.Logger) ProviderOption {
	return func(p *Provider) {
		p.auditLogger = logger
	}
}

var _ provider.VisionProvider = (*Provider)(nil)

// NewProvider creates a provider backed by a new HTTP client
func NewProvider(cfg Config, opts ...ProviderOption) *Provider {
	p := &Provider{client: NewClient(cfg)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Name() string {
	return providerName
}

// Annotate performs one batched call: face detection on both images and
// text detection on the ID image.
func (p *Provider) Annotate(ctx context.Context, req provider.AnnotateRequest) (*provider.Annotation, error) {
	if err := validateImage(req.Selfie); err != nil {
		return nil, fmt.Errorf("selfie: %w", err)
	}
	if err := validateImage(req.IDFront); err != nil {
		return nil, fmt.Errorf("id front: %w", err)
	}

	faceOnly := Feature{Type: FeatureFaceDetection, MaxResults: 1}
	requests := []AnnotateImageRequest{
		{
			Image:    Image{Content: base64.StdEncoding.EncodeToString(req.Selfie)},
			Features: []Feature{faceOnly},
		},
		{
			Image:    Image{Content: base64.StdEncoding.EncodeToString(req.IDFront)},
			Features: []Feature{faceOnly, {Type: FeatureTextDetection}},
		},
	}

	resp, err := p.client.Annotate(ctx, requests)
	if err != nil {
		p.logAudit(ctx, audit.EventImagesAnnotated, false, err, nil)
		return nil, fmt.Errorf("annotate images: %w", err)
	}

	selfie, id := resp.Responses[0], resp.Responses[1]
	annotation := &provider.Annotation{
		SelfieFace: provider.FirstFace(toFaces(selfie.FaceAnnotations)),
		IDFace:     provider.FirstFace(toFaces(id.FaceAnnotations)),
		IDText:     extractText(id),
	}

	p.logAudit(ctx, audit.EventImagesAnnotated, true, nil, map[string]string{
		"selfie_confidence": strconv.FormatFloat(annotation.SelfieConfidence(), 'f', 4, 64),
		"id_confidence":     strconv.FormatFloat(annotation.IDConfidence(), 'f', 4, 64),
		"text_length":       strconv.Itoa(len(annotation.IDText)),
	})

	return annotation, nil
}

// DetectFaces locates faces in a single image
func (p *Provider) DetectFaces(ctx context.Context, image []byte) ([]provider.DetectedFace, error) {
	if err := validateImage(image); err != nil {
		return nil, err
	}

	resp, err := p.client.Annotate(ctx, []AnnotateImageRequest{{
		Image:    Image{Content: base64.StdEncoding.EncodeToString(image)},
		Features: []Feature{{Type: FeatureFaceDetection, MaxResults: maxDetectedFaces}},
	}})
	if err != nil {
		p.logAudit(ctx, audit.EventFacesDetected, false, err, nil)
		return nil, fmt.Errorf("detect faces: %w", err)
	}

	faces := toFaces(resp.Responses[0].FaceAnnotations)
	p.logAudit(ctx, audit.EventFacesDetected, true, nil, map[string]string{
		"faces_count": strconv.Itoa(len(faces)),
	})
	return faces, nil
}

func (p *Provider) logAudit(ctx context.Context, eventType audit.EventType, success bool, err error, metadata map[string]string) {
	if p.auditLogger == nil {
		return
	}

	event := audit.Event{
		EventType: eventType,
		Source:    providerName,
		Success:   success,
		Metadata:  metadata,
	}
	if err != nil {
		event.Error = err.Error()
	}

	_ = p.auditLogger.Log(ctx, event)
}

func validateImage(image []byte) error {
	if len(image) == 0 {
		return provider.ErrInvalidImage
	}
	if len(image) > maxImageSize {
		return fmt.Errorf("%w: image too large (%d bytes, maximum %d)", provider.ErrInvalidImage, len(image), maxImageSize)
	}
	return nil
}

func toFaces(annotations []FaceAnnotation) []provider.DetectedFace {
	faces := make([]provider.DetectedFace, 0, len(annotations))
	for _, a := range annotations {
		faces = append(faces, provider.DetectedFace{
			BoundingBox: polyToBox(a.BoundingPoly),
			Confidence:  a.DetectionConfidence,
		})
	}
	return faces
}

func polyToBox(poly BoundingPoly) provider.BoundingBox {
	if len(poly.Vertices) == 0 {
		return provider.BoundingBox{}
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, v := range poly.Vertices {
		minX = math.Min(minX, v.X)
		minY = math.Min(minY, v.Y)
		maxX = math.Max(maxX, v.X)
		maxY = math.Max(maxY, v.Y)
	}

	return provider.BoundingBox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// extractText prefers the structured full text and falls back to the first
// text annotation, which holds the whole detected block.
func extractText(r AnnotateImageResponse) string {
	if r.FullTextAnnotation != nil && r.FullTextAnnotation.Text != "" {
		return r.FullTextAnnotation.Text
	}
	if len(r.TextAnnotations) > 0 {
		return r.TextAnnotations[0].Description
	}
	return ""
}

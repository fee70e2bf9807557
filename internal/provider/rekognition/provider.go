package rekognition

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for DecodeConfig
	_ "image/png"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"golang.org/x/sync/errgroup"

	"github.com/retroconnect/idverify/internal/audit"
	"github.com/retroconnect/idverify/internal/provider"
)

const (
	// maxImageSize is the maximum image size supported by AWS Rekognition (5MB)
	maxImageSize = 5 * 1024 * 1024
	// minImageSize is the minimum image size for valid processing
	minImageSize = 100
)

// Provider implements provider.VisionProvider using AWS Rekognition.
// Rekognition has no batch endpoint, so Annotate issues its three calls
// concurrently and joins them.
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

// Ensure Provider implements provider.VisionProvider interface at compile time
var _ provider.VisionProvider = (*Provider)(nil)

// NewProvider creates a new Rekognition provider
func NewProvider(ctx context.Context, cfg Config, opts ...ProviderOption) (*Provider, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create rekognition client: %w", err)
	}
	return NewProviderWithClient(client, opts...), nil
}

// NewProviderWithClient builds a provider on an existing client
func NewProviderWithClient(client *Client, opts ...ProviderOption) *Provider {
	p := &Provider{client: client}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Name() string {
	return providerName
}

// logAudit logs an audit event if an audit logger is configured
// Audit failure does not affect the operation (fire-and-forget)
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

// validateImage checks if image data is valid for Rekognition processing
func validateImage(image []byte) error {
	if len(image) == 0 {
		return provider.ErrInvalidImage
	}
	if len(image) < minImageSize {
		return fmt.Errorf("%w: image too small (%d bytes, minimum %d)", provider.ErrInvalidImage, len(image), minImageSize)
	}
	if len(image) > maxImageSize {
		return fmt.Errorf("%w: image too large (%d bytes, maximum %d)", provider.ErrInvalidImage, len(image), maxImageSize)
	}
	return nil
}

// Annotate detects faces on both images and text on the ID image
func (p *Provider) Annotate(ctx context.Context, req provider.AnnotateRequest) (*provider.Annotation, error) {
	if err := validateImage(req.Selfie); err != nil {
		return nil, fmt.Errorf("selfie: %w", err)
	}
	if err := validateImage(req.IDFront); err != nil {
		return nil, fmt.Errorf("id front: %w", err)
	}

	var (
		selfieFaces []provider.DetectedFace
		idFaces     []provider.DetectedFace
		idText      string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		faces, err := p.detectFaces(gctx, req.Selfie)
		selfieFaces = faces
		return err
	})
	g.Go(func() error {
		faces, err := p.detectFaces(gctx, req.IDFront)
		idFaces = faces
		return err
	})
	g.Go(func() error {
		text, err := p.detectText(gctx, req.IDFront)
		idText = text
		return err
	})

	if err := g.Wait(); err != nil {
		p.logAudit(ctx, audit.EventImagesAnnotated, false, err, map[string]string{
			"selfie_size": strconv.Itoa(len(req.Selfie)),
			"id_size":     strconv.Itoa(len(req.IDFront)),
		})
		return nil, err
	}

	annotation := &provider.Annotation{
		SelfieFace: provider.FirstFace(selfieFaces),
		IDFace:     provider.FirstFace(idFaces),
		IDText:     idText,
	}

	p.logAudit(ctx, audit.EventImagesAnnotated, true, nil, map[string]string{
		"selfie_confidence": strconv.FormatFloat(annotation.SelfieConfidence(), 'f', 4, 64),
		"id_confidence":     strconv.FormatFloat(annotation.IDConfidence(), 'f', 4, 64),
		"text_length":       strconv.Itoa(len(idText)),
	})

	return annotation, nil
}

// DetectFaces detects faces in an image using AWS Rekognition DetectFaces API
// Returns an empty slice if no faces are detected (not an error)
func (p *Provider) DetectFaces(ctx context.Context, image []byte) ([]provider.DetectedFace, error) {
	if err := validateImage(image); err != nil {
		return nil, err
	}

	faces, err := p.detectFaces(ctx, image)
	if err != nil {
		p.logAudit(ctx, audit.EventFacesDetected, false, err, map[string]string{
			"image_size": strconv.Itoa(len(image)),
		})
		return nil, err
	}

	p.logAudit(ctx, audit.EventFacesDetected, true, nil, map[string]string{
		"faces_count": strconv.Itoa(len(faces)),
		"image_size":  strconv.Itoa(len(image)),
	})
	return faces, nil
}

// detectFaces converts Rekognition's ratio boxes to pixels and its 0-100
// confidence to 0-1.
func (p *Provider) detectFaces(ctx context.Context, img []byte) ([]provider.DetectedFace, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}
	width, height := float64(cfg.Width), float64(cfg.Height)

	output, err := p.client.api.DetectFaces(ctx, &rekognition.DetectFacesInput{
		Image:      &types.Image{Bytes: img},
		Attributes: []types.Attribute{types.AttributeDefault},
	})
	if err != nil {
		return nil, translateError("detect faces", err)
	}

	faces := make([]provider.DetectedFace, 0, len(output.FaceDetails))
	for _, detail := range output.FaceDetails {
		face := provider.DetectedFace{}
		if detail.Confidence != nil {
			face.Confidence = float64(*detail.Confidence) / 100.0
		}
		if box := detail.BoundingBox; box != nil {
			face.BoundingBox = provider.BoundingBox{
				X:      float64(deref(box.Left)) * width,
				Y:      float64(deref(box.Top)) * height,
				Width:  float64(deref(box.Width)) * width,
				Height: float64(deref(box.Height)) * height,
			}
		}
		faces = append(faces, face)
	}
	return faces, nil
}

// detectText joins the detected LINE entries in reading order.
func (p *Provider) detectText(ctx context.Context, img []byte) (string, error) {
	output, err := p.client.api.DetectText(ctx, &rekognition.DetectTextInput{
		Image: &types.Image{Bytes: img},
	})
	if err != nil {
		return "", translateError("detect text", err)
	}

	lines := make([]string, 0, len(output.TextDetections))
	for _, det := range output.TextDetections {
		if det.Type != types.TextTypesLine || det.DetectedText == nil {
			continue
		}
		if det.Confidence != nil && *det.Confidence < p.client.config.TextMinConfidence {
			continue
		}
		lines = append(lines, *det.DetectedText)
	}
	return strings.Join(lines, "\n"), nil
}

func deref(v *float32) float32 {
	if v == nil {
		return 0
	}
	return *v
}

package provider

import (
	"context"
	"errors"
)

// VisionProvider annotates the images of a verification attempt.
type VisionProvider interface {
	// Annotate runs face detection on both images and text detection on the
	// ID image. A missing face or missing text is not an error.
	Annotate(ctx context.Context, req AnnotateRequest) (*Annotation, error)

	// DetectFaces locates faces in a single image. Bounding boxes are in pixels.
	DetectFaces(ctx context.Context, image []byte) ([]DetectedFace, error)

	// Name identifies the backend in logs and audit events.
	Name() string
}

// AnnotateRequest carries the raw image bytes of one attempt.
type AnnotateRequest struct {
	Selfie  []byte
	IDFront []byte
}

// Annotation is the combined result of one batched vision call.
type Annotation struct {
	SelfieFace *DetectedFace `json:"selfie_face,omitempty"`
	IDFace     *DetectedFace `json:"id_face,omitempty"`
	IDText     string        `json:"id_text"`
}

// SelfieConfidence returns 0 when no face was found.
func (a *Annotation) SelfieConfidence() float64 {
	if a == nil || a.SelfieFace == nil {
		return 0
	}
	return a.SelfieFace.Confidence
}

// IDConfidence returns 0 when no face was found.
func (a *Annotation) IDConfidence() float64 {
	if a == nil || a.IDFace == nil {
		return 0
	}
	return a.IDFace.Confidence
}

// HasText reports whether OCR found any text on the document.
func (a *Annotation) HasText() bool {
	return a != nil && a.IDText != ""
}

// DetectedFace represents a detected face in the image
type DetectedFace struct {
	BoundingBox BoundingBox `json:"bounding_box"`
	// Confidence is normalized to 0..1 regardless of backend.
	Confidence float64 `json:"confidence"`
}

// BoundingBox represents the face area in the image, in pixels
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

var (
	// ErrInvalidImage is returned for empty or oversized payloads.
	ErrInvalidImage = errors.New("invalid image")
	// ErrInvalidResponse is returned when a backend answers with an unexpected shape.
	ErrInvalidResponse = errors.New("invalid vision response")
)

// FirstFace returns the first face, or nil.
func FirstFace(faces []DetectedFace) *DetectedFace {
	if len(faces) == 0 {
		return nil
	}
	f := faces[0]
	return &f
}

// ServiceError is a failure reported by the remote vision service itself.
// Message is the text the service returned and is safe to relay.
type ServiceError struct {
	Provider   string
	StatusCode int
	Code       string
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

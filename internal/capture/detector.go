package capture

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/retroconnect/idverify/internal/framing"
	"github.com/retroconnect/idverify/internal/provider"
)

// VisionDetector adapts a vision provider to the FaceDetector port so the
// enrollment CLI can frame selfies without a local model.
type VisionDetector struct {
	provider provider.VisionProvider
}

func NewVisionDetector(p provider.VisionProvider) *VisionDetector {
	return &VisionDetector{provider: p}
}

func (d *VisionDetector) Load(_ context.Context) error {
	if d.provider == nil {
		return errors.New("vision provider not configured")
	}
	return nil
}

func (d *VisionDetector) Detect(ctx context.Context, frame image.Image) (*framing.Rect, error) {
	payload, err := EncodeJPEG(frame)
	if err != nil {
		return nil, err
	}

	faces, err := d.provider.DetectFaces(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}

	face := provider.FirstFace(faces)
	if face == nil {
		return nil, nil
	}
	return &framing.Rect{
		X:      face.BoundingBox.X,
		Y:      face.BoundingBox.Y,
		Width:  face.BoundingBox.Width,
		Height: face.BoundingBox.Height,
	}, nil
}

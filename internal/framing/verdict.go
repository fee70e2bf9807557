package framing

import "time"

const (
	// CenterToleranceRatio bounds the face center offset as a share of the guide radius.
	CenterToleranceRatio = 0.25
	// SizeRatio is the minimum face extent as a share of the guide diameter.
	SizeRatio = 0.5
	// TickInterval is the fixed detection polling period.
	TickInterval = 150 * time.Millisecond
)

// Border is the colour of the guide ring.
type Border string

const (
	BorderNeutral Border = "blue"
	BorderPass    Border = "green"
)

// Instruction texts shown under the guide.
const (
	InstructionLoading   = "Loading AI models..."
	InstructionPosition  = "Position your face in the circle"
	InstructionCapturing = "Face detected! Capturing..."
	InstructionReframe   = "Position your face correctly within the circle"
	InstructionNoFace    = "No face detected. Please ensure good lighting and clear view."
	InstructionCaptured  = "Picture taken!"
	InstructionFailed    = "Could not start camera. Please check permissions and ensure the face detector is loaded."
)

// Verdict is the per-tick framing judgment.
type Verdict struct {
	Detected bool
	// FaceBoxDisplay is in absolute screen coordinates.
	FaceBoxDisplay Rect
	Centered       bool
	WideEnough     bool
	TallEnough     bool
	Pass           bool
	// Offset is the distance between the face center and the guide center.
	Offset float64
}

// Evaluate judges a single detection. A nil face yields a failing verdict
// with Detected unset.
func Evaluate(face *Rect, vp Viewport, guide Guide) Verdict {
	if face == nil {
		return Verdict{}
	}

	box := vp.ToScreen(*face)
	radius := guide.Radius()
	offset := Distance(box.Center(), guide.Center())
	minSize := radius * 2 * SizeRatio

	v := Verdict{
		Detected:       true,
		FaceBoxDisplay: box,
		Offset:         offset,
		Centered:       offset < radius*CenterToleranceRatio,
		WideEnough:     box.Width >= minSize,
		TallEnough:     box.Height >= minSize,
	}
	v.Pass = v.Centered && v.WideEnough && v.TallEnough
	return v
}

// Instruction returns the guidance text for this verdict.
func (v Verdict) Instruction() string {
	switch {
	case !v.Detected:
		return InstructionNoFace
	case v.Pass:
		return InstructionCapturing
	default:
		return InstructionReframe
	}
}

// Border returns the guide ring colour for this verdict.
func (v Verdict) Border() Border {
	if v.Pass {
		return BorderPass
	}
	return BorderNeutral
}

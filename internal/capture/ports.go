// Package capture drives the client side of an enrollment: the selfie
// auto-capture loop and the front/back ID capture flow. Devices, detectors
// and timers are injected so both flows run headless.
package capture

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/retroconnect/idverify/internal/framing"
)

var (
	// ErrCameraNotOpen is returned when a frame is requested from a released camera.
	ErrCameraNotOpen = errors.New("camera not open")
	// ErrNoFrame is returned when the camera has no frame to hand out.
	ErrNoFrame = errors.New("no frame available")
	// ErrNotCapturing is returned when Capture is called outside an active stage.
	ErrNotCapturing = errors.New("capture not in progress")
	// ErrCaptureClosed ends a wait that was cut short by Close.
	ErrCaptureClosed = errors.New("capture closed")
)

// Camera is a video source.
type Camera interface {
	Open(ctx context.Context) error
	// Ready reports whether frames with real dimensions are flowing.
	Ready() bool
	// Frame returns the current frame at native resolution.
	Frame() (image.Image, error)
	Close() error
}

// FaceDetector locates the most prominent face in a frame.
type FaceDetector interface {
	Load(ctx context.Context) error
	// Detect returns nil with no error when no face is found.
	Detect(ctx context.Context, frame image.Image) (*framing.Rect, error)
}

// Overlay renders the per-tick verdict on top of the preview.
type Overlay interface {
	Draw(v framing.Verdict)
	Clear()
}

// Ticker is the subset of time.Ticker the polling loop needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates tickers; tests substitute a manual one.
type TickerFactory func(d time.Duration) Ticker

type timeTicker struct {
	t *time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker is the default TickerFactory.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// Screen is the on-screen layout of the preview and the guide circle.
type Screen struct {
	Displayed framing.Size
	Offset    framing.Point
	Guide     framing.Guide
}

// Viewport combines the screen layout with the native size of a frame.
func (s Screen) Viewport(frame image.Image) framing.Viewport {
	b := frame.Bounds()
	return framing.Viewport{
		Native:    framing.Size{Width: float64(b.Dx()), Height: float64(b.Dy())},
		Displayed: s.Displayed,
		Offset:    s.Offset,
	}
}

type noopOverlay struct{}

func (noopOverlay) Draw(framing.Verdict) {}
func (noopOverlay) Clear()               {}

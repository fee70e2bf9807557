package capture

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/retroconnect/idverify/internal/domain"
)

// BackCaptureDelay is the pause between the front capture and reopening the
// camera for the back of the document.
const BackCaptureDelay = 3 * time.Second

// Stage of an ID capture.
type Stage string

const (
	StageFront Stage = "front"
	StageBack  Stage = "back"
	StageDone  Stage = "done"
)

// IDImagePair holds the captured sides as JPEG data URIs.
type IDImagePair struct {
	Front *string
	Back  *string
}

// Timer is a cancellable pending callback.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d, like time.AfterFunc.
type AfterFunc func(d time.Duration, f func()) Timer

func defaultAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// IDOption configures an IDCapture.
type IDOption func(*IDCapture)

// WithBackDelay overrides BackCaptureDelay.
func WithBackDelay(d time.Duration) IDOption {
	return func(c *IDCapture) {
		c.backDelay = d
	}
}

// WithAfterFunc replaces the timer used for the back stage.
func WithAfterFunc(f AfterFunc) IDOption {
	return func(c *IDCapture) {
		c.afterFunc = f
	}
}

// WithIDLogger sets the capture logger.
func WithIDLogger(l *slog.Logger) IDOption {
	return func(c *IDCapture) {
		c.logger = l
	}
}

// IDCapture photographs the front and, except for passports, the back of an
// identity document.
type IDCapture struct {
	camera    Camera
	idType    domain.IDType
	backDelay time.Duration
	afterFunc AfterFunc
	logger    *slog.Logger

	mu         sync.Mutex
	stage      Stage
	pair       IDImagePair
	cameraOpen bool
	pending    Timer
	back       *backWait
	// closes counts Close calls; a back-stage callback scheduled before
	// the latest Close must not keep the camera it opened.
	closes uint64
}

// backWait is finished once per back stage with the reopen outcome.
type backWait struct {
	done chan struct{}
	once sync.Once
	err  error
}

func newBackWait() *backWait {
	return &backWait{done: make(chan struct{})}
}

func (w *backWait) finish(err error) {
	w.once.Do(func() {
		w.err = err
		close(w.done)
	})
}

// NewIDCapture prepares a capture for the given document type.
func NewIDCapture(camera Camera, idType domain.IDType, opts ...IDOption) *IDCapture {
	c := &IDCapture{
		camera:    camera,
		idType:    idType,
		backDelay: BackCaptureDelay,
		afterFunc: defaultAfterFunc,
		logger:    slog.Default(),
		stage:     StageFront,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "id_capture", "id_type", string(idType))
	return c
}

// StartScan clears both images and opens the camera for the front.
func (c *IDCapture) StartScan(ctx context.Context) error {
	c.Close()

	c.mu.Lock()
	c.pair = IDImagePair{}
	c.stage = StageFront
	c.back = newBackWait()
	c.mu.Unlock()

	if err := c.camera.Open(ctx); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}

	c.mu.Lock()
	c.cameraOpen = true
	c.mu.Unlock()
	return nil
}

// Capture stores the current frame under the active stage and advances.
func (c *IDCapture) Capture(ctx context.Context) error {
	c.mu.Lock()
	stage, open := c.stage, c.cameraOpen
	c.mu.Unlock()

	if stage == StageDone {
		return ErrNotCapturing
	}
	if !open {
		return ErrCameraNotOpen
	}

	frame, err := c.camera.Frame()
	if err != nil {
		return fmt.Errorf("grab %s frame: %w", stage, err)
	}
	uri, err := EncodeFrame(frame)
	if err != nil {
		return err
	}

	c.mu.Lock()
	switch stage {
	case StageFront:
		c.pair.Front = &uri
		if c.idType.IsPassport() {
			c.stage = StageDone
		} else {
			c.stage = StageBack
		}
	case StageBack:
		c.pair.Back = &uri
		c.stage = StageDone
	}
	next := c.stage
	c.mu.Unlock()

	c.closeCamera()
	c.logger.Info("id side captured", "side", string(stage))

	if next == StageBack {
		c.scheduleBack(ctx)
	}
	return nil
}

func (c *IDCapture) scheduleBack(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	wait, gen := c.back, c.closes
	c.pending = c.afterFunc(c.backDelay, func() {
		err := c.camera.Open(ctx)

		c.mu.Lock()
		stale := c.closes != gen
		if !stale {
			c.cameraOpen = err == nil
			c.pending = nil
		}
		c.mu.Unlock()

		switch {
		case stale:
			if err == nil {
				if cerr := c.camera.Close(); cerr != nil {
					c.logger.Warn("close camera", "error", cerr)
				}
			}
			wait.finish(ErrCaptureClosed)
		case err != nil:
			wait.finish(fmt.Errorf("open camera for back: %w", err))
		default:
			wait.finish(nil)
		}
	})
}

// AwaitBack blocks until the camera has been reopened for the back side.
func (c *IDCapture) AwaitBack(ctx context.Context) error {
	c.mu.Lock()
	stage, wait := c.stage, c.back
	c.mu.Unlock()

	if stage != StageBack || wait == nil {
		return ErrNotCapturing
	}

	select {
	case <-wait.done:
		return wait.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the camera and cancels a pending back stage. A reopen
// already in flight closes its camera as soon as it returns.
func (c *IDCapture) Close() {
	c.mu.Lock()
	c.closes++
	pending, wait := c.pending, c.back
	c.pending = nil
	c.mu.Unlock()

	if pending != nil {
		pending.Stop()
	}
	if wait != nil {
		wait.finish(ErrCaptureClosed)
	}
	c.closeCamera()
}

func (c *IDCapture) closeCamera() {
	c.mu.Lock()
	wasOpen := c.cameraOpen
	c.cameraOpen = false
	c.mu.Unlock()

	if wasOpen {
		if err := c.camera.Close(); err != nil {
			c.logger.Warn("close camera", "error", err)
		}
	}
}

// Pair returns a snapshot of the captured sides. Back is always nil for passports.
func (c *IDCapture) Pair() IDImagePair {
	c.mu.Lock()
	defer c.mu.Unlock()
	pair := c.pair
	if c.idType.IsPassport() {
		pair.Back = nil
	}
	return pair
}

func (c *IDCapture) Stage() Stage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stage
}

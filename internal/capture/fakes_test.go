package capture

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"sync/atomic"
	"time"

	"github.com/retroconnect/idverify/internal/framing"
)

type fakeCamera struct {
	mu      sync.Mutex
	frame   image.Image
	openErr error
	ready   atomic.Bool
	opened  int
	closed  int
	isOpen  bool
}

func newFakeCamera(w, h int) *fakeCamera {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w/2; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	c := &fakeCamera{frame: img}
	c.ready.Store(true)
	return c
}

func (c *fakeCamera) Open(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.openErr != nil {
		return c.openErr
	}
	c.opened++
	c.isOpen = true
	return nil
}

func (c *fakeCamera) Ready() bool { return c.ready.Load() }

func (c *fakeCamera) Frame() (image.Image, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isOpen {
		return nil, ErrCameraNotOpen
	}
	return c.frame, nil
}

func (c *fakeCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed++
	c.isOpen = false
	return nil
}

func (c *fakeCamera) counts() (opened, closed int, open bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opened, c.closed, c.isOpen
}

// scriptedDetector returns faces in order, repeating the last one.
type scriptedDetector struct {
	mu      sync.Mutex
	loadErr error
	faces   []*framing.Rect
	calls   int
}

func (d *scriptedDetector) Load(context.Context) error { return d.loadErr }

func (d *scriptedDetector) Detect(context.Context, image.Image) (*framing.Rect, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if len(d.faces) == 0 {
		return nil, errors.New("no script")
	}
	i := d.calls - 1
	if i >= len(d.faces) {
		i = len(d.faces) - 1
	}
	return d.faces[i], nil
}

func (d *scriptedDetector) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

type manualTicker struct {
	ch      chan time.Time
	stopped atomic.Bool
}

func newManualTicker() *manualTicker {
	return &manualTicker{ch: make(chan time.Time)}
}

func (t *manualTicker) C() <-chan time.Time { return t.ch }
func (t *manualTicker) Stop()               { t.stopped.Store(true) }

func (t *manualTicker) factory(time.Duration) Ticker { return t }

// recordingOverlay signals every draw so tests can step the loop one tick at a time.
type recordingOverlay struct {
	drawn   chan framing.Verdict
	cleared atomic.Int32
}

func newRecordingOverlay() *recordingOverlay {
	return &recordingOverlay{drawn: make(chan framing.Verdict, 16)}
}

func (o *recordingOverlay) Draw(v framing.Verdict) { o.drawn <- v }
func (o *recordingOverlay) Clear()                 { o.cleared.Add(1) }

type fakeTimer struct {
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.stopped = true
	return true
}

type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
	delays []time.Duration
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{f: f}
	c.timers = append(c.timers, t)
	c.delays = append(c.delays, d)
	return t
}

func (c *fakeClock) fire() {
	c.mu.Lock()
	t := c.timers[len(c.timers)-1]
	c.mu.Unlock()
	t.f()
}

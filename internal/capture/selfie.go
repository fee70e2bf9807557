package capture

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/retroconnect/idverify/internal/framing"
)

// RequiredPassingTicks is the number of consecutive passing ticks that
// triggers the automatic capture.
const RequiredPassingTicks = 3

// State of a selfie session.
type State string

const (
	StateIdle      State = "idle"
	StateLoading   State = "loading"
	StateDetecting State = "detecting"
	StateCaptured  State = "captured"
	StateFailed    State = "failed"
)

// SelfieOption configures a SelfieSession.
type SelfieOption func(*SelfieSession)

// WithOverlay sets the verdict renderer.
func WithOverlay(o Overlay) SelfieOption {
	return func(s *SelfieSession) {
		s.overlay = o
	}
}

// WithTicker replaces the polling ticker factory.
func WithTicker(f TickerFactory) SelfieOption {
	return func(s *SelfieSession) {
		s.newTicker = f
	}
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) SelfieOption {
	return func(s *SelfieSession) {
		s.logger = l
	}
}

// SelfieSession polls the camera, judges framing on every tick and captures a
// mirrored still once the face has been framed for RequiredPassingTicks ticks.
type SelfieSession struct {
	camera    Camera
	detector  FaceDetector
	overlay   Overlay
	screen    Screen
	newTicker TickerFactory
	logger    *slog.Logger

	mu          sync.Mutex
	state       State
	instruction string
	verdict     framing.Verdict
	streak      int
	image       string
	cameraOpen  bool
	cancel      context.CancelFunc
	done        chan struct{}
	result      chan string
}

// NewSelfieSession creates an idle session.
func NewSelfieSession(camera Camera, detector FaceDetector, screen Screen, opts ...SelfieOption) *SelfieSession {
	s := &SelfieSession{
		camera:    camera,
		detector:  detector,
		overlay:   noopOverlay{},
		screen:    screen,
		newTicker: NewTimeTicker,
		logger:    slog.Default(),
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "selfie_capture")
	return s
}

// Start acquires the camera and the detector and begins polling. Any loop
// left over from a previous Start is stopped first.
func (s *SelfieSession) Start(ctx context.Context) error {
	s.Stop()

	s.mu.Lock()
	s.state = StateLoading
	s.instruction = framing.InstructionLoading
	s.verdict = framing.Verdict{}
	s.streak = 0
	s.result = make(chan string, 1)
	s.mu.Unlock()

	if err := s.camera.Open(ctx); err != nil {
		s.fail()
		return fmt.Errorf("open camera: %w", err)
	}
	s.mu.Lock()
	s.cameraOpen = true
	s.mu.Unlock()

	if err := s.detector.Load(ctx); err != nil {
		s.release()
		s.fail()
		return fmt.Errorf("load face detector: %w", err)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	ticker := s.newTicker(framing.TickInterval)

	s.mu.Lock()
	s.state = StateDetecting
	s.instruction = framing.InstructionPosition
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	go s.run(loopCtx, ticker, done)
	return nil
}

// run polls until a capture or until ctx ends, which covers both Stop and
// cancellation of the context given to Start.
func (s *SelfieSession) run(ctx context.Context, ticker Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.abandon()
			return
		case <-ticker.C():
			if s.tick(ctx) {
				if ctx.Err() != nil {
					s.abandon()
				}
				return
			}
		}
	}
}

// abandon returns an uncaptured session to idle and releases the camera.
func (s *SelfieSession) abandon() {
	s.mu.Lock()
	if s.state == StateDetecting {
		s.state = StateIdle
		s.instruction = ""
	}
	s.mu.Unlock()
	s.release()
}

// tick runs one detection and reports whether the loop should end.
func (s *SelfieSession) tick(ctx context.Context) bool {
	if !s.camera.Ready() {
		return false
	}

	frame, err := s.camera.Frame()
	if err != nil {
		s.logger.Debug("frame unavailable", "error", err)
		return false
	}

	face, err := s.detector.Detect(ctx, frame)
	if err != nil {
		if ctx.Err() != nil {
			return true
		}
		s.logger.Warn("face detection failed", "error", err)
		face = nil
	}

	v := framing.Evaluate(face, s.screen.Viewport(frame), s.screen.Guide)

	s.mu.Lock()
	s.verdict = v
	s.instruction = v.Instruction()
	if v.Pass {
		s.streak++
	} else {
		s.streak = 0
	}
	trigger := s.streak >= RequiredPassingTicks
	s.mu.Unlock()

	s.overlay.Draw(v)

	if !trigger {
		return false
	}

	if err := s.capture(); err != nil {
		s.logger.Warn("selfie capture failed", "error", err)
		s.mu.Lock()
		s.streak = 0
		s.mu.Unlock()
		return false
	}
	return true
}

func (s *SelfieSession) capture() error {
	frame, err := s.camera.Frame()
	if err != nil {
		return fmt.Errorf("grab frame: %w", err)
	}

	uri, err := EncodeFrame(FlipHorizontal(frame))
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.image = uri
	s.state = StateCaptured
	s.instruction = framing.InstructionCaptured
	result := s.result
	s.mu.Unlock()

	s.release()
	result <- uri

	s.logger.Info("selfie captured", "bytes", len(uri))
	return nil
}

func (s *SelfieSession) fail() {
	s.mu.Lock()
	s.state = StateFailed
	s.instruction = framing.InstructionFailed
	s.mu.Unlock()
}

// release closes the camera and clears the overlay. Safe to call repeatedly.
func (s *SelfieSession) release() {
	s.mu.Lock()
	wasOpen := s.cameraOpen
	s.cameraOpen = false
	s.mu.Unlock()

	if wasOpen {
		if err := s.camera.Close(); err != nil {
			s.logger.Warn("close camera", "error", err)
		}
	}
	s.overlay.Clear()
}

// Stop cancels the polling loop and releases the camera.
func (s *SelfieSession) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	s.release()
}

// Retake discards the captured image and starts over.
func (s *SelfieSession) Retake(ctx context.Context) error {
	s.Stop()
	s.mu.Lock()
	s.image = ""
	s.mu.Unlock()
	return s.Start(ctx)
}

// Wait blocks until a selfie is captured or ctx ends. The captured image is
// delivered once per Start.
func (s *SelfieSession) Wait(ctx context.Context) (string, error) {
	s.mu.Lock()
	result := s.result
	s.mu.Unlock()

	if result == nil {
		return "", ErrNotCapturing
	}

	select {
	case uri := <-result:
		return uri, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Image returns the captured data URI, if any.
func (s *SelfieSession) Image() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.image, s.image != ""
}

func (s *SelfieSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *SelfieSession) Instruction() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.instruction
}

func (s *SelfieSession) LastVerdict() framing.Verdict {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.verdict
}

// Command enroll runs the registration wizard end to end against still
// images: a profile JSON file for personal info, ID photos for the capture
// step and a selfie that must pass the framing checks before it is taken.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/retroconnect/idverify/internal/account"
	"github.com/retroconnect/idverify/internal/audit"
	"github.com/retroconnect/idverify/internal/capture"
	"github.com/retroconnect/idverify/internal/config"
	"github.com/retroconnect/idverify/internal/database"
	"github.com/retroconnect/idverify/internal/domain"
	"github.com/retroconnect/idverify/internal/framing"
	"github.com/retroconnect/idverify/internal/registration"
	"github.com/retroconnect/idverify/internal/repository"
	"github.com/retroconnect/idverify/internal/storage/backend"
	"github.com/retroconnect/idverify/internal/upload"
	"github.com/retroconnect/idverify/internal/vision"
)

// errNoMatch exits with status 2 after the result has been printed.
var errNoMatch = errors.New("verification did not match")

type options struct {
	profile     string
	idType      string
	idFront     string
	idBack      string
	selfie      string
	apiURL      string
	token       string
	backDelay   time.Duration
	selfieLimit time.Duration
}

func main() {
	var opts options
	flag.StringVar(&opts.profile, "profile", "", "JSON file with the personal info form")
	flag.StringVar(&opts.idType, "id-type", string(domain.IDTypeNationalCard), "ID type as listed in the ID step")
	flag.StringVar(&opts.idFront, "id-front", "", "image of the ID front")
	flag.StringVar(&opts.idBack, "id-back", "", "image of the ID back (ignored for passports)")
	flag.StringVar(&opts.selfie, "selfie", "", "selfie image")
	flag.StringVar(&opts.apiURL, "api", "http://localhost:3000", "base URL of the verification API")
	flag.StringVar(&opts.token, "token", "", "bearer token sent to verify-face")
	flag.DurationVar(&opts.backDelay, "back-delay", capture.BackCaptureDelay, "pause before the camera reopens for the ID back")
	flag.DurationVar(&opts.selfieLimit, "selfie-timeout", 20*time.Second, "how long to wait for a framed selfie")
	flag.Parse()

	if err := run(opts); err != nil {
		if errors.Is(err, errNoMatch) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	if opts.profile == "" || opts.idFront == "" || opts.selfie == "" {
		return errors.New("-profile, -id-front and -selfie are required")
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := cfg.NewLogger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, database.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	visionProvider, err := vision.NewProvider(ctx, cfg, audit.NewSlogLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create vision provider: %w", err)
	}
	store, err := backend.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create storage: %w", err)
	}

	submitter := registration.NewSubmitter(
		upload.NewCoordinator(store, cfg.StorageBucket, logger),
		registration.NewHTTPVerifier(opts.apiURL, opts.token),
		account.NewService(repository.NewUserRepository(pool), logger),
		registration.WithTimeout(cfg.VerifyTimeout),
		registration.WithLogger(logger),
	)

	wizard := registration.NewWizard()

	// Personal info
	if err := loadProfile(wizard, opts.profile, domain.IDType(opts.idType)); err != nil {
		return err
	}
	if err := wizard.Next(); err != nil {
		return fmt.Errorf("personal info: %w", err)
	}
	logger.Info("personal info accepted")

	// ID capture
	idType := wizard.Form().IDType
	cam := newFileSequenceCamera(opts.idFront, opts.idBack)
	idCapture := capture.NewIDCapture(cam, idType,
		capture.WithBackDelay(opts.backDelay),
		capture.WithIDLogger(logger),
	)
	defer idCapture.Close()

	if err := scanID(ctx, idCapture); err != nil {
		return err
	}
	if err := wizard.SetIDImages(idCapture.Pair()); err != nil {
		return err
	}
	if err := wizard.Next(); err != nil {
		return fmt.Errorf("id verification: %w", err)
	}

	// Selfie
	session := capture.NewSelfieSession(
		capture.NewStillCamera(opts.selfie),
		capture.NewVisionDetector(visionProvider),
		cliScreen,
		capture.WithOverlay(&logOverlay{logger: logger}),
		capture.WithLogger(logger),
	)
	if err := session.Start(ctx); err != nil {
		return err
	}
	selfieCtx, cancel := context.WithTimeout(ctx, opts.selfieLimit)
	selfieURI, err := session.Wait(selfieCtx)
	cancel()
	session.Stop()
	if err != nil {
		return fmt.Errorf("selfie not captured (%s): %w", session.Instruction(), err)
	}
	if err := wizard.SetSelfie(selfieURI); err != nil {
		return err
	}
	if err := wizard.Next(); err != nil {
		return fmt.Errorf("selfie: %w", err)
	}

	// Review and submit
	result, err := wizard.Submit(ctx, submitter)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	if !result.Match {
		return errNoMatch
	}
	return nil
}

func loadProfile(w *registration.Wizard, path string, idType domain.IDType) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read profile: %w", err)
	}

	var profile registration.Form
	if err := json.Unmarshal(raw, &profile); err != nil {
		return fmt.Errorf("parse profile: %w", err)
	}

	w.Update(func(f *registration.Form) {
		*f = profile
		f.IDType = idType
		f.ClearImages()
		f.Normalize()
	})
	return nil
}

func scanID(ctx context.Context, c *capture.IDCapture) error {
	if err := c.StartScan(ctx); err != nil {
		return err
	}
	if err := c.Capture(ctx); err != nil {
		return err
	}
	if c.Stage() != capture.StageBack {
		return nil
	}
	if err := c.AwaitBack(ctx); err != nil {
		return err
	}
	return c.Capture(ctx)
}

// cliScreen maps every frame onto a 640x480 preview with a centred
// 300px guide.
var cliScreen = capture.Screen{
	Displayed: framing.Size{Width: 640, Height: 480},
	Guide:     framing.Guide{Rect: framing.Rect{X: 170, Y: 90, Width: 300, Height: 300}},
}

type logOverlay struct {
	logger *slog.Logger
	last   string
}

func (o *logOverlay) Draw(v framing.Verdict) {
	if msg := v.Instruction(); msg != o.last {
		o.last = msg
		o.logger.Info(msg, "border", string(v.Border()), "offset", v.Offset)
	}
}

func (o *logOverlay) Clear() {}

// fileSequenceCamera hands out one file per Open, so the ID flow sees the
// front image first and the back image after it reopens the camera.
type fileSequenceCamera struct {
	paths []string
	next  int
	*capture.StillCamera
}

func newFileSequenceCamera(paths ...string) *fileSequenceCamera {
	return &fileSequenceCamera{paths: paths}
}

func (c *fileSequenceCamera) Open(ctx context.Context) error {
	if c.next >= len(c.paths) || c.paths[c.next] == "" {
		return fmt.Errorf("no image supplied for capture %d", c.next+1)
	}
	c.StillCamera = capture.NewStillCamera(c.paths[c.next])
	c.next++
	return c.StillCamera.Open(ctx)
}

func (c *fileSequenceCamera) Ready() bool {
	return c.StillCamera != nil && c.StillCamera.Ready()
}

func (c *fileSequenceCamera) Frame() (image.Image, error) {
	if c.StillCamera == nil {
		return nil, capture.ErrCameraNotOpen
	}
	return c.StillCamera.Frame()
}

func (c *fileSequenceCamera) Close() error {
	if c.StillCamera == nil {
		return nil
	}
	return c.StillCamera.Close()
}

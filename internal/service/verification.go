package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/retroconnect/idverify/internal/audit"
	"github.com/retroconnect/idverify/internal/domain"
	"github.com/retroconnect/idverify/internal/provider"
	"github.com/retroconnect/idverify/internal/storage"
)

// FaceConfidenceThreshold must be exceeded by both detections for the
// primary face check to pass.
const FaceConfidenceThreshold = 0.90

// Decision details returned to the registrant.
const (
	DetailsFaceVerified = "Face verification successful."
	DetailsOCRMatched   = "OCR data match successful."
	DetailsNoMatch      = "Could not verify face or text on the ID document."
	DetailsNoEvidence   = "Could not detect a clear face or any text on the ID document."
)

type VerificationAttemptRepositoryInterface interface {
	Create(ctx context.Context, attempt *domain.VerificationAttempt) error
}

// VerificationPublisher announces decided attempts to other services.
type VerificationPublisher interface {
	PublishVerification(ctx context.Context, attempt *domain.VerificationAttempt) error
}

// VerificationOption configures a VerificationService.
type VerificationOption func(*VerificationService)

func WithAttemptRepository(repo VerificationAttemptRepositoryInterface) VerificationOption {
	return func(s *VerificationService) {
		s.attempts = repo
	}
}

func WithPublisher(p VerificationPublisher) VerificationOption {
	return func(s *VerificationService) {
		s.publisher = p
	}
}

func WithAuditLogger(l audit.Logger) VerificationOption {
	return func(s *VerificationService) {
		s.audit = l
	}
}

func WithLogger(l *slog.Logger) VerificationOption {
	return func(s *VerificationService) {
		s.logger = l
	}
}

// VerificationService decides whether uploaded selfie and ID images belong
// to the registrant.
type VerificationService struct {
	store     storage.Storage
	bucket    string
	vision    provider.VisionProvider
	attempts  VerificationAttemptRepositoryInterface
	publisher VerificationPublisher
	audit     audit.Logger
	logger    *slog.Logger
}

func NewVerificationService(
	store storage.Storage,
	bucket string,
	vision provider.VisionProvider,
	opts ...VerificationOption,
) *VerificationService {
	s := &VerificationService{
		store:  store,
		bucket: bucket,
		vision: vision,
		audit:  &audit.NoOpLogger{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "verification")
	return s
}

// Verify produces exactly one result per request. Errors are returned only
// for invalid requests, unreadable images and vision failures; every other
// outcome is a result with Match set accordingly.
func (s *VerificationService) Verify(ctx context.Context, req *domain.VerificationRequest) (*domain.VerificationResult, error) {
	start := time.Now()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	selfie, idFront, err := s.download(ctx, req)
	if err != nil {
		s.logger.WarnContext(ctx, "image download failed", "user_ref", req.UserID, "error", err)
		return nil, domain.ErrImageDownload.WithError(err)
	}

	annotation, err := s.vision.Annotate(ctx, provider.AnnotateRequest{Selfie: selfie, IDFront: idFront})
	s.logAudit(ctx, audit.Event{
		EventType: audit.EventImagesAnnotated,
		Subject:   req.UserID,
		Success:   err == nil,
		Error:     errString(err),
		Metadata:  map[string]string{"provider": s.vision.Name()},
	})
	if err != nil {
		return nil, visionError(err)
	}

	result := Decide(req, annotation)
	latency := time.Since(start)

	s.logger.InfoContext(ctx, "verification decided",
		"user_ref", req.UserID,
		"id_type", req.IDType,
		"match", result.Match,
		"method", string(result.Method),
		"latency_ms", latency.Milliseconds(),
	)
	s.record(ctx, req, result, latency)

	return result, nil
}

// Decide applies the ID type gate, the face check and the OCR fallback in
// that order.
func Decide(req *domain.VerificationRequest, a *provider.Annotation) *domain.VerificationResult {
	if a.HasText() && !CheckIDType(req.IDType, a.IDText) {
		return domain.FailedVerification(
			fmt.Sprintf("The uploaded document does not appear to be a %s. Please upload the correct ID.", req.IDType),
			domain.MethodIDTypeGate,
		)
	}

	selfieConf, idConf := a.SelfieConfidence(), a.IDConfidence()
	if selfieConf > FaceConfidenceThreshold && idConf > FaceConfidenceThreshold {
		return &domain.VerificationResult{
			Match:      true,
			Details:    DetailsFaceVerified,
			Similarity: (selfieConf + idConf) * 50,
			Method:     domain.MethodFace,
		}
	}

	if !a.HasText() {
		return domain.FailedVerification(DetailsNoEvidence, domain.MethodNone)
	}

	var user domain.UserData
	if req.UserData != nil {
		user = *req.UserData
	}
	if MatchIdentityText(user, a.IDText) {
		return &domain.VerificationResult{Match: true, Details: DetailsOCRMatched, Method: domain.MethodOCR}
	}
	return domain.FailedVerification(DetailsNoMatch, domain.MethodOCR)
}

func (s *VerificationService) download(ctx context.Context, req *domain.VerificationRequest) ([]byte, []byte, error) {
	selfiePath, err := storage.PathFromURL(req.SelfieImageURL, s.bucket)
	if err != nil {
		return nil, nil, fmt.Errorf("selfie url: %w", err)
	}
	idFrontPath, err := storage.PathFromURL(req.IDFrontURL, s.bucket)
	if err != nil {
		return nil, nil, fmt.Errorf("id front url: %w", err)
	}

	var selfie, idFront []byte
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		selfie, err = s.store.Download(gctx, s.bucket, selfiePath)
		return err
	})
	g.Go(func() error {
		var err error
		idFront, err = s.store.Download(gctx, s.bucket, idFrontPath)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return selfie, idFront, nil
}

// record persists, audits and publishes the decision. Failures are logged
// and never change the result.
func (s *VerificationService) record(ctx context.Context, req *domain.VerificationRequest, result *domain.VerificationResult, latency time.Duration) {
	attempt := &domain.VerificationAttempt{
		ID:         uuid.New(),
		UserRef:    req.UserID,
		IDType:     req.IDType,
		Match:      result.Match,
		Method:     result.Method,
		Similarity: result.Similarity,
		Details:    result.Details,
		LatencyMs:  latency.Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}

	if s.attempts != nil {
		if err := s.attempts.Create(ctx, attempt); err != nil {
			s.logger.WarnContext(ctx, "failed to record verification attempt", "error", err)
		}
	}

	s.logAudit(ctx, audit.Event{
		EventType: audit.EventVerificationDecided,
		Subject:   req.UserID,
		Success:   result.Match,
		Metadata: map[string]string{
			"id_type":    req.IDType,
			"method":     string(result.Method),
			"similarity": strconv.FormatFloat(result.Similarity, 'f', 2, 64),
		},
	})

	if s.publisher != nil {
		if err := s.publisher.PublishVerification(ctx, attempt); err != nil {
			s.logger.WarnContext(ctx, "failed to publish verification event", "error", err)
		}
	}
}

func (s *VerificationService) logAudit(ctx context.Context, event audit.Event) {
	event.Source = "verification_service"
	if err := s.audit.Log(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit log failed", "error", err)
	}
}

func visionError(err error) error {
	var svcErr *provider.ServiceError
	if errors.As(err, &svcErr) {
		return domain.NewVisionError(svcErr.Message, err)
	}
	if errors.Is(err, provider.ErrInvalidImage) {
		return domain.ErrInvalidImage.WithError(err)
	}
	return domain.NewVisionError(err.Error(), err)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

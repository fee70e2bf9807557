package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/retroconnect/idverify/internal/domain"
	"github.com/retroconnect/idverify/internal/upload"
)

const (
	DefaultVerifyTimeout = 30 * time.Second

	TimeoutDetails     = "Verification timed out. Please retry."
	UploadFailedDetail = "One or more images failed to upload. Cannot proceed with face verification."
)

// Verifier runs the match decision for uploaded images.
type Verifier interface {
	Verify(ctx context.Context, req *domain.VerificationRequest) (*domain.VerificationResult, error)
}

type ImageUploader interface {
	UploadSet(ctx context.Context, owner string, set upload.Set) (upload.URLs, error)
}

// AccountCreator stores the verified registrant with credentials.
type AccountCreator interface {
	SignUp(ctx context.Context, email, password string, profile *domain.User) (*domain.User, error)
}

type SubmitterOption func(*Submitter)

func WithTimeout(d time.Duration) SubmitterOption {
	return func(s *Submitter) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithClock(now func() time.Time) SubmitterOption {
	return func(s *Submitter) {
		s.now = now
	}
}

func WithLogger(l *slog.Logger) SubmitterOption {
	return func(s *Submitter) {
		s.logger = l
	}
}

// Submitter uploads the images, asks for a verdict and, on a match,
// creates the account.
type Submitter struct {
	uploads  ImageUploader
	verifier Verifier
	accounts AccountCreator
	timeout  time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

func NewSubmitter(uploads ImageUploader, verifier Verifier, accounts AccountCreator, opts ...SubmitterOption) *Submitter {
	s := &Submitter{
		uploads:  uploads,
		verifier: verifier,
		accounts: accounts,
		timeout:  DefaultVerifyTimeout,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "registration")
	return s
}

// TempOwner is the storage owner used before an account exists.
func TempOwner(at time.Time) string {
	return fmt.Sprintf("temp-%d", at.UnixMilli())
}

// Submit never returns an error: every failure becomes a non-matching
// result carrying the failure message. Nothing is stored unless the
// verdict is a match.
func (s *Submitter) Submit(ctx context.Context, f Form) *domain.VerificationResult {
	owner := TempOwner(s.now())
	logger := s.logger.With("owner", owner, "id_type", string(f.IDType))

	set := upload.Set{Selfie: f.Selfie, IDFront: f.IDFront}
	if !f.IDType.IsPassport() {
		set.IDBack = f.IDBack
	}

	urls, err := s.uploads.UploadSet(ctx, owner, set)
	if err != nil {
		logger.ErrorContext(ctx, "upload failed", "error", err)
		return domain.FailedVerification(errorDetails(err), domain.MethodError)
	}
	if urls.Selfie == nil || urls.IDFront == nil {
		return domain.FailedVerification(UploadFailedDetail, domain.MethodError)
	}

	req := &domain.VerificationRequest{
		SelfieImageURL: *urls.Selfie,
		IDFrontURL:     *urls.IDFront,
		UserID:         owner,
		UserData: &domain.UserData{
			FirstName:   f.FirstName,
			LastName:    f.LastName,
			DateOfBirth: f.DateOfBirth,
			Gender:      f.Gender,
		},
		IDType: string(f.IDType),
	}

	result, err := s.verify(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			logger.WarnContext(ctx, "verification timed out", "timeout", s.timeout.String())
			return domain.FailedVerification(TimeoutDetails, domain.MethodTimeout)
		}
		logger.ErrorContext(ctx, "verification failed", "error", err)
		return domain.FailedVerification(errorDetails(err), domain.MethodError)
	}
	if !result.Match {
		logger.InfoContext(ctx, "verification rejected", "details", result.Details)
		return result
	}

	profile, err := s.profile(f, urls, result)
	if err != nil {
		return domain.FailedVerification(errorDetails(err), domain.MethodError)
	}
	user, err := s.accounts.SignUp(ctx, f.Email, f.Password, profile)
	if err != nil {
		logger.ErrorContext(ctx, "account creation failed", "error", err)
		return domain.FailedVerification(errorDetails(err), domain.MethodError)
	}

	logger.InfoContext(ctx, "registration completed", "user_id", user.ID.String(), "similarity", result.Similarity)
	return result
}

// verify bounds the call by the timeout even if the verifier ignores ctx.
func (s *Submitter) verify(ctx context.Context, req *domain.VerificationRequest) (*domain.VerificationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type outcome struct {
		result *domain.VerificationResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := s.verifier.Verify(ctx, req)
		done <- outcome{result: result, err: err}
	}()

	select {
	case o := <-done:
		if o.err == nil && o.result == nil {
			return nil, errors.New("verification returned no result")
		}
		return o.result, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Submitter) profile(f Form, urls upload.URLs, result *domain.VerificationResult) (*domain.User, error) {
	dob, err := time.Parse(DateLayout, f.DateOfBirth)
	if err != nil {
		return nil, fmt.Errorf("invalid date of birth %q", f.DateOfBirth)
	}

	return &domain.User{
		Username:        f.Username,
		FirstName:       f.FirstName,
		LastName:        f.LastName,
		FullName:        f.FullName(),
		DateOfBirth:     dob,
		Gender:          f.Gender,
		PhoneNumber:     f.PhoneNumber,
		BusinessAddress: f.BusinessAddress,
		PostalCode:      f.PostalCode,
		IDType:          f.IDType,
		SelfieURL:       *urls.Selfie,
		IDFrontURL:      *urls.IDFront,
		IDBackURL:       urls.IDBack,
		IsFaceVerified:  true,
		FaceMatchScore:  result.Similarity,
		Status:          domain.UserStatusPendingApproval,
		Role:            domain.UserRoleUser,
	}, nil
}

// errorDetails prefers the user facing message of an AppError.
func errorDetails(err error) string {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

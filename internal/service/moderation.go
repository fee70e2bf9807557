package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/retroconnect/idverify/internal/audit"
	"github.com/retroconnect/idverify/internal/domain"
)

// WarningSentMessage is returned once the warning e-mail has been accepted.
const WarningSentMessage = "Email notification sent."

type UserStatusRepositoryInterface interface {
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.UserStatus) error
}

// WarningMailer delivers the warning that follows a user report.
type WarningMailer interface {
	SendWarning(ctx context.Context, req domain.WarningRequest) error
}

// ModerationService carries out moderator actions on reported users.
type ModerationService struct {
	users  UserStatusRepositoryInterface
	mailer WarningMailer
	audit  audit.Logger
	logger *slog.Logger
}

func NewModerationService(users UserStatusRepositoryInterface, mailer WarningMailer, auditLogger audit.Logger, logger *slog.Logger) *ModerationService {
	if auditLogger == nil {
		auditLogger = &audit.NoOpLogger{}
	}
	return &ModerationService{
		users:  users,
		mailer: mailer,
		audit:  auditLogger,
		logger: logger.With("component", "moderation"),
	}
}

// SuspendUser locks the account and returns the confirmation message.
func (s *ModerationService) SuspendUser(ctx context.Context, userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", domain.ErrBadRequest.WithMessage("User ID to suspend is required.")
	}

	id, err := uuid.Parse(userID)
	if err != nil {
		return "", domain.ErrBadRequest.WithMessage("User ID to suspend is not a valid id.")
	}

	err = s.users.UpdateStatus(ctx, id, domain.UserStatusSuspended)
	s.logAudit(ctx, audit.Event{
		EventType: audit.EventUserSuspended,
		Subject:   userID,
		Success:   err == nil,
		Error:     errString(err),
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", err
		}
		return "", fmt.Errorf("suspend user %s: %w", userID, err)
	}

	s.logger.InfoContext(ctx, "user suspended", "user_id", userID)
	return fmt.Sprintf("User %s has been suspended.", userID), nil
}

// SendWarning e-mails the reported user with the reporter in bcc.
func (s *ModerationService) SendWarning(ctx context.Context, req domain.WarningRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	err := s.mailer.SendWarning(ctx, req)
	s.logAudit(ctx, audit.Event{
		EventType: audit.EventWarningSent,
		Subject:   req.ReportedUser.Email,
		Success:   err == nil,
		Error:     errString(err),
		Metadata:  map[string]string{"reason": req.Reason},
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "warning email failed", "error", err)
		return domain.ErrEmailDelivery.WithMessage(err.Error()).WithError(err)
	}
	return nil
}

func (s *ModerationService) logAudit(ctx context.Context, event audit.Event) {
	event.Source = "moderation_service"
	if err := s.audit.Log(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit log failed", "error", err)
	}
}

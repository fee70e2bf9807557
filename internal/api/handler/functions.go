package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/retroconnect/idverify/internal/domain"
	"github.com/retroconnect/idverify/internal/service"
)

// VerificationService runs the match decision.
type VerificationService interface {
	Verify(ctx context.Context, req *domain.VerificationRequest) (*domain.VerificationResult, error)
}

// ModerationService carries out moderator actions.
type ModerationService interface {
	SuspendUser(ctx context.Context, userID string) (string, error)
	SendWarning(ctx context.Context, req domain.WarningRequest) error
}

// FunctionsHandler serves the /functions contract endpoints. Failures are
// answered as {"error": "<message>"}.
type FunctionsHandler struct {
	verifier   VerificationService
	moderation ModerationService
	logger     *slog.Logger
}

func NewFunctionsHandler(verifier VerificationService, moderation ModerationService, logger *slog.Logger) *FunctionsHandler {
	return &FunctionsHandler{
		verifier:   verifier,
		moderation: moderation,
		logger:     logger,
	}
}

// VerifyResponse is the verify-face success body.
type VerifyResponse struct {
	Match      bool    `json:"match"`
	Details    string  `json:"details"`
	Similarity float64 `json:"similarity"`
}

type SuspendResponse struct {
	Message string `json:"message"`
}

type WarningResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// VerifyFace POST /functions/verify-face
func (h *FunctionsHandler) VerifyFace(c *fiber.Ctx) error {
	var req domain.VerificationRequest
	if err := c.BodyParser(&req); err != nil {
		return functionError(c, fiber.StatusBadRequest, domain.ErrMissingParameters)
	}

	result, err := h.verifier.Verify(c.UserContext(), &req)
	if err != nil {
		h.logger.WarnContext(c.UserContext(), "verify-face failed", "error", err, "user_ref", req.UserID)
		return functionError(c, fiber.StatusBadRequest, err)
	}

	return c.JSON(VerifyResponse{
		Match:      result.Match,
		Details:    result.Details,
		Similarity: result.Similarity,
	})
}

// SuspendUser POST /functions/suspend-user
func (h *FunctionsHandler) SuspendUser(c *fiber.Ctx) error {
	var req domain.SuspendRequest
	if err := c.BodyParser(&req); err != nil {
		return functionError(c, fiber.StatusBadRequest, domain.ErrBadRequest)
	}

	msg, err := h.moderation.SuspendUser(c.UserContext(), req.UserIDToSuspend)
	if err != nil {
		h.logger.WarnContext(c.UserContext(), "suspend-user failed", "error", err, "user_id", req.UserIDToSuspend)
		return functionError(c, fiber.StatusBadRequest, err)
	}

	return c.JSON(SuspendResponse{Message: msg})
}

// SendWarning POST /functions/send-warning
func (h *FunctionsHandler) SendWarning(c *fiber.Ctx) error {
	var req domain.WarningRequest
	if err := c.BodyParser(&req); err != nil {
		return functionError(c, fiber.StatusInternalServerError, domain.ErrBadRequest)
	}

	if err := h.moderation.SendWarning(c.UserContext(), req); err != nil {
		return functionError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(WarningResponse{Success: true, Message: service.WarningSentMessage})
}

func functionError(c *fiber.Ctx, status int, err error) error {
	msg := err.Error()
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

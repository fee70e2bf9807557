package handler

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/retroconnect/idverify/internal/domain"
	"github.com/retroconnect/idverify/internal/registration"
)

// RegistrationHandler accepts a complete wizard form in one request.
type RegistrationHandler struct {
	submitter registration.FormSubmitter
	now       func() time.Time
	logger    *slog.Logger
}

func NewRegistrationHandler(submitter registration.FormSubmitter, logger *slog.Logger) *RegistrationHandler {
	return &RegistrationHandler{
		submitter: submitter,
		now:       time.Now,
		logger:    logger,
	}
}

// ValidationErrorResponse carries the per-field messages of the failing step.
type ValidationErrorResponse struct {
	Error ValidationErrorBody `json:"error"`
}

type ValidationErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Step    string `json:"step"`
	Fields  any    `json:"fields"`
}

// Create POST /v1/registrations
func (h *RegistrationHandler) Create(c *fiber.Ctx) error {
	var form registration.Form
	if err := c.BodyParser(&form); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}
	form.Normalize()

	if errs := registration.ValidatePersonalInfo(form, h.now()); !errs.Empty() {
		return validationFailed(c, registration.StepPersonalInfo, errs)
	}
	if errs := registration.ValidateIDVerification(form); !errs.Empty() {
		return validationFailed(c, registration.StepIDVerification, errs)
	}
	if errs := registration.ValidateReview(form); !errs.Empty() {
		return validationFailed(c, registration.StepSelfie, errs)
	}

	result := h.submitter.Submit(c.UserContext(), form)
	h.logger.InfoContext(c.UserContext(), "registration submitted",
		"match", result.Match,
		"method", string(result.Method),
		"id_type", string(form.IDType),
	)

	return c.JSON(VerifyResponse{
		Match:      result.Match,
		Details:    result.Details,
		Similarity: result.Similarity,
	})
}

func validationFailed(c *fiber.Ctx, step registration.Step, fields error) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(ValidationErrorResponse{
		Error: ValidationErrorBody{
			Code:    domain.ErrValidationFailed.Code,
			Message: fields.Error(),
			Step:    step.String(),
			Fields:  fields,
		},
	})
}

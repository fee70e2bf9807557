package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/retroconnect/idverify/internal/domain"
)

// ErrorHandler renders every handler error in the envelope its route
// family expects. Server-side failures are logged; client errors are not.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, code, message := classify(err)
		if status >= fiber.StatusInternalServerError {
			logger.ErrorContext(c.UserContext(), "request failed",
				slog.String("code", code),
				slog.String("path", c.Path()),
				slog.String("request_id", requestID(c)),
				slog.Any("error", err),
			)
		}
		return writeError(c, status, code, message)
	}
}

func classify(err error) (status int, code, message string) {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, "HTTP_ERROR", fiberErr.Message
	}

	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode, appErr.Code, appErr.Message
	}

	return fiber.StatusInternalServerError, domain.ErrInternal.Code, domain.ErrInternal.Message
}

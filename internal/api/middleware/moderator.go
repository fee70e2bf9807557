package middleware

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/retroconnect/idverify/internal/admin"
	"github.com/retroconnect/idverify/internal/audit"
	"github.com/retroconnect/idverify/internal/domain"
)

const (
	// LocalModeratorID is the key to retrieve the moderator id from context
	LocalModeratorID = "moderator_id"
	// LocalModeratorRole is the key to retrieve the moderator role from context
	LocalModeratorRole = "moderator_role"
)

// TokenValidator is implemented by admin.JWTService.
type TokenValidator interface {
	ValidateToken(token string) (*admin.ModeratorClaims, error)
}

// ModeratorAuthDependencies contains dependencies for moderator authentication
type ModeratorAuthDependencies struct {
	Tokens TokenValidator
	Logger *slog.Logger
}

// ModeratorAuth requires a bearer JWT whose role may moderate.
func ModeratorAuth(deps ModeratorAuthDependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractBearerToken(c)
		if token == "" {
			deps.Logger.Debug("missing authorization header for moderator route", "path", c.Path())
			return domain.ErrUnauthorized
		}

		claims, err := deps.Tokens.ValidateToken(token)
		if err != nil {
			deps.Logger.Warn("invalid JWT token", "error", err)
			return domain.ErrUnauthorized
		}

		if !claims.CanModerate() {
			deps.Logger.Warn("insufficient privileges", "role", claims.Role, "moderator_id", claims.ModeratorID)
			return domain.ErrForbidden
		}

		c.Locals(LocalModeratorID, claims.ModeratorID)
		c.Locals(LocalModeratorRole, claims.Role)
		c.SetUserContext(audit.WithActor(c.UserContext(), claims.ModeratorID.String()))

		return c.Next()
	}
}

// GetModeratorID retrieves the authenticated moderator id from context
func GetModeratorID(c *fiber.Ctx) (uuid.UUID, error) {
	id, ok := c.Locals(LocalModeratorID).(uuid.UUID)
	if !ok {
		return uuid.Nil, domain.ErrUnauthorized
	}
	return id, nil
}

func extractBearerToken(c *fiber.Ctx) string {
	auth := c.Get(fiber.HeaderAuthorization)
	if auth == "" {
		return ""
	}

	// Expected format: "Bearer <token>"
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

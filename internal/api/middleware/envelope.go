package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// FunctionsPrefix is the route prefix of the contract endpoints, which
// answer errors as a bare {"error": "<message>"} object.
const FunctionsPrefix = "/functions"

func isFunctionRoute(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), FunctionsPrefix+"/")
}

// writeError renders an error in the envelope matching the route.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	if isFunctionRoute(c) {
		return c.Status(status).JSON(fiber.Map{"error": message})
	}
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// Preflight answers CORS preflight requests on the contract endpoints with
// a plain 200 "ok".
func Preflight() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodOptions {
			return c.Next()
		}
		c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
		c.Set(fiber.HeaderAccessControlAllowHeaders, "authorization, x-client-info, apikey, content-type")
		c.Set(fiber.HeaderAccessControlAllowMethods, "POST, OPTIONS")
		return c.SendString("ok")
	}
}

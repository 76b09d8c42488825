package handlers

import (
	"errors"
	"log"

	"dailaunch/internal/middleware"
	"dailaunch/internal/repositories"
	"dailaunch/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles the authenticated per-user endpoints.
type UserHandler struct {
	users    *services.UserService
	verifier services.IdentityVerifier
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *services.UserService, verifier services.IdentityVerifier) *UserHandler {
	return &UserHandler{users: users, verifier: verifier}
}

// RegisterRoutes registers the user routes with the Fiber app. Both routes
// are gated by the GitHub token middleware.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/api/user", middleware.GithubAuth(h.verifier))
	userRoutes.Get("/me", h.HandleProfile)
	userRoutes.Get("/privatekey", h.HandleExportKey)
}

// HandleProfile returns the authenticated user's profile: wallet, balance
// and deployed tokens.
func (h *UserHandler) HandleProfile(c *fiber.Ctx) error {
	identity := middleware.IdentityFromCtx(c)

	profile, err := h.users.Profile(c.Context(), identity.Login)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "No wallet yet. Deploy a token first.",
			})
		}
		log.Printf("Error building profile for @%s: %v", identity.Login, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not load profile",
		})
	}

	return c.JSON(profile)
}

// HandleExportKey returns the decrypted custodial private key. The GitHub
// identity check in the middleware is the sole authorization gate.
func (h *UserHandler) HandleExportKey(c *fiber.Ctx) error {
	identity := middleware.IdentityFromCtx(c)

	export, err := h.users.ExportPrivateKey(identity.Login)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "No wallet yet. Deploy a token first.",
			})
		}
		log.Printf("Error exporting key for @%s: %v", identity.Login, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not export private key",
		})
	}

	return c.JSON(export)
}

package handlers

import (
	"errors"
	"log"
	"strings"

	"dailaunch/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles the GitHub OAuth flow and CLI session endpoints.
type AuthHandler struct {
	oauth        *services.OAuthService
	sessions     *services.SessionService
	verifier     services.IdentityVerifier
	dashboardURL string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	oauth *services.OAuthService,
	sessions *services.SessionService,
	verifier services.IdentityVerifier,
	dashboardURL string,
) *AuthHandler {
	return &AuthHandler{
		oauth:        oauth,
		sessions:     sessions,
		verifier:     verifier,
		dashboardURL: dashboardURL,
	}
}

// RegisterRoutes registers the auth routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Get("/github", h.HandleGithubRedirect)
	authRoutes.Get("/github/callback", h.HandleGithubCallback)
	authRoutes.Get("/me", h.HandleMe)
	authRoutes.Post("/cli-login", h.HandleCliLogin)
	authRoutes.Get("/session", h.HandleGetSession)
	authRoutes.Delete("/session", h.HandleDeleteSession)
}

// HandleGithubRedirect sends the browser to GitHub's authorization page.
func (h *AuthHandler) HandleGithubRedirect(c *fiber.Ctx) error {
	return c.Redirect(h.oauth.AuthURL("dailaunch"), fiber.StatusTemporaryRedirect)
}

// HandleGithubCallback exchanges the OAuth code, verifies the resulting
// GitHub token and redirects back to the dashboard with a signed web token.
func (h *AuthHandler) HandleGithubCallback(c *fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return c.Redirect(h.dashboardURL+"?error=missing_code", fiber.StatusTemporaryRedirect)
	}

	githubToken, err := h.oauth.Exchange(c.Context(), code)
	if err != nil {
		log.Printf("OAuth exchange failed: %v", err)
		return c.Redirect(h.dashboardURL+"?error=oauth_failed", fiber.StatusTemporaryRedirect)
	}

	identity, err := h.verifier.Verify(c.Context(), githubToken)
	if err != nil {
		log.Printf("Post-exchange verification failed: %v", err)
		return c.Redirect(h.dashboardURL+"?error=oauth_failed", fiber.StatusTemporaryRedirect)
	}

	webToken, err := h.sessions.IssueWebToken(identity)
	if err != nil {
		log.Printf("Failed to issue web token: %v", err)
		return c.Redirect(h.dashboardURL+"?error=token_failed", fiber.StatusTemporaryRedirect)
	}

	return c.Redirect(h.dashboardURL+"?token="+webToken, fiber.StatusTemporaryRedirect)
}

// HandleMe validates a signed web token and returns the identity embedded
// in it. The token is accepted as "Authorization: Bearer <token>" or as a
// ?token= query parameter.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	tokenString := c.Query("token")
	if tokenString == "" {
		authHeader := c.Get("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			tokenString = parts[1]
		}
	}
	if tokenString == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Token required",
		})
	}

	identity, err := h.sessions.VerifyWebToken(tokenString)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid or expired token",
		})
	}

	return c.JSON(fiber.Map{
		"login":       identity.Login,
		"name":        identity.Name,
		"avatar":      identity.Avatar,
		"githubToken": identity.Token,
	})
}

// HandleCliLogin mints a 24h web session for the CLI. The GitHub token
// arrives in the x-github-token header, is verified against GitHub, and
// the returned session token is what the CLI hands to the browser.
func (h *AuthHandler) HandleCliLogin(c *fiber.Ctx) error {
	githubToken := c.Get("x-github-token")
	if githubToken == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "GitHub token required",
		})
	}

	identity, err := h.verifier.Verify(c.Context(), githubToken)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid GitHub token",
		})
	}

	session, err := h.sessions.CreateSession(identity)
	if err != nil {
		log.Printf("Failed to create CLI session: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create session",
		})
	}

	loginURL := h.dashboardURL + "?session=" + session.SessionToken
	return c.JSON(fiber.Map{
		"success":      true,
		"sessionToken": session.SessionToken,
		"loginUrl":     loginURL,
		"user": fiber.Map{
			"login":  identity.Login,
			"name":   identity.Name,
			"avatar": identity.Avatar,
		},
		"expiresAt": session.ExpiresAt,
		"message":   "Open this URL in your browser to login:\n" + loginURL,
	})
}

// HandleGetSession resolves a CLI session token into the stored identity.
// The browser calls this with the token the CLI printed.
func (h *AuthHandler) HandleGetSession(c *fiber.Ctx) error {
	sessionToken := c.Query("token")
	if sessionToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Session token required",
		})
	}

	session, err := h.sessions.ResolveSession(c.Context(), sessionToken)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Session not found",
			})
		case errors.Is(err, services.ErrSessionExpired):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Session expired",
			})
		default:
			log.Printf("Failed to resolve session: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not resolve session",
			})
		}
	}

	return c.JSON(fiber.Map{
		"githubToken": session.GithubToken,
		"login":       session.GithubLogin,
		"avatar":      session.GithubAvatar,
		"name":        session.GithubName,
		"expiresAt":   session.ExpiresAt,
	})
}

// HandleDeleteSession revokes a CLI session. Idempotent: deleting an
// unknown token still returns 200.
func (h *AuthHandler) HandleDeleteSession(c *fiber.Ctx) error {
	sessionToken := c.Query("token")
	if sessionToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Session token required",
		})
	}

	if err := h.sessions.RevokeSession(sessionToken); err != nil {
		log.Printf("Failed to revoke session: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not revoke session",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Session revoked",
	})
}

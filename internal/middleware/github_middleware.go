package middleware

import (
	"log"

	"dailaunch/internal/services"

	"github.com/gofiber/fiber/v2"
)

const identityKey = "github_identity"

// GithubAuth is a Fiber middleware that verifies the x-github-token header
// against the GitHub API and stores the verified identity in the request
// context. Authentication is per-request: the token is re-verified on every
// call and never cached.
func GithubAuth(verifier services.IdentityVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get("x-github-token")
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "GitHub token required. Run 'gh auth login' or pass x-github-token.",
			})
		}

		identity, err := verifier.Verify(c.Context(), token)
		if err != nil {
			log.Printf("GitHub token verification failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid GitHub token",
			})
		}

		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// IdentityFromCtx returns the identity stored by GithubAuth. Nil when the
// middleware did not run on this route.
func IdentityFromCtx(c *fiber.Ctx) *services.VerifiedIdentity {
	identity, _ := c.Locals(identityKey).(*services.VerifiedIdentity)
	return identity
}

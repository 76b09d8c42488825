package handlers

import (
	"errors"
	"log"

	"dailaunch/internal/middleware"
	"dailaunch/internal/services"

	"github.com/gofiber/fiber/v2"
)

// DeployHandler handles token deployment requests from the CLI and the web
// dashboard.
type DeployHandler struct {
	deploys       *services.DeployService
	verifier      services.IdentityVerifier
	platformLogin string
	platformToken string
}

// NewDeployHandler creates a new DeployHandler. platformLogin and
// platformToken identify the shared platform account used for web deploys
// that arrive without a GitHub credential.
func NewDeployHandler(
	deploys *services.DeployService,
	verifier services.IdentityVerifier,
	platformLogin, platformToken string,
) *DeployHandler {
	return &DeployHandler{
		deploys:       deploys,
		verifier:      verifier,
		platformLogin: platformLogin,
		platformToken: platformToken,
	}
}

// RegisterRoutes registers the deploy routes with the Fiber app. The CLI
// route is gated by the GitHub token middleware; the web route handles its
// own optional authentication.
func (h *DeployHandler) RegisterRoutes(router fiber.Router) {
	api := router.Group("/api")
	api.Post("/deploy", middleware.GithubAuth(h.verifier), h.HandleDeploy)
	api.Post("/deploy/web", h.HandleWebDeploy)
}

// HandleDeploy deploys a token for the authenticated CLI user.
func (h *DeployHandler) HandleDeploy(c *fiber.Ctx) error {
	identity := middleware.IdentityFromCtx(c)
	if identity == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}
	return h.runDeploy(c, identity)
}

// HandleWebDeploy deploys a token from the dashboard without any GitHub
// login from the caller. It always acts as the shared platform identity;
// repeated calls reuse the one platform User row.
func (h *DeployHandler) HandleWebDeploy(c *fiber.Ctx) error {
	if h.platformToken == "" {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Platform GitHub token not configured",
		})
	}

	return h.runDeploy(c, &services.VerifiedIdentity{
		Login: h.platformLogin,
		Name:  h.platformLogin,
		Token: h.platformToken,
	})
}

func (h *DeployHandler) runDeploy(c *fiber.Ctx, identity *services.VerifiedIdentity) error {
	var req services.DeployRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing deploy request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	outcome, err := h.deploys.Deploy(c.Context(), identity, req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		log.Printf("Deploy failed for @%s: %v", identity.Login, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success":         true,
		"contractAddress": outcome.ContractAddress,
		"txHash":          outcome.TxHash,
		"creatorWallet":   outcome.CreatorWallet,
		"githubRepo":      outcome.GithubRepo,
		"baseScan":        outcome.BaseScan,
		"dexScreener":     outcome.DexScreener,
		"feeInfo":         outcome.FeeInfo,
	})
}

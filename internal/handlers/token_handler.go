package handlers

import (
	"errors"
	"log"

	"dailaunch/internal/repositories"
	"dailaunch/internal/services"

	"github.com/gofiber/fiber/v2"
)

// TokenHandler handles the public, unauthenticated read endpoints.
type TokenHandler struct {
	tokens *services.TokenService
}

// NewTokenHandler creates a new TokenHandler.
func NewTokenHandler(tokens *services.TokenService) *TokenHandler {
	return &TokenHandler{tokens: tokens}
}

// RegisterRoutes registers the token routes with the Fiber app.
func (h *TokenHandler) RegisterRoutes(router fiber.Router) {
	api := router.Group("/api")
	api.Get("/tokens", h.HandleList)
	api.Get("/tokens/:address", h.HandleGet)
	api.Get("/stats", h.HandleStats)
}

// HandleList returns a page of tokens with pagination metadata.
func (h *TokenHandler) HandleList(c *fiber.Ctx) error {
	page, err := h.tokens.List(repositories.TokenListQuery{
		Page:   c.QueryInt("page", 1),
		Limit:  c.QueryInt("limit", 20),
		Sort:   c.Query("sort"),
		Search: c.Query("search"),
	})
	if err != nil {
		log.Printf("Error listing tokens: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not list tokens",
		})
	}

	return c.JSON(page)
}

// HandleGet returns a single token by contract address.
func (h *TokenHandler) HandleGet(c *fiber.Ctx) error {
	token, err := h.tokens.GetByAddress(c.Params("address"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Token not found",
			})
		}
		log.Printf("Error fetching token: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch token",
		})
	}

	return c.JSON(token)
}

// HandleStats returns the platform-wide aggregate counters.
func (h *TokenHandler) HandleStats(c *fiber.Ctx) error {
	stats, err := h.tokens.Stats()
	if err != nil {
		log.Printf("Error computing stats: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not compute stats",
		})
	}

	return c.JSON(stats)
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"examapp/internal/log"
	"examapp/internal/services"
)

type SearchHandler struct {
	Catalog *services.CatalogService
}

// GET /search?search=term returns up to ten {id, name} suggestions.
func (h *SearchHandler) Suggest(c *fiber.Ctx) error {
	items, err := h.Catalog.Suggest(c.Query("search"))
	if err != nil {
		log.Error(c, "search.suggest.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "search unavailable"})
	}
	return c.JSON(items)
}

package handlers

import (
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetUserByID(c *fiber.Ctx) error {
	targetID := c.Params("targetId")
	if targetID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "targetId required")
	}
	user, err := h.auth.GetUser(c.Context(), callerID(c), targetID)
	if err != nil {
		return h.fail(err)
	}
	return c.Status(fiber.StatusOK).JSON(user)
}

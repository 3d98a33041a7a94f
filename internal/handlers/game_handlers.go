package handlers

import (
	"github.com/compsocial/compsocial-server/internal/middlewares"
	"github.com/gofiber/fiber/v2"
)

type createGameReq struct {
	GameName      string  `json:"gameName" validate:"required"`
	BudgetMax     float64 `json:"budgetMax" validate:"required,gt=0"`
	Password      string  `json:"password"`
	PeriodMinutes int     `json:"periodMinutes" validate:"gte=0"`
}

func (h *Handler) CreateGame(c *fiber.Ctx) error {
	var req createGameReq
	if err := h.parseBody(c, &req); err != nil {
		return err
	}
	gameID, err := h.games.CreateGame(c.Context(), callerID(c), req.GameName, req.BudgetMax, req.Password, req.PeriodMinutes)
	if err != nil {
		return h.fail(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"gameId": gameID})
}

func (h *Handler) GetGameByID(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if gameID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "gameId required")
	}
	game, err := h.games.GetGame(c.Context(), callerID(c), gameID)
	if err != nil {
		return h.fail(err)
	}
	return c.Status(fiber.StatusOK).JSON(game)
}

type joinGameReq struct {
	JoinCode string `json:"joinCode" validate:"required,len=6"`
	Password string `json:"password"`
}

func (h *Handler) JoinGame(c *fiber.Ctx) error {
	var req joinGameReq
	if err := h.parseBody(c, &req); err != nil {
		return err
	}
	gameID, err := h.games.JoinGame(c.Context(), callerID(c), req.JoinCode, req.Password)
	if err != nil {
		return h.fail(err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"gameId": gameID})
}

type gameIDReq struct {
	GameID string `json:"gameId" validate:"required"`
}

func (h *Handler) LeaveGame(c *fiber.Ctx) error {
	var req gameIDReq
	if err := h.parseBody(c, &req); err != nil {
		return err
	}
	if err := h.games.LeaveGame(c.Context(), callerID(c), req.GameID); err != nil {
		return h.fail(err)
	}
	return c.SendStatus(fiber.StatusOK)
}

func (h *Handler) DeleteGame(c *fiber.Ctx) error {
	var req gameIDReq
	if err := h.parseBody(c, &req); err != nil {
		return err
	}
	if err := h.games.DeleteGame(c.Context(), callerID(c), req.GameID); err != nil {
		return h.fail(err)
	}
	return c.SendStatus(fiber.StatusOK)
}

type kickPlayerReq struct {
	GameID   string `json:"gameId" validate:"required"`
	TargetID string `json:"targetId" validate:"required"`
}

func (h *Handler) KickPlayer(c *fiber.Ctx) error {
	var req kickPlayerReq
	if err := h.parseBody(c, &req); err != nil {
		return err
	}
	if err := h.games.KickPlayer(c.Context(), callerID(c), req.GameID, req.TargetID); err != nil {
		return h.fail(err)
	}
	return c.SendStatus(fiber.StatusOK)
}

type addEntryReq struct {
	GameID string  `json:"gameId" validate:"required"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

func (h *Handler) AddEntry(c *fiber.Ctx) error {
	var req addEntryReq
	if err := h.parseBody(c, &req); err != nil {
		return err
	}
	if err := h.games.AddEntry(c.Context(), callerID(c), req.GameID, req.Amount); err != nil {
		return h.fail(err)
	}
	return c.SendStatus(fiber.StatusCreated)
}

func callerID(c *fiber.Ctx) string {
	id, _ := c.Locals(middlewares.UserIDKey).(string)
	return id
}

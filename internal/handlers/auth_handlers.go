package handlers

import (
	"errors"

	"github.com/compsocial/compsocial-server/internal/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler bundles the service layer for the HTTP routes.
type Handler struct {
	auth     services.AuthService
	games    services.GameService
	validate *validator.Validate
	logger   *zap.SugaredLogger
}

func NewHandler(auth services.AuthService, games services.GameService, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		auth:     auth,
		games:    games,
		validate: validator.New(),
		logger:   logger,
	}
}

// statusFromErr maps service sentinels onto HTTP statuses.
func statusFromErr(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrUnauthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrUnverified), errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func (h *Handler) fail(err error) error {
	return fiber.NewError(statusFromErr(err), err.Error())
}

// parseBody decodes and validates a JSON request body.
func (h *Handler) parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if err := h.validate.Struct(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, formatValidationErrors(err))
	}
	return nil
}

type registerReq struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerReq
	if err := h.parseBody(c, &req); err != nil {
		return err
	}
	if err := h.auth.Register(c.Context(), req.Username, req.Email, req.Password); err != nil {
		return h.fail(err)
	}
	return c.SendStatus(fiber.StatusCreated)
}

func (h *Handler) VerifyUser(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return fiber.NewError(fiber.StatusBadRequest, "token required")
	}
	msg, err := h.auth.Verify(c.Context(), token)
	if err != nil {
		return h.fail(err)
	}
	return c.Status(fiber.StatusOK).SendString(msg)
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginReq
	if err := h.parseBody(c, &req); err != nil {
		return err
	}
	session, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return h.fail(err)
	}
	return c.Status(fiber.StatusOK).JSON(session)
}

type refreshReq struct {
	UserID       string `json:"userId" validate:"required"`
	RefreshToken string `json:"refreshToken" validate:"required"`
}

func (h *Handler) RefreshSession(c *fiber.Ctx) error {
	var req refreshReq
	if err := h.parseBody(c, &req); err != nil {
		return err
	}
	access, err := h.auth.Refresh(c.Context(), req.UserID, req.RefreshToken)
	if err != nil {
		return h.fail(err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"accessToken": access})
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	userID := callerID(c)
	if userID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing user")
	}
	if err := h.auth.Logout(c.Context(), userID); err != nil {
		return h.fail(err)
	}
	return c.SendStatus(fiber.StatusOK)
}

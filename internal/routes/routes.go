package routes

import (
	"github.com/compsocial/compsocial-server/internal/handlers"
	"github.com/compsocial/compsocial-server/internal/middlewares"
	"github.com/compsocial/compsocial-server/internal/token"
	"github.com/gofiber/fiber/v2"
)

func Setup(app *fiber.App, h *handlers.Handler, tokens *token.Manager) {
	authRequired := middlewares.AuthenticateAccessToken(tokens)

	auth := app.Group("/auth")
	auth.Post("/register", h.Register)
	auth.Get("/verifyUser", h.VerifyUser)
	auth.Post("/login", h.Login)
	auth.Post("/refreshSession", h.RefreshSession)
	auth.Post("/logout", authRequired, h.Logout)

	games := app.Group("/games", authRequired)
	games.Post("/createGame", h.CreateGame)
	games.Get("/getGameById/:gameId", h.GetGameByID)
	games.Post("/joinGame", h.JoinGame)
	games.Post("/leaveGame", h.LeaveGame)
	games.Post("/deleteGame", h.DeleteGame)
	games.Post("/kickPlayer", h.KickPlayer)
	games.Post("/addEntry", h.AddEntry)

	users := app.Group("/users", authRequired)
	users.Get("/getUserById/:targetId", h.GetUserByID)
}

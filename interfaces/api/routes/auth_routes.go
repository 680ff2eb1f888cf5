package routes

import (
	"github.com/gofiber/fiber/v2"

	"task-api/interfaces/api/handlers"
	"task-api/interfaces/api/middleware"
)

func SetupAuthRoutes(api fiber.Router, h *handlers.Handlers) {
	auth := api.Group("/auth")
	authenticate := middleware.Authenticate(h.Resolver)

	auth.Post("/registration", h.AuthHandler.Register)
	auth.Post("/login", h.AuthHandler.Login)
	auth.Post("/logout", authenticate, h.AuthHandler.Logout)
	auth.Post("/token/verify", h.AuthHandler.VerifyToken)

	// Google OAuth
	auth.Get("/google", h.AuthHandler.GoogleLogin)
	auth.Get("/google/callback", h.AuthHandler.GoogleCallback)
	auth.Post("/google", h.AuthHandler.GoogleTokenLogin)

	// Protected routes - require authentication
	user := auth.Group("/user", authenticate, middleware.Protected())
	user.Get("/", h.AuthHandler.GetUser)
	user.Put("/", h.AuthHandler.UpdateUser)
	user.Delete("/", h.AuthHandler.DeleteUser)
	user.Put("/avatar", h.AuthHandler.UploadAvatar)
}

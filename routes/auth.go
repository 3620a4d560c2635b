package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/estatelink/estatelink/controllers"
	"github.com/estatelink/estatelink/middleware"
)

// SetupAuthRoutes configures all authentication related routes
func SetupAuthRoutes(app *fiber.App) {
	auth := app.Group("/api/auth")

	// Public routes
	auth.Post("/request-otp", controllers.RequestOTP)
	auth.Post("/verify-otp", controllers.VerifyOTP)
	auth.Post("/verify-social-login", controllers.VerifySocialLogin)
	auth.Get("/check-user", controllers.CheckUser)
	auth.Post("/login", controllers.Login)
	auth.Post("/refresh", controllers.RefreshToken)

	// Protected routes
	auth.Get("/me", middleware.Protected(), controllers.GetUserProfile)
	auth.Put("/profile", middleware.Protected(), controllers.UpdateProfile)
	auth.Post("/logout", middleware.Protected(), controllers.Logout)
}

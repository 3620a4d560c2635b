package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/estatelink/estatelink/controllers"
	"github.com/estatelink/estatelink/middleware"
	"github.com/estatelink/estatelink/models"
)

// SetupAdminRoutes configures the admin back-office routes
func SetupAdminRoutes(app *fiber.App) {
	admin := app.Group("/api/admin", middleware.Protected(), middleware.RequireRole(models.RoleAdmin))

	admin.Get("/users", controllers.AdminListUsers)
	admin.Delete("/users/:id", controllers.AdminDeleteUser)
	admin.Get("/stats", controllers.AdminStats)
}

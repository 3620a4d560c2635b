package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/estatelink/estatelink/controllers"
	"github.com/estatelink/estatelink/middleware"
)

// SetupNotificationRoutes configures notification routes
func SetupNotificationRoutes(app *fiber.App) {
	notifications := app.Group("/api/notifications", middleware.Protected())

	notifications.Get("/", controllers.GetNotifications)
	notifications.Put("/read-all", controllers.MarkAllNotificationsRead)
	notifications.Put("/:id/read", controllers.MarkNotificationRead)
}

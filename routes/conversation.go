package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/estatelink/estatelink/controllers"
	"github.com/estatelink/estatelink/middleware"
)

// SetupConversationRoutes configures conversation routes
func SetupConversationRoutes(app *fiber.App) {
	conversations := app.Group("/api/conversations", middleware.Protected())

	conversations.Post("/", controllers.CreateConversation)
	conversations.Get("/", controllers.GetConversations)
	conversations.Get("/:id", controllers.GetConversation)
	conversations.Put("/:id/read", controllers.MarkConversationRead)
	conversations.Delete("/:id", controllers.DeleteConversation)
}

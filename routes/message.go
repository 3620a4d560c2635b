package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/estatelink/estatelink/controllers"
	"github.com/estatelink/estatelink/middleware"
)

// SetupMessageRoutes configures message routes
func SetupMessageRoutes(app *fiber.App) {
	messages := app.Group("/api/messages", middleware.Protected())

	messages.Post("/", controllers.SendMessage)
	messages.Get("/", controllers.GetMessages)
	messages.Get("/unread/count", controllers.GetUnreadCount)
	messages.Get("/conversation/:conversationId", controllers.GetConversationMessages)
	messages.Put("/:id/read", controllers.MarkMessageRead)
	messages.Put("/:id/accept", controllers.AcceptMessage)
	messages.Put("/:id/ignore", controllers.IgnoreMessage)
	messages.Delete("/:id", controllers.DeleteMessage)
}

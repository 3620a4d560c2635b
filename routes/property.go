package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/estatelink/estatelink/controllers"
	"github.com/estatelink/estatelink/middleware"
)

// SetupPropertyRoutes configures property listing routes
func SetupPropertyRoutes(app *fiber.App) {
	properties := app.Group("/api/properties")

	// Public browsing
	properties.Get("/", controllers.SearchProperties)

	// Protected routes are registered before the public :id route so
	// /me resolves to the handler, not a property lookup.
	properties.Get("/me", middleware.Protected(), controllers.GetMyProperties)
	properties.Post("/", middleware.Protected(), controllers.CreateProperty)
	properties.Put("/:id", middleware.Protected(), controllers.UpdateProperty)
	properties.Delete("/:id", middleware.Protected(), controllers.DeleteProperty)
	properties.Post("/:id/images", middleware.Protected(), controllers.UploadPropertyImage)

	properties.Get("/:id", controllers.GetProperty)
}

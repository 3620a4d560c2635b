package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/estatelink/estatelink/controllers"
	"github.com/estatelink/estatelink/middleware"
)

// SetupPaymentRoutes configures payment ledger routes
func SetupPaymentRoutes(app *fiber.App) {
	payments := app.Group("/api/payments", middleware.Protected())

	payments.Post("/", controllers.CreatePayment)
	payments.Get("/", controllers.GetPayments)
	payments.Put("/:id/status", controllers.UpdatePaymentStatus)
}

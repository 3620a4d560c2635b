package main

import (
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2"

	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/estatelink/estatelink/controllers"
	"github.com/estatelink/estatelink/cron"
	"github.com/estatelink/estatelink/db"
	"github.com/estatelink/estatelink/redis"
	"github.com/estatelink/estatelink/routes"
	"github.com/estatelink/estatelink/services"
	"github.com/estatelink/estatelink/utils"
)

func main() {
	app := fiber.New()
	db.Init()
	if os.Getenv("REDIS_ADDR") != "" {
		redis.InitRedis()
	}

	controllers.OTP = services.NewOTPService(
		db.GetDB(),
		utils.SMTPMailer{},
		os.Getenv("EXPOSE_OTP_IN_RESPONSE") == "true",
	)
	controllers.Messaging = services.NewMessagingService(db.GetDB())

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("EstateLink API")
	})
	routes.SetupAuthRoutes(app)
	routes.SetupConversationRoutes(app)
	routes.SetupMessageRoutes(app)
	routes.SetupPropertyRoutes(app)
	routes.SetupPaymentRoutes(app)
	routes.SetupNotificationRoutes(app)
	routes.SetupAdminRoutes(app)

	cron.StartCronJobs(controllers.OTP)

	app.Listen(":8000")
	fmt.Println("Server started on port 8000")
}

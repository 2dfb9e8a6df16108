package routes

import (
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"pocket-ussd/controller"
	"pocket-ussd/metrics"
	"pocket-ussd/ussd"
)

func InitRoutes(resolver *ussd.Resolver) *fiber.App {
	controller.Setup(resolver)
	app := fiber.New(fiber.Config{
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New())
	app.Use(metrics.Middleware())

	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	app.Post("/ussd", controller.USSDCallback)

	v1 := app.Group("/ussd/api/v1/")
	v1.All("/service-status", controller.ServiceStatusCheck)
	v1.Get("/webhook", controller.USSDService)
	v1.Post("/webhook", controller.USSDCallback)

	return app
}

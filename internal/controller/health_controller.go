package controller

import "github.com/gofiber/fiber/v2"

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
}

type healthController struct {
	storage  string
	provider string
}

func NewHealthController(storage, provider string) IHealthController {
	return &healthController{storage: storage, provider: provider}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{
		"status":   "ok",
		"storage":  c.storage,
		"provider": c.provider,
	})
}

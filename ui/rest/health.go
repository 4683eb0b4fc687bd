package rest

import (
	"github.com/AzielCF/telebridge/core/config"
	domainAuth "github.com/AzielCF/telebridge/domains/auth"
	domainQueue "github.com/AzielCF/telebridge/domains/queue"
	"github.com/AzielCF/telebridge/pkg/mediastore"
	"github.com/gofiber/fiber/v2"
)

type Health struct {
	Auth  domainAuth.IAuthUsecase
	Queue domainQueue.IQueueUsecase
	Store *mediastore.Store
}

func InitRestHealth(app fiber.Router, auth domainAuth.IAuthUsecase, queue domainQueue.IQueueUsecase, store *mediastore.Store) Health {
	handler := Health{Auth: auth, Queue: queue, Store: store}
	app.Get("/ping", handler.Ping)
	app.Get("/status", handler.Status)

	return handler
}

func (h *Health) Ping(c *fiber.Ctx) error {
	return c.SendString("alive")
}

func (h *Health) Status(c *fiber.Ctx) error {
	body := fiber.Map{
		"ok":       true,
		"login":    h.Auth.Status(),
		"worker":   h.Queue.Stats(),
		"relay":    h.Queue.Recent(),
		"settings": config.GetAllSettings(),
	}
	if h.Store != nil {
		body["artifacts"] = h.Store.Stats()
	}
	return c.JSON(body)
}

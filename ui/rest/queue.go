package rest

import (
	domainQueue "github.com/AzielCF/telebridge/domains/queue"
	"github.com/AzielCF/telebridge/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Queue struct {
	Service domainQueue.IQueueUsecase
}

func InitRestQueue(app fiber.Router, service domainQueue.IQueueUsecase) Queue {
	rest := Queue{Service: service}
	app.Post("/enqueue", rest.Enqueue)

	return rest
}

func (handler *Queue) Enqueue(c *fiber.Ctx) error {
	var request domainQueue.EnqueueRequest
	utils.PanicIfNeeded(parseBody(c, &request))

	response, err := handler.Service.Enqueue(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(response)
}

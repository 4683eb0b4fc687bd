package rest

import (
	domainAuth "github.com/AzielCF/telebridge/domains/auth"
	domainQueue "github.com/AzielCF/telebridge/domains/queue"
	pkgError "github.com/AzielCF/telebridge/pkg/error"
	"github.com/AzielCF/telebridge/pkg/mediastore"
	"github.com/AzielCF/telebridge/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

// Register mounts the whole control surface on router.
func Register(router fiber.Router, auth domainAuth.IAuthUsecase, queue domainQueue.IQueueUsecase, store *mediastore.Store) {
	InitRestHealth(router, auth, queue, store)
	InitRestAuth(router, auth)
	InitRestQueue(router, queue)

	router.All("/*", func(c *fiber.Ctx) error {
		utils.PanicIfNeeded(pkgError.NotFoundError("endpoint not found: " + c.Path()))
		return nil
	})
}

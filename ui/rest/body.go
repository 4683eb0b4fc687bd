package rest

import (
	pkgError "github.com/AzielCF/telebridge/pkg/error"
	"github.com/gofiber/fiber/v2"
)

// parseBody accepts an empty body as an empty request, so missing fields
// are reported by validation instead of the parser.
func parseBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return pkgError.ValidationError("invalid request body: " + err.Error())
	}
	return nil
}

package middleware

import (
	"errors"
	"fmt"

	pkgError "github.com/AzielCF/telebridge/pkg/error"
	"github.com/AzielCF/telebridge/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Recovery turns panics raised by utils.PanicIfNeeded into JSON error responses.
func Recovery() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}

			status := fiber.StatusInternalServerError
			res := utils.ResponseData{
				OK:    false,
				Code:  "INTERNAL_SERVER_ERROR",
				Error: fmt.Sprintf("%v", recovered),
			}

			var generic pkgError.GenericError
			if err, ok := recovered.(error); ok && errors.As(err, &generic) {
				status = generic.StatusCode()
				res.Code = generic.ErrCode()
				res.Error = generic.Error()
			}

			if status >= fiber.StatusInternalServerError {
				logrus.Errorf("[REST] %s %s failed: %v", ctx.Method(), ctx.Path(), recovered)
			} else {
				logrus.Debugf("[REST] %s %s rejected: %s", ctx.Method(), ctx.Path(), res.Error)
			}

			_ = ctx.Status(status).JSON(res)
		}()

		return ctx.Next()
	}
}

package rest

import (
	domainAuth "github.com/AzielCF/telebridge/domains/auth"
	"github.com/AzielCF/telebridge/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Auth struct {
	Service domainAuth.IAuthUsecase
}

func InitRestAuth(app fiber.Router, service domainAuth.IAuthUsecase) Auth {
	rest := Auth{Service: service}
	app.Post("/login", rest.Login)
	app.Post("/login/reset", rest.Reset)
	app.Post("/verify", rest.Verify)
	app.Post("/password", rest.Password)

	return rest
}

func (handler *Auth) Login(c *fiber.Ctx) error {
	var request domainAuth.LoginRequest
	utils.PanicIfNeeded(parseBody(c, &request))

	response, err := handler.Service.RequestCode(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(response)
}

func (handler *Auth) Verify(c *fiber.Ctx) error {
	var request domainAuth.VerifyRequest
	utils.PanicIfNeeded(parseBody(c, &request))

	response, err := handler.Service.VerifyCode(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(response)
}

func (handler *Auth) Password(c *fiber.Ctx) error {
	var request domainAuth.PasswordRequest
	utils.PanicIfNeeded(parseBody(c, &request))

	response, err := handler.Service.SubmitPassword(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(response)
}

func (handler *Auth) Reset(c *fiber.Ctx) error {
	handler.Service.Reset()
	return c.JSON(domainAuth.LoginResponse{OK: true, Status: domainAuth.StatusReset})
}

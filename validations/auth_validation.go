package validations

import (
	"context"
	"strings"

	domainAuth "github.com/AzielCF/telebridge/domains/auth"
	pkgError "github.com/AzielCF/telebridge/pkg/error"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func ValidateLogin(ctx context.Context, request *domainAuth.LoginRequest) error {
	request.Phone = strings.TrimSpace(request.Phone)
	err := validation.ValidateWithContext(ctx, request.Phone,
		validation.Required.Error("phone required"),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}
	return nil
}

func ValidateVerify(ctx context.Context, request *domainAuth.VerifyRequest) error {
	request.Code = strings.TrimSpace(request.Code)
	err := validation.ValidateWithContext(ctx, request.Code,
		validation.Required.Error("code required"),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}
	return nil
}

// ValidatePassword does not trim: whitespace can be part of a password.
func ValidatePassword(ctx context.Context, request domainAuth.PasswordRequest) error {
	err := validation.ValidateWithContext(ctx, request.Password,
		validation.Required.Error("password required"),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}
	return nil
}

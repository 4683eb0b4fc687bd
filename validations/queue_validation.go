package validations

import (
	"context"

	domainQueue "github.com/AzielCF/telebridge/domains/queue"
	pkgError "github.com/AzielCF/telebridge/pkg/error"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func ValidateEnqueue(ctx context.Context, request domainQueue.EnqueueRequest) error {
	err := validation.ValidateWithContext(ctx, request.Links,
		validation.Required.Error("no links provided"),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}
	return nil
}

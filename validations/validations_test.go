package validations

import (
	"context"
	"testing"

	domainAuth "github.com/AzielCF/telebridge/domains/auth"
	domainQueue "github.com/AzielCF/telebridge/domains/queue"
	pkgError "github.com/AzielCF/telebridge/pkg/error"
	"github.com/stretchr/testify/assert"
)

func TestValidateLogin(t *testing.T) {
	req := domainAuth.LoginRequest{Phone: "  +15550001111 "}
	assert.NoError(t, ValidateLogin(context.Background(), &req))
	assert.Equal(t, "+15550001111", req.Phone)

	err := ValidateLogin(context.Background(), &domainAuth.LoginRequest{Phone: "   "})
	assert.Equal(t, pkgError.ValidationError("phone required"), err)
}

func TestValidateVerify(t *testing.T) {
	assert.NoError(t, ValidateVerify(context.Background(), &domainAuth.VerifyRequest{Code: "12345"}))
	assert.EqualError(t, ValidateVerify(context.Background(), &domainAuth.VerifyRequest{}), "code required")
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword(context.Background(), domainAuth.PasswordRequest{Password: " s3cret "}))
	assert.EqualError(t, ValidatePassword(context.Background(), domainAuth.PasswordRequest{}), "password required")
}

func TestValidateEnqueue(t *testing.T) {
	assert.NoError(t, ValidateEnqueue(context.Background(), domainQueue.EnqueueRequest{Links: []string{"https://t.me/a/1"}}))

	for _, req := range []domainQueue.EnqueueRequest{{}, {Links: []string{}}} {
		err := ValidateEnqueue(context.Background(), req)
		assert.EqualError(t, err, "no links provided")
		var generic pkgError.GenericError
		assert.ErrorAs(t, err, &generic)
	}
}

package auth

import (
	"context"
	"strings"
)

type Step string

const (
	StepNone     Step = "none"
	StepCode     Step = "code"
	StepPassword Step = "password"
)

const (
	StatusCodeSent    = "code_sent"
	Status2FARequired = "2fa_required"
	StatusLoggedIn    = "logged_in"
	StatusReset       = "reset"
)

type Me struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// LoginState is a snapshot of the interactive login handshake. The full
// phone number never leaves the process; PhoneHint shows its last digits.
type LoginState struct {
	Step      Step   `json:"step"`
	Phone     string `json:"-"`
	PhoneHint string `json:"phone,omitempty"`
	CodeHash  string `json:"-"`
	LoggedIn  bool   `json:"logged_in"`
	Me        *Me    `json:"me,omitempty"`
}

// MaskPhone keeps the last four characters of a phone number.
func MaskPhone(phone string) string {
	const visible = 4
	if len(phone) <= visible {
		return strings.Repeat("*", len(phone))
	}
	return strings.Repeat("*", len(phone)-visible) + phone[len(phone)-visible:]
}

type LoginRequest struct {
	Phone string `json:"phone" form:"phone"`
}

type VerifyRequest struct {
	Code string `json:"code" form:"code"`
}

type PasswordRequest struct {
	Password string `json:"password" form:"password"`
}

type LoginResponse struct {
	OK     bool   `json:"ok"`
	Status string `json:"status"`
	Me     *Me    `json:"me,omitempty"`
}

// UserGateway is the part of the source session that drives authentication.
type UserGateway interface {
	// SendCode asks the messaging service to deliver a login code and
	// returns the hash that must accompany the sign in.
	SendCode(ctx context.Context, phone string) (codeHash string, err error)
	// SignIn returns ErrPasswordRequired when the account has 2FA enabled.
	SignIn(ctx context.Context, phone, code, codeHash string) (Me, error)
	CheckPassword(ctx context.Context, password string) (Me, error)
	Authorized(ctx context.Context) (bool, error)
	Self(ctx context.Context) (Me, error)
}

type IAuthUsecase interface {
	RequestCode(ctx context.Context, request LoginRequest) (response LoginResponse, err error)
	VerifyCode(ctx context.Context, request VerifyRequest) (response LoginResponse, err error)
	SubmitPassword(ctx context.Context, request PasswordRequest) (response LoginResponse, err error)
	Status() LoginState
	IsLoggedIn() bool
	Reset()
	Restore(ctx context.Context) (restored bool, err error)
}

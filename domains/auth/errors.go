package auth

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrPasswordRequired is returned by UserGateway.SignIn when a second factor is needed.
var ErrPasswordRequired = errors.New("password required")

// ErrNotLoggedIn is returned by operations that need an authenticated source session.
var ErrNotLoggedIn = NotLoggedInError("not logged in")

type NotLoggedInError string

func (err NotLoggedInError) Error() string   { return string(err) }
func (err NotLoggedInError) ErrCode() string { return "NOT_LOGGED_IN" }
func (err NotLoggedInError) StatusCode() int { return http.StatusBadRequest }

type UnexpectedStepError struct {
	Expected Step
}

func (e *UnexpectedStepError) Error() string {
	return fmt.Sprintf("not expecting %s", e.Expected)
}

func (e *UnexpectedStepError) ErrCode() string { return "UNEXPECTED_STEP" }
func (e *UnexpectedStepError) StatusCode() int { return http.StatusBadRequest }

type CodeRequestError struct {
	Err error
}

func (e *CodeRequestError) Error() string   { return e.Err.Error() }
func (e *CodeRequestError) Unwrap() error   { return e.Err }
func (e *CodeRequestError) ErrCode() string { return "CODE_REQUEST_ERROR" }
func (e *CodeRequestError) StatusCode() int { return http.StatusInternalServerError }

type VerificationError struct {
	Err error
}

func (e *VerificationError) Error() string   { return e.Err.Error() }
func (e *VerificationError) Unwrap() error   { return e.Err }
func (e *VerificationError) ErrCode() string { return "VERIFICATION_ERROR" }
func (e *VerificationError) StatusCode() int { return http.StatusInternalServerError }

type PasswordError struct {
	Err error
}

func (e *PasswordError) Error() string   { return e.Err.Error() }
func (e *PasswordError) Unwrap() error   { return e.Err }
func (e *PasswordError) ErrCode() string { return "PASSWORD_ERROR" }
func (e *PasswordError) StatusCode() int { return http.StatusInternalServerError }

package usecase

import (
	"context"
	"errors"
	"sync"

	domainAuth "github.com/AzielCF/telebridge/domains/auth"
	"github.com/AzielCF/telebridge/validations"
	"github.com/sirupsen/logrus"
)

// LoginFlow drives the phone, code and password handshake of the source
// session. Steps are serialized, so concurrent requests never see a
// half-updated state.
type LoginFlow struct {
	gateway domainAuth.UserGateway

	mu    sync.Mutex
	state domainAuth.LoginState
}

func NewLoginFlow(gateway domainAuth.UserGateway) *LoginFlow {
	return &LoginFlow{
		gateway: gateway,
		state:   domainAuth.LoginState{Step: domainAuth.StepNone},
	}
}

var _ domainAuth.IAuthUsecase = (*LoginFlow)(nil)

func (flow *LoginFlow) RequestCode(ctx context.Context, request domainAuth.LoginRequest) (response domainAuth.LoginResponse, err error) {
	if err = validations.ValidateLogin(ctx, &request); err != nil {
		return response, err
	}

	flow.mu.Lock()
	defer flow.mu.Unlock()

	hash, err := flow.gateway.SendCode(ctx, request.Phone)
	if err != nil {
		logrus.WithError(err).Error("[AUTH] failed to send login code")
		return response, &domainAuth.CodeRequestError{Err: err}
	}

	// an authorized session stays usable while a new handshake runs
	flow.state.Step = domainAuth.StepCode
	flow.state.Phone = request.Phone
	flow.state.CodeHash = hash
	logrus.Infof("[AUTH] login code sent to %s", domainAuth.MaskPhone(request.Phone))
	return domainAuth.LoginResponse{OK: true, Status: domainAuth.StatusCodeSent}, nil
}

func (flow *LoginFlow) VerifyCode(ctx context.Context, request domainAuth.VerifyRequest) (response domainAuth.LoginResponse, err error) {
	flow.mu.Lock()
	defer flow.mu.Unlock()

	if flow.state.Step != domainAuth.StepCode {
		return response, &domainAuth.UnexpectedStepError{Expected: domainAuth.StepCode}
	}
	if err = validations.ValidateVerify(ctx, &request); err != nil {
		return response, err
	}

	me, err := flow.gateway.SignIn(ctx, flow.state.Phone, request.Code, flow.state.CodeHash)
	if errors.Is(err, domainAuth.ErrPasswordRequired) {
		flow.state.Step = domainAuth.StepPassword
		logrus.Info("[AUTH] two-step verification password required")
		return domainAuth.LoginResponse{OK: true, Status: domainAuth.Status2FARequired}, nil
	}
	if err != nil {
		logrus.WithError(err).Error("[AUTH] code verification failed")
		return response, &domainAuth.VerificationError{Err: err}
	}

	return flow.loggedIn(me), nil
}

func (flow *LoginFlow) SubmitPassword(ctx context.Context, request domainAuth.PasswordRequest) (response domainAuth.LoginResponse, err error) {
	flow.mu.Lock()
	defer flow.mu.Unlock()

	if flow.state.Step != domainAuth.StepPassword {
		return response, &domainAuth.UnexpectedStepError{Expected: domainAuth.StepPassword}
	}
	if err = validations.ValidatePassword(ctx, request); err != nil {
		return response, err
	}

	me, err := flow.gateway.CheckPassword(ctx, request.Password)
	if err != nil {
		logrus.WithError(err).Error("[AUTH] password check failed")
		return response, &domainAuth.PasswordError{Err: err}
	}

	return flow.loggedIn(me), nil
}

// loggedIn must be called with mu held.
func (flow *LoginFlow) loggedIn(me domainAuth.Me) domainAuth.LoginResponse {
	flow.state = domainAuth.LoginState{
		Step:     domainAuth.StepNone,
		Phone:    flow.state.Phone,
		LoggedIn: true,
		Me:       &me,
	}
	logrus.Infof("[AUTH] logged in as %s (%d)", me.Name, me.ID)
	return domainAuth.LoginResponse{OK: true, Status: domainAuth.StatusLoggedIn, Me: &me}
}

func (flow *LoginFlow) Status() domainAuth.LoginState {
	flow.mu.Lock()
	defer flow.mu.Unlock()

	state := flow.state
	state.PhoneHint = domainAuth.MaskPhone(state.Phone)
	if state.Me != nil {
		me := *state.Me
		state.Me = &me
	}
	return state
}

func (flow *LoginFlow) IsLoggedIn() bool {
	flow.mu.Lock()
	defer flow.mu.Unlock()
	return flow.state.LoggedIn
}

// Reset drops a pending handshake. An authorized session stays logged in.
func (flow *LoginFlow) Reset() {
	flow.mu.Lock()
	defer flow.mu.Unlock()

	if flow.state.Step == domainAuth.StepNone {
		return
	}
	flow.state.Step = domainAuth.StepNone
	flow.state.CodeHash = ""
	if !flow.state.LoggedIn {
		flow.state.Phone = ""
	}
	logrus.Info("[AUTH] pending login handshake reset")
}

// Restore marks the flow logged in when the stored session is already authorized.
func (flow *LoginFlow) Restore(ctx context.Context) (bool, error) {
	flow.mu.Lock()
	defer flow.mu.Unlock()

	ok, err := flow.gateway.Authorized(ctx)
	if err != nil || !ok {
		return false, err
	}
	me, err := flow.gateway.Self(ctx)
	if err != nil {
		return false, err
	}

	flow.state = domainAuth.LoginState{Step: domainAuth.StepNone, LoggedIn: true, Me: &me}
	logrus.Infof("[AUTH] restored session for %s (%d)", me.Name, me.ID)
	return true, nil
}

// Package services contains application services for the TaskKeeper client.
// This file defines the account service: registration, password recovery,
// profile and account management on top of the session manager.
package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/taskkeeper/internal/client/client"
	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
	"github.com/dmitrijs2005/taskkeeper/internal/client/session"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
)

// Messages shown when the server gives no reason of its own.
const (
	MsgRegistrationFailed   = "Registration failed"
	MsgForgotPasswordFailed = "Forgot Password failed"
	MsgResetPasswordFailed  = "Password reset failed"
	MsgFetchUserFailed      = "Failed to fetch user"
	MsgPasswordUpdateFailed = "Password update failed"
	MsgUpdateDetailsFailed  = "Failed to update profile details"
	MsgDeleteAccountFailed  = "Account deletion failed"
)

// AuthService defines the account operations of the CLI.
//
// Contract:
//   - Login/Logout: delegate to the session manager.
//   - Register: create the account, then send the user to the login route.
//   - ResetPassword: adopt the re-issued token when the server sends one.
//   - UpdatePassword: adopt the re-issued token.
//   - DeleteAccount: end the session and send the user to the login route.
//
// Failures are *client.OperationError values whose message is fit for display.
type AuthService interface {
	Login(ctx context.Context, c models.LoginCredentials) error
	Logout(ctx context.Context)
	Register(ctx context.Context, c models.RegisterCredentials) error
	ForgotPassword(ctx context.Context, r models.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, resetToken string, r models.ResetPasswordRequest) error
	Me(ctx context.Context) (*models.User, error)
	UpdatePassword(ctx context.Context, r models.UpdatePasswordRequest) error
	UpdateDetails(ctx context.Context, r models.UpdateDetailsRequest) (*models.User, error)
	DeleteAccount(ctx context.Context, r models.DeleteAccountRequest) error
}

type authService struct {
	client  client.Client
	session *session.Manager
	log     logging.Logger
}

func NewAuthService(c client.Client, s *session.Manager, log logging.Logger) AuthService {
	return &authService{client: c, session: s, log: log.With("component", "auth")}
}

type validator interface {
	Validate() error
}

// validate turns a request validation error into an OperationError so it
// reaches the user the same way a server refusal does.
func validate(op string, v validator) error {
	if err := v.Validate(); err != nil {
		return &client.OperationError{Op: op, Message: err.Error(), Err: errors.Join(common.ErrorValidation, err)}
	}
	return nil
}

func (a *authService) Login(ctx context.Context, c models.LoginCredentials) error {
	return a.session.Login(ctx, c)
}

func (a *authService) Logout(ctx context.Context) {
	a.session.Logout(ctx)
}

func (a *authService) Register(ctx context.Context, c models.RegisterCredentials) error {
	if err := validate("register", c); err != nil {
		return err
	}
	if err := a.client.Register(ctx, c); err != nil {
		return client.Failure("register", MsgRegistrationFailed, err)
	}
	a.log.Info(ctx, "registered", "username", c.Username)
	a.session.Redirect(ctx, common.RouteLogin)
	return nil
}

func (a *authService) ForgotPassword(ctx context.Context, r models.ForgotPasswordRequest) error {
	if err := validate("forgotpassword", r); err != nil {
		return err
	}
	if err := a.client.ForgotPassword(ctx, r); err != nil {
		return client.Failure("forgotpassword", MsgForgotPasswordFailed, err)
	}
	return nil
}

func (a *authService) ResetPassword(ctx context.Context, resetToken string, r models.ResetPasswordRequest) error {
	if resetToken == "" {
		return &client.OperationError{Op: "resetpassword", Message: "Reset token is required", Err: common.ErrorValidation}
	}
	if err := validate("resetpassword", r); err != nil {
		return err
	}

	token, err := a.client.ResetPassword(ctx, resetToken, r)
	if err != nil {
		return client.Failure("resetpassword", MsgResetPasswordFailed, err)
	}

	if token != "" && a.session.Adopt(ctx, token) {
		a.session.Redirect(ctx, common.RouteDashboard)
		return nil
	}
	a.session.Redirect(ctx, common.RouteLogin)
	return nil
}

func (a *authService) Me(ctx context.Context) (*models.User, error) {
	u, err := a.client.Me(ctx)
	if err != nil {
		return nil, client.Failure("me", MsgFetchUserFailed, err)
	}
	return u, nil
}

func (a *authService) UpdatePassword(ctx context.Context, r models.UpdatePasswordRequest) error {
	if err := validate("updatepassword", r); err != nil {
		return err
	}
	token, err := a.client.UpdatePassword(ctx, r)
	if err != nil {
		return client.Failure("updatepassword", MsgPasswordUpdateFailed, err)
	}
	if !a.session.Adopt(ctx, token) {
		a.log.Warn(ctx, "password changed but the new credential could not be saved")
	}
	return nil
}

func (a *authService) UpdateDetails(ctx context.Context, r models.UpdateDetailsRequest) (*models.User, error) {
	if err := validate("updatedetails", r); err != nil {
		return nil, err
	}
	u, err := a.client.UpdateDetails(ctx, r)
	if err != nil {
		return nil, client.Failure("updatedetails", MsgUpdateDetailsFailed, err)
	}
	return u, nil
}

func (a *authService) DeleteAccount(ctx context.Context, r models.DeleteAccountRequest) error {
	if err := validate("deleteaccount", r); err != nil {
		return err
	}
	if err := a.client.DeleteAccount(ctx, r); err != nil {
		return client.Failure("deleteaccount", MsgDeleteAccountFailed, err)
	}
	a.session.ClearCredential(ctx)
	a.log.Info(ctx, "account deleted")
	a.session.Redirect(ctx, common.RouteLogin)
	return nil
}

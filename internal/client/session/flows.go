package session

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/client/client"
	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

// Messages shown for a failed login.
const (
	MsgInvalidCredentials = "Invalid email or password"
	MsgLoginFailed        = "Login failed"
)

// Login exchanges credentials for a token, stores it and navigates to the
// landing route. On any failure the session is left exactly as it was and an
// *client.OperationError is returned.
func (m *Manager) Login(ctx context.Context, c models.LoginCredentials) error {
	if err := c.Validate(); err != nil {
		return &client.OperationError{Op: "login", Message: err.Error(), Err: errors.Join(common.ErrorValidation, err)}
	}
	if m.auth == nil {
		return &client.OperationError{Op: "login", Message: MsgLoginFailed, Err: errors.New("no authenticator configured")}
	}

	token, err := m.auth.Login(ctx, c)
	if err != nil {
		m.log.Info(ctx, "login failed", "error", err)
		if errors.Is(err, client.ErrUnauthorized) {
			return &client.OperationError{Op: "login", Message: MsgInvalidCredentials, Err: err}
		}
		return client.Failure("login", MsgLoginFailed, err)
	}

	if strings.TrimSpace(token) == "" {
		return &client.OperationError{Op: "login", Message: MsgLoginFailed, Err: common.ErrEmptyToken}
	}

	if _, had := m.GetCredential(ctx); had {
		// another account may have been signed in
		m.ended(ctx)
	}

	if !m.Adopt(ctx, token) {
		// Storage is unavailable. The user stays anonymous and the guard
		// will ask for a login again.
		m.log.Warn(ctx, "login succeeded but the session could not be saved")
	}

	m.log.Info(ctx, "logged in")
	m.navigate(ctx, m.opts.LandingRoute)
	return nil
}

// Logout clears the session and navigates to login. It does not talk to the
// server.
func (m *Manager) Logout(ctx context.Context) {
	m.ClearCredential(ctx)
	m.log.Info(ctx, "logged out")
	m.navigate(ctx, m.opts.LoginRoute)
}

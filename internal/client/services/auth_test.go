package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/taskkeeper/internal/client/client"
	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
	"github.com/dmitrijs2005/taskkeeper/internal/client/session"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)

	creds := models.RegisterCredentials{Username: "bob", Email: "bob@example.com", Password: "hunter22"}
	require.NoError(t, h.auth.Register(ctx, creds))
	assert.Equal(t, common.RouteLogin, h.nav.Last())

	// registration does not log in
	_, ok := h.session.GetCredential(ctx)
	assert.False(t, ok)

	err := h.auth.Register(ctx, creds)
	require.EqualError(t, err, "User already exists")
	assert.Len(t, h.nav.Routes(), 1)
}

func TestRegister_Validation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)

	err := h.auth.Register(ctx, models.RegisterCredentials{Username: "bob", Email: "bob", Password: "x"})
	require.ErrorIs(t, err, common.ErrorValidation)
	assert.Zero(t, h.backend.Hits("/api/auth/register"))
}

func TestRegister_Unavailable(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)
	h.backend.SetUnavailable(true)

	err := h.auth.Register(ctx, models.RegisterCredentials{Username: "bob", Email: "bob@example.com", Password: "hunter22"})
	// the 503 body carries a message; without one the fallback is used
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrUnavailable)
}

func TestLoginThenMe(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)
	_, err := h.backend.AddUser("ann", testEmail, testPassword)
	require.NoError(t, err)

	require.NoError(t, h.auth.Login(ctx, models.LoginCredentials{Email: testEmail, Password: testPassword}))
	assert.Equal(t, common.RouteDashboard, h.nav.Last())
	assert.Equal(t, session.StateAuthenticated, h.session.State(ctx))

	me, err := h.auth.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ann", me.Username)

	h.auth.Logout(ctx)
	assert.Equal(t, common.RouteLogin, h.nav.Last())

	before := h.backend.Hits("/api/auth/me")
	_, err = h.auth.Me(ctx)
	require.ErrorIs(t, err, common.ErrCredentialAbsent)
	assert.Equal(t, before, h.backend.Hits("/api/auth/me"))
}

func TestLogin_WrongPasswordKeepsAnonymous(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)
	_, err := h.backend.AddUser("ann", testEmail, testPassword)
	require.NoError(t, err)

	err = h.auth.Login(ctx, models.LoginCredentials{Email: testEmail, Password: "wrong-one"})
	require.EqualError(t, err, session.MsgInvalidCredentials)
	assert.Equal(t, session.StateAnonymous, h.session.State(ctx))
	assert.Empty(t, h.nav.Routes())
}

func TestSessionInvalidatedByServer(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)

	h.backend.RevokeAll()

	_, err := h.auth.Me(ctx)
	require.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Equal(t, session.StateAnonymous, h.session.State(ctx))
	assert.Equal(t, []string{common.RouteLogin}, h.nav.Routes())
}

func TestForgotAndResetPassword(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)
	_, err := h.backend.AddUser("ann", testEmail, testPassword)
	require.NoError(t, err)

	err = h.auth.ForgotPassword(ctx, models.ForgotPasswordRequest{Email: "nobody@example.com"})
	require.EqualError(t, err, "There is no user with that email")

	require.NoError(t, h.auth.ForgotPassword(ctx, models.ForgotPasswordRequest{Email: testEmail}))
	reset, ok := h.backend.ResetTokenFor(testEmail)
	require.True(t, ok)

	err = h.auth.ResetPassword(ctx, "bogus", models.ResetPasswordRequest{Password: "newpass1"})
	require.EqualError(t, err, "Invalid token")
	assert.Equal(t, session.StateAnonymous, h.session.State(ctx))

	require.NoError(t, h.auth.ResetPassword(ctx, reset, models.ResetPasswordRequest{Password: "newpass1"}))
	assert.Equal(t, session.StateAuthenticated, h.session.State(ctx))
	assert.Equal(t, common.RouteDashboard, h.nav.Last())

	h.session.ClearCredential(ctx)
	require.NoError(t, h.auth.Login(ctx, models.LoginCredentials{Email: testEmail, Password: "newpass1"}))
}

func TestResetPassword_EmptyToken(t *testing.T) {
	h := newHarness(t, false)
	err := h.auth.ResetPassword(context.Background(), "", models.ResetPasswordRequest{Password: "newpass1"})
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestUpdatePassword(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)
	old := h.token(t)

	err := h.auth.UpdatePassword(ctx, models.UpdatePasswordRequest{CurrentPassword: "nope", NewPassword: "newpass1"})
	require.EqualError(t, err, "Password is incorrect")
	assert.Equal(t, old, h.token(t), "a refused change keeps the session")

	require.NoError(t, h.auth.UpdatePassword(ctx, models.UpdatePasswordRequest{CurrentPassword: testPassword, NewPassword: "newpass1"}))
	_, err = h.auth.Me(ctx)
	require.NoError(t, err)
	assert.Empty(t, h.nav.Routes())
}

func TestUpdateDetails(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)

	name, bio := "annie", "writes tests"
	u, err := h.auth.UpdateDetails(ctx, models.UpdateDetailsRequest{Username: &name, Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "annie", u.Username)
	assert.Equal(t, "writes tests", u.Bio)

	empty := ""
	_, err = h.auth.UpdateDetails(ctx, models.UpdateDetailsRequest{Username: &empty})
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)

	err := h.auth.DeleteAccount(ctx, models.DeleteAccountRequest{Password: "nope"})
	require.EqualError(t, err, "Password is incorrect")
	assert.Equal(t, session.StateAuthenticated, h.session.State(ctx))

	require.NoError(t, h.auth.DeleteAccount(ctx, models.DeleteAccountRequest{Password: testPassword}))
	assert.Equal(t, session.StateAnonymous, h.session.State(ctx))
	assert.Equal(t, common.RouteLogin, h.nav.Last())

	err = h.auth.Login(ctx, models.LoginCredentials{Email: testEmail, Password: testPassword})
	var opErr *client.OperationError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, session.MsgInvalidCredentials, opErr.Message)
}

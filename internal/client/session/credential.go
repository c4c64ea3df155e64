package session

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

// State is the derived session state.
type State string

const (
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
	// StateInvalidated only exists between a 401 and the end of the clear
	// that follows it; State never reports it.
	StateInvalidated State = "invalidated"
)

// SetCredential persists token to both stores. Empty tokens are ignored.
// It never fails: storage problems are logged and the session degrades to
// anonymous, which sends the user back to login.
func (m *Manager) SetCredential(ctx context.Context, token string) {
	m.Adopt(ctx, token)
}

// Adopt is SetCredential that reports whether the durable write succeeded.
func (m *Manager) Adopt(ctx context.Context, token string) bool {
	if strings.TrimSpace(token) == "" {
		m.log.Warn(ctx, "refusing to store an empty credential")
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.tokens.Set(ctx, common.TokenStorageKey, []byte(token)); err != nil {
		m.log.Error(ctx, "failed to persist credential", "error", err)
		// keep the cookie from advertising a session the HTTP layer cannot see
		m.deleteCookie(ctx)
		return false
	}

	cookie := &http.Cookie{
		Name:     common.TokenCookieName,
		Value:    token,
		Path:     "/",
		Expires:  m.opts.Now().Add(m.opts.CookieTTL),
		SameSite: m.opts.SameSite,
		Secure:   m.opts.SecureCookie,
	}
	if err := m.cookies.Set(ctx, cookie); err != nil {
		m.log.Error(ctx, "failed to persist credential cookie", "error", err)
		// an older cookie must not outlive the token it was written for
		m.deleteCookie(ctx)
	}
	return true
}

// GetCredential reads the durable store. A missing value, an empty value and
// a failed read all report ok == false.
func (m *Manager) GetCredential(ctx context.Context) (token string, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.readToken(ctx)
}

func (m *Manager) readToken(ctx context.Context) (string, bool) {
	b, err := m.tokens.Get(ctx, common.TokenStorageKey)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			m.log.Error(ctx, "failed to read credential", "error", err)
		}
		return "", false
	}
	if len(b) == 0 {
		return "", false
	}
	return string(b), true
}

// ClearCredential removes the token from both stores and runs the OnClear
// hooks. Clearing an empty session is a no-op for the stores.
func (m *Manager) ClearCredential(ctx context.Context) {
	m.mu.Lock()
	m.clearLocked(ctx)
	m.mu.Unlock()

	m.ended(ctx)
}

func (m *Manager) clearLocked(ctx context.Context) {
	if err := m.tokens.Delete(ctx, common.TokenStorageKey); err != nil {
		m.log.Error(ctx, "failed to remove credential", "error", err)
	}
	m.deleteCookie(ctx)
}

func (m *Manager) deleteCookie(ctx context.Context) {
	if err := m.cookies.Delete(ctx, common.TokenCookieName); err != nil {
		m.log.Error(ctx, "failed to remove credential cookie", "error", err)
	}
}

// State reports anonymous or authenticated.
func (m *Manager) State(ctx context.Context) State {
	if _, ok := m.GetCredential(ctx); ok {
		return StateAuthenticated
	}
	return StateAnonymous
}

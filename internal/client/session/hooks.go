package session

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

func segments(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
}

func splitEndpoints(endpoints []string) [][]string {
	out := make([][]string, 0, len(endpoints))
	for _, e := range endpoints {
		if s := segments(e); len(s) > 0 {
			out = append(out, s)
		}
	}
	return out
}

// IsPublic reports whether path addresses an allow-listed endpoint. The
// endpoint's segments must appear contiguously in path, so both prefixed
// paths (/v1/api/auth/login) and trailing parameters
// (/api/auth/resetpassword/<token>) match while /api/auth/loginx does not.
func (m *Manager) IsPublic(path string) bool {
	parts := segments(path)
	for _, ep := range m.public {
		for i := 0; i+len(ep) <= len(parts); i++ {
			match := true
			for j := range ep {
				if parts[i+j] != ep[j] {
					match = false
					break
				}
			}
			if match {
				return true
			}
		}
	}
	return false
}

// AttachAuthorization runs before every outgoing request. With a credential
// it returns a copy of req carrying "Authorization: Bearer <token>". Without
// one, a public request passes unchanged, and any other request is refused
// with common.ErrCredentialAbsent after the user is sent to the login route.
func (m *Manager) AttachAuthorization(req *http.Request) (*http.Request, error) {
	ctx := req.Context()

	if token, ok := m.GetCredential(ctx); ok {
		if token = strings.TrimSpace(token); token != "" {
			out := req.Clone(ctx)
			out.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
			return out, nil
		}
	}

	if m.IsPublic(req.URL.Path) {
		return req, nil
	}

	m.log.Warn(ctx, "no credential for protected request", "path", req.URL.Path)
	m.navigate(ctx, m.opts.LoginRoute)
	return nil, common.ErrCredentialAbsent
}

// HandleAuthorizationFailure runs on every response and returns it unchanged.
// A 401 from a protected endpoint invalidates the session: the credential is
// cleared and the user is sent to login. Only the response that actually
// ends a session redirects, so a burst of parallel 401s navigates once.
// A 401 from a public endpoint (bad login password) is a domain failure and
// leaves the session alone.
func (m *Manager) HandleAuthorizationFailure(resp *http.Response) *http.Response {
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		return resp
	}

	ctx, path := context.Background(), ""
	if resp.Request != nil {
		ctx = resp.Request.Context()
		if resp.Request.URL != nil {
			path = resp.Request.URL.Path
		}
	}
	if m.IsPublic(path) {
		return resp
	}

	m.mu.Lock()
	_, had := m.readToken(ctx)
	if had {
		m.clearLocked(ctx)
	}
	m.mu.Unlock()

	if !had {
		m.log.Debug(ctx, "authorization failure without a session", "path", path)
		return resp
	}

	m.log.Warn(ctx, "session invalidated by server", "path", path, "state", StateInvalidated)
	m.opts.Metrics.IncAuthFailure()
	m.ended(ctx)
	m.navigate(ctx, m.opts.LoginRoute)
	return resp
}

// Middleware composes both hooks around a transport.
func (m *Manager) Middleware() func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		return &transport{m: m, next: next}
	}
}

type transport struct {
	m    *Manager
	next http.RoundTripper
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	out, err := t.m.AttachAuthorization(req)
	if err != nil {
		if req.Body != nil {
			_ = req.Body.Close()
		}
		return nil, err
	}

	resp, err := t.next.RoundTrip(out)
	if err != nil {
		return nil, err
	}
	return t.m.HandleAuthorizationFailure(resp), nil
}

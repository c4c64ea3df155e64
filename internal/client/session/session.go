// Package session owns the client's bearer credential.
//
// The Manager is the only component that writes or clears the token. It keeps
// two persisted copies in step: the durable key/value store read by the HTTP
// layer and the cookie read by the route guard. It also provides the two
// transport hooks: AttachAuthorization runs before every request and
// HandleAuthorizationFailure after every response.
//
// Trust in the credential is binary. The token is never decoded on the
// client; it is believed until the server answers 401, at which point it is
// cleared and the user is sent to the login route.
package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/client/metrics"
	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
)

//go:generate mockgen -source=session.go -destination=mocks/session_mocks.go -package=mocks Navigator,Authenticator

// TokenStore is the durable key/value store holding the token.
// metadata.SQLiteRepository satisfies it.
type TokenStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// CookieStore holds the cookie copy of the token.
// cookies.SQLiteRepository satisfies it.
type CookieStore interface {
	Set(ctx context.Context, c *http.Cookie) error
	Get(ctx context.Context, name string) (*http.Cookie, error)
	Delete(ctx context.Context, name string) error
}

// Navigator switches the user to another route.
type Navigator interface {
	Navigate(ctx context.Context, route string)
}

// Authenticator exchanges credentials for a token at the login endpoint.
type Authenticator interface {
	Login(ctx context.Context, c models.LoginCredentials) (string, error)
}

// DefaultPublicEndpoints can be called without a credential. "me" is not
// public: without a token it is answered locally by a redirect to login.
var DefaultPublicEndpoints = []string{
	"/api/auth/login",
	"/api/auth/register",
	"/api/auth/forgotpassword",
	"/api/auth/resetpassword",
}

// Options tune the Manager. Zero values pick the defaults.
type Options struct {
	PublicEndpoints []string
	// SecureCookie sets the Secure attribute; true when the backend is HTTPS.
	SecureCookie bool
	SameSite     http.SameSite
	CookieTTL    time.Duration
	LoginRoute   string
	LandingRoute string
	Metrics      *metrics.Metrics
	Now          func() time.Time
}

func (o *Options) applyDefaults() {
	if o.PublicEndpoints == nil {
		o.PublicEndpoints = DefaultPublicEndpoints
	}
	if o.SameSite == 0 || o.SameSite == http.SameSiteDefaultMode {
		o.SameSite = http.SameSiteLaxMode
	}
	if o.CookieTTL <= 0 {
		o.CookieTTL = common.TokenCookieTTL
	}
	if o.LoginRoute == "" {
		o.LoginRoute = common.RouteLogin
	}
	if o.LandingRoute == "" {
		o.LandingRoute = common.RouteDashboard
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Manager implements the session lifecycle. Create it with New.
type Manager struct {
	tokens  TokenStore
	cookies CookieStore
	nav     Navigator
	auth    Authenticator
	log     logging.Logger
	opts    Options
	public  [][]string

	// mu serialises writers so both stores always move together; readers
	// take the read lock so they never observe a half-written pair.
	mu sync.RWMutex

	hooksMu sync.Mutex
	onClear []func(ctx context.Context)
}

// New wires a Manager. auth may be nil when Login is not used.
func New(tokens TokenStore, cookies CookieStore, nav Navigator, auth Authenticator, log logging.Logger, opts Options) *Manager {
	opts.applyDefaults()
	return &Manager{
		tokens:  tokens,
		cookies: cookies,
		nav:     nav,
		auth:    auth,
		log:     log.With("component", "session"),
		opts:    opts,
		public:  splitEndpoints(opts.PublicEndpoints),
	}
}

// SetAuthenticator binds the login endpoint after construction. The HTTP
// client needs the Manager's middleware before it exists, so the two are
// wired in two steps.
func (m *Manager) SetAuthenticator(auth Authenticator) {
	m.auth = auth
}

// OnClear registers fn to run after a session ends: logout, account
// deletion, a 401 from the server or a login that replaces another session.
// Data cached on behalf of the ended session is dropped there.
func (m *Manager) OnClear(fn func(ctx context.Context)) {
	m.hooksMu.Lock()
	defer m.hooksMu.Unlock()
	m.onClear = append(m.onClear, fn)
}

// ended runs the OnClear hooks. It must be called without mu held.
func (m *Manager) ended(ctx context.Context) {
	m.hooksMu.Lock()
	hooks := append([]func(context.Context){}, m.onClear...)
	m.hooksMu.Unlock()

	for _, fn := range hooks {
		fn(ctx)
	}
}

func (m *Manager) navigate(ctx context.Context, route string) {
	m.opts.Metrics.IncRedirect(route)
	m.log.Debug(ctx, "navigating", "route", route)
	m.nav.Navigate(ctx, route)
}

// Redirect sends the user to route through the Manager's navigator, counted
// and logged like the Manager's own redirects.
func (m *Manager) Redirect(ctx context.Context, route string) {
	m.navigate(ctx, route)
}

package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/backendtest"
	"github.com/dmitrijs2005/taskkeeper/internal/client/client"
	"github.com/dmitrijs2005/taskkeeper/internal/client/repositories"
	"github.com/dmitrijs2005/taskkeeper/internal/client/repositories/cookies"
	"github.com/dmitrijs2005/taskkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/taskkeeper/internal/client/session"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "ann@example.com"
	testPassword = "secret1"
)

type recordingNavigator struct {
	mu     sync.Mutex
	routes []string
}

func (n *recordingNavigator) Navigate(_ context.Context, route string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.routes = append(n.routes, route)
}

func (n *recordingNavigator) Routes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.routes...)
}

func (n *recordingNavigator) Last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.routes) == 0 {
		return ""
	}
	return n.routes[len(n.routes)-1]
}

type harness struct {
	backend *backendtest.Server
	db      *sql.DB
	nav     *recordingNavigator
	session *session.Manager
	client  *client.HTTPClient

	auth      AuthService
	tasks     TaskService
	analytics AnalyticsService
}

// newHarness wires the real stack against an in-process backend. With
// loggedIn the test user exists and holds a session.
func newHarness(t *testing.T, loggedIn bool) *harness {
	t.Helper()
	ctx := context.Background()

	backend, srv := backendtest.Start(t)

	db, err := repositories.InitDatabase(ctx, filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logging.Nop()
	nav := &recordingNavigator{}
	mgr := session.New(metadata.NewSQLiteRepository(db), cookies.NewSQLiteRepository(db), nav, nil, log, session.Options{})

	hc, err := client.NewHTTPClient(srv.URL, 5*time.Second, nil, mgr.Middleware())
	require.NoError(t, err)
	mgr.SetAuthenticator(hc)

	h := &harness{
		backend:   backend,
		db:        db,
		nav:       nav,
		session:   mgr,
		client:    hc,
		auth:      NewAuthService(hc, mgr, log),
		tasks:     NewTaskService(hc, db, log),
		analytics: NewAnalyticsService(hc, log),
	}

	mgr.OnClear(h.tasks.Purge)

	if loggedIn {
		_, err := backend.AddUser("ann", testEmail, testPassword)
		require.NoError(t, err)
		token, err := backend.TokenFor(testEmail)
		require.NoError(t, err)
		mgr.SetCredential(ctx, token)
	}
	return h
}

func (h *harness) token(t *testing.T) string {
	t.Helper()
	tok, ok := h.session.GetCredential(context.Background())
	require.True(t, ok, "expected a session")
	return tok
}

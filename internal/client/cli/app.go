package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/taskkeeper/internal/client/guard"
	"github.com/dmitrijs2005/taskkeeper/internal/client/services"
	"github.com/dmitrijs2005/taskkeeper/internal/client/session"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
)

// maxRenders bounds how many screens one prompt cycle may render, so a
// screen that keeps redirecting cannot spin.
const maxRenders = 4

// Services are the collaborators the screens and commands call.
type Services struct {
	Session   *session.Manager
	Auth      services.AuthService
	Tasks     services.TaskService
	Analytics services.AnalyticsService
}

type App struct {
	reader *bufio.Reader
	out    io.Writer
	guard  *guard.Guard
	log    logging.Logger
	svc    Services

	mu      sync.Mutex
	route   string
	pending bool
}

var _ session.Navigator = (*App)(nil)

// NewApp creates the front end. The session manager needs the App as its
// navigator, so services are attached afterwards with Attach.
func NewApp(in io.Reader, out io.Writer, g *guard.Guard, log logging.Logger) *App {
	return &App{
		reader: bufio.NewReader(in),
		out:    out,
		guard:  g,
		log:    log.With("component", "cli"),
		route:  common.RouteHome,
	}
}

func (a *App) Attach(s Services) {
	a.svc = s
}

// Navigate runs the route guard and switches to the resulting screen. It
// only records the switch; the screen is rendered by the REPL before the
// next prompt, so it is safe to call from transport goroutines.
func (a *App) Navigate(ctx context.Context, route string) {
	d := a.guard.Check(ctx, route)
	if !d.Allowed() {
		a.log.Debug(ctx, "navigation redirected", "route", d.Route, "to", d.Redirect)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.route = d.Target()
	a.pending = true
}

// Route is the current screen.
func (a *App) Route() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.route
}

func (a *App) takePending() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.pending {
		return "", false
	}
	a.pending = false
	return a.route, true
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	return a.guard.HasSession(ctx)
}

func (a *App) status() string {
	return a.Route()
}

// render shows every screen requested since the last prompt.
func (a *App) render(ctx context.Context) {
	for i := 0; i < maxRenders; i++ {
		route, ok := a.takePending()
		if !ok {
			return
		}
		a.show(ctx, route)
	}
}

// Start opens the screen implied by the persisted session.
func (a *App) Start(ctx context.Context) {
	if a.isLoggedIn(ctx) {
		a.Navigate(ctx, common.RouteDashboard)
		return
	}
	a.Navigate(ctx, common.RouteLogin)
}

// Run starts the REPL and blocks until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to TaskKeeper CLI (type 'help' for commands)")
	a.Start(ctx)
	runREPL(ctx, a, a.status, a.reader, a.out)
}

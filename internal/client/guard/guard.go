// Package guard decides whether a route may be shown. It only looks at the
// credential cookie and never changes session state.
package guard

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
)

// CookieReader is the read side of session.CookieStore.
type CookieReader interface {
	Get(ctx context.Context, name string) (*http.Cookie, error)
}

// Decision is the outcome of Check. Redirect is empty when the route is
// allowed.
type Decision struct {
	Route    string
	Redirect string
}

func (d Decision) Allowed() bool {
	return d.Redirect == ""
}

// Target is the route that should actually be shown.
func (d Decision) Target() string {
	if d.Redirect != "" {
		return d.Redirect
	}
	return d.Route
}

var publicRoutes = []string{
	common.RouteLogin,
	common.RouteRegister,
	common.RouteForgotPassword,
	common.RouteResetPassword,
}

type Guard struct {
	cookies CookieReader
	log     logging.Logger
}

func New(cookies CookieReader, log logging.Logger) *Guard {
	return &Guard{cookies: cookies, log: log.With("component", "guard")}
}

// Normalize cleans a user supplied route: it gets a leading slash, loses
// any query and trailing slash.
func Normalize(route string) string {
	route = strings.TrimSpace(route)
	if i := strings.IndexAny(route, "?#"); i >= 0 {
		route = route[:i]
	}
	route = "/" + strings.Trim(route, "/")
	return route
}

// IsPublic reports whether route can be shown without a session.
func IsPublic(route string) bool {
	route = Normalize(route)
	if route == common.RouteHome {
		return true
	}
	for _, p := range publicRoutes {
		if route == p || strings.HasPrefix(route, p+"/") {
			return true
		}
	}
	return false
}

func isAuthPage(route string) bool {
	return route == common.RouteLogin || route == common.RouteRegister
}

// HasSession reports whether an unexpired credential cookie exists.
func (g *Guard) HasSession(ctx context.Context) bool {
	c, err := g.cookies.Get(ctx, common.TokenCookieName)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			g.log.Error(ctx, "failed to read credential cookie", "error", err)
		}
		return false
	}
	return c.Value != ""
}

// Check evaluates route against the cookie.
func (g *Guard) Check(ctx context.Context, route string) Decision {
	route = Normalize(route)
	d := Decision{Route: route}

	if strings.HasPrefix(route, "/api/") || route == "/api" {
		return d
	}

	authed := g.HasSession(ctx)
	switch {
	case !authed && !IsPublic(route):
		d.Redirect = common.RouteLogin
	case authed && isAuthPage(route):
		d.Redirect = common.RouteDashboard
	}

	if d.Redirect != "" {
		g.log.Debug(ctx, "route redirected", "route", route, "to", d.Redirect)
	}
	return d
}

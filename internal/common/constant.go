// Package common contains shared constants and sentinel errors used across
// TaskKeeper components. Match the errors with errors.Is.
package common

import "time"

// AuthorizationHeaderName is the HTTP header carrying the bearer credential
// on outbound requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token in the Authorization header value.
const BearerPrefix = "Bearer "

// TokenStorageKey is the durable store key holding the bearer token.
const TokenStorageKey = "authToken"

// TokenCookieName is the cookie read by the route guard.
const TokenCookieName = "authToken"

// TokenCookieTTL is the fixed cookie lifetime, set at write time and not
// refreshed on use.
const TokenCookieTTL = 7 * 24 * time.Hour

// Application routes.
const (
	RouteHome           = "/"
	RouteLogin          = "/login"
	RouteRegister       = "/register"
	RouteForgotPassword = "/forgot-password"
	RouteResetPassword  = "/reset-password"
	RouteDashboard      = "/dashboard"
	RouteTasks          = "/tasks"
	RouteAnalytics      = "/analytics"
	RouteProfile        = "/profile"
	RouteSettings       = "/settings"
)

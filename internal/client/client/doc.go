// Package client talks to the TaskKeeper backend over its REST/JSON API.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface): the
//     auth endpoints (login, register, password flows, profile, account
//     deletion), task CRUD and the analytics queries.
//  2. A concrete implementation over net/http (see HTTPClient) with a
//     deliberate request timeout and an explicit middleware chain. The
//     session package contributes the hooks that attach the bearer token and
//     react to authorization failures; the metrics package contributes
//     request counters.
//
// # Error Handling
//
// Non-2xx responses become *APIError carrying the server's message. Common
// conditions are exposed as sentinel errors that callers can match with
// errors.Is: ErrUnavailable, ErrUnauthorized. Page-level code only ever sees
// *OperationError, whose Error() is a human-readable message.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation on top of the client timeout.
package client

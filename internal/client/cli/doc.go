// Package cli provides the interactive TaskKeeper command-line client.
//
// The client is organised as screens addressed by routes (/login,
// /dashboard, /tasks, ...). App implements session.Navigator: every
// navigation request passes through the route guard, and the REPL renders
// the resulting screen before the next prompt. A session that the server
// rejects therefore always ends on the login screen.
//
// Key features:
//   - Login / Register / Logout, password recovery
//   - Task list with optimistic add, update, done and delete
//   - Dashboard and analytics screens
//   - Profile, password change and account deletion
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn(ctx context.Context) bool
	render(ctx context.Context)
	Navigate(ctx context.Context, route string)

	Login(ctx context.Context) error
	Register(ctx context.Context) error
	Forgot(ctx context.Context) error
	Reset(ctx context.Context, token string) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) error

	AddTask(ctx context.Context) error
	UpdateTask(ctx context.Context, id string) error
	DoneTask(ctx context.Context, id string) error
	DeleteTask(ctx context.Context, id string) error

	EditProfile(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	DeleteAccount(ctx context.Context) error
}

const (
	helpAnonymous = "Available commands: login, register, forgot, reset <token>, go <route>, exit"
	helpLoggedIn  = "Available commands: dashboard, tasks, add, update <id>, done <id>, delete <id>, " +
		"analytics, profile, me, editprofile, password, deleteaccount, logout, go <route>, exit"
)

// screenCommands open a screen instead of running an action.
var screenCommands = map[string]string{
	"dashboard": common.RouteDashboard,
	"tasks":     common.RouteTasks,
	"analytics": common.RouteAnalytics,
	"profile":   common.RouteProfile,
	"settings":  common.RouteSettings,
}

// errorMessage is what the user sees for a failed command.
func errorMessage(err error) string {
	if errors.Is(err, common.ErrCredentialAbsent) {
		return "Please log in first"
	}
	return err.Error()
}

func withID(args []string, w io.Writer, usage string, fn func(id string) error) error {
	if len(args) == 0 {
		fmt.Fprintln(w, "Usage:", usage)
		return nil
	}
	return fn(args[0])
}

// runREPL starts a simple read–eval–print loop for the TaskKeeper CLI.
//
// Before every prompt the screens requested since the previous command are
// rendered; the prompt shows the current route (from statusFn). The first
// token of a line is the command. The loop exits on EOF or when the user
// types "exit" or "quit".
//
// Errors returned by command handlers are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		a.render(ctx)

		fmt.Fprintf(w, "tk %s> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(w)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn(ctx) {
				fmt.Fprintln(w, helpLoggedIn)
			} else {
				fmt.Fprintln(w, helpAnonymous)
			}

		case "login":
			cmdErr = a.Login(ctx)
		case "register":
			cmdErr = a.Register(ctx)
		case "forgot":
			cmdErr = a.Forgot(ctx)
		case "reset":
			token := ""
			if len(args) > 0 {
				token = args[0]
			}
			cmdErr = a.Reset(ctx, token)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "me":
			cmdErr = a.Me(ctx)

		case "dashboard", "tasks", "analytics", "profile", "settings":
			a.Navigate(ctx, screenCommands[cmd])
		case "go":
			if len(args) == 0 {
				fmt.Fprintln(w, "Usage: go <route>")
				continue
			}
			a.Navigate(ctx, args[0])

		case "add":
			cmdErr = a.AddTask(ctx)
		case "update":
			cmdErr = withID(args, w, "update <id>", func(id string) error { return a.UpdateTask(ctx, id) })
		case "done":
			cmdErr = withID(args, w, "done <id>", func(id string) error { return a.DoneTask(ctx, id) })
		case "delete":
			cmdErr = withID(args, w, "delete <id>", func(id string) error { return a.DeleteTask(ctx, id) })

		case "editprofile":
			cmdErr = a.EditProfile(ctx)
		case "password":
			cmdErr = a.ChangePassword(ctx)
		case "deleteaccount":
			cmdErr = a.DeleteAccount(ctx)

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}

		if cmdErr != nil {
			fmt.Fprintln(w, "Error:", errorMessage(cmdErr))
		}
	}
}

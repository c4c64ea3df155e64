package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/taskkeeper/internal/client/client"
	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

func (a *App) show(ctx context.Context, route string) {
	switch {
	case route == common.RouteHome:
		a.header("TaskKeeper")
		fmt.Fprintln(a.out, "Organise your tasks. Type 'login' or 'register' to begin.")
	case route == common.RouteLogin:
		a.header("Login")
		fmt.Fprintln(a.out, "Type 'login' to sign in, 'register' to create an account or 'forgot' to recover your password.")
	case route == common.RouteRegister:
		a.header("Register")
		fmt.Fprintln(a.out, "Type 'register' to create an account.")
	case route == common.RouteForgotPassword:
		a.header("Forgot password")
		fmt.Fprintln(a.out, "Type 'forgot' to receive a reset token by email.")
	case route == common.RouteResetPassword || strings.HasPrefix(route, common.RouteResetPassword+"/"):
		a.header("Reset password")
		fmt.Fprintln(a.out, "Type 'reset <token>' to choose a new password.")
	case route == common.RouteDashboard:
		a.showDashboard(ctx)
	case route == common.RouteTasks:
		a.showTasks(ctx)
	case route == common.RouteAnalytics:
		a.showAnalytics(ctx)
	case route == common.RouteProfile:
		a.showProfile(ctx)
	case route == common.RouteSettings:
		a.header("Settings")
		fmt.Fprintln(a.out, "Type 'editprofile', 'password' or 'deleteaccount'.")
	default:
		a.header("Not found")
		fmt.Fprintf(a.out, "There is no page at %s. Type 'help' for commands.\n", route)
	}
}

func (a *App) header(title string) {
	fmt.Fprintf(a.out, "\n== %s ==\n", title)
}

// screenFailed prints a load failure and reports whether the session is
// still usable. A lost session is not printed: the login screen follows.
func (a *App) screenFailed(err error) bool {
	if errors.Is(err, client.ErrUnauthorized) || errors.Is(err, common.ErrCredentialAbsent) {
		return false
	}
	fmt.Fprintln(a.out, "Error:", errorMessage(err))
	return true
}

func (a *App) showDashboard(ctx context.Context) {
	a.header("Dashboard")
	d, err := a.svc.Analytics.Dashboard(ctx)
	if err != nil {
		a.screenFailed(err)
		return
	}

	fmt.Fprintf(a.out, "Tasks: %d  Completed: %d  Completion rate: %d%%  Overdue: %d\n",
		len(d.Tasks), d.Completed(), d.CompletionRate(), len(d.Overdue))
	if len(d.Overdue) > 0 {
		fmt.Fprintln(a.out, "Overdue:")
		printTasks(a.out, d.Overdue)
	}
}

func (a *App) showTasks(ctx context.Context) {
	a.header("Tasks")
	list, err := a.svc.Tasks.Refresh(ctx)
	if err != nil {
		if !a.screenFailed(err) {
			return
		}
		if len(list) > 0 {
			fmt.Fprintln(a.out, "Showing cached tasks:")
		}
	}
	if len(list) == 0 {
		if err == nil {
			fmt.Fprintln(a.out, "No tasks yet. Type 'add' to create one.")
		}
		return
	}
	printTasks(a.out, list)
}

func (a *App) showAnalytics(ctx context.Context) {
	a.header("Analytics")
	d, err := a.svc.Analytics.Dashboard(ctx)
	if err != nil {
		a.screenFailed(err)
		return
	}

	fmt.Fprintf(a.out, "Total: %d  Completed: %d  Completion rate: %d%%\n", len(d.Tasks), d.Completed(), d.CompletionRate())

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\nBY STATUS\tCOUNT")
	for _, s := range d.ByStatus {
		fmt.Fprintf(tw, "%s\t%d\n", s.ID, s.Count)
	}
	fmt.Fprintln(tw, "\nBY PRIORITY\tCOUNT\tDONE")
	for _, p := range d.ByPriority {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", p.ID, p.Count, p.Completed)
	}
	fmt.Fprintln(tw, "\nCOMPLETED ON\tCOUNT")
	for _, p := range d.Trends {
		fmt.Fprintf(tw, "%s\t%d\n", p.ID, p.Count)
	}
	_ = tw.Flush()
}

func (a *App) showProfile(ctx context.Context) {
	a.header("Profile")
	u, err := a.svc.Auth.Me(ctx)
	if err != nil {
		a.screenFailed(err)
		return
	}
	printUser(a.out, u)
}

func printUser(w io.Writer, u *models.User) {
	fmt.Fprintf(w, "Username: %s\nEmail:    %s\n", u.Username, u.Email)
	if u.Bio != "" {
		fmt.Fprintf(w, "Bio:      %s\n", u.Bio)
	}
	if u.CreatedAt != "" {
		fmt.Fprintf(w, "Joined:   %s\n", u.CreatedAt)
	}
}

func printTasks(w io.Writer, list []models.Task) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPRIORITY\tSTATUS\tDUE")
	for _, t := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Title, t.Priority, t.Status, t.DueDate)
	}
	_ = tw.Flush()
}

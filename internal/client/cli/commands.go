package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

// getSimpleText, getPassword and getMultiline are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getMultiline  = GetMultiline
)

func (a *App) ask(prompt string) (string, error) {
	return getSimpleText(a.reader, prompt, a.out)
}

// askPassword reads a secret; the caller wipes it.
func (a *App) askPassword(prompt string) ([]byte, error) {
	return getPassword(a.reader, prompt, a.out)
}

// Login prompts for credentials and opens a session. On success the session
// manager navigates to the dashboard.
func (a *App) Login(ctx context.Context) error {
	email, err := a.ask("Enter email")
	if err != nil {
		return err
	}
	password, err := a.askPassword("Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.svc.Auth.Login(ctx, models.LoginCredentials{Email: email, Password: string(password)}); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged in")
	return nil
}

// Register creates an account. On success the user is sent to the login
// screen; registration does not log in.
func (a *App) Register(ctx context.Context) error {
	username, err := a.ask("Enter username")
	if err != nil {
		return err
	}
	email, err := a.ask("Enter email")
	if err != nil {
		return err
	}
	password, err := a.askPassword("Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	creds := models.RegisterCredentials{Username: username, Email: email, Password: string(password)}
	if err := a.svc.Auth.Register(ctx, creds); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Account created, you can log in now")
	return nil
}

func (a *App) Forgot(ctx context.Context) error {
	email, err := a.ask("Enter the email of your account")
	if err != nil {
		return err
	}
	if err := a.svc.Auth.ForgotPassword(ctx, models.ForgotPasswordRequest{Email: email}); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Check your email for the reset token, then type 'reset <token>'")
	a.Navigate(ctx, common.RouteResetPassword)
	return nil
}

func (a *App) Reset(ctx context.Context, token string) error {
	if token == "" {
		var err error
		if token, err = a.ask("Enter reset token"); err != nil {
			return err
		}
	}
	password, err := a.askPassword("Enter new password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.svc.Auth.ResetPassword(ctx, token, models.ResetPasswordRequest{Password: string(password)}); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Password has been reset")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.svc.Auth.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) Me(ctx context.Context) error {
	u, err := a.svc.Auth.Me(ctx)
	if err != nil {
		return err
	}
	printUser(a.out, u)
	return nil
}

func parsePriority(s string) models.Priority {
	return models.Priority(strings.ToLower(strings.TrimSpace(s)))
}

func parseTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// AddTask prompts for a new task and creates it.
func (a *App) AddTask(ctx context.Context) error {
	title, err := a.ask("Title")
	if err != nil {
		return err
	}
	description, err := getMultiline(a.reader, "Description", a.out)
	if err != nil {
		return err
	}
	priority, err := a.ask("Priority (high, medium, low; empty for medium)")
	if err != nil {
		return err
	}
	due, err := a.ask("Due date (YYYY-MM-DD, optional)")
	if err != nil {
		return err
	}
	tags, err := a.ask("Tags (comma separated, optional)")
	if err != nil {
		return err
	}

	t := &models.Task{
		Title:       title,
		Description: description,
		Priority:    parsePriority(priority),
		DueDate:     due,
		Tags:        parseTags(tags),
	}
	created, err := a.svc.Tasks.Create(ctx, t)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Task created: %s\n", created.ID)
	return nil
}

// UpdateTask edits the title, priority and status of a cached task. Empty
// answers keep the current value.
func (a *App) UpdateTask(ctx context.Context, id string) error {
	cur, err := a.findTask(ctx, id)
	if err != nil {
		return err
	}

	title, err := a.ask(fmt.Sprintf("Title [%s]", cur.Title))
	if err != nil {
		return err
	}
	priority, err := a.ask(fmt.Sprintf("Priority [%s]", cur.Priority))
	if err != nil {
		return err
	}
	status, err := a.ask(fmt.Sprintf("Status (todo, in_progress, done) [%s]", cur.Status))
	if err != nil {
		return err
	}

	next := *cur
	if title != "" {
		next.Title = title
	}
	if priority != "" {
		next.Priority = parsePriority(priority)
	}
	if status != "" {
		next.Status = models.Status(strings.TrimSpace(status))
	}

	if _, err := a.svc.Tasks.Update(ctx, id, &next); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Task updated")
	return nil
}

func (a *App) DoneTask(ctx context.Context, id string) error {
	if _, err := a.svc.Tasks.SetStatus(ctx, id, models.StatusDone); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Task completed")
	return nil
}

func (a *App) DeleteTask(ctx context.Context, id string) error {
	if err := a.svc.Tasks.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Task deleted")
	return nil
}

func (a *App) findTask(ctx context.Context, id string) (*models.Task, error) {
	list, err := a.svc.Tasks.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, fmt.Errorf("task %s not found, run 'tasks' to refresh the list", id)
}

// EditProfile updates username and bio. Empty answers leave a field alone.
func (a *App) EditProfile(ctx context.Context) error {
	username, err := a.ask("New username (empty to keep)")
	if err != nil {
		return err
	}
	bio, err := a.ask("New bio (empty to keep)")
	if err != nil {
		return err
	}

	var req models.UpdateDetailsRequest
	if username != "" {
		req.Username = &username
	}
	if bio != "" {
		req.Bio = &bio
	}
	if req.Username == nil && req.Bio == nil {
		fmt.Fprintln(a.out, "Nothing to update")
		return nil
	}

	u, err := a.svc.Auth.UpdateDetails(ctx, req)
	if err != nil {
		return err
	}
	printUser(a.out, u)
	return nil
}

func (a *App) ChangePassword(ctx context.Context) error {
	current, err := a.askPassword("Current password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(current)
	next, err := a.askPassword("New password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(next)

	req := models.UpdatePasswordRequest{CurrentPassword: string(current), NewPassword: string(next)}
	if err := a.svc.Auth.UpdatePassword(ctx, req); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Password updated")
	return nil
}

func (a *App) DeleteAccount(ctx context.Context) error {
	confirm, err := a.ask("Type DELETE to remove your account and all tasks")
	if err != nil {
		return err
	}
	if confirm != "DELETE" {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}
	password, err := a.askPassword("Password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.svc.Auth.DeleteAccount(ctx, models.DeleteAccountRequest{Password: string(password)}); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Account deleted")
	return nil
}

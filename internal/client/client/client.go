package client

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
)

// Client is the backend API contract used by the session and the services.
type Client interface {
	Login(ctx context.Context, c models.LoginCredentials) (string, error)
	Register(ctx context.Context, c models.RegisterCredentials) error
	ForgotPassword(ctx context.Context, r models.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, resetToken string, r models.ResetPasswordRequest) (string, error)
	Me(ctx context.Context) (*models.User, error)
	UpdatePassword(ctx context.Context, r models.UpdatePasswordRequest) (string, error)
	UpdateDetails(ctx context.Context, r models.UpdateDetailsRequest) (*models.User, error)
	DeleteAccount(ctx context.Context, r models.DeleteAccountRequest) error

	ListTasks(ctx context.Context) ([]models.Task, error)
	CreateTask(ctx context.Context, t *models.Task) (*models.Task, error)
	UpdateTask(ctx context.Context, id string, t *models.Task) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) error

	TasksByStatus(ctx context.Context) ([]models.StatusCount, error)
	TasksByPriority(ctx context.Context) ([]models.PriorityCount, error)
	CompletionTrends(ctx context.Context) ([]models.TrendPoint, error)
	OverdueTasks(ctx context.Context) ([]models.Task, error)
}

// API paths.
const (
	PathLogin          = "/api/auth/login"
	PathRegister       = "/api/auth/register"
	PathForgotPassword = "/api/auth/forgotpassword"
	PathResetPassword  = "/api/auth/resetpassword"
	PathMe             = "/api/auth/me"
	PathUpdatePassword = "/api/auth/updatepassword"
	PathUpdateDetails  = "/api/auth/updatedetails"
	PathDeleteAccount  = "/api/auth/deleteaccount"

	PathTasks = "/api/tasks"

	PathAnalyticsStatus   = "/api/analytics/status"
	PathAnalyticsTrends   = "/api/analytics/trends"
	PathAnalyticsPriority = "/api/analytics/priority"
	PathAnalyticsOverdue  = "/api/analytics/overdue"
)

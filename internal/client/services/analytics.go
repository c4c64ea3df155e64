package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/taskkeeper/internal/client/client"
	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"golang.org/x/sync/errgroup"
)

const MsgDashboardFailed = "Failed to load dashboard"

// AnalyticsService loads the dashboard sections.
type AnalyticsService interface {
	Dashboard(ctx context.Context) (*models.Dashboard, error)
}

type analyticsService struct {
	client client.Client
	log    logging.Logger
}

func NewAnalyticsService(c client.Client, log logging.Logger) AnalyticsService {
	return &analyticsService{client: c, log: log.With("component", "analytics")}
}

// sessionLost reports errors that end the load as a whole: the session is
// gone and the user is already on the way to the login route.
func sessionLost(err error) bool {
	return errors.Is(err, client.ErrUnauthorized) || errors.Is(err, common.ErrCredentialAbsent)
}

// section runs one fetch. Ordinary failures leave the section empty.
func section[T any](ctx context.Context, log logging.Logger, name string, dst *[]T, fetch func(context.Context) ([]T, error)) func() error {
	return func() error {
		v, err := fetch(ctx)
		if err != nil {
			if sessionLost(err) {
				return err
			}
			if ctx.Err() == nil {
				log.Warn(ctx, "dashboard section unavailable", "section", name, "error", err)
			}
			*dst = []T{}
			return nil
		}
		if v == nil {
			v = []T{}
		}
		*dst = v
		return nil
	}
}

// Dashboard fetches the task list and the four analytics sections in
// parallel.
func (s *analyticsService) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	d := &models.Dashboard{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(section(gctx, s.log, "tasks", &d.Tasks, s.client.ListTasks))
	g.Go(section(gctx, s.log, "status", &d.ByStatus, s.client.TasksByStatus))
	g.Go(section(gctx, s.log, "priority", &d.ByPriority, s.client.TasksByPriority))
	g.Go(section(gctx, s.log, "trends", &d.Trends, s.client.CompletionTrends))
	g.Go(section(gctx, s.log, "overdue", &d.Overdue, s.client.OverdueTasks))

	if err := g.Wait(); err != nil {
		return nil, client.Failure("dashboard", MsgDashboardFailed, err)
	}
	return d, nil
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/client/client"
	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
	"github.com/dmitrijs2005/taskkeeper/internal/client/session"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)

	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format(time.DateOnly)
	for _, tk := range []models.Task{
		{Title: "a", Priority: models.PriorityHigh, Status: models.StatusDone},
		{Title: "b", Priority: models.PriorityHigh},
		{Title: "c", Priority: models.PriorityLow, DueDate: yesterday},
	} {
		_, err := h.client.CreateTask(ctx, &tk)
		require.NoError(t, err)
	}

	d, err := h.analytics.Dashboard(ctx)
	require.NoError(t, err)

	assert.Len(t, d.Tasks, 3)
	assert.Equal(t, 1, d.Completed())
	assert.Equal(t, 33, d.CompletionRate())
	assert.Equal(t, []models.StatusCount{{ID: "done", Count: 1}, {ID: "todo", Count: 2}}, d.ByStatus)
	assert.Equal(t, []models.PriorityCount{
		{ID: "high", Count: 2, Completed: 1},
		{ID: "low", Count: 1},
	}, d.ByPriority)
	require.Len(t, d.Overdue, 1)
	assert.Equal(t, "c", d.Overdue[0].Title)
	assert.Len(t, d.Trends, 1)
}

func TestDashboard_DegradesToEmpty(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)
	h.backend.SetUnavailable(true)

	d, err := h.analytics.Dashboard(ctx)
	require.NoError(t, err)
	assert.Empty(t, d.Tasks)
	assert.Empty(t, d.ByStatus)
	assert.Empty(t, d.ByPriority)
	assert.Empty(t, d.Trends)
	assert.Empty(t, d.Overdue)
	assert.Equal(t, 0, d.CompletionRate())
}

func TestDashboard_SessionLost(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)
	h.backend.RevokeAll()

	_, err := h.analytics.Dashboard(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, client.ErrUnauthorized) || errors.Is(err, common.ErrCredentialAbsent), err)
	assert.Equal(t, session.StateAnonymous, h.session.State(ctx))
	// requests that started after the clear are refused locally, so only the
	// destination is fixed, not the count
	routes := h.nav.Routes()
	require.NotEmpty(t, routes)
	for _, r := range routes {
		assert.Equal(t, common.RouteLogin, r)
	}
}

func TestDashboard_Anonymous(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)

	_, err := h.analytics.Dashboard(ctx)
	require.ErrorIs(t, err, common.ErrCredentialAbsent)
}

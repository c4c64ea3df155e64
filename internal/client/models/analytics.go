package models

// StatusCount is one bucket of GET /api/analytics/status.
type StatusCount struct {
	ID    string `json:"_id"`
	Count int    `json:"count"`
}

// PriorityCount is one bucket of GET /api/analytics/priority.
type PriorityCount struct {
	ID        string `json:"_id"`
	Count     int    `json:"count"`
	Completed int    `json:"completed"`
}

// TrendPoint is one bucket of GET /api/analytics/trends.
type TrendPoint struct {
	ID    string `json:"_id"`
	Count int    `json:"count"`
}

// Dashboard aggregates the analytics sections shown on the dashboard and
// analytics screens.
type Dashboard struct {
	Tasks      []Task
	ByStatus   []StatusCount
	ByPriority []PriorityCount
	Trends     []TrendPoint
	Overdue    []Task
}

// Completed counts tasks in the done state.
func (d *Dashboard) Completed() int {
	n := 0
	for _, t := range d.Tasks {
		if t.Status == StatusDone {
			n++
		}
	}
	return n
}

// CompletionRate is the share of done tasks in percent, rounded down.
func (d *Dashboard) CompletionRate() int {
	if len(d.Tasks) == 0 {
		return 0
	}
	return d.Completed() * 100 / len(d.Tasks)
}

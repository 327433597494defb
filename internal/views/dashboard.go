package views

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/qpath/qpath/internal/api"
	"github.com/qpath/qpath/internal/migrate"
)

// DashboardBackend is what the dashboard needs from the session client.
type DashboardBackend interface {
	Dashboard(ctx context.Context) (*api.Dashboard, error)
	ToggleTask(ctx context.Context, id int, completed bool) (*api.Task, error)
	LogPomodoroSession(ctx context.Context, minutes int) (*api.GamificationProfile, error)
}

// TaskMigrator moves legacy tasks to the backend.
type TaskMigrator interface {
	Tasks(ctx context.Context) migrate.Result
}

// Dashboard holds tasks, weekly progress and the track summary.
type Dashboard struct {
	backend  DashboardBackend
	migrator TaskMigrator
	log      *slog.Logger

	mu      sync.RWMutex
	loaded  bool
	tasks   []api.Task
	week    api.WeekProgress
	summary []api.TrackSummary
	errMsg  string
}

// NewDashboard creates a Dashboard. migrator may be nil.
func NewDashboard(backend DashboardBackend, migrator TaskMigrator, logger *slog.Logger) *Dashboard {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dashboard{backend: backend, migrator: migrator, log: logger}
}

// Load runs the task migration to completion, then replaces the cache
// with the backend's dashboard.
func (d *Dashboard) Load(ctx context.Context) error {
	if d.migrator != nil {
		d.migrator.Tasks(ctx)
	}
	return d.fetch(ctx)
}

func (d *Dashboard) fetch(ctx context.Context) error {
	data, err := d.backend.Dashboard(ctx)
	if err != nil {
		d.log.Error("load dashboard failed", "error", err)
		d.setErr(Localize(err, MsgLoadDashboard))
		return err
	}

	d.mu.Lock()
	d.loaded = true
	d.tasks = data.Tasks
	d.week = data.WeekProgress
	d.summary = data.TrackSummary
	d.errMsg = ""
	d.mu.Unlock()
	return nil
}

// ToggleTask flips a cached task's completion and patches only that task
// with the backend's copy.
func (d *Dashboard) ToggleTask(ctx context.Context, id int) (*api.Task, error) {
	d.mu.RLock()
	i := slices.IndexFunc(d.tasks, func(t api.Task) bool { return t.ID == id })
	var completed bool
	if i >= 0 {
		completed = d.tasks[i].Completed
	}
	d.mu.RUnlock()
	if i < 0 {
		return nil, fmt.Errorf("task %d not loaded", id)
	}

	updated, err := d.backend.ToggleTask(ctx, id, !completed)
	if err != nil {
		d.log.Error("toggle task failed", "task", id, "error", err)
		d.setErr(Localize(err, MsgToggleTask))
		return nil, err
	}

	d.mu.Lock()
	for j := range d.tasks {
		if d.tasks[j].ID == updated.ID {
			d.tasks[j] = *updated
		}
	}
	d.mu.Unlock()
	return updated, nil
}

// CompletePomodoro records a finished focus block and reloads.
func (d *Dashboard) CompletePomodoro(ctx context.Context, minutes int) error {
	if _, err := d.backend.LogPomodoroSession(ctx, minutes); err != nil {
		d.log.Error("log pomodoro failed", "minutes", minutes, "error", err)
		d.setErr(Localize(err, MsgPomodoro))
		return err
	}
	return d.fetch(ctx)
}

func (d *Dashboard) setErr(msg string) {
	d.mu.Lock()
	d.errMsg = msg
	d.mu.Unlock()
}

// Loaded reports whether a fetch has succeeded.
func (d *Dashboard) Loaded() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loaded
}

// Err returns the current inline error message, or "".
func (d *Dashboard) Err() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.errMsg
}

// Tasks returns a copy of the cached tasks.
func (d *Dashboard) Tasks() []api.Task {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.tasks)
}

// Week returns the cached weekly progress.
func (d *Dashboard) Week() api.WeekProgress {
	d.mu.RLock()
	defer d.mu.RUnlock()
	w := d.week
	w.Week = slices.Clone(w.Week)
	return w
}

// TrackSummary returns a copy of the cached track summary.
func (d *Dashboard) TrackSummary() []api.TrackSummary {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.summary)
}

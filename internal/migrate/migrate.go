// Package migrate moves data saved by the old browser-only client into the
// backend. Each migration runs at most once: the legacy keys are removed
// after the first attempt whatever its outcome, so a failed submission
// loses that data.
package migrate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/qpath/qpath/internal/api"
	"github.com/qpath/qpath/internal/store"
)

// Kind names one of the legacy record families.
type Kind string

const (
	KindTasks   Kind = "tasks"
	KindRewards Kind = "rewards"
	KindLessons Kind = "lessons"
)

// Kinds lists every migration in the order the views run them.
var Kinds = []Kind{KindTasks, KindRewards, KindLessons}

// Storage keys written by the browser client.
const (
	TasksKey         = "qpath_dashboard_tasks"
	RewardsKey       = "qpath_profile_rewards"
	LegacyRewardsKey = "qpath_rewards"
	LessonsKey       = "qpath_track_progress"
)

// ParseKind converts a command-line name to a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown legacy kind %q (want tasks, rewards or lessons)", s)
}

// CandidateKeys returns the keys a kind may be stored under, in lookup
// order: the user-namespaced key first, then the un-namespaced ones.
func CandidateKeys(kind Kind, userID string) []string {
	var plain []string
	switch kind {
	case KindTasks:
		plain = []string{TasksKey}
	case KindRewards:
		plain = []string{RewardsKey, LegacyRewardsKey}
	case KindLessons:
		plain = []string{LessonsKey}
	default:
		return nil
	}
	if userID == "" {
		return plain
	}
	return append([]string{namespaced(plain[0], userID)}, plain...)
}

func namespaced(key, userID string) string {
	return key + ":" + userID
}

// Backend is the subset of the session client the migrations submit to.
type Backend interface {
	SyncTasks(ctx context.Context, tasks []api.TaskPayload) ([]api.Task, error)
	CreateReward(ctx context.Context, condition, reward string) (*api.Reward, error)
	UpdateLessonCompletion(ctx context.Context, lessonID int, completed bool) (bool, error)
}

// Result describes one migration attempt.
type Result struct {
	Kind      Kind
	Key       string // the key that was read, empty when none was present
	Migrated  bool   // at least one entry reached the backend
	Submitted int
	Skipped   int
}

// Migrator runs the legacy migrations for one user.
type Migrator struct {
	storage store.KeyValueRepo
	backend Backend
	userID  string
	log     *slog.Logger
}

// New creates a Migrator. userID selects the namespaced keys; pass "" to
// consider only the un-namespaced ones.
func New(storage store.KeyValueRepo, backend Backend, userID string, logger *slog.Logger) *Migrator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Migrator{
		storage: storage,
		backend: backend,
		userID:  userID,
		log:     logger.With("component", "migrate"),
	}
}

// load reads the first present candidate key.
func (m *Migrator) load(ctx context.Context, kind Kind) (key, raw string, ok bool) {
	for _, k := range CandidateKeys(kind, m.userID) {
		v, found, err := m.storage.Get(ctx, k)
		if err != nil {
			m.log.Warn("read legacy key failed", "key", k, "error", err)
			continue
		}
		if found && v != "" {
			return k, v, true
		}
	}
	return "", "", false
}

// cleanup removes every candidate key for kind, even after ctx has
// ended.
func (m *Migrator) cleanup(ctx context.Context, kind Kind) {
	ctx = context.WithoutCancel(ctx)
	for _, k := range CandidateKeys(kind, m.userID) {
		if err := m.storage.Delete(ctx, k); err != nil {
			m.log.Warn("remove legacy key failed", "key", k, "error", err)
		}
	}
}

// finish logs the outcome and removes the legacy keys.
func (m *Migrator) finish(ctx context.Context, res *Result, err error) {
	m.cleanup(ctx, res.Kind)
	if err != nil {
		m.log.Warn("legacy migration failed",
			"kind", res.Kind, "key", res.Key, "submitted", res.Submitted, "error", err)
		return
	}
	m.log.Info("legacy migration done",
		"kind", res.Kind, "key", res.Key, "submitted", res.Submitted, "skipped", res.Skipped)
}

// Tasks submits legacy dashboard tasks as one bulk sync.
func (m *Migrator) Tasks(ctx context.Context) Result {
	res := Result{Kind: KindTasks}
	key, raw, ok := m.load(ctx, KindTasks)
	if !ok {
		return res
	}
	res.Key = key

	err := func() error {
		items, err := decodeArray(raw)
		if err != nil || len(items) == 0 {
			return err
		}
		records, skipped, err := validEntries(KindTasks, items)
		if err != nil {
			return err
		}
		res.Skipped = skipped
		if len(records) == 0 {
			return nil
		}

		payload := make([]api.TaskPayload, 0, len(records))
		for _, r := range records {
			payload = append(payload, taskPayload(r))
		}
		if _, err := m.backend.SyncTasks(ctx, payload); err != nil {
			return fmt.Errorf("sync tasks: %w", err)
		}
		res.Submitted = len(payload)
		res.Migrated = true
		return nil
	}()

	m.finish(ctx, &res, err)
	return res
}

func taskPayload(r map[string]any) api.TaskPayload {
	p := api.TaskPayload{
		Title:     r["title"].(string),
		Completed: truthy(r["completed"]),
	}
	due := r["due_date"]
	if due == nil {
		due = r["date"]
	}
	if s, ok := due.(string); ok {
		p.DueDate = &s
	}
	return p
}

// Rewards submits legacy rewards one at a time. The first failure stops
// the run; rewards created before it still count.
func (m *Migrator) Rewards(ctx context.Context) Result {
	res := Result{Kind: KindRewards}
	key, raw, ok := m.load(ctx, KindRewards)
	if !ok {
		return res
	}
	res.Key = key

	err := func() error {
		items, err := decodeArray(raw)
		if err != nil {
			return err
		}
		records, skipped, err := validEntries(KindRewards, items)
		if err != nil {
			return err
		}
		res.Skipped = skipped

		for _, r := range records {
			condition, reward := r["condition"].(string), r["reward"].(string)
			if _, err := m.backend.CreateReward(ctx, condition, reward); err != nil {
				return fmt.Errorf("create reward %q: %w", reward, err)
			}
			res.Submitted++
			res.Migrated = true
		}
		return nil
	}()

	m.finish(ctx, &res, err)
	return res
}

type lessonEntry struct {
	id        int
	completed bool
}

// Lessons submits legacy lesson-completion flags, resolving slugs against
// tracks. The updates run concurrently and the run counts as migrated
// only when every update succeeded.
func (m *Migrator) Lessons(ctx context.Context, tracks []api.Track) Result {
	res := Result{Kind: KindLessons}
	key, raw, ok := m.load(ctx, KindLessons)
	if !ok {
		return res
	}
	res.Key = key

	err := func() error {
		entries, skipped, err := lessonEntries(raw, lessonIDs(tracks))
		if err != nil {
			return err
		}
		res.Skipped = skipped
		if len(entries) == 0 {
			return nil
		}

		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			errs []error
		)
		for _, e := range entries {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := m.backend.UpdateLessonCompletion(ctx, e.id, e.completed); err != nil {
					mu.Lock()
					errs = append(errs, fmt.Errorf("lesson %d: %w", e.id, err))
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		res.Submitted = len(entries) - len(errs)
		if len(errs) > 0 {
			return errors.Join(errs...)
		}
		res.Migrated = true
		return nil
	}()

	m.finish(ctx, &res, err)
	return res
}

// lessonIDs maps lesson slugs to IDs across every track.
func lessonIDs(tracks []api.Track) map[string]int {
	ids := make(map[string]int)
	for _, t := range tracks {
		for _, mod := range t.Modules {
			for _, l := range mod.Lessons {
				ids[l.Slug] = l.ID
			}
		}
	}
	return ids
}

// lessonEntries accepts either [{lesson, completed}, ...] or
// {slug: completed, ...}. Unknown slugs are skipped.
func lessonEntries(raw string, ids map[string]int) ([]lessonEntry, int, error) {
	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, 0, fmt.Errorf("parse legacy value: %w", err)
	}

	var (
		entries []lessonEntry
		skipped int
	)
	switch v := parsed.(type) {
	case []any:
		records, bad, err := validEntries(KindLessons, v)
		if err != nil {
			return nil, 0, err
		}
		skipped = bad
		for _, r := range records {
			id := ids[r["lesson"].(string)]
			if id == 0 {
				skipped++
				continue
			}
			entries = append(entries, lessonEntry{id: id, completed: truthy(r["completed"])})
		}
	case map[string]any:
		for slug, done := range v {
			id := ids[slug]
			if id == 0 {
				skipped++
				continue
			}
			entries = append(entries, lessonEntry{id: id, completed: truthy(done)})
		}
	}
	return entries, skipped, nil
}

// decodeArray parses raw as JSON. A well-formed value that is not an
// array yields no items.
func decodeArray(raw string) ([]any, error) {
	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("parse legacy value: %w", err)
	}
	items, _ := parsed.([]any)
	return items, nil
}

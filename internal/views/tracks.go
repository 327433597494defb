package views

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"sync"

	"github.com/qpath/qpath/internal/api"
	"github.com/qpath/qpath/internal/migrate"
)

// TracksBackend is what the tracks page needs from the session client.
type TracksBackend interface {
	Tracks(ctx context.Context) ([]api.Track, error)
	UpdateLessonCompletion(ctx context.Context, lessonID int, completed bool) (bool, error)
}

// LessonMigrator moves legacy lesson progress to the backend.
type LessonMigrator interface {
	Lessons(ctx context.Context, tracks []api.Track) migrate.Result
}

// TrackProgress counts completed lessons in one track.
type TrackProgress struct {
	Track     api.Track
	Completed int
	Total     int
}

// Percent is the completed share, 0 to 100.
func (p TrackProgress) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Completed) * 100 / float64(p.Total)
}

// Tracks holds the track, module and lesson tree.
type Tracks struct {
	backend  TracksBackend
	migrator LessonMigrator
	log      *slog.Logger

	mu     sync.RWMutex
	loaded bool
	tracks []api.Track
	errMsg string
}

// NewTracks creates a Tracks view. migrator may be nil.
func NewTracks(backend TracksBackend, migrator LessonMigrator, logger *slog.Logger) *Tracks {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Tracks{backend: backend, migrator: migrator, log: logger}
}

// Load fetches the tracks, migrates legacy lesson progress against them,
// and fetches again when the migration changed anything.
func (v *Tracks) Load(ctx context.Context) error {
	fetched, err := v.backend.Tracks(ctx)
	if err != nil {
		return v.fail(err, MsgLoadTracks, "load tracks failed")
	}
	v.set(fetched)

	if v.migrator == nil {
		return nil
	}
	if res := v.migrator.Lessons(ctx, fetched); !res.Migrated {
		return nil
	}

	refreshed, err := v.backend.Tracks(ctx)
	if err != nil {
		return v.fail(err, MsgLoadTracks, "reload tracks failed")
	}
	v.set(refreshed)
	return nil
}

// SetLesson updates a lesson's completion. The cache is patched only when
// the backend reports success.
func (v *Tracks) SetLesson(ctx context.Context, lessonID int, completed bool) (bool, error) {
	ok, err := v.backend.UpdateLessonCompletion(ctx, lessonID, completed)
	if err != nil {
		return false, v.fail(err, MsgUpdateLesson, "update lesson failed")
	}
	if !ok {
		return false, nil
	}

	v.mu.Lock()
	for ti := range v.tracks {
		for mi := range v.tracks[ti].Modules {
			lessons := v.tracks[ti].Modules[mi].Lessons
			for li := range lessons {
				if lessons[li].ID == lessonID {
					lessons[li].Completed = completed
				}
			}
		}
	}
	v.mu.Unlock()
	return true, nil
}

// FindLesson looks a lesson up by slug or numeric ID in the cache.
func (v *Tracks) FindLesson(ref string) (api.Lesson, bool) {
	id, _ := strconv.Atoi(ref)

	v.mu.RLock()
	defer v.mu.RUnlock()
	for _, t := range v.tracks {
		for _, m := range t.Modules {
			for _, l := range m.Lessons {
				if l.Slug == ref || (id != 0 && l.ID == id) {
					return l, true
				}
			}
		}
	}
	return api.Lesson{}, false
}

// Progress counts lessons per cached track.
func (v *Tracks) Progress() []TrackProgress {
	v.mu.RLock()
	defer v.mu.RUnlock()

	out := make([]TrackProgress, 0, len(v.tracks))
	for _, t := range v.tracks {
		p := TrackProgress{Track: t}
		for _, m := range t.Modules {
			for _, l := range m.Lessons {
				p.Total++
				if l.Completed {
					p.Completed++
				}
			}
		}
		out = append(out, p)
	}
	return out
}

// Tracks returns a deep copy of the cached tree.
func (v *Tracks) Tracks() []api.Track {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return cloneTracks(v.tracks)
}

// Loaded reports whether a fetch has succeeded.
func (v *Tracks) Loaded() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.loaded
}

// Err returns the current inline error message, or "".
func (v *Tracks) Err() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.errMsg
}

func (v *Tracks) set(tracks []api.Track) {
	v.mu.Lock()
	v.loaded = true
	v.tracks = cloneTracks(tracks)
	v.errMsg = ""
	v.mu.Unlock()
}

func (v *Tracks) fail(err error, msg, logMsg string) error {
	v.log.Error(logMsg, "error", err)
	v.mu.Lock()
	v.errMsg = Localize(err, msg)
	v.mu.Unlock()
	return err
}

func cloneTracks(in []api.Track) []api.Track {
	out := slices.Clone(in)
	for ti := range out {
		out[ti].Modules = slices.Clone(out[ti].Modules)
		for mi := range out[ti].Modules {
			out[ti].Modules[mi].Lessons = slices.Clone(out[ti].Modules[mi].Lessons)
		}
	}
	return out
}

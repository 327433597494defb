package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so journal_mode is covered by TestOpenFileDatabase.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestOpenFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qpath.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	var mode string
	require.NoError(t, s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)

	for _, table := range []string{kvTable, mentorEventTable} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qpath.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.KV().Set(ctx, "access_token", "A"))
	require.NoError(t, s.MentorEventRepo().Append(ctx, MentorEventData{Kind: "tips", Source: "remote", Success: true}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	v, ok, err := s.KV().Get(ctx, "access_token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "A", v)

	events, err := s.MentorEventRepo().Query(ctx, QueryOpts{})
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestKVSetGetDelete(t *testing.T) {
	kv := openTestStore(t).KV()
	ctx := context.Background()

	_, ok, err := kv.Get(ctx, "access_token")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, "access_token", "A"))
	require.NoError(t, kv.Set(ctx, "access_token", "A2"))

	v, ok, err := kv.Get(ctx, "access_token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "A2", v)

	require.NoError(t, kv.Delete(ctx, "access_token"))
	require.NoError(t, kv.Delete(ctx, "access_token"))

	_, ok, err = kv.Get(ctx, "access_token")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKVKeysByPrefix(t *testing.T) {
	kv := openTestStore(t).KV()
	ctx := context.Background()

	for _, k := range []string{"qpath_rewards", "qpath_dashboard_tasks:7", "access_token", "qpath_dashboard_tasks"} {
		require.NoError(t, kv.Set(ctx, k, "[]"))
	}

	keys, err := kv.Keys(ctx, "qpath_")
	require.NoError(t, err)
	assert.Equal(t, []string{"qpath_dashboard_tasks", "qpath_dashboard_tasks:7", "qpath_rewards"}, keys)

	all, err := kv.Keys(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestMemoryKVMatchesSQLite(t *testing.T) {
	ctx := context.Background()
	for name, kv := range map[string]KeyValueRepo{
		"memory": NewMemoryKV(),
		"sqlite": openTestStore(t).KV(),
	} {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, kv.Set(ctx, "b", "2"))
			require.NoError(t, kv.Set(ctx, "a", "1"))
			keys, err := kv.Keys(ctx, "")
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b"}, keys)

			require.NoError(t, kv.Delete(ctx, "a"))
			_, ok, err := kv.Get(ctx, "a")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestMentorEventAppendAndQuery(t *testing.T) {
	repo := openTestStore(t).MentorEventRepo()
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, MentorEventData{
		Kind: "guidance", Source: "remote", LatencyMs: 120, Success: true,
		Prompt: "Como começar em computação quântica?", Answer: "Estude álgebra linear.",
	}))
	require.NoError(t, repo.Append(ctx, MentorEventData{
		Kind: "tips", Source: "gemini-2.0-flash", Success: false, ErrorMessage: "unavailable",
	}))

	events, err := repo.Query(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "tips", events[0].Kind, "newest first")
	assert.False(t, events[0].Success)
	assert.Equal(t, "unavailable", events[0].ErrorMessage)
	assert.True(t, events[1].Success)

	guidance, err := repo.Query(ctx, QueryOpts{Kind: "guidance"})
	require.NoError(t, err)
	require.Len(t, guidance, 1)
	assert.Equal(t, int64(120), guidance[0].LatencyMs)

	limited, err := repo.Query(ctx, QueryOpts{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestMentorEventGet(t *testing.T) {
	repo := openTestStore(t).MentorEventRepo()
	ctx := context.Background()

	e, err := repo.Get(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, e)

	require.NoError(t, repo.Append(ctx, MentorEventData{Kind: "health", Source: "remote", Success: true}))
	events, err := repo.Query(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 1)

	e, err = repo.Get(ctx, events[0].ID)
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "health", e.Kind)
	assert.False(t, e.Timestamp.IsZero())
}

func TestDefaultDBPathFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "q.db")
	t.Setenv("QPATH_DB", path)

	got, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, path, got)
	assert.DirExists(t, filepath.Dir(path))
}

func TestDefaultDBPathXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("QPATH_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)

	got, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "qpath", "qpath.db"), got)
}

package migrate

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qpath/qpath/internal/api"
	"github.com/qpath/qpath/internal/store"
)

type fakeBackend struct {
	mu        sync.Mutex
	synced    [][]api.TaskPayload
	rewards   [][2]string
	lessons   map[int]bool
	syncErr   error
	rewardErr map[string]error
	lessonErr map[int]error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{lessons: make(map[int]bool)}
}

func (f *fakeBackend) SyncTasks(_ context.Context, tasks []api.TaskPayload) ([]api.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.synced = append(f.synced, tasks)
	return nil, f.syncErr
}

func (f *fakeBackend) CreateReward(_ context.Context, condition, reward string) (*api.Reward, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rewards = append(f.rewards, [2]string{condition, reward})
	if err := f.rewardErr[reward]; err != nil {
		return nil, err
	}
	return &api.Reward{Condition: condition, Reward: reward}, nil
}

func (f *fakeBackend) UpdateLessonCompletion(_ context.Context, id int, completed bool) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lessons[id] = completed
	if err := f.lessonErr[id]; err != nil {
		return false, err
	}
	return true, nil
}

var testTracks = []api.Track{{
	ID: 1, Slug: "fundamentos",
	Modules: []api.Module{{
		ID: 10, Slug: "intro",
		Lessons: []api.Lesson{
			{ID: 101, Slug: "o-que-e-qubit"},
			{ID: 102, Slug: "superposicao"},
		},
	}},
}}

func TestCandidateKeys(t *testing.T) {
	assert.Equal(t, []string{"qpath_dashboard_tasks:7", "qpath_dashboard_tasks"}, CandidateKeys(KindTasks, "7"))
	assert.Equal(t, []string{"qpath_profile_rewards:7", "qpath_profile_rewards", "qpath_rewards"}, CandidateKeys(KindRewards, "7"))
	assert.Equal(t, []string{"qpath_track_progress"}, CandidateKeys(KindLessons, ""))
	assert.Nil(t, CandidateKeys("portfolio", "7"))
}

func TestNoLegacyKeyIsNoop(t *testing.T) {
	kv := store.NewMemoryKV()
	be := newFakeBackend()
	m := New(kv, be, "7", nil)

	res := m.Tasks(context.Background())
	assert.False(t, res.Migrated)
	assert.Empty(t, res.Key)
	assert.Empty(t, be.synced)
	assert.Zero(t, kv.DeleteCount(TasksKey))
}

func TestLegacyTaskScenario(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, TasksKey, `[{"title":"X","due_date":null,"completed":false},{"foo":"bad"}]`))
	be := newFakeBackend()

	res := New(kv, be, "", nil).Tasks(ctx)

	assert.True(t, res.Migrated)
	assert.Equal(t, 1, res.Submitted)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, be.synced, 1)
	assert.Equal(t, []api.TaskPayload{{Title: "X", DueDate: nil, Completed: false}}, be.synced[0])

	_, ok, _ := kv.Get(ctx, TasksKey)
	assert.False(t, ok)
	assert.Equal(t, 1, kv.DeleteCount(TasksKey))
}

func TestTaskFieldConversion(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, "qpath_dashboard_tasks:7", `[
		{"title":"Ler artigo","date":"2024-05-02","completed":1},
		{"title":"Revisar","due_date":"2024-05-03","completed":"sim"},
		{"title":"Praticar","due_date":17,"completed":""},
		{"title":42},
		"solto"
	]`))
	be := newFakeBackend()

	res := New(kv, be, "7", nil).Tasks(ctx)
	require.True(t, res.Migrated)
	assert.Equal(t, "qpath_dashboard_tasks:7", res.Key)
	assert.Equal(t, 2, res.Skipped)

	require.Len(t, be.synced, 1)
	got := be.synced[0]
	require.Len(t, got, 3)
	require.NotNil(t, got[0].DueDate)
	assert.Equal(t, "2024-05-02", *got[0].DueDate)
	assert.True(t, got[0].Completed)
	assert.Equal(t, "2024-05-03", *got[1].DueDate)
	assert.True(t, got[1].Completed)
	assert.Nil(t, got[2].DueDate)
	assert.False(t, got[2].Completed)
}

func TestUnparsableKeyIsRemoved(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, TasksKey, `[{"title": "X"`))
	be := newFakeBackend()

	res := New(kv, be, "", nil).Tasks(ctx)
	assert.False(t, res.Migrated)
	assert.Empty(t, be.synced)
	_, ok, _ := kv.Get(ctx, TasksKey)
	assert.False(t, ok)
	assert.Equal(t, 1, kv.DeleteCount(TasksKey))
}

func TestSubmissionFailureStillRemovesKey(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, TasksKey, `[{"title":"X"}]`))
	be := newFakeBackend()
	be.syncErr = errors.New("boom")

	res := New(kv, be, "", nil).Tasks(ctx)
	assert.False(t, res.Migrated)
	assert.Len(t, be.synced, 1)
	assert.Equal(t, 1, kv.DeleteCount(TasksKey))
}

// stalledBackend blocks task sync until the caller's context ends.
type stalledBackend struct {
	*fakeBackend
}

func (s stalledBackend) SyncTasks(ctx context.Context, _ []api.TaskPayload) ([]api.Task, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestExpiredContextStillRemovesKey(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "qpath.db"))
	require.NoError(t, err)
	defer st.Close()
	kv := st.KV()
	require.NoError(t, kv.Set(context.Background(), TasksKey, `[{"title":"X"}]`))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	res := New(kv, stalledBackend{newFakeBackend()}, "", nil).Tasks(ctx)
	assert.False(t, res.Migrated)

	_, ok, err := kv.Get(context.Background(), TasksKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRewardsTwoOfThree(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, RewardsKey, `[
		{"condition":"Completar 5 aulas","reward":"Pizza"},
		{"condition":"Sem recompensa"},
		{"condition":"Streak de 7 dias","reward":"Cinema"}
	]`))
	be := newFakeBackend()

	res := New(kv, be, "7", nil).Rewards(ctx)

	assert.True(t, res.Migrated)
	assert.Equal(t, 2, res.Submitted)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, [][2]string{
		{"Completar 5 aulas", "Pizza"},
		{"Streak de 7 dias", "Cinema"},
	}, be.rewards)
	for _, k := range CandidateKeys(KindRewards, "7") {
		assert.Equal(t, 1, kv.DeleteCount(k), k)
	}
}

func TestRewardsOlderKeyAndPartialFailure(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, LegacyRewardsKey, `[
		{"condition":"a","reward":"primeira"},
		{"condition":"b","reward":"falha"},
		{"condition":"c","reward":"nunca"}
	]`))
	be := newFakeBackend()
	be.rewardErr = map[string]error{"falha": &api.APIError{StatusCode: 500, Message: "Internal server error"}}

	res := New(kv, be, "", nil).Rewards(ctx)

	assert.Equal(t, LegacyRewardsKey, res.Key)
	assert.True(t, res.Migrated, "the first reward reached the backend")
	assert.Equal(t, 1, res.Submitted)
	assert.Len(t, be.rewards, 2, "stops at the first failure")
	_, ok, _ := kv.Get(ctx, LegacyRewardsKey)
	assert.False(t, ok)
}

func TestRewardsNamespacedKeyWins(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, "qpath_profile_rewards:7", `[{"condition":"mine","reward":"r"}]`))
	require.NoError(t, kv.Set(ctx, RewardsKey, `[{"condition":"shared","reward":"r"}]`))
	be := newFakeBackend()

	res := New(kv, be, "7", nil).Rewards(ctx)
	assert.Equal(t, "qpath_profile_rewards:7", res.Key)
	assert.Equal(t, [][2]string{{"mine", "r"}}, be.rewards)

	keys, err := kv.Keys(ctx, "qpath_")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestLessonsArrayForm(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, LessonsKey, `[
		{"lesson":"o-que-e-qubit","completed":true},
		{"lesson":"superposicao","completed":false},
		{"lesson":"nao-existe","completed":true},
		{"completed":true}
	]`))
	be := newFakeBackend()

	res := New(kv, be, "", nil).Lessons(ctx, testTracks)
	assert.True(t, res.Migrated)
	assert.Equal(t, 2, res.Submitted)
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, map[int]bool{101: true, 102: false}, be.lessons)
	assert.Equal(t, 1, kv.DeleteCount(LessonsKey))
}

func TestLessonsMapForm(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, "qpath_track_progress:7", `{"o-que-e-qubit": true, "superposicao": 1, "outra": true}`))
	be := newFakeBackend()

	res := New(kv, be, "7", nil).Lessons(ctx, testTracks)
	assert.True(t, res.Migrated)
	assert.Equal(t, map[int]bool{101: true, 102: true}, be.lessons)
	assert.Equal(t, 1, res.Skipped)
}

func TestLessonsBatchFailure(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, LessonsKey, `{"o-que-e-qubit": true, "superposicao": true}`))
	be := newFakeBackend()
	be.lessonErr = map[int]error{102: errors.New("timeout")}

	res := New(kv, be, "", nil).Lessons(ctx, testTracks)
	assert.False(t, res.Migrated)
	assert.Equal(t, 1, res.Submitted)

	ids := make([]int, 0, len(be.lessons))
	for id := range be.lessons {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	assert.Equal(t, []int{101, 102}, ids, "every update is issued")
	assert.Equal(t, 1, kv.DeleteCount(LessonsKey))
}

func TestLessonsNoMatches(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, LessonsKey, `{"desconhecida": true}`))
	be := newFakeBackend()

	res := New(kv, be, "", nil).Lessons(ctx, testTracks)
	assert.False(t, res.Migrated)
	assert.Empty(t, be.lessons)
	assert.Equal(t, 1, kv.DeleteCount(LessonsKey))
}

func TestTruthy(t *testing.T) {
	for _, v := range []any{nil, false, 0.0, ""} {
		assert.False(t, truthy(v), "%#v", v)
	}
	for _, v := range []any{true, 1.0, -2.5, "false", []any{}, map[string]any{}} {
		assert.True(t, truthy(v), "%#v", v)
	}
}

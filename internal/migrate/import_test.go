package migrate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qpath/qpath/internal/store"
)

func TestImportThenMigrate(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()

	key, err := Import(ctx, kv, KindRewards, "7", `[{"condition":"c","reward":"r"}]`)
	require.NoError(t, err)
	assert.Equal(t, "qpath_profile_rewards:7", key)

	pending, err := Pending(ctx, kv, "7")
	require.NoError(t, err)
	assert.Equal(t, []string{"qpath_profile_rewards:7"}, pending)

	be := newFakeBackend()
	res := New(kv, be, "7", nil).Rewards(ctx)
	assert.True(t, res.Migrated)

	pending, err = Pending(ctx, kv, "7")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestImportRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()

	_, err := Import(ctx, kv, KindTasks, "7", `not json`)
	assert.Error(t, err)

	_, err = Import(ctx, kv, Kind("portfolio"), "7", `[]`)
	assert.Error(t, err)

	keys, err := kv.Keys(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("lessons")
	require.NoError(t, err)
	assert.Equal(t, KindLessons, k)

	_, err = ParseKind("checklist")
	assert.Error(t, err)
}

// ABOUTME: Tests for the Charm KV repository using an in-memory KV.
// ABOUTME: Covers key layout, prefix lookup, filtering, ordering, and read-only mode.
package charm

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/harperreed/tribe/internal/gamification"
	"github.com/harperreed/tribe/internal/models"
	"github.com/harperreed/tribe/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ storage.Repository = (*Client)(nil)
	_ gamification.Store = (*Client)(nil)
)

type memKV struct {
	data     map[string][]byte
	readOnly bool
	syncs    int
}

func newMemKV() *memKV {
	return &memKV{data: map[string][]byte{}}
}

func (m *memKV) Set(key, value []byte) error {
	m.data[string(key)] = append([]byte(nil), value...)
	return nil
}

func (m *memKV) Get(key []byte) ([]byte, error) {
	v, ok := m.data[string(key)]
	if !ok {
		return nil, errors.New("key not found")
	}
	return v, nil
}

func (m *memKV) Delete(key []byte) error {
	delete(m.data, string(key))
	return nil
}

func (m *memKV) Keys() ([][]byte, error) {
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = []byte(k)
	}
	return out, nil
}

func (m *memKV) Sync() error      { m.syncs++; return nil }
func (m *memKV) Reset() error     { m.data = map[string][]byte{}; return nil }
func (m *memKV) IsReadOnly() bool { return m.readOnly }
func (m *memKV) Close() error     { return nil }

var base = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

func logAt(user, tribe string, daysAgo int) *models.WorkoutLog {
	return models.NewWorkoutLog(user, models.KindPlanA).
		WithDuration(45).
		WithTribe(tribe).
		WithDate(base.AddDate(0, 0, -daysAgo))
}

func TestLogKeyFormat(t *testing.T) {
	kv := newMemKV()
	c := newClient(kv)
	l := logAt("alice", "crew", 0)

	require.NoError(t, c.CreateLog(context.Background(), l))
	_, ok := kv.data["log:"+l.ID.String()]
	assert.True(t, ok, "expected key log:<id>")
	assert.Equal(t, 1, kv.syncs, "write should trigger auto sync")
}

func TestLogCRUD(t *testing.T) {
	ctx := context.Background()
	c := newClient(newMemKV())
	c.SetAutoSync(false)

	old := logAt("alice", "crew", 2)
	recent := logAt("alice", "crew", 0)
	bob := logAt("bob", "crew", 1)
	elsewhere := logAt("carol", "other", 0)
	for _, l := range []*models.WorkoutLog{old, recent, bob, elsewhere} {
		require.NoError(t, c.CreateLog(ctx, l))
	}

	got, err := c.GetLog(ctx, recent.ID.String()[:8])
	require.NoError(t, err)
	assert.Equal(t, recent.ID, got.ID)

	mine, err := c.UserLogs(ctx, "alice", "crew")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, recent.ID, mine[0].ID)

	crew, err := c.AllLogs(ctx, "crew")
	require.NoError(t, err)
	assert.Len(t, crew, 3)

	since := base.AddDate(0, 0, -1)
	limited, err := c.ListLogs(ctx, storage.LogFilter{Since: &since, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	require.NoError(t, c.DeleteLog(ctx, old.ID.String()))
	_, err = c.GetLog(ctx, old.ID.String())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStatesAreScopedByTribe(t *testing.T) {
	ctx := context.Background()
	c := newClient(newMemKV())

	alice := models.UserProfile{ID: "u-alice", DisplayName: "alice", TribeID: "crew"}
	carol := models.UserProfile{ID: "u-carol", DisplayName: "carol", TribeID: "other"}
	st := models.NewGamificationState()
	st.Points = 60
	require.NoError(t, c.SaveGamificationState(ctx, alice, st))
	require.NoError(t, c.SaveGamificationState(ctx, carol, models.NewGamificationState()))

	st.Points = 5
	require.NoError(t, c.SaveGamificationState(ctx, alice, st))

	crew, err := c.GamificationStates(ctx, "crew")
	require.NoError(t, err)
	require.Len(t, crew, 1)
	assert.Equal(t, 5, crew["alice"].Points)

	all, err := c.ListStates(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "alice", all[0].Profile.DisplayName)
	assert.Equal(t, alice, all[0].Profile)
}

func TestLedgersAndGifts(t *testing.T) {
	ctx := context.Background()
	c := newClient(newMemKV())

	first := models.NewXPLogEntry("u-alice", 150, models.SourceWorkout, "x")
	first.CreatedAt = base
	second := models.NewXPLogEntry("u-alice", 50, models.SourceBadge, models.BadgeFirstStep)
	second.CreatedAt = base.Add(time.Minute)
	require.NoError(t, c.AppendXPLog(ctx, first))
	require.NoError(t, c.AppendXPLog(ctx, second))
	require.NoError(t, c.AppendXPLog(ctx, models.NewXPLogEntry("u-bob", 100, models.SourceWorkout, "y")))

	xp, err := c.ListXPLogs(ctx, "u-alice", 0)
	require.NoError(t, err)
	require.Len(t, xp, 2)
	assert.Equal(t, second.ID, xp[0].ID)

	require.NoError(t, c.AppendPointLog(ctx, models.NewPointLogEntry("u-alice", 60, models.PointsEarned, models.SourceWorkout, "x")))
	points, err := c.ListPointLogs(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, points, 1)

	require.NoError(t, c.RecordGift(ctx, models.NewGiftTransaction("alice", "bob", "fist_bump", "crew")))
	require.NoError(t, c.RecordGift(ctx, models.NewGiftTransaction("carol", "dan", "fire", "other")))
	gifts, err := c.ListGifts(ctx, "crew", 0)
	require.NoError(t, err)
	require.Len(t, gifts, 1)
	assert.Equal(t, "fist_bump", gifts[0].GiftID)
}

func TestReadOnlyRejectsWrites(t *testing.T) {
	kv := newMemKV()
	kv.readOnly = true
	c := newClient(kv)

	err := c.CreateLog(context.Background(), logAt("alice", "crew", 0))
	assert.ErrorIs(t, err, errReadOnly)
	assert.NoError(t, c.Sync(), "sync is a no-op when read-only")
}

func TestAmbiguousPrefix(t *testing.T) {
	kv := newMemKV()
	c := newClient(kv)
	kv.data["log:abc1"] = []byte(`{}`)
	kv.data["log:abc2"] = []byte(`{}`)

	_, err := c.GetLog(context.Background(), "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous")
}

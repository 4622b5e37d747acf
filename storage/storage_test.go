package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/padel-tournament/models"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, TournamentKey(1, "zones"), []byte("z"), time.Minute))
	require.NoError(t, c.Set(ctx, TournamentKey(1, "playoffs"), []byte("p"), 0))
	require.NoError(t, c.Set(ctx, TournamentKey(12, "zones"), []byte("other"), 0))
	require.NoError(t, c.Set(ctx, TournamentGenerationKey(1), []byte("g1"), 0))

	t.Run("hit", func(t *testing.T) {
		v, ok, err := c.Get(ctx, "tournament:1:zones")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte("z"), v)
	})

	t.Run("expiry", func(t *testing.T) {
		now = now.Add(2 * time.Minute)
		_, ok, err := c.Get(ctx, TournamentKey(1, "zones"))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("prefix invalidation keeps other tournaments", func(t *testing.T) {
		require.NoError(t, c.DeletePrefix(ctx, TournamentPrefix(1)))
		_, ok, _ := c.Get(ctx, TournamentKey(1, "playoffs"))
		assert.False(t, ok)
		v, ok, _ := c.Get(ctx, TournamentKey(12, "zones"))
		assert.True(t, ok)
		assert.Equal(t, []byte("other"), v)

		gen, ok, _ := c.Get(ctx, TournamentGenerationKey(1))
		assert.True(t, ok, "generation token survives invalidation")
		assert.Equal(t, []byte("g1"), gen)
	})
}

func TestArchiverRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryObjectStore("https://cdn.example.com/padel")
	a := NewArchiver(store)

	champion := 7
	key, err := a.Save(ctx, TournamentArchive{
		Tournament: models.Tournament{ID: 3, Name: "Open", Phase: models.PhaseFinalizado},
		Categories: []CategoryArchive{{
			Category:       models.Category{ID: 1, TournamentID: 3, Name: "4ta"},
			ChampionPairID: &champion,
		}},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "archives/tournaments/3/"))
	assert.True(t, strings.HasSuffix(key, ".json"))
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, "https://cdn.example.com/padel/"+key, a.URL(key))

	got, err := a.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "Open", got.Tournament.Name)
	require.Len(t, got.Categories, 1)
	assert.Equal(t, 7, *got.Categories[0].ChampionPairID)
	assert.False(t, got.ArchivedAt.IsZero())

	_, err = a.Load(ctx, "archives/missing.json")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestArchiverDiscard(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryObjectStore("")
	a := NewArchiver(store)

	key, err := a.Save(ctx, TournamentArchive{Tournament: models.Tournament{ID: 9}})
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())

	require.NoError(t, a.Discard(ctx, key))
	assert.Equal(t, 0, store.Len())
	_, err = a.Load(ctx, key)
	assert.ErrorIs(t, err, ErrObjectNotFound)

	// повторное удаление не ошибка
	assert.NoError(t, a.Discard(ctx, key))
}

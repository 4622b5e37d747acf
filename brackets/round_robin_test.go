package brackets

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/padel-tournament/models"
)

func TestGenerateFixture(t *testing.T) {
	for n := 2; n <= 8; n++ {
		ids := make([]int, n)
		for i := range ids {
			ids[i] = 100 + i
		}
		zone := models.Zone{ID: 9, TournamentID: 4, CategoryID: 2, Name: "A", PairIDs: ids}

		matches, err := GenerateFixture(zone, 0)
		require.NoError(t, err)
		require.Len(t, matches, n*(n-1)/2, "n=%d", n)

		pairings := map[[2]int]bool{}
		for i, m := range matches {
			p1, ok1 := m.Side1.PairID()
			p2, ok2 := m.Side2.PairID()
			require.True(t, ok1 && ok2)
			require.NotEqual(t, p1, p2)
			key := [2]int{min(p1, p2), max(p1, p2)}
			require.False(t, pairings[key], "pairing %v generated twice", key)
			pairings[key] = true

			assert.Equal(t, i+1, m.NumeroPartido)
			assert.Equal(t, models.MatchPending, m.State)
			assert.Equal(t, models.RoundZona, m.Round)
			assert.Equal(t, 4, m.TournamentID)
			assert.Equal(t, 2, m.CategoryID)
			require.NotNil(t, m.ZoneID)
			assert.Equal(t, 9, *m.ZoneID)
		}
	}
}

func TestGenerateFixtureRoundsAreDisjoint(t *testing.T) {
	zone := models.Zone{ID: 1, PairIDs: []int{1, 2, 3, 4, 5, 6}}
	matches, err := GenerateFixture(zone, 0)
	require.NoError(t, err)

	perRound := len(zone.PairIDs) / 2
	for start := 0; start < len(matches); start += perRound {
		busy := map[int]bool{}
		for _, m := range matches[start : start+perRound] {
			for _, id := range m.PairIDs() {
				assert.False(t, busy[id], "pair %d plays twice in the same round", id)
				busy[id] = true
			}
		}
	}
}

func TestGenerateFixtureErrors(t *testing.T) {
	zone := models.Zone{ID: 1, Name: "B", PairIDs: []int{1, 2, 3}}

	_, err := GenerateFixture(zone, 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))
	assert.Equal(t, CodeAlreadyGenerated, Code(err))

	_, err = GenerateFixture(models.Zone{PairIDs: []int{1}}, 0)
	assert.True(t, errors.Is(err, ErrInsufficientData))
}

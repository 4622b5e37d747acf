package brackets

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/padel-tournament/models"
)

func pairsN(n int) []models.Pair {
	out := make([]models.Pair, n)
	for i := range out {
		out[i] = models.Pair{ID: i + 1, TournamentID: 1, CategoryID: 1, Status: models.PairConfirmed}
	}
	return out
}

func TestComposeZonesBalanced(t *testing.T) {
	for n := 2; n <= 30; n++ {
		for target := 2; target <= 5; target++ {
			zones, err := ComposeZones(1, pairsN(n), target)
			require.NoError(t, err, "n=%d target=%d", n, target)

			maxZones := (n + target - 1) / target
			assert.LessOrEqual(t, len(zones), maxZones)

			seen := map[int]bool{}
			smallest, largest := n, 0
			for _, z := range zones {
				smallest = min(smallest, len(z.PairIDs))
				largest = max(largest, len(z.PairIDs))
				for _, id := range z.PairIDs {
					require.False(t, seen[id], "pair %d in two zones", id)
					seen[id] = true
				}
			}
			assert.Len(t, seen, n, "n=%d target=%d", n, target)
			assert.LessOrEqual(t, largest-smallest, 1, "n=%d target=%d", n, target)
			assert.GreaterOrEqual(t, smallest, 2, "n=%d target=%d", n, target)
		}
	}
}

func TestComposeZonesSnakeDraft(t *testing.T) {
	pairs := make([]models.Pair, 6)
	for i := range pairs {
		seed := i + 1
		pairs[i] = models.Pair{ID: seed * 10, Seed: &seed}
	}
	// unseeded pairs go last whatever their id
	pairs = append(pairs, models.Pair{ID: 1}, models.Pair{ID: 2})

	zones, err := ComposeZones(3, pairs[:6], 3)
	require.NoError(t, err)
	require.Len(t, zones, 2)
	assert.Equal(t, "A", zones[0].Name)
	assert.Equal(t, []int{10, 40, 50}, zones[0].PairIDs)
	assert.Equal(t, []int{20, 30, 60}, zones[1].PairIDs)
	assert.Equal(t, 3, zones[1].CategoryID)

	zones, err = ComposeZones(3, pairs, 4)
	require.NoError(t, err)
	require.Len(t, zones, 2)
	assert.Equal(t, []int{10, 40, 50, 2}, zones[0].PairIDs)
	assert.Equal(t, []int{20, 30, 60, 1}, zones[1].PairIDs)
}

func TestComposeZonesErrors(t *testing.T) {
	cases := []struct {
		pairs  int
		target int
		kind   error
		code   string
	}{
		{pairs: 0, target: 3, kind: ErrInsufficientData, code: CodeInsufficientPairs},
		{pairs: 1, target: 3, kind: ErrInsufficientData, code: CodeInsufficientPairs},
		{pairs: 6, target: 1, kind: ErrValidation, code: CodeInvalidZoneSize},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%d pairs target %d", tc.pairs, tc.target), func(t *testing.T) {
			_, err := ComposeZones(1, pairsN(tc.pairs), tc.target)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.kind))
			assert.Equal(t, tc.code, Code(err))
		})
	}

	t.Run("Duplicate pair", func(t *testing.T) {
		pairs := append(pairsN(3), models.Pair{ID: 2})
		_, err := ComposeZones(1, pairs, 3)
		assert.True(t, errors.Is(err, ErrValidation))
	})
}

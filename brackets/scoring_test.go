package brackets

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/padel-tournament/models"
)

func TestValidateSetGrid(t *testing.T) {
	for a := 0; a <= 7; a++ {
		for b := 0; b <= 7; b++ {
			lo, hi := min(a, b), max(a, b)
			want := (hi == 6 && hi-lo >= 2) || (hi == 7 && (lo == 5 || lo == 6))

			check := ValidateSet(a, b)
			require.Equal(t, want, check.Valid, "set %d-%d", a, b)
			if !want {
				assert.Equal(t, models.SideNone, check.Winner, "set %d-%d", a, b)
				continue
			}
			assert.True(t, check.Completed)
			if a > b {
				assert.Equal(t, models.SideA, check.Winner, "set %d-%d", a, b)
			} else {
				assert.Equal(t, models.SideB, check.Winner, "set %d-%d", a, b)
			}
		}
	}
}

func TestValidateSetExamples(t *testing.T) {
	assert.Equal(t, SetCheck{Valid: true, Winner: models.SideA, Completed: true}, ValidateSet(6, 4))
	assert.False(t, ValidateSet(6, 5).Valid)
	assert.True(t, ValidateSet(7, 6).Valid)
	assert.Equal(t, CodeRequiresTiebreak, ValidateSet(6, 6).Code)
	assert.Equal(t, CodeInvalidSet, ValidateSet(-1, 6).Code)
	assert.Equal(t, CodeInvalidSet, ValidateSet(8, 6).Code)
}

func TestValidateSuperTiebreak(t *testing.T) {
	cases := []struct {
		a, b  int
		valid bool
	}{
		{10, 0, true},
		{10, 8, true},
		{8, 10, true},
		{10, 9, false},
		{11, 9, true},
		{11, 10, false},
		{12, 10, true},
		{13, 10, false},
		{9, 7, false},
		{-1, 10, false},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%d-%d", tc.a, tc.b), func(t *testing.T) {
			check := ValidateSuperTiebreak(tc.a, tc.b)
			assert.Equal(t, tc.valid, check.Valid)
			if !tc.valid {
				assert.Equal(t, CodeInvalidSuperTiebreak, check.Code)
			}
		})
	}
}

func sets(scores ...[2]int) []models.SetScore {
	out := make([]models.SetScore, len(scores))
	for i, s := range scores {
		out[i] = models.SetScore{GamesA: s[0], GamesB: s[1]}
	}
	return out
}

func TestScoreMatch(t *testing.T) {
	t.Run("Straight sets", func(t *testing.T) {
		res, err := ScoreMatch(sets([2]int{6, 4}, [2]int{7, 5}), models.ThirdSetFull)
		require.NoError(t, err)
		assert.True(t, res.Completed)
		assert.Equal(t, models.SideA, res.Winner)
		require.Len(t, res.Sets, 2)
		assert.Equal(t, 2, res.Sets[1].Index)
	})

	t.Run("Full third set", func(t *testing.T) {
		res, err := ScoreMatch(sets([2]int{6, 4}, [2]int{3, 6}, [2]int{6, 7}), models.ThirdSetFull)
		require.NoError(t, err)
		assert.Equal(t, models.SideB, res.Winner)
		assert.False(t, res.Sets[2].SuperTiebreak)
	})

	t.Run("Super tiebreak decider", func(t *testing.T) {
		res, err := ScoreMatch(sets([2]int{6, 4}, [2]int{3, 6}, [2]int{10, 8}), models.ThirdSetSuperTiebreak)
		require.NoError(t, err)
		assert.Equal(t, models.SideA, res.Winner)
		assert.True(t, res.Sets[2].SuperTiebreak)

		setsA, setsB, gamesA, gamesB := res.Totals()
		assert.Equal(t, 2, setsA)
		assert.Equal(t, 1, setsB)
		assert.Equal(t, 9, gamesA)
		assert.Equal(t, 10, gamesB)
	})

	t.Run("Super tiebreak score in full set mode", func(t *testing.T) {
		_, err := ScoreMatch(sets([2]int{6, 4}, [2]int{3, 6}, [2]int{10, 8}), models.ThirdSetFull)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation))
		assert.Equal(t, CodeInvalidSet, Code(err))
	})

	t.Run("Unfinished super tiebreak", func(t *testing.T) {
		_, err := ScoreMatch(sets([2]int{6, 4}, [2]int{3, 6}, [2]int{10, 9}), models.ThirdSetSuperTiebreak)
		assert.Equal(t, CodeInvalidSuperTiebreak, Code(err))
	})

	t.Run("Set after match decided", func(t *testing.T) {
		_, err := ScoreMatch(sets([2]int{6, 4}, [2]int{6, 3}, [2]int{6, 2}), models.ThirdSetFull)
		assert.Equal(t, CodeSetAfterDecided, Code(err))
	})

	t.Run("Too many sets", func(t *testing.T) {
		_, err := ScoreMatch(sets([2]int{6, 4}, [2]int{3, 6}, [2]int{6, 2}, [2]int{6, 2}), models.ThirdSetFull)
		assert.Equal(t, CodeTooManySets, Code(err))
	})

	t.Run("Incomplete", func(t *testing.T) {
		_, err := ScoreMatch(sets([2]int{6, 4}), models.ThirdSetFull)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation))
		assert.Equal(t, CodeIncompleteResult, Code(err))

		_, err = ScoreMatch(nil, models.ThirdSetFull)
		assert.Equal(t, CodeIncompleteResult, Code(err))
	})

	t.Run("Six all needs tiebreak", func(t *testing.T) {
		_, err := ScoreMatch(sets([2]int{6, 6}, [2]int{6, 3}), models.ThirdSetFull)
		assert.Equal(t, CodeRequiresTiebreak, Code(err))
	})
}

func TestScoreMatchIsIdempotentOnItsOutput(t *testing.T) {
	inputs := [][]models.SetScore{
		sets([2]int{6, 0}, [2]int{6, 0}),
		sets([2]int{7, 6}, [2]int{4, 6}, [2]int{7, 5}),
		sets([2]int{2, 6}, [2]int{6, 2}, [2]int{12, 14}),
	}
	modes := []models.ThirdSetMode{models.ThirdSetFull, models.ThirdSetFull, models.ThirdSetSuperTiebreak}

	for i, in := range inputs {
		first, err := ScoreMatch(in, modes[i])
		require.NoError(t, err)
		second, err := ScoreMatch(first.Scores(), modes[i])
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}
}

func TestWalkoverResult(t *testing.T) {
	res := WalkoverResult(models.SideB)
	assert.True(t, res.Walkover)
	assert.True(t, res.Completed)
	assert.Equal(t, models.SideB, res.Winner)

	setsA, setsB, gamesA, gamesB := res.Totals()
	assert.Equal(t, []int{0, 2, 0, 12}, []int{setsA, setsB, gamesA, gamesB})
}

package brackets

import (
	"github.com/Dosada05/padel-tournament/models"
)

// SetCheck is the outcome of validating a single set or super-tiebreak.
type SetCheck struct {
	Valid     bool
	Winner    models.Side
	Completed bool
	Code      string
}

func minMax(a, b int) (int, int) {
	if a < b {
		return a, b
	}
	return b, a
}

func sideOf(a, b int) models.Side {
	switch {
	case a > b:
		return models.SideA
	case b > a:
		return models.SideB
	}
	return models.SideNone
}

// ValidateSet checks a regular set: 6-0..6-4, 7-5 or 7-6. 6-6 must continue to a tiebreak.
func ValidateSet(gamesA, gamesB int) SetCheck {
	if gamesA < 0 || gamesB < 0 {
		return SetCheck{Code: CodeInvalidSet}
	}
	if gamesA == 6 && gamesB == 6 {
		return SetCheck{Code: CodeRequiresTiebreak}
	}
	lo, hi := minMax(gamesA, gamesB)
	diff := hi - lo

	valid := (hi == 6 && diff >= 2) || (hi == 7 && (lo == 5 || lo == 6))
	if !valid {
		return SetCheck{Code: CodeInvalidSet}
	}
	return SetCheck{Valid: true, Winner: sideOf(gamesA, gamesB), Completed: true}
}

// ValidateSuperTiebreak checks a match tiebreak to 10 with a 2 point margin.
func ValidateSuperTiebreak(pointsA, pointsB int) SetCheck {
	if pointsA < 0 || pointsB < 0 {
		return SetCheck{Code: CodeInvalidSuperTiebreak}
	}
	lo, hi := minMax(pointsA, pointsB)
	diff := hi - lo

	valid := hi >= 10 && ((hi == 10 && lo <= 8) || (hi > 10 && diff == 2))
	if !valid {
		return SetCheck{Code: CodeInvalidSuperTiebreak}
	}
	return SetCheck{Valid: true, Winner: sideOf(pointsA, pointsB), Completed: true}
}

// ScoreMatch validates a best-of-3 result. The third entry is read as a
// super-tiebreak only when mode says so; it is never inferred from the score.
func ScoreMatch(sets []models.SetScore, mode models.ThirdSetMode) (models.Result, error) {
	if len(sets) > 3 {
		return models.Result{}, InvalidResultError(CodeTooManySets, "a match has at most 3 sets, got %d", len(sets))
	}

	result := models.Result{Sets: make([]models.Set, 0, len(sets))}
	setsA, setsB := 0, 0

	for i, s := range sets {
		if setsA == 2 || setsB == 2 {
			return models.Result{}, InvalidResultError(CodeSetAfterDecided, "set %d (%d-%d) was played after the match was decided", i+1, s.GamesA, s.GamesB)
		}

		superTiebreak := i == 2 && mode == models.ThirdSetSuperTiebreak
		var check SetCheck
		if superTiebreak {
			check = ValidateSuperTiebreak(s.GamesA, s.GamesB)
		} else {
			check = ValidateSet(s.GamesA, s.GamesB)
		}
		if !check.Valid {
			switch check.Code {
			case CodeRequiresTiebreak:
				return models.Result{}, InvalidResultError(check.Code, "set %d is 6-6 and must be decided by a tiebreak (7-6)", i+1)
			case CodeInvalidSuperTiebreak:
				return models.Result{}, InvalidResultError(check.Code, "super tiebreak %d-%d is not a valid final score (first to 10, win by 2)", s.GamesA, s.GamesB)
			default:
				return models.Result{}, InvalidResultError(check.Code, "set %d score %d-%d is not a valid padel set", i+1, s.GamesA, s.GamesB)
			}
		}

		if check.Winner == models.SideA {
			setsA++
		} else {
			setsB++
		}
		result.Sets = append(result.Sets, models.Set{
			Index:         i + 1,
			GamesA:        s.GamesA,
			GamesB:        s.GamesB,
			Winner:        check.Winner,
			Completed:     check.Completed,
			SuperTiebreak: superTiebreak,
		})
	}

	if setsA < 2 && setsB < 2 {
		return models.Result{}, IncompleteResultError(setsA, setsB)
	}

	result.Completed = true
	result.Winner = models.SideA
	if setsB == 2 {
		result.Winner = models.SideB
	}
	return result, nil
}

// WalkoverResult records a forfeit as a 6-0 6-0 win for winner.
func WalkoverResult(winner models.Side) models.Result {
	a, b := 6, 0
	if winner == models.SideB {
		a, b = 0, 6
	}
	sets := []models.Set{
		{Index: 1, GamesA: a, GamesB: b, Winner: winner, Completed: true},
		{Index: 2, GamesA: a, GamesB: b, Winner: winner, Completed: true},
	}
	return models.Result{Sets: sets, Completed: true, Winner: winner, Walkover: true}
}

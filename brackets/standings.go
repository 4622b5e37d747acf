package brackets

import (
	"cmp"
	"slices"

	"github.com/Dosada05/padel-tournament/models"
)

// StandingsOrder is the single ordering function of a zone table. It returns a
// negative number when a ranks above b.
type StandingsOrder func(a, b models.StandingRow) int

type StandingsOptions struct {
	WinPoints  int
	LossPoints int
	// Order replaces the default ordering. Nil means HeadToHeadOrder.
	Order func(rows []models.StandingRow, matches []models.Match) StandingsOrder
}

// StandingsOptionsFrom builds options from the tournament scoring config.
func StandingsOptionsFrom(cfg models.ScoringConfig) StandingsOptions {
	cfg = cfg.WithDefaults()
	return StandingsOptions{WinPoints: cfg.WinPoints, LossPoints: cfg.LossPoints}
}

func comparePrimary(a, b models.StandingRow) int {
	if c := cmp.Compare(b.Points, a.Points); c != 0 {
		return c
	}
	if c := cmp.Compare(b.SetDiff(), a.SetDiff()); c != 0 {
		return c
	}
	return cmp.Compare(b.GameDiff(), a.GameDiff())
}

// PairIDOrder ranks by points, set and game differential, then lower pair id.
func PairIDOrder(_ []models.StandingRow, _ []models.Match) StandingsOrder {
	return func(a, b models.StandingRow) int {
		if c := comparePrimary(a, b); c != 0 {
			return c
		}
		return cmp.Compare(a.PairID, b.PairID)
	}
}

// HeadToHeadOrder extends PairIDOrder: when exactly two rows are level on
// points, set and game differential, the winner of their confirmed match goes first.
// Ties of three or more fall straight through to pair id.
func HeadToHeadOrder(rows []models.StandingRow, matches []models.Match) StandingsOrder {
	type key struct{ points, sets, games int }
	groupSize := make(map[key]int, len(rows))
	for _, r := range rows {
		groupSize[key{r.Points, r.SetDiff(), r.GameDiff()}]++
	}

	winnerOf := make(map[[2]int]int)
	for _, m := range matches {
		if m.State != models.MatchConfirmed {
			continue
		}
		w, ok := m.WinnerPairID()
		if !ok {
			continue
		}
		l, ok := m.LoserPairID()
		if !ok {
			continue
		}
		winnerOf[[2]int{min(w, l), max(w, l)}] = w
	}

	return func(a, b models.StandingRow) int {
		if c := comparePrimary(a, b); c != 0 {
			return c
		}
		if groupSize[key{a.Points, a.SetDiff(), a.GameDiff()}] == 2 {
			if w, ok := winnerOf[[2]int{min(a.PairID, b.PairID), max(a.PairID, b.PairID)}]; ok {
				if w == a.PairID {
					return -1
				}
				return 1
			}
		}
		return cmp.Compare(a.PairID, b.PairID)
	}
}

// ComputeStandings aggregates the confirmed matches of zone into a ranked table.
// Pending, reported and bye matches do not count, nor matches of other zones.
func ComputeStandings(zone models.Zone, matches []models.Match, opts StandingsOptions) []models.StandingRow {
	rows := make([]models.StandingRow, len(zone.PairIDs))
	index := make(map[int]int, len(zone.PairIDs))
	for i, id := range zone.PairIDs {
		rows[i] = models.StandingRow{PairID: id}
		index[id] = i
	}

	counted := make([]models.Match, 0, len(matches))
	for _, m := range matches {
		if m.ZoneID == nil || *m.ZoneID != zone.ID {
			continue
		}
		if m.State != models.MatchConfirmed || m.Result == nil || !m.Result.Completed {
			continue
		}
		p1, ok1 := m.Side1.PairID()
		p2, ok2 := m.Side2.PairID()
		if !ok1 || !ok2 {
			continue
		}
		i1, in1 := index[p1]
		i2, in2 := index[p2]
		if !in1 || !in2 {
			continue
		}

		setsA, setsB, gamesA, gamesB := m.Result.Totals()
		a, b := &rows[i1], &rows[i2]
		a.Played++
		b.Played++
		a.SetsWon += setsA
		a.SetsLost += setsB
		b.SetsWon += setsB
		b.SetsLost += setsA
		a.GamesWon += gamesA
		a.GamesLost += gamesB
		b.GamesWon += gamesB
		b.GamesLost += gamesA

		winner, loser := a, b
		if m.Result.Winner == models.SideB {
			winner, loser = b, a
		}
		winner.Won++
		winner.Points += opts.WinPoints
		loser.Lost++
		loser.Points += opts.LossPoints

		counted = append(counted, m)
	}

	orderFn := opts.Order
	if orderFn == nil {
		orderFn = HeadToHeadOrder
	}
	slices.SortStableFunc(rows, orderFn(rows, counted))
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

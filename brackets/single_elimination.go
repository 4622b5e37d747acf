package brackets

import (
	"cmp"
	"fmt"
	"math/bits"
	"slices"

	"github.com/Dosada05/padel-tournament/models"
)

type BracketParams struct {
	TournamentID int
	CategoryID   int
	// Qualifiers holds pair ids in seed order, best seed first.
	Qualifiers []int
}

// BracketShape returns the bracket size (smallest power of two >= k), the number
// of byes and the number of rounds for k qualifiers.
func BracketShape(k int) (size, byes, rounds int) {
	if k < 2 {
		return 0, 0, 0
	}
	rounds = bits.Len(uint(k - 1))
	size = 1 << rounds
	return size, size - k, rounds
}

// SeedPositions lists seed numbers in bracket line order: 1 meets size, 2 meets
// size-1 and the top two seeds can only meet in the final.
func SeedPositions(size int) []int {
	lines := []int{1}
	for len(lines) < size {
		next := make([]int, 0, len(lines)*2)
		sum := len(lines)*2 + 1
		for _, s := range lines {
			next = append(next, s, sum-s)
		}
		lines = next
	}
	return lines
}

// FeederNumbers returns the numero_partido of the two previous-round matches
// whose winners play match numero. Numbers are 0-based inside a round.
func FeederNumbers(numero int) (int, int) {
	return 2 * numero, 2*numero + 1
}

// NextSlot returns where the winner of match numero goes in the next round.
func NextSlot(numero int) (int, models.Side) {
	if numero%2 == 0 {
		return numero / 2, models.SideA
	}
	return numero / 2, models.SideB
}

// NextRound returns the round that follows r in a bracket.
func NextRound(r models.Round) (models.Round, bool) {
	count := r.MatchCount()
	if count <= 1 {
		return "", false
	}
	return models.RoundForMatchCount(count / 2)
}

// BuildBracket builds the full single-elimination tree. Byes go to the top
// seeds: a bye match holds its pair in Side1, Bye in Side2, state bye, and the
// pair is already placed in its second-round match.
func BuildBracket(params BracketParams) ([]models.Match, error) {
	k := len(params.Qualifiers)
	if k < 2 {
		return nil, InsufficientQualifiersError(k)
	}
	seen := make(map[int]struct{}, k)
	for _, id := range params.Qualifiers {
		if _, dup := seen[id]; dup {
			return nil, NewError(ErrValidation, "duplicate_qualifier", "pair %d qualified twice", id)
		}
		seen[id] = struct{}{}
	}

	size, _, numRounds := BracketShape(k)
	if size > models.MaxBracketSize {
		return nil, NewError(ErrValidation, CodeBracketTooLarge, "bracket of %d qualifiers exceeds the maximum of %d", k, models.MaxBracketSize)
	}

	entrantFor := func(seed int) models.Entrant {
		if seed > k {
			return models.Bye()
		}
		return models.Filled(params.Qualifiers[seed-1])
	}

	rounds := make([][]models.Match, numRounds)
	lines := SeedPositions(size)
	matchesInRound := size / 2
	for r := 0; r < numRounds; r++ {
		name, ok := models.RoundForMatchCount(matchesInRound)
		if !ok {
			return nil, fmt.Errorf("no round name for %d matches", matchesInRound)
		}
		rounds[r] = make([]models.Match, matchesInRound)
		for i := range rounds[r] {
			m := models.Match{
				TournamentID:  params.TournamentID,
				CategoryID:    params.CategoryID,
				Round:         name,
				NumeroPartido: i,
				State:         models.MatchPending,
			}
			if r == 0 {
				m.Side1 = entrantFor(lines[2*i])
				m.Side2 = entrantFor(lines[2*i+1])
				if m.Side1.IsBye() {
					m.Side1, m.Side2 = m.Side2, m.Side1
				}
				if m.Side2.IsBye() {
					m.State = models.MatchBye
				}
			}
			rounds[r][i] = m
		}
		matchesInRound /= 2
	}

	if numRounds > 1 {
		for _, m := range rounds[0] {
			if m.State != models.MatchBye {
				continue
			}
			next, side := NextSlot(m.NumeroPartido)
			if err := fillSide(&rounds[1][next], side, m.Side1); err != nil {
				return nil, err
			}
		}
	}

	out := make([]models.Match, 0, size-1)
	for _, r := range rounds {
		out = append(out, r...)
	}
	return out, nil
}

func fillSide(m *models.Match, side models.Side, e models.Entrant) error {
	switch side {
	case models.SideA:
		m.Side1 = e
	case models.SideB:
		m.Side2 = e
	default:
		return fmt.Errorf("invalid side %v", side)
	}
	return nil
}

// Advance writes the winner of from into its slot of next. It refuses to touch
// a next match that is already decided.
func Advance(next *models.Match, from models.Match) error {
	winner, ok := from.WinnerPairID()
	if !ok {
		return NewError(ErrState, "no_winner", "match %d has no winner to advance", from.ID)
	}
	numero, side := NextSlot(from.NumeroPartido)
	if next.NumeroPartido != numero {
		return fmt.Errorf("match %d (numero %d) does not feed match %d (numero %d)", from.ID, from.NumeroPartido, next.ID, next.NumeroPartido)
	}
	if next.State == models.MatchConfirmed {
		return NewError(ErrState, "next_match_decided", "match %d is already confirmed", next.ID)
	}
	return fillSide(next, side, models.Filled(winner))
}

// Retract clears the slot that from had filled in next, turning it back to TBD.
func Retract(next *models.Match, from models.Match) error {
	if next.State == models.MatchConfirmed || next.State == models.MatchReported {
		return NewError(ErrState, "next_match_decided", "match %d already has a result; roll it back first", next.ID)
	}
	_, side := NextSlot(from.NumeroPartido)
	return fillSide(next, side, models.TBD())
}

// ZoneTable is the ranked table of one zone, used to pick qualifiers.
type ZoneTable struct {
	Zone models.Zone
	Rows []models.StandingRow
}

// WithoutPairs drops the rows of excluded pairs (withdrawn ones) and re-ranks
// what is left, so the next pair of the zone moves up into qualification.
func WithoutPairs(tables []ZoneTable, excluded map[int]bool) []ZoneTable {
	if len(excluded) == 0 {
		return tables
	}
	out := make([]ZoneTable, 0, len(tables))
	for _, t := range tables {
		rows := make([]models.StandingRow, 0, len(t.Rows))
		for _, row := range t.Rows {
			if excluded[row.PairID] {
				continue
			}
			row.Rank = len(rows) + 1
			rows = append(rows, row)
		}
		out = append(out, ZoneTable{Zone: t.Zone, Rows: rows})
	}
	return out
}

type qualifier struct {
	pairID int
	zone   int
}

// SelectQualifiers takes the top perZone rows of every zone and returns them in
// seed order. Zone winners come first, ranked across zones by points, set and
// game differential (then zone order). Each following class (runners-up, ...)
// is rotated so that as few first-round matches as possible pair two teams of
// the same zone.
func SelectQualifiers(tables []ZoneTable, perZone int) []int {
	if perZone < 1 {
		perZone = 1
	}
	seeded := make([]qualifier, 0, len(tables)*perZone)
	winnerRank := make(map[int]int, len(tables))

	for pos := 0; pos < perZone; pos++ {
		type entry struct {
			row   models.StandingRow
			zone  int
			order int
		}
		class := make([]entry, 0, len(tables))
		for zi, t := range tables {
			if pos < len(t.Rows) {
				class = append(class, entry{row: t.Rows[pos], zone: zi, order: zi})
			}
		}
		if len(class) == 0 {
			break
		}

		if pos == 0 {
			slices.SortStableFunc(class, func(a, b entry) int {
				if c := comparePrimary(a.row, b.row); c != 0 {
					return c
				}
				return cmp.Compare(a.order, b.order)
			})
			for i, e := range class {
				winnerRank[e.zone] = i
				seeded = append(seeded, qualifier{pairID: e.row.PairID, zone: e.zone})
			}
			continue
		}

		slices.SortStableFunc(class, func(a, b entry) int {
			return cmp.Compare(winnerRank[a.zone], winnerRank[b.zone])
		})
		base := make([]qualifier, len(class))
		for i, e := range class {
			base[i] = qualifier{pairID: e.row.PairID, zone: e.zone}
		}

		var best []qualifier
		bestClashes := -1
		for _, candidate := range rotations(base) {
			trial := append(slices.Clone(seeded), candidate...)
			clashes := sameZoneClashes(trial)
			if bestClashes < 0 || clashes < bestClashes {
				best, bestClashes = candidate, clashes
			}
		}
		seeded = append(seeded, best...)
	}

	ids := make([]int, len(seeded))
	for i, q := range seeded {
		ids[i] = q.pairID
	}
	return ids
}

// rotations lists every cyclic shift of q, forwards and reversed, starting with q itself.
func rotations(q []qualifier) [][]qualifier {
	n := len(q)
	out := make([][]qualifier, 0, 2*n)
	reversed := slices.Clone(q)
	slices.Reverse(reversed)
	for _, src := range [][]qualifier{q, reversed} {
		for shift := 0; shift < n; shift++ {
			rot := make([]qualifier, n)
			for i := range src {
				rot[i] = src[(i+shift)%n]
			}
			out = append(out, rot)
		}
	}
	return out
}

// sameZoneClashes counts first-round matches between two pairs of the same zone
// when the seeded list is laid out on a full bracket.
func sameZoneClashes(seeded []qualifier) int {
	k := len(seeded)
	if k < 2 {
		return 0
	}
	size, _, _ := BracketShape(k)
	lines := SeedPositions(size)
	clashes := 0
	for i := 0; i+1 < len(lines); i += 2 {
		s1, s2 := lines[i], lines[i+1]
		if s1 > k || s2 > k {
			continue
		}
		if seeded[s1-1].zone == seeded[s2-1].zone {
			clashes++
		}
	}
	return clashes
}

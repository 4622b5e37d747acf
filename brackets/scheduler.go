package brackets

import (
	"cmp"
	"slices"
	"time"

	"github.com/Dosada05/padel-tournament/models"
)

// Assignment places one match on one slot.
type Assignment struct {
	MatchID  int       `json:"match_id"`
	SlotID   int       `json:"slot_id"`
	CourtID  int       `json:"court_id"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

type ScheduleRequest struct {
	// Matches are all matches of the tournament. Only pending, unassigned ones are
	// scheduled; the rest are used to resolve pair ids of Existing assignments.
	Matches []models.Match
	Courts  []models.Court
	Slots   []models.Slot
	// Existing assignments stay where they are and count for the rest rule.
	Existing    []Assignment
	RestMinutes int
}

type ScheduleResult struct {
	Scheduled   []Assignment
	Unscheduled []int
}

type interval struct {
	start, end time.Time
}

// ScheduleMatches assigns matches to free slots greedily.
//
// Matches are taken zone play first, then by round, numero_partido and id. Each
// one gets the earliest free slot on an active court where neither pair
// overlaps another of its matches or plays closer than RestMinutes on the same
// day. Matches with an undecided side or no feasible slot are returned in
// Unscheduled; bye matches are never scheduled.
func ScheduleMatches(req ScheduleRequest) ScheduleResult {
	rest := time.Duration(req.RestMinutes) * time.Minute
	if req.RestMinutes <= 0 {
		rest = models.DefaultRestMinutes * time.Minute
	}

	activeCourt := make(map[int]bool, len(req.Courts))
	for _, c := range req.Courts {
		activeCourt[c.ID] = c.Active
	}

	byID := make(map[int]models.Match, len(req.Matches))
	for _, m := range req.Matches {
		byID[m.ID] = m
	}

	busy := make(map[int][]interval)
	taken := make(map[int]bool, len(req.Existing))
	for _, a := range req.Existing {
		taken[a.SlotID] = true
		m, ok := byID[a.MatchID]
		if !ok {
			continue
		}
		for _, p := range m.PairIDs() {
			busy[p] = append(busy[p], interval{a.StartsAt, a.EndsAt})
		}
	}

	slots := make([]models.Slot, 0, len(req.Slots))
	for _, s := range req.Slots {
		if s.Occupied || s.MatchID != nil || taken[s.ID] || !activeCourt[s.CourtID] {
			continue
		}
		slots = append(slots, s)
	}
	slices.SortFunc(slots, func(a, b models.Slot) int {
		if c := a.StartsAt.Compare(b.StartsAt); c != 0 {
			return c
		}
		if c := cmp.Compare(a.CourtID, b.CourtID); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	queue := make([]models.Match, 0, len(req.Matches))
	for _, m := range req.Matches {
		if m.State != models.MatchPending || m.SlotID != nil {
			continue
		}
		queue = append(queue, m)
	}
	slices.SortFunc(queue, compareSchedulePriority)

	var result ScheduleResult
	for _, m := range queue {
		if !m.Ready() {
			result.Unscheduled = append(result.Unscheduled, m.ID)
			continue
		}
		pairs := m.PairIDs()
		placed := false
		for _, s := range slots {
			if taken[s.ID] {
				continue
			}
			slot := interval{s.StartsAt, s.EndsAt}
			if !restOK(busy, pairs, slot, rest) {
				continue
			}
			taken[s.ID] = true
			for _, p := range pairs {
				busy[p] = append(busy[p], slot)
			}
			result.Scheduled = append(result.Scheduled, Assignment{
				MatchID:  m.ID,
				SlotID:   s.ID,
				CourtID:  s.CourtID,
				StartsAt: s.StartsAt,
				EndsAt:   s.EndsAt,
			})
			placed = true
			break
		}
		if !placed {
			result.Unscheduled = append(result.Unscheduled, m.ID)
		}
	}
	return result
}

func compareSchedulePriority(a, b models.Match) int {
	aZone, bZone := a.Round == models.RoundZona, b.Round == models.RoundZona
	if aZone != bZone {
		if aZone {
			return -1
		}
		return 1
	}
	if c := cmp.Compare(a.Round.Order(), b.Round.Order()); c != 0 {
		return c
	}
	if c := cmp.Compare(a.NumeroPartido, b.NumeroPartido); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func restOK(busy map[int][]interval, pairs []int, slot interval, rest time.Duration) bool {
	for _, p := range pairs {
		for _, b := range busy[p] {
			if slot.start.Before(b.end) && b.start.Before(slot.end) {
				return false
			}
			if !sameDay(slot.start, b.start) {
				continue
			}
			var gap time.Duration
			if !slot.start.Before(b.end) {
				gap = slot.start.Sub(b.end)
			} else {
				gap = b.start.Sub(slot.end)
			}
			if gap < rest {
				return false
			}
		}
	}
	return true
}

func sameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

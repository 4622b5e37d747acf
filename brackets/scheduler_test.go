package brackets

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/padel-tournament/models"
)

var day1 = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

// hourlySlots creates count back-to-back slots of length minutes on court, starting at from.
func hourlySlots(firstID, court int, from time.Time, count, length int) []models.Slot {
	out := make([]models.Slot, count)
	for i := range out {
		start := from.Add(time.Duration(i*length) * time.Minute)
		out[i] = models.Slot{ID: firstID + i, CourtID: court, StartsAt: start, EndsAt: start.Add(time.Duration(length) * time.Minute)}
	}
	return out
}

func zoneMatch(id, numero, p1, p2 int) models.Match {
	return models.Match{ID: id, Round: models.RoundZona, NumeroPartido: numero, Side1: models.Filled(p1), Side2: models.Filled(p2), State: models.MatchPending}
}

func TestScheduleMatchesRestRule(t *testing.T) {
	req := ScheduleRequest{
		Matches: []models.Match{
			zoneMatch(1, 1, 1, 2),
			zoneMatch(2, 2, 1, 3),
			zoneMatch(3, 3, 2, 3),
		},
		Courts:      []models.Court{{ID: 1, Active: true}},
		Slots:       hourlySlots(100, 1, day1, 3, 60),
		RestMinutes: 30,
	}

	res := ScheduleMatches(req)
	require.Len(t, res.Scheduled, 2)
	assert.Equal(t, Assignment{MatchID: 1, SlotID: 100, CourtID: 1, StartsAt: day1, EndsAt: day1.Add(time.Hour)}, res.Scheduled[0])
	assert.Equal(t, 2, res.Scheduled[1].MatchID)
	assert.Equal(t, 102, res.Scheduled[1].SlotID)
	assert.Equal(t, []int{3}, res.Unscheduled)

	t.Run("Next day is not constrained by rest", func(t *testing.T) {
		req := req
		req.Slots = append(hourlySlots(100, 1, day1, 3, 60), hourlySlots(200, 1, day1.Add(24*time.Hour), 1, 60)...)
		res := ScheduleMatches(req)
		assert.Len(t, res.Scheduled, 3)
		assert.Empty(t, res.Unscheduled)
		assert.Equal(t, 200, res.Scheduled[2].SlotID)
	})

	t.Run("Two courts run matches in parallel", func(t *testing.T) {
		req := ScheduleRequest{
			Matches: []models.Match{zoneMatch(1, 1, 1, 2), zoneMatch(2, 2, 3, 4)},
			Courts:  []models.Court{{ID: 1, Active: true}, {ID: 2, Active: true}},
			Slots:   append(hourlySlots(100, 1, day1, 1, 60), hourlySlots(200, 2, day1, 1, 60)...),
		}
		res := ScheduleMatches(req)
		require.Len(t, res.Scheduled, 2)
		assert.Equal(t, 1, res.Scheduled[0].CourtID)
		assert.Equal(t, 2, res.Scheduled[1].CourtID)
	})
}

func TestScheduleMatchesSkips(t *testing.T) {
	matchID := 77
	slots := hourlySlots(100, 1, day1, 2, 60)
	slots[0].Occupied = true
	slots[0].MatchID = &matchID
	slots = append(slots, hourlySlots(200, 2, day1, 4, 60)...)

	tbd := models.Match{ID: 5, Round: models.RoundSemis, Side1: models.Filled(1), Side2: models.TBD(), State: models.MatchPending}
	bye := models.Match{ID: 6, Round: models.Round4tos, Side1: models.Filled(1), Side2: models.Bye(), State: models.MatchBye}
	confirmed := zoneMatch(7, 9, 5, 6)
	confirmed.State = models.MatchConfirmed

	req := ScheduleRequest{
		Matches: []models.Match{tbd, bye, confirmed, zoneMatch(8, 1, 3, 4)},
		Courts:  []models.Court{{ID: 1, Active: true}, {ID: 2, Active: false}},
		Slots:   slots,
	}
	res := ScheduleMatches(req)
	require.Len(t, res.Scheduled, 1)
	assert.Equal(t, 101, res.Scheduled[0].SlotID, "occupied slot and inactive court are skipped")
	assert.Equal(t, []int{5}, res.Unscheduled, "bye and played matches are not reported")
}

func TestScheduleMatchesPriority(t *testing.T) {
	final := models.Match{ID: 1, Round: models.RoundFinal, Side1: models.Filled(9), Side2: models.Filled(10), State: models.MatchPending}
	semi := models.Match{ID: 2, Round: models.RoundSemis, NumeroPartido: 1, Side1: models.Filled(7), Side2: models.Filled(8), State: models.MatchPending}
	zone := zoneMatch(3, 4, 5, 6)

	res := ScheduleMatches(ScheduleRequest{
		Matches: []models.Match{final, semi, zone},
		Courts:  []models.Court{{ID: 1, Active: true}},
		Slots:   hourlySlots(100, 1, day1, 3, 60),
	})
	require.Len(t, res.Scheduled, 3)
	assert.Equal(t, []int{3, 2, 1}, []int{res.Scheduled[0].MatchID, res.Scheduled[1].MatchID, res.Scheduled[2].MatchID})
}

func TestScheduleMatchesHonorsExisting(t *testing.T) {
	slotID := 100
	placed := zoneMatch(1, 1, 1, 2)
	placed.SlotID = &slotID

	slots := hourlySlots(100, 1, day1, 3, 60)
	res := ScheduleMatches(ScheduleRequest{
		Matches:  []models.Match{placed, zoneMatch(2, 2, 2, 3)},
		Courts:   []models.Court{{ID: 1, Active: true}},
		Slots:    slots,
		Existing: []Assignment{{MatchID: 1, SlotID: 100, CourtID: 1, StartsAt: slots[0].StartsAt, EndsAt: slots[0].EndsAt}},
	})
	require.Len(t, res.Scheduled, 1)
	assert.Equal(t, 102, res.Scheduled[0].SlotID, "pair 2 needs rest after the existing match")
}

func TestScheduleMatchesInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const rest = 30

	for iter := 0; iter < 50; iter++ {
		var matches []models.Match
		pairs := 4 + rng.Intn(8)
		id := 1
		for a := 1; a <= pairs; a++ {
			for b := a + 1; b <= pairs; b++ {
				if rng.Intn(2) == 0 {
					matches = append(matches, zoneMatch(id, id, a, b))
					id++
				}
			}
		}

		courts := []models.Court{{ID: 1, Active: true}, {ID: 2, Active: true}, {ID: 3, Active: rng.Intn(2) == 0}}
		var slots []models.Slot
		for _, c := range courts {
			length := 45 + 15*rng.Intn(3)
			slots = append(slots, hourlySlots(c.ID*1000, c.ID, day1, 6, length)...)
			slots = append(slots, hourlySlots(c.ID*1000+500, c.ID, day1.Add(24*time.Hour), 6, length)...)
		}

		res := ScheduleMatches(ScheduleRequest{Matches: matches, Courts: courts, Slots: slots, RestMinutes: rest})
		assert.Equal(t, len(matches), len(res.Scheduled)+len(res.Unscheduled))

		usedSlots := map[int]bool{}
		byPair := map[int][]Assignment{}
		matchByID := map[int]models.Match{}
		for _, m := range matches {
			matchByID[m.ID] = m
		}
		for _, a := range res.Scheduled {
			require.False(t, usedSlots[a.SlotID], "slot %d assigned twice", a.SlotID)
			usedSlots[a.SlotID] = true
			if !courts[2].Active {
				assert.NotEqual(t, 3, a.CourtID, "inactive court used")
			}
			for _, p := range matchByID[a.MatchID].PairIDs() {
				byPair[p] = append(byPair[p], a)
			}
		}

		for p, list := range byPair {
			for i := range list {
				for j := i + 1; j < len(list); j++ {
					x, y := list[i], list[j]
					if x.StartsAt.YearDay() != y.StartsAt.YearDay() {
						continue
					}
					if y.StartsAt.Before(x.StartsAt) {
						x, y = y, x
					}
					gap := y.StartsAt.Sub(x.EndsAt)
					assert.GreaterOrEqual(t, gap, rest*time.Minute, "pair %d rests %v between matches", p, gap)
				}
			}
		}
	}
}

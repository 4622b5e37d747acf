package brackets

import (
	"github.com/Dosada05/padel-tournament/models"
)

const restPlaceholder = -1

// GenerateFixture creates every pairing of a zone exactly once.
//
// Matches are ordered with the circle method, so consecutive numero_partido
// values spread each pair's matches apart. existing is the number of matches the
// zone already has; regenerating over them is refused, the caller must delete the
// fixture first.
func GenerateFixture(zone models.Zone, existing int) ([]models.Match, error) {
	if existing > 0 {
		return nil, AlreadyGeneratedError("fixture for zone " + zone.Name)
	}
	n := len(zone.PairIDs)
	if n < 2 {
		return nil, InsufficientPairsError(n)
	}

	position := make(map[int]int, n)
	ring := make([]int, 0, n+1)
	for i, id := range zone.PairIDs {
		position[id] = i
		ring = append(ring, id)
	}
	if len(ring)%2 == 1 {
		ring = append(ring, restPlaceholder)
	}

	size := len(ring)
	matches := make([]models.Match, 0, n*(n-1)/2)
	matchOrder := 0

	for round := 0; round < size-1; round++ {
		for i := 0; i < size/2; i++ {
			p1, p2 := ring[i], ring[size-1-i]
			if p1 == restPlaceholder || p2 == restPlaceholder {
				continue
			}
			if position[p1] > position[p2] {
				p1, p2 = p2, p1
			}
			matchOrder++
			zoneID := zone.ID
			matches = append(matches, models.Match{
				TournamentID:  zone.TournamentID,
				CategoryID:    zone.CategoryID,
				Round:         models.RoundZona,
				ZoneID:        &zoneID,
				NumeroPartido: matchOrder,
				Side1:         models.Filled(p1),
				Side2:         models.Filled(p2),
				State:         models.MatchPending,
			})
		}
		// rotate everything but the first element one step clockwise
		last := ring[size-1]
		copy(ring[2:], ring[1:size-1])
		ring[1] = last
	}

	return matches, nil
}

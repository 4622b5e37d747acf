package brackets

import (
	"cmp"
	"slices"

	"github.com/Dosada05/padel-tournament/models"
)

// ComposeZones partitions the confirmed pairs of a category into round-robin zones.
//
// The zone count is ceil(n/targetZoneSize), lowered while the smallest zone
// would hold a single pair. Pairs are dealt in a snake draft ordered by seed
// (unseeded last, then pair id), so sizes differ by at most one and the best
// seeds land in different zones.
func ComposeZones(categoryID int, pairs []models.Pair, targetZoneSize int) ([]models.Zone, error) {
	if targetZoneSize < 2 {
		return nil, NewError(ErrValidation, CodeInvalidZoneSize, "target zone size must be at least 2, got %d", targetZoneSize)
	}
	n := len(pairs)
	if n < 2 {
		return nil, InsufficientPairsError(n)
	}

	seen := make(map[int]struct{}, n)
	for _, p := range pairs {
		if _, dup := seen[p.ID]; dup {
			return nil, NewError(ErrValidation, "duplicate_pair", "pair %d appears twice in the enrollment list", p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	numZones := (n + targetZoneSize - 1) / targetZoneSize
	for numZones > 1 && n/numZones < 2 {
		numZones--
	}

	ordered := slices.Clone(pairs)
	slices.SortStableFunc(ordered, compareSeed)

	zones := make([]models.Zone, numZones)
	for i := range zones {
		zones[i] = models.Zone{
			CategoryID: categoryID,
			Name:       models.ZoneName(i),
			PairIDs:    make([]int, 0, n/numZones+1),
		}
	}
	for i, p := range ordered {
		pos := i % numZones
		if (i/numZones)%2 == 1 {
			pos = numZones - 1 - pos
		}
		zones[pos].TournamentID = p.TournamentID
		zones[pos].PairIDs = append(zones[pos].PairIDs, p.ID)
	}
	return zones, nil
}

func compareSeed(a, b models.Pair) int {
	switch {
	case a.Seed != nil && b.Seed != nil:
		if c := cmp.Compare(*a.Seed, *b.Seed); c != 0 {
			return c
		}
	case a.Seed != nil:
		return -1
	case b.Seed != nil:
		return 1
	}
	return cmp.Compare(a.ID, b.ID)
}

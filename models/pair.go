package models

import "time"

type PairStatus string

const (
	PairPending   PairStatus = "pending"
	PairConfirmed PairStatus = "confirmed"
	PairRejected  PairStatus = "rejected"
	PairWithdrawn PairStatus = "withdrawn"
)

func (s PairStatus) Valid() bool {
	switch s {
	case PairPending, PairConfirmed, PairRejected, PairWithdrawn:
		return true
	}
	return false
}

// Pair (pareja) is the unit of competition: two players enrolled in one category.
type Pair struct {
	ID           int        `json:"id" db:"id"`
	TournamentID int        `json:"tournament_id" db:"tournament_id"`
	CategoryID   int        `json:"category_id" db:"category_id"`
	Player1      string     `json:"player1" db:"player1"`
	Player2      string     `json:"player2" db:"player2"`
	Seed         *int       `json:"seed,omitempty" db:"seed"` // lower is better, nil = unseeded
	Status       PairStatus `json:"status" db:"status"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// Zone (zona) is a round-robin group of pairs inside a category.
type Zone struct {
	ID           int    `json:"id" db:"id"`
	TournamentID int    `json:"tournament_id" db:"tournament_id"`
	CategoryID   int    `json:"category_id" db:"category_id"`
	Name         string `json:"name" db:"name"`
	PairIDs      []int  `json:"pair_ids" db:"-"`

	Matches []Match `json:"matches,omitempty" db:"-"`
}

// ZoneName returns "A", "B", ..., "Z", "AA", ... for a 0-based index.
func ZoneName(i int) string {
	name := ""
	for i >= 0 {
		name = string(rune('A'+i%26)) + name
		i = i/26 - 1
	}
	return name
}

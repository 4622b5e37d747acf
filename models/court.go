package models

import "time"

type Court struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Name         string    `json:"name" db:"name"`
	Active       bool      `json:"active" db:"active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Slot is a bookable interval on one court. Hosts at most one match.
type Slot struct {
	ID       int       `json:"id" db:"id"`
	CourtID  int       `json:"court_id" db:"court_id"`
	StartsAt time.Time `json:"starts_at" db:"starts_at"`
	EndsAt   time.Time `json:"ends_at" db:"ends_at"`
	Occupied bool      `json:"occupied" db:"occupied"`
	MatchID  *int      `json:"match_id,omitempty" db:"match_id"`
}

func (s Slot) Duration() time.Duration {
	return s.EndsAt.Sub(s.StartsAt)
}

// StandingRow is derived on demand from the confirmed matches of a zone.
type StandingRow struct {
	PairID    int `json:"pair_id"`
	Played    int `json:"played"`
	Won       int `json:"won"`
	Lost      int `json:"lost"`
	SetsWon   int `json:"sets_won"`
	SetsLost  int `json:"sets_lost"`
	GamesWon  int `json:"games_won"`
	GamesLost int `json:"games_lost"`
	Points    int `json:"points"`
	Rank      int `json:"rank"`
}

func (r StandingRow) SetDiff() int  { return r.SetsWon - r.SetsLost }
func (r StandingRow) GameDiff() int { return r.GamesWon - r.GamesLost }

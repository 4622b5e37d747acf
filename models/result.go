package models

import "encoding/json"

// Side identifies pareja1 (A) or pareja2 (B) inside a match.
type Side int8

const (
	SideNone Side = iota
	SideA
	SideB
)

func (s Side) String() string {
	switch s {
	case SideA:
		return "a"
	case SideB:
		return "b"
	default:
		return ""
	}
}

func (s Side) MarshalJSON() ([]byte, error) {
	if s == SideNone {
		return []byte("null"), nil
	}
	return json.Marshal(s.String())
}

func (s *Side) UnmarshalJSON(data []byte) error {
	var v *string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch {
	case v == nil:
		*s = SideNone
	case *v == "a":
		*s = SideA
	case *v == "b":
		*s = SideB
	default:
		*s = SideNone
	}
	return nil
}

// Opposite returns the other side; SideNone stays SideNone.
func (s Side) Opposite() Side {
	switch s {
	case SideA:
		return SideB
	case SideB:
		return SideA
	}
	return SideNone
}

// SetScore is the raw input for one set, as submitted by the caller.
type SetScore struct {
	GamesA int `json:"games_a"`
	GamesB int `json:"games_b"`
}

// Set is a validated set owned by a Result. Never persisted on its own.
type Set struct {
	Index         int  `json:"index"`
	GamesA        int  `json:"games_a"`
	GamesB        int  `json:"games_b"`
	Winner        Side `json:"winner"`
	Completed     bool `json:"completed"`
	SuperTiebreak bool `json:"super_tiebreak,omitempty"`
}

// Result is the scored outcome of a match.
type Result struct {
	Sets      []Set `json:"sets"`
	Completed bool  `json:"completed"`
	Winner    Side  `json:"winner"`
	Walkover  bool  `json:"walkover,omitempty"`
}

// Scores returns the raw set scores, e.g. for re-validation.
func (r Result) Scores() []SetScore {
	out := make([]SetScore, len(r.Sets))
	for i, s := range r.Sets {
		out[i] = SetScore{GamesA: s.GamesA, GamesB: s.GamesB}
	}
	return out
}

// Totals accumulates sets and games won by side A and B. Super-tiebreak points
// count as one set won but do not add games.
func (r Result) Totals() (setsA, setsB, gamesA, gamesB int) {
	for _, s := range r.Sets {
		switch s.Winner {
		case SideA:
			setsA++
		case SideB:
			setsB++
		}
		if !s.SuperTiebreak {
			gamesA += s.GamesA
			gamesB += s.GamesB
		}
	}
	return setsA, setsB, gamesA, gamesB
}

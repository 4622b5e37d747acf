package models

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
)

type MatchState string

const (
	MatchPending   MatchState = "pending"
	MatchReported  MatchState = "reported"
	MatchConfirmed MatchState = "confirmed"
	MatchBye       MatchState = "bye"
)

// Round is the canonical phase tag of a match. One name per round; aliases are
// normalized by ParseRound at the API boundary.
type Round string

const (
	RoundZona   Round = "zona"
	Round32avos Round = "32avos"
	Round16avos Round = "16avos"
	Round8vos   Round = "8vos"
	Round4tos   Round = "4tos"
	RoundSemis  Round = "semis"
	RoundFinal  Round = "final"
)

// MaxBracketSize is the largest bracket that has a named first round.
const MaxBracketSize = 64

var roundByMatchCount = map[int]Round{
	32: Round32avos,
	16: Round16avos,
	8:  Round8vos,
	4:  Round4tos,
	2:  RoundSemis,
	1:  RoundFinal,
}

var roundOrder = map[Round]int{
	RoundZona:   0,
	Round32avos: 1,
	Round16avos: 2,
	Round8vos:   3,
	Round4tos:   4,
	RoundSemis:  5,
	RoundFinal:  6,
}

var roundAliases = map[string]Round{
	"zona":            RoundZona,
	"zonas":           RoundZona,
	"grupos":          RoundZona,
	"group":           RoundZona,
	"32avos":          Round32avos,
	"treintaidosavos": Round32avos,
	"16avos":          Round16avos,
	"dieciseisavos":   Round16avos,
	"8vos":            Round8vos,
	"octavos":         Round8vos,
	"round_of_16":     Round8vos,
	"4tos":            Round4tos,
	"cuartos":         Round4tos,
	"quarterfinals":   Round4tos,
	"qf":              Round4tos,
	"semis":           RoundSemis,
	"semifinal":       RoundSemis,
	"semifinales":     RoundSemis,
	"sf":              RoundSemis,
	"final":           RoundFinal,
}

// RoundForMatchCount names a bracket round by how many matches it has.
func RoundForMatchCount(n int) (Round, bool) {
	r, ok := roundByMatchCount[n]
	return r, ok
}

// ParseRound normalizes any known alias ("cuartos", "4tos", "QF") to its canonical Round.
func ParseRound(s string) (Round, error) {
	r, ok := roundAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unknown round %q", s)
	}
	return r, nil
}

// Order ranks rounds chronologically: zone play first, final last.
func (r Round) Order() int {
	if o, ok := roundOrder[r]; ok {
		return o
	}
	return len(roundOrder)
}

func (r Round) IsPlayoff() bool {
	return r != RoundZona && r != ""
}

// MatchCount returns how many matches a playoff round has (0 for zone play).
func (r Round) MatchCount() int {
	for n, round := range roundByMatchCount {
		if round == r {
			return n
		}
	}
	return 0
}

type EntrantKind uint8

const (
	EntrantTBD EntrantKind = iota
	EntrantFilled
	EntrantBye
)

func (k EntrantKind) String() string {
	switch k {
	case EntrantFilled:
		return "filled"
	case EntrantBye:
		return "bye"
	default:
		return "tbd"
	}
}

// Entrant is one side of a match: Filled(pairID) | TBD | Bye.
// The zero value is TBD, so an unset side can never pass for a real pair.
type Entrant struct {
	kind   EntrantKind
	pairID int
}

func Filled(pairID int) Entrant { return Entrant{kind: EntrantFilled, pairID: pairID} }
func TBD() Entrant              { return Entrant{kind: EntrantTBD} }
func Bye() Entrant              { return Entrant{kind: EntrantBye} }

func (e Entrant) Kind() EntrantKind { return e.kind }
func (e Entrant) IsFilled() bool    { return e.kind == EntrantFilled }
func (e Entrant) IsTBD() bool       { return e.kind == EntrantTBD }
func (e Entrant) IsBye() bool       { return e.kind == EntrantBye }

// PairID reports the pair occupying the side, if any.
func (e Entrant) PairID() (int, bool) {
	if e.kind != EntrantFilled {
		return 0, false
	}
	return e.pairID, true
}

// PairIDPtr returns nil unless the side is filled. Used by persistence and the wire format.
func (e Entrant) PairIDPtr() *int {
	if id, ok := e.PairID(); ok {
		return &id
	}
	return nil
}

// EntrantFromColumn rebuilds a side from a nullable pair column and the match state.
func EntrantFromColumn(pairID *int, state MatchState) Entrant {
	switch {
	case pairID != nil:
		return Filled(*pairID)
	case state == MatchBye:
		return Bye()
	default:
		return TBD()
	}
}

type entrantJSON struct {
	Kind   string `json:"kind"`
	PairID *int   `json:"pair_id,omitempty"`
}

func (e Entrant) MarshalJSON() ([]byte, error) {
	return json.Marshal(entrantJSON{Kind: e.kind.String(), PairID: e.PairIDPtr()})
}

func (e *Entrant) UnmarshalJSON(data []byte) error {
	var v entrantJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v.Kind {
	case "filled":
		if v.PairID == nil {
			return fmt.Errorf("filled entrant without pair_id")
		}
		*e = Filled(*v.PairID)
	case "bye":
		*e = Bye()
	case "tbd", "":
		*e = TBD()
	default:
		return fmt.Errorf("unknown entrant kind %q", v.Kind)
	}
	return nil
}

// Match is a zone or bracket match. For bracket matches NumeroPartido is the
// 0-based position inside its round; for zone matches it is the 1-based fixture order.
type Match struct {
	ID            int        `json:"id"`
	TournamentID  int        `json:"tournament_id"`
	CategoryID    int        `json:"category_id"`
	Round         Round      `json:"phase"`
	ZoneID        *int       `json:"zone_id"`
	NumeroPartido int        `json:"numero_partido"`
	Side1         Entrant    `json:"side1"`
	Side2         Entrant    `json:"side2"`
	State         MatchState `json:"estado"`
	Result        *Result    `json:"resultado"`
	SlotID        *int       `json:"slot_id"`
	CourtID       *int       `json:"cancha_id"`
	StartsAt      *time.Time `json:"fecha_hora"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Ready reports whether both participants are known.
func (m Match) Ready() bool {
	return m.Side1.IsFilled() && m.Side2.IsFilled()
}

// PairIDs returns the filled sides.
func (m Match) PairIDs() []int {
	ids := make([]int, 0, 2)
	for _, e := range []Entrant{m.Side1, m.Side2} {
		if id, ok := e.PairID(); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func (m Match) Involves(pairID int) bool {
	for _, id := range m.PairIDs() {
		if id == pairID {
			return true
		}
	}
	return false
}

// WinnerPairID resolves the winning pair of a confirmed match or the occupant of a bye.
func (m Match) WinnerPairID() (int, bool) {
	switch m.State {
	case MatchBye:
		if id, ok := m.Side1.PairID(); ok {
			return id, true
		}
		return m.Side2.PairID()
	case MatchConfirmed:
		if m.Result == nil {
			return 0, false
		}
		switch m.Result.Winner {
		case SideA:
			return m.Side1.PairID()
		case SideB:
			return m.Side2.PairID()
		}
	}
	return 0, false
}

// LoserPairID is the counterpart of WinnerPairID for played matches.
func (m Match) LoserPairID() (int, bool) {
	if m.State != MatchConfirmed || m.Result == nil {
		return 0, false
	}
	switch m.Result.Winner {
	case SideA:
		return m.Side2.PairID()
	case SideB:
		return m.Side1.PairID()
	}
	return 0, false
}

// SortMatches orders matches by category, zone play before the bracket (zones
// by id), then round, numero_partido and id.
func SortMatches(matches []Match) {
	slices.SortStableFunc(matches, func(a, b Match) int {
		if c := cmp.Compare(a.CategoryID, b.CategoryID); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Round.Order(), b.Round.Order()); c != 0 {
			return c
		}
		if a.ZoneID != nil && b.ZoneID != nil {
			if c := cmp.Compare(*a.ZoneID, *b.ZoneID); c != 0 {
				return c
			}
		}
		if c := cmp.Compare(a.NumeroPartido, b.NumeroPartido); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

package handlers

import (
	"time"

	"github.com/Dosada05/padel-tournament/models"
)

type setResponse struct {
	GamesA        int  `json:"games_a"`
	GamesB        int  `json:"games_b"`
	SuperTiebreak bool `json:"super_tiebreak,omitempty"`
}

type resultResponse struct {
	Sets     []setResponse `json:"sets"`
	Winner   models.Side   `json:"winner"`
	Walkover bool          `json:"walkover,omitempty"`
}

// matchResponse is the public shape of a match. Undecided sides and missing
// results are null.
type matchResponse struct {
	ID            int               `json:"id"`
	CategoryID    int               `json:"category_id"`
	Phase         models.Round      `json:"phase"`
	ZoneID        *int              `json:"zone_id"`
	NumeroPartido int               `json:"numero_partido"`
	Pareja1ID     *int              `json:"pareja1_id"`
	Pareja2ID     *int              `json:"pareja2_id"`
	Bye           bool              `json:"bye,omitempty"`
	Estado        models.MatchState `json:"estado"`
	Resultado     *resultResponse   `json:"resultado"`
	CanchaID      *int              `json:"cancha_id"`
	FechaHora     *time.Time        `json:"fecha_hora"`
}

func toMatchResponse(m models.Match) matchResponse {
	resp := matchResponse{
		ID:            m.ID,
		CategoryID:    m.CategoryID,
		Phase:         m.Round,
		ZoneID:        m.ZoneID,
		NumeroPartido: m.NumeroPartido,
		Pareja1ID:     m.Side1.PairIDPtr(),
		Pareja2ID:     m.Side2.PairIDPtr(),
		Bye:           m.Side1.IsBye() || m.Side2.IsBye(),
		Estado:        m.State,
		CanchaID:      m.CourtID,
		FechaHora:     m.StartsAt,
	}
	if m.Result != nil {
		res := &resultResponse{Sets: make([]setResponse, 0, len(m.Result.Sets)), Winner: m.Result.Winner, Walkover: m.Result.Walkover}
		for _, s := range m.Result.Sets {
			res.Sets = append(res.Sets, setResponse{GamesA: s.GamesA, GamesB: s.GamesB, SuperTiebreak: s.SuperTiebreak})
		}
		resp.Resultado = res
	}
	return resp
}

func toMatchResponses(matches []models.Match) []matchResponse {
	out := make([]matchResponse, 0, len(matches))
	for _, m := range matches {
		out = append(out, toMatchResponse(m))
	}
	return out
}

type zoneResponse struct {
	ID         int             `json:"id"`
	CategoryID int             `json:"category_id"`
	Name       string          `json:"name"`
	PairIDs    []int           `json:"pair_ids"`
	Matches    []matchResponse `json:"matches"`
}

func toZoneResponses(zones []models.Zone) []zoneResponse {
	out := make([]zoneResponse, 0, len(zones))
	for _, z := range zones {
		out = append(out, zoneResponse{
			ID:         z.ID,
			CategoryID: z.CategoryID,
			Name:       z.Name,
			PairIDs:    z.PairIDs,
			Matches:    toMatchResponses(z.Matches),
		})
	}
	return out
}

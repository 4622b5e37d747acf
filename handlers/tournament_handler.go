package handlers

import (
	"net/http"
	"strconv"

	"github.com/Dosada05/padel-tournament/brackets"
	"github.com/Dosada05/padel-tournament/services"
)

// ArchiveLinker resolves the public URL of an archived tournament export.
type ArchiveLinker interface {
	URL(key string) string
}

type TournamentHandler struct {
	tournamentService services.TournamentService
	cache             *ResponseCache
	archives          ArchiveLinker
}

func NewTournamentHandler(ts services.TournamentService, cache *ResponseCache, archives ArchiveLinker) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: ts,
		cache:             cache,
		archives:          archives,
	}
}

// CreateHandler обрабатывает POST /tournaments
func (h *TournamentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.CreateTournament(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler обрабатывает GET /tournaments
func (h *TournamentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	tournaments, err := h.tournamentService.ListTournaments(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler обрабатывает GET /tournaments/{tournamentID}
func (h *TournamentHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.cache.serve(w, r, id, "tournament", func() (interface{}, error) {
		tournament, err := h.tournamentService.GetTournament(r.Context(), id)
		if err != nil {
			return nil, err
		}
		return jsonResponse{"tournament": tournament}, nil
	})
}

// ArchiveHandler обрабатывает GET /tournaments/{tournamentID}/archive
func (h *TournamentHandler) ArchiveHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	tournament, err := h.tournamentService.GetTournament(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if tournament.ArchiveKey == nil || h.archives == nil {
		mapServiceErrorToHTTP(w, r, brackets.NewError(brackets.ErrNotFound, services.CodeNotFound, "tournament %d has no archive", id))
		return
	}
	resp := jsonResponse{"key": *tournament.ArchiveKey, "url": h.archives.URL(*tournament.ArchiveKey)}
	if err := writeJSON(w, http.StatusOK, resp, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func generateOptions(r *http.Request) (services.GenerateOptions, error) {
	regenerate, err := queryBool(r, "regenerate")
	if err != nil {
		return services.GenerateOptions{}, err
	}
	confirm, err := queryBool(r, "confirm")
	if err != nil {
		return services.GenerateOptions{}, err
	}
	return services.GenerateOptions{Regenerate: regenerate, Confirm: confirm}, nil
}

// GenerateZonesHandler обрабатывает POST /tournaments/{tournamentID}/zones/generate
func (h *TournamentHandler) GenerateZonesHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	opts, err := generateOptions(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	zones, err := h.tournamentService.GenerateZones(r.Context(), id, opts)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.cache.invalidate(r.Context(), id)

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"zones": toZoneResponses(zones)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteZonesHandler обрабатывает DELETE /tournaments/{tournamentID}/zones?confirm=true
func (h *TournamentHandler) DeleteZonesHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	confirm, err := queryBool(r, "confirm")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.DeleteZones(r.Context(), id, confirm); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.cache.invalidate(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

// ListZonesHandler обрабатывает GET /tournaments/{tournamentID}/zones
func (h *TournamentHandler) ListZonesHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.cache.serve(w, r, id, "zones", func() (interface{}, error) {
		zones, err := h.tournamentService.ListZones(r.Context(), id)
		if err != nil {
			return nil, err
		}
		return jsonResponse{"zones": toZoneResponses(zones)}, nil
	})
}

// StandingsHandler обрабатывает GET /tournaments/{tournamentID}/zones/{zoneID}/standings
func (h *TournamentHandler) StandingsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	zoneID, err := getIDFromURL(r, "zoneID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.cache.serve(w, r, id, "standings:"+strconv.Itoa(zoneID), func() (interface{}, error) {
		return h.tournamentService.GetStandings(r.Context(), id, zoneID)
	})
}

// GenerateFixtureHandler обрабатывает POST /tournaments/{tournamentID}/zones/{zoneID}/fixture
func (h *TournamentHandler) GenerateFixtureHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	zoneID, err := getIDFromURL(r, "zoneID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	fixture, err := h.tournamentService.GenerateFixture(r.Context(), id, zoneID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.cache.invalidate(r.Context(), id)

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"matches": toMatchResponses(fixture)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteFixtureHandler обрабатывает DELETE /tournaments/{tournamentID}/zones/{zoneID}/fixture?confirm=true
func (h *TournamentHandler) DeleteFixtureHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	zoneID, err := getIDFromURL(r, "zoneID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	confirm, err := queryBool(r, "confirm")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.DeleteFixture(r.Context(), id, zoneID, confirm); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.cache.invalidate(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

// GeneratePlayoffsHandler обрабатывает POST /tournaments/{tournamentID}/playoffs/generate
func (h *TournamentHandler) GeneratePlayoffsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	opts, err := generateOptions(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.tournamentService.GeneratePlayoffs(r.Context(), id, opts)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.cache.invalidate(r.Context(), id)

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"matches": toMatchResponses(matches)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeletePlayoffsHandler обрабатывает DELETE /tournaments/{tournamentID}/playoffs?confirm=true
func (h *TournamentHandler) DeletePlayoffsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	confirm, err := queryBool(r, "confirm")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.DeletePlayoffs(r.Context(), id, confirm); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.cache.invalidate(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

// ListPlayoffsHandler обрабатывает GET /tournaments/{tournamentID}/playoffs
func (h *TournamentHandler) ListPlayoffsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.cache.serve(w, r, id, "playoffs", func() (interface{}, error) {
		matches, err := h.tournamentService.ListPlayoffs(r.Context(), id)
		if err != nil {
			return nil, err
		}
		return jsonResponse{"matches": toMatchResponses(matches)}, nil
	})
}

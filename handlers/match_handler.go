package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Dosada05/padel-tournament/services"
)

type MatchHandler struct {
	matchService services.MatchService
	cache        *ResponseCache
}

func NewMatchHandler(ms services.MatchService, cache *ResponseCache) *MatchHandler {
	return &MatchHandler{matchService: ms, cache: cache}
}

func matchIDs(r *http.Request) (int, int, error) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		return 0, 0, err
	}
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		return 0, 0, err
	}
	return tournamentID, matchID, nil
}

// ListMatches обрабатывает GET /tournaments/{tournamentID}/matches
func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.cache.serve(w, r, tournamentID, "matches", func() (interface{}, error) {
		matches, err := h.matchService.ListMatches(r.Context(), tournamentID)
		if err != nil {
			return nil, err
		}
		return jsonResponse{"matches": toMatchResponses(matches)}, nil
	})
}

func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	tournamentID, matchID, err := matchIDs(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.cache.serve(w, r, tournamentID, "match:"+strconv.Itoa(matchID), func() (interface{}, error) {
		m, err := h.matchService.GetMatch(r.Context(), tournamentID, matchID)
		if err != nil {
			return nil, err
		}
		return jsonResponse{"match": toMatchResponse(*m)}, nil
	})
}

// SubmitResult godoc
// @Summary Record the score of a match
// @Description Validates the sets against the tournament's third-set mode. With confirm=true the result is confirmed in the same call.
// @Tags matches
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param matchID path int true "Match ID"
// @Param input body services.SubmitResultInput true "Sets"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Already confirmed, match not ready or wrong phase"
// @Failure 422 {object} map[string]string "Invalid score"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/matches/{matchID}/result [post]
func (h *MatchHandler) SubmitResult(w http.ResponseWriter, r *http.Request) {
	tournamentID, matchID, err := matchIDs(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.SubmitResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	m, err := h.matchService.SubmitResult(r.Context(), tournamentID, matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.cache.invalidate(r.Context(), tournamentID)

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": toMatchResponse(*m)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) ConfirmResult(w http.ResponseWriter, r *http.Request) {
	tournamentID, matchID, err := matchIDs(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	m, err := h.matchService.ConfirmResult(r.Context(), tournamentID, matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.cache.invalidate(r.Context(), tournamentID)

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": toMatchResponse(*m)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RollbackResult обрабатывает POST /tournaments/{tournamentID}/matches/{matchID}/rollback?confirm=true
func (h *MatchHandler) RollbackResult(w http.ResponseWriter, r *http.Request) {
	tournamentID, matchID, err := matchIDs(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	confirm, err := queryBool(r, "confirm")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	m, err := h.matchService.RollbackResult(r.Context(), tournamentID, matchID, confirm)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.cache.invalidate(r.Context(), tournamentID)

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": toMatchResponse(*m)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type walkoverInput struct {
	WinnerPairID int `json:"winner_pair_id"`
}

func (h *MatchHandler) Walkover(w http.ResponseWriter, r *http.Request) {
	tournamentID, matchID, err := matchIDs(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input walkoverInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.WinnerPairID <= 0 {
		badRequestResponse(w, r, errors.New("winner_pair_id is required"))
		return
	}

	m, err := h.matchService.Walkover(r.Context(), tournamentID, matchID, input.WinnerPairID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.cache.invalidate(r.Context(), tournamentID)

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": toMatchResponse(*m)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Dosada05/padel-tournament/models"
	"github.com/Dosada05/padel-tournament/services"
)

// ParticipantHandler serves categories and the pairs enrolled in them.
type ParticipantHandler struct {
	registrationService services.RegistrationService
	cache               *ResponseCache
}

func NewParticipantHandler(rs services.RegistrationService, cache *ResponseCache) *ParticipantHandler {
	return &ParticipantHandler{
		registrationService: rs,
		cache:               cache,
	}
}

// CreateCategory godoc
// @Summary Create a category
// @Tags categories
// @Accept json
// @Produce json
// @Param input body services.CreateCategoryInput true "Category"
// @Success 201 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Tournament not found"
// @Failure 409 {object} map[string]string "Name taken or registration closed"
// @Security BearerAuth
// @Router /categories [post]
func (h *ParticipantHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var input services.CreateCategoryInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.TournamentID <= 0 {
		badRequestResponse(w, r, errors.New("tournament_id is required"))
		return
	}

	category, err := h.registrationService.CreateCategory(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.cache.invalidate(r.Context(), input.TournamentID)

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"category": category}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListCategories godoc
// @Summary List the categories of a tournament
// @Tags categories
// @Produce json
// @Param tournament_id query int true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Router /categories [get]
func (h *ParticipantHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := queryInt(r, "tournament_id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if tournamentID == nil {
		badRequestResponse(w, r, errors.New("tournament_id query parameter is required"))
		return
	}
	h.cache.serve(w, r, *tournamentID, "categories", func() (interface{}, error) {
		categories, err := h.registrationService.ListCategories(r.Context(), *tournamentID)
		if err != nil {
			return nil, err
		}
		return jsonResponse{"categories": categories}, nil
	})
}

// RegisterPair godoc
// @Summary Enroll a pair in a category
// @Tags pairs
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param input body services.RegisterPairInput true "Pair"
// @Success 201 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Duplicate pair or registration closed"
// @Failure 422 {object} map[string]string "Validation error"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/pairs [post]
func (h *ParticipantHandler) RegisterPair(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.RegisterPairInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	pair, err := h.registrationService.RegisterPair(r.Context(), tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.cache.invalidate(r.Context(), tournamentID)

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"pair": pair}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListPairs обрабатывает GET /tournaments/{tournamentID}/pairs[?category_id=&status=]
func (h *ParticipantHandler) ListPairs(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var filter services.PairListFilter
	if filter.CategoryID, err = queryInt(r, "category_id"); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if s := r.URL.Query().Get("status"); s != "" {
		status := models.PairStatus(s)
		filter.Status = &status
	}

	resource := "pairs"
	if filter.CategoryID != nil {
		resource += ":category=" + strconv.Itoa(*filter.CategoryID)
	}
	if filter.Status != nil {
		resource += ":status=" + string(*filter.Status)
	}
	h.cache.serve(w, r, tournamentID, resource, func() (interface{}, error) {
		pairs, err := h.registrationService.ListPairs(r.Context(), tournamentID, filter)
		if err != nil {
			return nil, err
		}
		return jsonResponse{"pairs": pairs}, nil
	})
}

type pairStatusInput struct {
	Status models.PairStatus `json:"status"`
}

// UpdatePairStatus обрабатывает PATCH /tournaments/{tournamentID}/pairs/{pairID}/status
func (h *ParticipantHandler) UpdatePairStatus(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	pairID, err := getIDFromURL(r, "pairID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input pairStatusInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	pair, err := h.registrationService.UpdatePairStatus(r.Context(), tournamentID, pairID, input.Status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.cache.invalidate(r.Context(), tournamentID)

	if err := writeJSON(w, http.StatusOK, jsonResponse{"pair": pair}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

package handlers

import (
	"net/http"

	"github.com/Dosada05/padel-tournament/services"
)

// ScheduleHandler serves courts, slots and match scheduling.
type ScheduleHandler struct {
	scheduleService services.ScheduleService
	cache           *ResponseCache
}

func NewScheduleHandler(ss services.ScheduleService, cache *ResponseCache) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: ss, cache: cache}
}

func (h *ScheduleHandler) CreateCourt(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.CreateCourtInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	court, err := h.scheduleService.CreateCourt(r.Context(), tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.cache.invalidate(r.Context(), tournamentID)

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"court": court}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ScheduleHandler) ListCourts(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.cache.serve(w, r, tournamentID, "courts", func() (interface{}, error) {
		courts, err := h.scheduleService.ListCourts(r.Context(), tournamentID)
		if err != nil {
			return nil, err
		}
		return jsonResponse{"courts": courts}, nil
	})
}

// DeleteCourt обрабатывает DELETE /tournaments/{tournamentID}/courts/{courtID}.
// Pending matches on the court lose their slot.
func (h *ScheduleHandler) DeleteCourt(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	courtID, err := getIDFromURL(r, "courtID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.scheduleService.DeleteCourt(r.Context(), tournamentID, courtID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.cache.invalidate(r.Context(), tournamentID)
	w.WriteHeader(http.StatusNoContent)
}

// GenerateSlots godoc
// @Summary Create equal slots on the tournament's courts for one day
// @Tags schedule
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param input body services.GenerateSlotsInput true "Window"
// @Success 201 {object} services.GenerateSlotsResult
// @Failure 422 {object} map[string]string "Bad window or no active courts"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/slots [post]
func (h *ScheduleHandler) GenerateSlots(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.GenerateSlotsInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	res, err := h.scheduleService.GenerateSlots(r.Context(), tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.cache.invalidate(r.Context(), tournamentID)

	if err := writeJSON(w, http.StatusCreated, res, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ScheduleHandler) ListSlots(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.cache.serve(w, r, tournamentID, "slots", func() (interface{}, error) {
		slots, err := h.scheduleService.ListSlots(r.Context(), tournamentID)
		if err != nil {
			return nil, err
		}
		return jsonResponse{"slots": slots}, nil
	})
}

// AutoSchedule godoc
// @Summary Assign every ready match to a free slot
// @Tags schedule
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} services.ScheduleSummary
// @Failure 409 {object} map[string]string "Wrong phase or tournament busy"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/schedule/auto [post]
func (h *ScheduleHandler) AutoSchedule(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	summary, err := h.scheduleService.AutoSchedule(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.cache.invalidate(r.Context(), tournamentID)

	if err := writeJSON(w, http.StatusOK, summary, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ScheduleHandler) ClearSchedule(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	cleared, err := h.scheduleService.ClearSchedule(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.cache.invalidate(r.Context(), tournamentID)

	if err := writeJSON(w, http.StatusOK, jsonResponse{"cleared": cleared}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

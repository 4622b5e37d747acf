package services

import (
	"errors"

	"github.com/Dosada05/padel-tournament/brackets"
	"github.com/Dosada05/padel-tournament/repositories"
)

// Reason codes produced by the service layer, next to the engine codes in brackets.
const (
	CodeNotFound                = "not_found"
	CodeConfirmRequired         = "confirm_required"
	CodeTournamentBusy          = "tournament_busy"
	CodeAlreadyConfirmed        = "already_confirmed"
	CodeNotReported             = "not_reported"
	CodeNotConfirmed            = "not_confirmed"
	CodeInvalidPhase            = "invalid_phase"
	CodeUnconfirmedGroupMatches = "unconfirmed_group_matches"
	CodeMissingFixture          = "missing_fixture"
	CodeMatchNotReady           = "match_not_ready"
	CodeWinnerNotInMatch        = "winner_not_in_match"
	CodeNameConflict            = "name_conflict"
	CodeDuplicatePair           = "duplicate_pair"
	CodeSlotConflict            = "slot_conflict"
	CodeSlotTaken               = "slot_taken"
	CodePhaseChanged            = "phase_changed"
	CodeInvalidInput            = "invalid_input"
	CodeRegistrationClosed      = "registration_closed"
)

func validationError(format string, args ...any) error {
	return brackets.NewError(brackets.ErrValidation, CodeInvalidInput, format, args...)
}

func notFoundError(format string, args ...any) error {
	return brackets.NewError(brackets.ErrNotFound, CodeNotFound, format, args...)
}

func confirmRequiredError(what string) error {
	return brackets.NewError(brackets.ErrConflict, CodeConfirmRequired, "deleting %s is destructive; repeat the request with confirm=true", what)
}

func phaseError(format string, args ...any) error {
	return brackets.NewError(brackets.ErrState, CodeInvalidPhase, format, args...)
}

// translateRepoError maps repository sentinels onto the engine error kinds so
// handlers only need to understand one taxonomy. Unknown errors pass through.
func translateRepoError(err error) error {
	if err == nil {
		return nil
	}
	var engineErr *brackets.Error
	if errors.As(err, &engineErr) {
		return err
	}

	switch {
	case errors.Is(err, repositories.ErrTournamentNotFound),
		errors.Is(err, repositories.ErrCategoryNotFound),
		errors.Is(err, repositories.ErrPairNotFound),
		errors.Is(err, repositories.ErrZoneNotFound),
		errors.Is(err, repositories.ErrMatchNotFound),
		errors.Is(err, repositories.ErrCourtNotFound),
		errors.Is(err, repositories.ErrSlotNotFound):
		return brackets.NewError(brackets.ErrNotFound, CodeNotFound, "%s", err.Error())

	case errors.Is(err, repositories.ErrCategoryNameConflict),
		errors.Is(err, repositories.ErrCourtNameConflict):
		return brackets.NewError(brackets.ErrConflict, CodeNameConflict, "%s", err.Error())
	case errors.Is(err, repositories.ErrPairDuplicate):
		return brackets.NewError(brackets.ErrConflict, CodeDuplicatePair, "%s", err.Error())
	case errors.Is(err, repositories.ErrSlotConflict):
		return brackets.NewError(brackets.ErrConflict, CodeSlotConflict, "%s", err.Error())
	case errors.Is(err, repositories.ErrSlotTaken):
		return brackets.NewError(brackets.ErrConflict, CodeSlotTaken, "%s", err.Error())
	case errors.Is(err, repositories.ErrMatchPositionConflict):
		return brackets.AlreadyGeneratedError("bracket")
	case errors.Is(err, repositories.ErrTournamentPhaseChanged):
		return brackets.NewError(brackets.ErrConflict, CodePhaseChanged, "%s", err.Error())

	case errors.Is(err, repositories.ErrMatchAlreadyConfirmed):
		return brackets.NewError(brackets.ErrConflict, CodeAlreadyConfirmed, "%s", err.Error())
	case errors.Is(err, repositories.ErrMatchNotReported):
		return brackets.NewError(brackets.ErrState, CodeNotReported, "%s", err.Error())
	case errors.Is(err, repositories.ErrMatchNotConfirmed):
		return brackets.NewError(brackets.ErrState, CodeNotConfirmed, "%s", err.Error())
	}
	return err
}

package brackets

import (
	"github.com/Dosada05/padel-tournament/models"
)

// forward lists the only phase each phase may advance to.
var forward = map[models.Phase]models.Phase{
	models.PhaseInscripcion:     models.PhaseArmandoZonas,
	models.PhaseArmandoZonas:    models.PhaseFaseGrupos,
	models.PhaseFaseGrupos:      models.PhaseFaseEliminacion,
	models.PhaseFaseEliminacion: models.PhaseFinalizado,
}

// resets lists the phases a destructive delete may roll back to.
var resets = map[models.Phase][]models.Phase{
	models.PhaseArmandoZonas:    {models.PhaseInscripcion},
	models.PhaseFaseGrupos:      {models.PhaseInscripcion},
	models.PhaseFaseEliminacion: {models.PhaseFaseGrupos},
}

// NextPhase returns the phase that follows p.
func NextPhase(p models.Phase) (models.Phase, bool) {
	next, ok := forward[p]
	return next, ok
}

// CanTransition reports whether a tournament may move from one phase to another
// as part of normal progress.
func CanTransition(from, to models.Phase) bool {
	next, ok := forward[from]
	return ok && next == to
}

// CanReset reports whether an explicit, confirmed delete may move the phase back.
func CanReset(from, to models.Phase) bool {
	for _, p := range resets[from] {
		if p == to {
			return true
		}
	}
	return false
}

// Transition validates a move and returns a StateError when it is not allowed.
func Transition(from, to models.Phase) error {
	if !CanTransition(from, to) {
		return NewError(ErrState, CodeInvalidTransition, "cannot move tournament from %s to %s", from, to)
	}
	return nil
}

// PhaseAtLeast reports whether p has reached min in the phase order.
func PhaseAtLeast(p, min models.Phase) bool {
	return phaseIndex(p) >= phaseIndex(min)
}

func phaseIndex(p models.Phase) int {
	i := 0
	for cur := models.PhaseInscripcion; ; i++ {
		if cur == p {
			return i
		}
		next, ok := forward[cur]
		if !ok {
			return -1
		}
		cur = next
	}
}

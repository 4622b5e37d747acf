package brackets

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Dosada05/padel-tournament/models"
)

func TestPhaseTransitions(t *testing.T) {
	phases := []models.Phase{
		models.PhaseInscripcion,
		models.PhaseArmandoZonas,
		models.PhaseFaseGrupos,
		models.PhaseFaseEliminacion,
		models.PhaseFinalizado,
	}

	for i, from := range phases {
		for j, to := range phases {
			assert.Equal(t, j == i+1, CanTransition(from, to), "%s -> %s", from, to)
		}
		assert.True(t, PhaseAtLeast(from, models.PhaseInscripcion))
		assert.Equal(t, i >= 2, PhaseAtLeast(from, models.PhaseFaseGrupos))
	}

	next, ok := NextPhase(models.PhaseFaseGrupos)
	assert.True(t, ok)
	assert.Equal(t, models.PhaseFaseEliminacion, next)
	_, ok = NextPhase(models.PhaseFinalizado)
	assert.False(t, ok)

	err := Transition(models.PhaseFinalizado, models.PhaseInscripcion)
	assert.True(t, errors.Is(err, ErrState))
	assert.Equal(t, CodeInvalidTransition, Code(err))
	assert.NoError(t, Transition(models.PhaseInscripcion, models.PhaseArmandoZonas))

	assert.True(t, CanReset(models.PhaseFaseGrupos, models.PhaseInscripcion))
	assert.True(t, CanReset(models.PhaseFaseEliminacion, models.PhaseFaseGrupos))
	assert.False(t, CanReset(models.PhaseFinalizado, models.PhaseFaseGrupos))
	assert.False(t, CanReset(models.PhaseFaseEliminacion, models.PhaseInscripcion))
}

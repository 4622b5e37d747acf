package models

import "time"

// Phase представляет фазу турнира. Переходы только вперед (см. brackets.CanTransition).
type Phase string

const (
	PhaseInscripcion     Phase = "inscripcion"
	PhaseArmandoZonas    Phase = "armando_zonas"
	PhaseFaseGrupos      Phase = "fase_grupos"
	PhaseFaseEliminacion Phase = "fase_eliminacion"
	PhaseFinalizado      Phase = "finalizado"
)

// ThirdSetMode decides how a 1-1 match is closed.
type ThirdSetMode string

const (
	ThirdSetFull          ThirdSetMode = "full_set"
	ThirdSetSuperTiebreak ThirdSetMode = "super_tiebreak"
)

const (
	DefaultWinPoints         = 2
	DefaultLossPoints        = 0
	DefaultTargetZoneSize    = 3
	DefaultQualifiersPerZone = 2
	DefaultRestMinutes       = 30
)

// ScoringConfig holds the per-tournament competition settings.
type ScoringConfig struct {
	WinPoints         int          `json:"win_points"`
	LossPoints        int          `json:"loss_points"`
	ThirdSet          ThirdSetMode `json:"third_set"`
	TargetZoneSize    int          `json:"target_zone_size"`
	QualifiersPerZone int          `json:"qualifiers_per_zone"`
	RestMinutes       int          `json:"rest_minutes"`
}

// DefaultScoringConfig returns 2/0 points, full third set, zones of 3, top 2 qualify, 30' rest.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		WinPoints:         DefaultWinPoints,
		LossPoints:        DefaultLossPoints,
		ThirdSet:          ThirdSetFull,
		TargetZoneSize:    DefaultTargetZoneSize,
		QualifiersPerZone: DefaultQualifiersPerZone,
		RestMinutes:       DefaultRestMinutes,
	}
}

// WithDefaults fills zero values so a partially specified config stays usable.
func (c ScoringConfig) WithDefaults() ScoringConfig {
	d := DefaultScoringConfig()
	if c.WinPoints == 0 && c.LossPoints == 0 {
		c.WinPoints = d.WinPoints
		c.LossPoints = d.LossPoints
	}
	if c.ThirdSet == "" {
		c.ThirdSet = d.ThirdSet
	}
	if c.TargetZoneSize == 0 {
		c.TargetZoneSize = d.TargetZoneSize
	}
	if c.QualifiersPerZone == 0 {
		c.QualifiersPerZone = d.QualifiersPerZone
	}
	if c.RestMinutes == 0 {
		c.RestMinutes = d.RestMinutes
	}
	return c
}

// Tournament представляет турнир.
type Tournament struct {
	ID         int           `json:"id" db:"id"`
	Name       string        `json:"name" db:"name"`
	Phase      Phase         `json:"phase" db:"phase"`
	Scoring    ScoringConfig `json:"scoring" db:"scoring"`
	ArchiveKey *string       `json:"archive_key,omitempty" db:"archive_key"` // object key of the final results export
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`

	Categories []Category `json:"categories,omitempty" db:"-"`
}

type Gender string

const (
	GenderMasculino Gender = "masculino"
	GenderFemenino  Gender = "femenino"
	GenderMixto     Gender = "mixto"
	GenderLibre     Gender = "libre"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMasculino, GenderFemenino, GenderMixto, GenderLibre:
		return true
	}
	return false
}

// Category scopes pairs, zones and matches inside a tournament.
type Category struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Name         string    `json:"name" db:"name"`
	Gender       Gender    `json:"gender" db:"gender"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

package brackets

import (
	"context"

	"github.com/Dosada05/padel-tournament/models"
)

// PlayoffGenerator builds the elimination stage of one category from its seeded qualifiers.
type PlayoffGenerator interface {
	GeneratePlayoffs(ctx context.Context, params BracketParams) ([]models.Match, error)

	GetName() string
}

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() *SingleEliminationGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "single_elimination"
}

func (g *SingleEliminationGenerator) GeneratePlayoffs(ctx context.Context, params BracketParams) ([]models.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return BuildBracket(params)
}

package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Dosada05/padel-tournament/brackets"
	"github.com/Dosada05/padel-tournament/models"
	"github.com/Dosada05/padel-tournament/repositories"
)

type CreateCategoryInput struct {
	TournamentID int           `json:"tournament_id"`
	Name         string        `json:"name"`
	Gender       models.Gender `json:"gender"`
}

type RegisterPairInput struct {
	CategoryID int               `json:"category_id"`
	Player1    string            `json:"player1"`
	Player2    string            `json:"player2"`
	Seed       *int              `json:"seed,omitempty"`
	Status     models.PairStatus `json:"status,omitempty"`
}

type PairListFilter struct {
	CategoryID *int
	Status     *models.PairStatus
}

type RegistrationService interface {
	CreateCategory(ctx context.Context, input CreateCategoryInput) (*models.Category, error)
	ListCategories(ctx context.Context, tournamentID int) ([]models.Category, error)

	RegisterPair(ctx context.Context, tournamentID int, input RegisterPairInput) (*models.Pair, error)
	ListPairs(ctx context.Context, tournamentID int, filter PairListFilter) ([]models.Pair, error)
	// UpdatePairStatus confirms or rejects an enrollment. Setting withdrawn is
	// delegated to MatchService.WithdrawPair.
	UpdatePairStatus(ctx context.Context, tournamentID, pairID int, status models.PairStatus) (*models.Pair, error)
}

type registrationService struct {
	store   *repositories.Store
	matches MatchService
	logger  *slog.Logger
}

func NewRegistrationService(store *repositories.Store, matches MatchService, logger *slog.Logger) RegistrationService {
	return &registrationService{store: store, matches: matches, logger: loggerOrDefault(logger)}
}

func registrationClosedError(t *models.Tournament) error {
	return brackets.NewError(brackets.ErrState, CodeRegistrationClosed, "registration of tournament %d is closed (phase %s)", t.ID, t.Phase)
}

func (s *registrationService) CreateCategory(ctx context.Context, input CreateCategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validationError("category name is required")
	}
	gender := input.Gender
	if gender == "" {
		gender = models.GenderLibre
	}
	if !gender.Valid() {
		return nil, validationError("unknown gender %q", input.Gender)
	}

	t, err := s.store.Tournaments.GetByID(ctx, nil, input.TournamentID)
	if err != nil {
		return nil, translateRepoError(err)
	}
	if t.Phase != models.PhaseInscripcion {
		return nil, registrationClosedError(t)
	}

	c := &models.Category{TournamentID: t.ID, Name: name, Gender: gender}
	if err := s.store.Categories.Create(ctx, c); err != nil {
		return nil, translateRepoError(err)
	}
	s.logger.InfoContext(ctx, "category created", slog.Int("tournament_id", t.ID), slog.Int("category_id", c.ID))
	return c, nil
}

func (s *registrationService) ListCategories(ctx context.Context, tournamentID int) ([]models.Category, error) {
	if _, err := s.store.Tournaments.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, translateRepoError(err)
	}
	categories, err := s.store.Categories.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return categories, nil
}

func (s *registrationService) RegisterPair(ctx context.Context, tournamentID int, input RegisterPairInput) (*models.Pair, error) {
	p1, p2 := strings.TrimSpace(input.Player1), strings.TrimSpace(input.Player2)
	switch {
	case p1 == "" || p2 == "":
		return nil, validationError("both players are required")
	case strings.EqualFold(p1, p2):
		return nil, validationError("a pair needs two different players")
	case input.Seed != nil && *input.Seed < 1:
		return nil, validationError("seed must be a positive ranking")
	}
	status := input.Status
	if status == "" {
		status = models.PairPending
	}
	if status != models.PairPending && status != models.PairConfirmed {
		return nil, validationError("a new pair must be pending or confirmed")
	}

	t, err := s.store.Tournaments.GetByID(ctx, nil, tournamentID)
	if err != nil {
		return nil, translateRepoError(err)
	}
	if t.Phase != models.PhaseInscripcion {
		return nil, registrationClosedError(t)
	}
	category, err := s.store.Categories.GetByID(ctx, input.CategoryID)
	if err != nil {
		return nil, translateRepoError(err)
	}
	if category.TournamentID != tournamentID {
		return nil, notFoundError("category %d not found in tournament %d", input.CategoryID, tournamentID)
	}

	pair := &models.Pair{
		TournamentID: tournamentID,
		CategoryID:   category.ID,
		Player1:      p1,
		Player2:      p2,
		Seed:         input.Seed,
		Status:       status,
	}
	if err := s.store.Pairs.Create(ctx, pair); err != nil {
		return nil, translateRepoError(err)
	}
	s.logger.InfoContext(ctx, "pair registered",
		slog.Int("tournament_id", tournamentID), slog.Int("category_id", category.ID), slog.Int("pair_id", pair.ID))
	return pair, nil
}

func (s *registrationService) ListPairs(ctx context.Context, tournamentID int, filter PairListFilter) ([]models.Pair, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, validationError("unknown pair status %q", *filter.Status)
	}
	if _, err := s.store.Tournaments.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, translateRepoError(err)
	}
	pairs, err := s.store.Pairs.List(ctx, nil, repositories.PairFilter{
		TournamentID: tournamentID,
		CategoryID:   filter.CategoryID,
		Status:       filter.Status,
	})
	if err != nil {
		return nil, translateRepoError(err)
	}
	return pairs, nil
}

func (s *registrationService) UpdatePairStatus(ctx context.Context, tournamentID, pairID int, status models.PairStatus) (*models.Pair, error) {
	if !status.Valid() {
		return nil, validationError("unknown pair status %q", status)
	}
	if status == models.PairWithdrawn {
		res, err := s.matches.WithdrawPair(ctx, tournamentID, pairID)
		if err != nil {
			return nil, err
		}
		return &res.Pair, nil
	}

	var updated *models.Pair
	err := s.store.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.store.Tournaments.LockByID(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if t.Phase != models.PhaseInscripcion {
			return registrationClosedError(t)
		}
		pair, err := s.store.Pairs.GetByID(ctx, exec, pairID)
		if err != nil {
			return err
		}
		if pair.TournamentID != tournamentID {
			return notFoundError("pair %d not found in tournament %d", pairID, tournamentID)
		}
		if pair.Status == models.PairWithdrawn {
			return brackets.NewError(brackets.ErrState, "already_withdrawn", "pair %d withdrew and cannot be re-enrolled", pairID)
		}
		if err := s.store.Pairs.UpdateStatus(ctx, exec, pairID, status); err != nil {
			return err
		}
		pair.Status = status
		updated = pair
		return nil
	})
	if err != nil {
		return nil, translateRepoError(err)
	}
	return updated, nil
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/padel-tournament/brackets"
	"github.com/Dosada05/padel-tournament/models"
	"github.com/Dosada05/padel-tournament/repositories"
)

type GenerateOptions struct {
	Regenerate bool
	Confirm    bool
}

type CreateTournamentInput struct {
	Name    string                `json:"name"`
	Scoring *models.ScoringConfig `json:"scoring,omitempty"`
}

type ZoneStandings struct {
	Zone      models.Zone          `json:"zone"`
	Standings []models.StandingRow `json:"standings"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetTournament(ctx context.Context, id int) (*models.Tournament, error)
	ListTournaments(ctx context.Context) ([]models.Tournament, error)

	// GenerateZones composes the zones and their fixtures of every category and
	// moves the tournament to group play.
	GenerateZones(ctx context.Context, id int, opts GenerateOptions) ([]models.Zone, error)
	DeleteZones(ctx context.Context, id int, confirm bool) error
	ListZones(ctx context.Context, id int) ([]models.Zone, error)
	GetStandings(ctx context.Context, id, zoneID int) (*ZoneStandings, error)

	GenerateFixture(ctx context.Context, id, zoneID int) ([]models.Match, error)
	DeleteFixture(ctx context.Context, id, zoneID int, confirm bool) error

	// GeneratePlayoffs builds one bracket per category from the zone standings.
	GeneratePlayoffs(ctx context.Context, id int, opts GenerateOptions) ([]models.Match, error)
	DeletePlayoffs(ctx context.Context, id int, confirm bool) error
	ListPlayoffs(ctx context.Context, id int) ([]models.Match, error)
}

type tournamentService struct {
	store     *repositories.Store
	locker    Locker
	generator brackets.PlayoffGenerator
	notifier  Notifier
	logger    *slog.Logger
}

func NewTournamentService(
	store *repositories.Store,
	locker Locker,
	generator brackets.PlayoffGenerator,
	notifier Notifier,
	logger *slog.Logger,
) TournamentService {
	if generator == nil {
		generator = brackets.NewSingleEliminationGenerator()
	}
	return &tournamentService{
		store:     store,
		locker:    locker,
		generator: generator,
		notifier:  notifierOrNoop(notifier),
		logger:    loggerOrDefault(logger),
	}
}

func validateScoring(c models.ScoringConfig) error {
	switch {
	case c.ThirdSet != models.ThirdSetFull && c.ThirdSet != models.ThirdSetSuperTiebreak:
		return validationError("third_set must be %q or %q", models.ThirdSetFull, models.ThirdSetSuperTiebreak)
	case c.WinPoints < 0 || c.LossPoints < 0:
		return validationError("points cannot be negative")
	case c.WinPoints <= c.LossPoints:
		return validationError("a win must be worth more points than a loss")
	case c.TargetZoneSize < 2:
		return validationError("target_zone_size must be at least 2")
	case c.QualifiersPerZone < 1:
		return validationError("qualifiers_per_zone must be at least 1")
	case c.RestMinutes < 0:
		return validationError("rest_minutes cannot be negative")
	}
	return nil
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validationError("tournament name is required")
	}
	scoring := models.DefaultScoringConfig()
	if input.Scoring != nil {
		scoring = input.Scoring.WithDefaults()
	}
	if err := validateScoring(scoring); err != nil {
		return nil, err
	}

	t := &models.Tournament{Name: name, Phase: models.PhaseInscripcion, Scoring: scoring}
	if err := s.store.Tournaments.Create(ctx, t); err != nil {
		return nil, translateRepoError(err)
	}
	s.logger.InfoContext(ctx, "tournament created", slog.Int("tournament_id", t.ID), slog.String("name", t.Name))
	return t, nil
}

func (s *tournamentService) GetTournament(ctx context.Context, id int) (*models.Tournament, error) {
	var t *models.Tournament
	var categories []models.Category

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		t, err = s.store.Tournaments.GetByID(gctx, nil, id)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.store.Categories.ListByTournament(gctx, nil, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, translateRepoError(err)
	}
	t.Categories = categories
	return t, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context) ([]models.Tournament, error) {
	tournaments, err := s.store.Tournaments.List(ctx)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return tournaments, nil
}

func (s *tournamentService) GenerateZones(ctx context.Context, id int, opts GenerateOptions) ([]models.Zone, error) {
	unlock, err := lockTournament(ctx, s.locker, s.logger, id, "generate_zones")
	if err != nil {
		return nil, err
	}
	defer unlock()

	var created []models.Zone
	err = s.store.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		created = nil
		t, err := s.store.Tournaments.LockByID(ctx, exec, id)
		if err != nil {
			return err
		}
		if brackets.PhaseAtLeast(t.Phase, models.PhaseFaseEliminacion) {
			return phaseError("zones cannot be generated in phase %s", t.Phase)
		}

		existing, err := s.store.Zones.ListByTournament(ctx, exec, id)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			if !opts.Regenerate || !opts.Confirm {
				return brackets.AlreadyGeneratedError("zones")
			}
			if err := s.store.Zones.DeleteByTournament(ctx, exec, id); err != nil {
				return err
			}
		}
		if err := resetPhase(ctx, s.store.Tournaments, exec, t, models.PhaseInscripcion); err != nil {
			return err
		}
		if err := advancePhase(ctx, s.store.Tournaments, exec, t, models.PhaseArmandoZonas); err != nil {
			return err
		}

		categories, err := s.store.Categories.ListByTournament(ctx, exec, id)
		if err != nil {
			return err
		}
		confirmed := models.PairConfirmed
		for _, c := range categories {
			categoryID := c.ID
			pairs, err := s.store.Pairs.List(ctx, exec, repositories.PairFilter{TournamentID: id, CategoryID: &categoryID, Status: &confirmed})
			if err != nil {
				return err
			}
			if len(pairs) == 0 {
				continue
			}
			zones, err := brackets.ComposeZones(c.ID, pairs, t.Scoring.TargetZoneSize)
			if err != nil {
				return err
			}
			for i := range zones {
				zones[i].TournamentID = id
				if err := s.store.Zones.Create(ctx, exec, &zones[i]); err != nil {
					return err
				}
				fixture, err := brackets.GenerateFixture(zones[i], 0)
				if err != nil {
					return err
				}
				if err := s.createMatches(ctx, exec, fixture); err != nil {
					return err
				}
				zones[i].Matches = fixture
				created = append(created, zones[i])
			}
		}
		if len(created) == 0 {
			return brackets.InsufficientPairsError(0)
		}
		return advancePhase(ctx, s.store.Tournaments, exec, t, models.PhaseFaseGrupos)
	})
	if err != nil {
		return nil, translateRepoError(err)
	}

	s.logger.InfoContext(ctx, "zones generated", slog.Int("tournament_id", id), slog.Int("zones", len(created)))
	s.notifier.Publish(id, brackets.EventZonesGenerated, created)
	s.notifier.Publish(id, brackets.EventPhaseChanged, PhaseChangedPayload{TournamentID: id, Phase: string(models.PhaseFaseGrupos)})
	return created, nil
}

func (s *tournamentService) createMatches(ctx context.Context, exec repositories.SQLExecutor, matches []models.Match) error {
	for i := range matches {
		if err := s.store.Matches.Create(ctx, exec, &matches[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *tournamentService) DeleteZones(ctx context.Context, id int, confirm bool) error {
	if !confirm {
		return confirmRequiredError("zones")
	}
	unlock, err := lockTournament(ctx, s.locker, s.logger, id, "delete_zones")
	if err != nil {
		return err
	}
	defer unlock()

	err = s.store.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.store.Tournaments.LockByID(ctx, exec, id)
		if err != nil {
			return err
		}
		if t.Phase != models.PhaseArmandoZonas && t.Phase != models.PhaseFaseGrupos {
			return phaseError("zones can only be deleted during group play, tournament is in %s", t.Phase)
		}
		if err := s.store.Zones.DeleteByTournament(ctx, exec, id); err != nil {
			return err
		}
		return resetPhase(ctx, s.store.Tournaments, exec, t, models.PhaseInscripcion)
	})
	if err != nil {
		return translateRepoError(err)
	}

	s.logger.InfoContext(ctx, "zones deleted", slog.Int("tournament_id", id))
	s.notifier.Publish(id, brackets.EventZonesDeleted, map[string]int{"tournament_id": id})
	s.notifier.Publish(id, brackets.EventPhaseChanged, PhaseChangedPayload{TournamentID: id, Phase: string(models.PhaseInscripcion)})
	return nil
}

func (s *tournamentService) ListZones(ctx context.Context, id int) ([]models.Zone, error) {
	var zones []models.Zone
	var matches []models.Match

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.store.Tournaments.GetByID(gctx, nil, id)
		return err
	})
	g.Go(func() error {
		var err error
		zones, err = s.store.Zones.ListByTournament(gctx, nil, id)
		return err
	})
	g.Go(func() error {
		var err error
		matches, err = s.store.Matches.List(gctx, nil, repositories.MatchFilter{TournamentID: id, Stage: repositories.StageZones})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, translateRepoError(err)
	}

	byZone := make(map[int][]models.Match, len(zones))
	for _, m := range matches {
		byZone[*m.ZoneID] = append(byZone[*m.ZoneID], m)
	}
	for i := range zones {
		zones[i].Matches = byZone[zones[i].ID]
		if zones[i].Matches == nil {
			zones[i].Matches = []models.Match{}
		}
	}
	return zones, nil
}

func (s *tournamentService) GetStandings(ctx context.Context, id, zoneID int) (*ZoneStandings, error) {
	var t *models.Tournament
	var zone *models.Zone
	var matches []models.Match

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		t, err = s.store.Tournaments.GetByID(gctx, nil, id)
		return err
	})
	g.Go(func() error {
		var err error
		zone, err = s.store.Zones.GetByID(gctx, nil, zoneID)
		return err
	})
	g.Go(func() error {
		var err error
		matches, err = s.store.Matches.List(gctx, nil, repositories.MatchFilter{TournamentID: id, ZoneID: &zoneID, Stage: repositories.StageZones})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, translateRepoError(err)
	}
	if zone.TournamentID != id {
		return nil, notFoundError("zone %d not found in tournament %d", zoneID, id)
	}

	rows := brackets.ComputeStandings(*zone, matches, brackets.StandingsOptionsFrom(t.Scoring))
	return &ZoneStandings{Zone: *zone, Standings: rows}, nil
}

func (s *tournamentService) zoneOf(ctx context.Context, exec repositories.SQLExecutor, id, zoneID int) (*models.Zone, error) {
	zone, err := s.store.Zones.GetByID(ctx, exec, zoneID)
	if err != nil {
		return nil, err
	}
	if zone.TournamentID != id {
		return nil, notFoundError("zone %d not found in tournament %d", zoneID, id)
	}
	return zone, nil
}

func (s *tournamentService) GenerateFixture(ctx context.Context, id, zoneID int) ([]models.Match, error) {
	unlock, err := lockTournament(ctx, s.locker, s.logger, id, "generate_fixture")
	if err != nil {
		return nil, err
	}
	defer unlock()

	var fixture []models.Match
	err = s.store.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.store.Tournaments.LockByID(ctx, exec, id)
		if err != nil {
			return err
		}
		if t.Phase != models.PhaseFaseGrupos {
			return phaseError("fixtures can only be generated during group play, tournament is in %s", t.Phase)
		}
		zone, err := s.zoneOf(ctx, exec, id, zoneID)
		if err != nil {
			return err
		}
		existing, err := s.store.Matches.CountByZone(ctx, exec, zoneID)
		if err != nil {
			return err
		}
		fixture, err = brackets.GenerateFixture(*zone, existing)
		if err != nil {
			return err
		}
		return s.createMatches(ctx, exec, fixture)
	})
	if err != nil {
		return nil, translateRepoError(err)
	}

	s.notifier.Publish(id, brackets.EventFixtureUpdated, map[string]any{"zone_id": zoneID, "matches": fixture})
	return fixture, nil
}

func (s *tournamentService) DeleteFixture(ctx context.Context, id, zoneID int, confirm bool) error {
	if !confirm {
		return confirmRequiredError("the fixture")
	}
	unlock, err := lockTournament(ctx, s.locker, s.logger, id, "delete_fixture")
	if err != nil {
		return err
	}
	defer unlock()

	err = s.store.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.store.Tournaments.LockByID(ctx, exec, id)
		if err != nil {
			return err
		}
		if t.Phase != models.PhaseFaseGrupos {
			return phaseError("fixtures can only be deleted during group play, tournament is in %s", t.Phase)
		}
		if _, err := s.zoneOf(ctx, exec, id, zoneID); err != nil {
			return err
		}
		return s.store.Matches.DeleteByZone(ctx, exec, zoneID)
	})
	if err != nil {
		return translateRepoError(err)
	}

	s.notifier.Publish(id, brackets.EventFixtureUpdated, map[string]any{"zone_id": zoneID, "matches": []models.Match{}})
	return nil
}

func (s *tournamentService) GeneratePlayoffs(ctx context.Context, id int, opts GenerateOptions) ([]models.Match, error) {
	unlock, err := lockTournament(ctx, s.locker, s.logger, id, "generate_playoffs")
	if err != nil {
		return nil, err
	}
	defer unlock()

	var created []models.Match
	err = s.store.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		created = nil
		t, err := s.store.Tournaments.LockByID(ctx, exec, id)
		if err != nil {
			return err
		}
		switch t.Phase {
		case models.PhaseFaseGrupos:
		case models.PhaseFaseEliminacion:
			if !opts.Regenerate || !opts.Confirm {
				return brackets.AlreadyGeneratedError("playoffs")
			}
			if err := s.store.Matches.DeleteByTournament(ctx, exec, id, repositories.StagePlayoffs); err != nil {
				return err
			}
			if err := resetPhase(ctx, s.store.Tournaments, exec, t, models.PhaseFaseGrupos); err != nil {
				return err
			}
		default:
			return phaseError("playoffs require finished group play, tournament is in %s", t.Phase)
		}

		tables, categoryOrder, err := s.zoneTables(ctx, exec, t)
		if err != nil {
			return err
		}
		withdrawn, err := s.withdrawnPairs(ctx, exec, id)
		if err != nil {
			return err
		}
		for _, categoryID := range categoryOrder {
			// Пары, снявшиеся по ходу групп, в плей-офф не проходят.
			ranked := brackets.WithoutPairs(tables[categoryID], withdrawn)
			qualifiers := brackets.SelectQualifiers(ranked, t.Scoring.QualifiersPerZone)
			bracket, err := s.generator.GeneratePlayoffs(ctx, brackets.BracketParams{
				TournamentID: id,
				CategoryID:   categoryID,
				Qualifiers:   qualifiers,
			})
			if err != nil {
				return fmt.Errorf("category %d: %w", categoryID, err)
			}
			if err := s.createMatches(ctx, exec, bracket); err != nil {
				return err
			}
			created = append(created, bracket...)
		}
		return advancePhase(ctx, s.store.Tournaments, exec, t, models.PhaseFaseEliminacion)
	})
	if err != nil {
		return nil, translateRepoError(err)
	}

	s.logger.InfoContext(ctx, "playoffs generated",
		slog.Int("tournament_id", id), slog.Int("matches", len(created)), slog.String("generator", s.generator.GetName()))
	s.notifier.Publish(id, brackets.EventPlayoffsGenerated, created)
	s.notifier.Publish(id, brackets.EventPhaseChanged, PhaseChangedPayload{TournamentID: id, Phase: string(models.PhaseFaseEliminacion)})
	return created, nil
}

func (s *tournamentService) withdrawnPairs(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (map[int]bool, error) {
	status := models.PairWithdrawn
	pairs, err := s.store.Pairs.List(ctx, exec, repositories.PairFilter{TournamentID: tournamentID, Status: &status})
	if err != nil {
		return nil, err
	}
	out := make(map[int]bool, len(pairs))
	for _, p := range pairs {
		out[p.ID] = true
	}
	return out, nil
}

// zoneTables ranks every zone of the tournament. It refuses while any group
// match is unconfirmed or a zone has no fixture.
func (s *tournamentService) zoneTables(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) (map[int][]brackets.ZoneTable, []int, error) {
	zones, err := s.store.Zones.ListByTournament(ctx, exec, t.ID)
	if err != nil {
		return nil, nil, err
	}
	if len(zones) == 0 {
		return nil, nil, phaseError("tournament %d has no zones", t.ID)
	}
	matches, err := s.store.Matches.List(ctx, exec, repositories.MatchFilter{TournamentID: t.ID, Stage: repositories.StageZones})
	if err != nil {
		return nil, nil, err
	}

	byZone := make(map[int][]models.Match, len(zones))
	unconfirmed := 0
	for _, m := range matches {
		byZone[*m.ZoneID] = append(byZone[*m.ZoneID], m)
		if m.State != models.MatchConfirmed {
			unconfirmed++
		}
	}
	if unconfirmed > 0 {
		return nil, nil, brackets.NewError(brackets.ErrState, CodeUnconfirmedGroupMatches,
			"%d group matches are not confirmed yet", unconfirmed)
	}

	opts := brackets.StandingsOptionsFrom(t.Scoring)
	tables := make(map[int][]brackets.ZoneTable)
	order := make([]int, 0)
	for _, z := range zones {
		if len(byZone[z.ID]) == 0 {
			return nil, nil, brackets.NewError(brackets.ErrState, CodeMissingFixture,
				"zone %s of category %d has no fixture", z.Name, z.CategoryID)
		}
		if _, seen := tables[z.CategoryID]; !seen {
			order = append(order, z.CategoryID)
		}
		rows := brackets.ComputeStandings(z, byZone[z.ID], opts)
		tables[z.CategoryID] = append(tables[z.CategoryID], brackets.ZoneTable{Zone: z, Rows: rows})
	}
	return tables, order, nil
}

func (s *tournamentService) DeletePlayoffs(ctx context.Context, id int, confirm bool) error {
	if !confirm {
		return confirmRequiredError("the playoffs")
	}
	unlock, err := lockTournament(ctx, s.locker, s.logger, id, "delete_playoffs")
	if err != nil {
		return err
	}
	defer unlock()

	err = s.store.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.store.Tournaments.LockByID(ctx, exec, id)
		if err != nil {
			return err
		}
		if t.Phase != models.PhaseFaseEliminacion {
			return phaseError("playoffs can only be deleted during the elimination phase, tournament is in %s", t.Phase)
		}
		if err := s.store.Matches.DeleteByTournament(ctx, exec, id, repositories.StagePlayoffs); err != nil {
			return err
		}
		return resetPhase(ctx, s.store.Tournaments, exec, t, models.PhaseFaseGrupos)
	})
	if err != nil {
		return translateRepoError(err)
	}

	s.logger.InfoContext(ctx, "playoffs deleted", slog.Int("tournament_id", id))
	s.notifier.Publish(id, brackets.EventPlayoffsDeleted, map[string]int{"tournament_id": id})
	s.notifier.Publish(id, brackets.EventPhaseChanged, PhaseChangedPayload{TournamentID: id, Phase: string(models.PhaseFaseGrupos)})
	return nil
}

func (s *tournamentService) ListPlayoffs(ctx context.Context, id int) ([]models.Match, error) {
	if _, err := s.store.Tournaments.GetByID(ctx, nil, id); err != nil {
		return nil, translateRepoError(err)
	}
	matches, err := s.store.Matches.List(ctx, nil, repositories.MatchFilter{TournamentID: id, Stage: repositories.StagePlayoffs})
	if err != nil {
		return nil, translateRepoError(err)
	}
	return matches, nil
}

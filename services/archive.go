package services

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/padel-tournament/brackets"
	"github.com/Dosada05/padel-tournament/models"
	"github.com/Dosada05/padel-tournament/repositories"
	"github.com/Dosada05/padel-tournament/storage"
)

// Archiver stores the final export of a tournament and returns its object key.
// *storage.Archiver implements it.
type Archiver interface {
	Save(ctx context.Context, archive storage.TournamentArchive) (string, error)
	Discard(ctx context.Context, key string) error
}

type finalizer struct {
	store    *repositories.Store
	archiver Archiver
	notifier Notifier
	logger   *slog.Logger
}

// finished runs after the transaction that closed the tournament has committed.
// Archive failures are logged only: the tournament stays finished either way.
func (f *finalizer) finished(ctx context.Context, tournamentID int) {
	f.logger.InfoContext(ctx, "tournament finished", slog.Int("tournament_id", tournamentID))
	f.notifier.Publish(tournamentID, brackets.EventPhaseChanged, PhaseChangedPayload{TournamentID: tournamentID, Phase: string(models.PhaseFinalizado)})

	if f.archiver == nil {
		return
	}
	export, err := buildArchive(ctx, f.store, tournamentID)
	if err != nil {
		f.logger.ErrorContext(ctx, "failed to collect tournament archive", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		return
	}
	key, err := f.archiver.Save(ctx, *export)
	if err != nil {
		f.logger.ErrorContext(ctx, "failed to upload tournament archive", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		return
	}
	if err := f.store.Tournaments.UpdateArchiveKey(ctx, nil, tournamentID, &key); err != nil {
		f.logger.ErrorContext(ctx, "failed to record archive key", slog.Int("tournament_id", tournamentID), slog.String("key", key), slog.Any("error", err))
		if err := f.archiver.Discard(ctx, key); err != nil {
			f.logger.WarnContext(ctx, "orphaned tournament archive", slog.String("key", key), slog.Any("error", err))
		}
		return
	}
	f.logger.InfoContext(ctx, "tournament archived", slog.Int("tournament_id", tournamentID), slog.String("key", key))
}

func buildArchive(ctx context.Context, store *repositories.Store, tournamentID int) (*storage.TournamentArchive, error) {
	var (
		t          *models.Tournament
		categories []models.Category
		pairs      []models.Pair
		zones      []models.Zone
		matches    []models.Match
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		t, err = store.Tournaments.GetByID(gctx, nil, tournamentID)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = store.Categories.ListByTournament(gctx, nil, tournamentID)
		return err
	})
	g.Go(func() error {
		var err error
		pairs, err = store.Pairs.List(gctx, nil, repositories.PairFilter{TournamentID: tournamentID})
		return err
	})
	g.Go(func() error {
		var err error
		zones, err = store.Zones.ListByTournament(gctx, nil, tournamentID)
		return err
	})
	g.Go(func() error {
		var err error
		matches, err = store.Matches.List(gctx, nil, repositories.MatchFilter{TournamentID: tournamentID})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	opts := brackets.StandingsOptionsFrom(t.Scoring)
	export := &storage.TournamentArchive{Tournament: *t, ArchivedAt: time.Now().UTC()}
	for _, c := range categories {
		ca := storage.CategoryArchive{Category: c, Pairs: []models.Pair{}, Zones: []storage.ZoneArchive{}, Playoffs: []models.Match{}}
		for _, p := range pairs {
			if p.CategoryID == c.ID {
				ca.Pairs = append(ca.Pairs, p)
			}
		}
		for _, z := range zones {
			if z.CategoryID != c.ID {
				continue
			}
			zoneMatches := make([]models.Match, 0)
			for _, m := range matches {
				if m.ZoneID != nil && *m.ZoneID == z.ID {
					zoneMatches = append(zoneMatches, m)
				}
			}
			z.Matches = zoneMatches
			ca.Zones = append(ca.Zones, storage.ZoneArchive{Zone: z, Standings: brackets.ComputeStandings(z, zoneMatches, opts)})
		}
		for _, m := range matches {
			if m.CategoryID != c.ID || m.ZoneID != nil {
				continue
			}
			ca.Playoffs = append(ca.Playoffs, m)
			if m.Round == models.RoundFinal {
				if winner, ok := m.WinnerPairID(); ok {
					ca.ChampionPairID = &winner
				}
			}
		}
		export.Categories = append(export.Categories, ca)
	}
	return export, nil
}

package services

import (
	"context"
	"log/slog"

	"github.com/Dosada05/padel-tournament/brackets"
	"github.com/Dosada05/padel-tournament/models"
	"github.com/Dosada05/padel-tournament/repositories"
)

// advancePhase moves the tournament one step forward inside exec.
func advancePhase(ctx context.Context, repo repositories.TournamentRepository, exec repositories.SQLExecutor, t *models.Tournament, to models.Phase) error {
	if err := brackets.Transition(t.Phase, to); err != nil {
		return err
	}
	if err := repo.UpdatePhase(ctx, exec, t.ID, t.Phase, to); err != nil {
		return err
	}
	t.Phase = to
	return nil
}

// resetPhase rolls the tournament back after a confirmed destructive delete.
func resetPhase(ctx context.Context, repo repositories.TournamentRepository, exec repositories.SQLExecutor, t *models.Tournament, to models.Phase) error {
	if t.Phase == to {
		return nil
	}
	if !brackets.CanReset(t.Phase, to) {
		return phaseError("cannot move tournament %d back from %s to %s", t.ID, t.Phase, to)
	}
	if err := repo.UpdatePhase(ctx, exec, t.ID, t.Phase, to); err != nil {
		return err
	}
	t.Phase = to
	return nil
}

// checkMatchPhase allows result changes on zone matches during group play and
// on bracket matches during the elimination phase only.
func checkMatchPhase(t *models.Tournament, m *models.Match) error {
	switch {
	case m.ZoneID != nil && t.Phase != models.PhaseFaseGrupos:
		return phaseError("group match %d cannot change in phase %s", m.ID, t.Phase)
	case m.ZoneID == nil && t.Phase != models.PhaseFaseEliminacion:
		return phaseError("playoff match %d cannot change in phase %s", m.ID, t.Phase)
	}
	return nil
}

// lockTournament takes the structural lock and logs contention.
func lockTournament(ctx context.Context, locker Locker, logger *slog.Logger, tournamentID int, op string) (func(), error) {
	unlock, err := locker.TryLock(ctx, tournamentID)
	if err != nil {
		logger.WarnContext(ctx, "tournament lock not acquired",
			slog.Int("tournament_id", tournamentID), slog.String("op", op), slog.Any("error", err))
		return nil, err
	}
	return unlock, nil
}

func loggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

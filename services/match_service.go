package services

import (
	"context"
	"log/slog"

	"github.com/Dosada05/padel-tournament/brackets"
	"github.com/Dosada05/padel-tournament/models"
	"github.com/Dosada05/padel-tournament/repositories"
)

type SubmitResultInput struct {
	Sets    []models.SetScore `json:"sets"`
	Confirm bool              `json:"confirm"`
}

type MatchService interface {
	GetMatch(ctx context.Context, tournamentID, matchID int) (*models.Match, error)
	ListMatches(ctx context.Context, tournamentID int) ([]models.Match, error)

	// SubmitResult validates and stores a score; with Confirm it also confirms it.
	SubmitResult(ctx context.Context, tournamentID, matchID int, input SubmitResultInput) (*models.Match, error)
	// ConfirmResult succeeds at most once per match. Confirming a bracket match
	// moves its winner forward; confirming the last final finishes the tournament.
	ConfirmResult(ctx context.Context, tournamentID, matchID int) (*models.Match, error)
	RollbackResult(ctx context.Context, tournamentID, matchID int, confirm bool) (*models.Match, error)
	Walkover(ctx context.Context, tournamentID, matchID, winnerPairID int) (*models.Match, error)
	// WithdrawPair drops a pair. Once zones exist its ready, unplayed matches are
	// lost by walkover.
	WithdrawPair(ctx context.Context, tournamentID, pairID int) (*WithdrawResult, error)
}

type WithdrawResult struct {
	Pair      models.Pair    `json:"pair"`
	Walkovers []models.Match `json:"walkovers"`
}

type matchService struct {
	store     *repositories.Store
	locker    Locker
	notifier  Notifier
	finalizer *finalizer
	logger    *slog.Logger
}

func NewMatchService(
	store *repositories.Store,
	locker Locker,
	notifier Notifier,
	archiver Archiver,
	logger *slog.Logger,
) MatchService {
	logger = loggerOrDefault(logger)
	notifier = notifierOrNoop(notifier)
	return &matchService{
		store:     store,
		locker:    locker,
		notifier:  notifier,
		finalizer: &finalizer{store: store, archiver: archiver, notifier: notifier, logger: logger},
		logger:    logger,
	}
}

func (s *matchService) GetMatch(ctx context.Context, tournamentID, matchID int) (*models.Match, error) {
	m, err := s.store.Matches.GetByID(ctx, nil, matchID)
	if err != nil {
		return nil, translateRepoError(err)
	}
	if m.TournamentID != tournamentID {
		return nil, notFoundError("match %d not found in tournament %d", matchID, tournamentID)
	}
	return m, nil
}

func (s *matchService) ListMatches(ctx context.Context, tournamentID int) ([]models.Match, error) {
	if _, err := s.store.Tournaments.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, translateRepoError(err)
	}
	matches, err := s.store.Matches.List(ctx, nil, repositories.MatchFilter{TournamentID: tournamentID})
	if err != nil {
		return nil, translateRepoError(err)
	}
	return matches, nil
}

// lockMatch loads the tournament row for update, which serializes result
// changes of one tournament, and then the match itself.
func (s *matchService) lockMatch(ctx context.Context, exec repositories.SQLExecutor, tournamentID, matchID int) (*models.Tournament, *models.Match, error) {
	t, err := s.store.Tournaments.LockByID(ctx, exec, tournamentID)
	if err != nil {
		return nil, nil, err
	}
	m, err := s.store.Matches.LockByID(ctx, exec, matchID)
	if err != nil {
		return nil, nil, err
	}
	if m.TournamentID != tournamentID {
		return nil, nil, notFoundError("match %d not found in tournament %d", matchID, tournamentID)
	}
	return t, m, nil
}

func checkPlayable(m *models.Match) error {
	if m.State == models.MatchConfirmed {
		return brackets.NewError(brackets.ErrConflict, CodeAlreadyConfirmed, "match %d is already confirmed", m.ID)
	}
	if m.State == models.MatchBye || !m.Ready() {
		return brackets.NewError(brackets.ErrState, CodeMatchNotReady, "match %d does not have two pairs yet", m.ID)
	}
	return nil
}

func (s *matchService) SubmitResult(ctx context.Context, tournamentID, matchID int, input SubmitResultInput) (*models.Match, error) {
	var updated *models.Match
	finished := false
	err := s.store.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, m, err := s.lockMatch(ctx, exec, tournamentID, matchID)
		if err != nil {
			return err
		}
		if err := checkPlayable(m); err != nil {
			return err
		}
		if err := checkMatchPhase(t, m); err != nil {
			return err
		}

		result, err := brackets.ScoreMatch(input.Sets, t.Scoring.ThirdSet)
		if err != nil {
			return err
		}
		if err := s.store.Matches.SaveResult(ctx, exec, m.ID, &result, models.MatchReported); err != nil {
			return err
		}
		m.Result = &result
		m.State = models.MatchReported

		if input.Confirm {
			if finished, err = confirmMatch(ctx, s.store, exec, t, m); err != nil {
				return err
			}
		}
		updated = m
		return nil
	})
	if err != nil {
		return nil, translateRepoError(err)
	}

	s.logger.InfoContext(ctx, "match result recorded",
		slog.Int("tournament_id", tournamentID), slog.Int("match_id", matchID), slog.String("estado", string(updated.State)))
	s.afterResultChange(ctx, tournamentID, updated, finished)
	return updated, nil
}

func (s *matchService) ConfirmResult(ctx context.Context, tournamentID, matchID int) (*models.Match, error) {
	var updated *models.Match
	finished := false
	err := s.store.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, m, err := s.lockMatch(ctx, exec, tournamentID, matchID)
		if err != nil {
			return err
		}
		if m.State == models.MatchConfirmed {
			return brackets.NewError(brackets.ErrConflict, CodeAlreadyConfirmed, "match %d is already confirmed", m.ID)
		}
		if err := checkMatchPhase(t, m); err != nil {
			return err
		}
		if finished, err = confirmMatch(ctx, s.store, exec, t, m); err != nil {
			return err
		}
		updated = m
		return nil
	})
	if err != nil {
		return nil, translateRepoError(err)
	}

	s.logger.InfoContext(ctx, "match confirmed", slog.Int("tournament_id", tournamentID), slog.Int("match_id", matchID))
	s.afterResultChange(ctx, tournamentID, updated, finished)
	return updated, nil
}

func (s *matchService) RollbackResult(ctx context.Context, tournamentID, matchID int, confirm bool) (*models.Match, error) {
	if !confirm {
		return nil, confirmRequiredError("a confirmed result")
	}
	var updated *models.Match
	err := s.store.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, m, err := s.lockMatch(ctx, exec, tournamentID, matchID)
		if err != nil {
			return err
		}
		if m.State != models.MatchConfirmed {
			return brackets.NewError(brackets.ErrState, CodeNotConfirmed, "match %d is not confirmed", m.ID)
		}
		if err := checkMatchPhase(t, m); err != nil {
			return err
		}

		if next, ok := brackets.NextRound(m.Round); ok && m.ZoneID == nil {
			numero, _ := brackets.NextSlot(m.NumeroPartido)
			downstream, err := s.store.Matches.GetBracketMatch(ctx, exec, m.CategoryID, next, numero)
			if err != nil {
				return err
			}
			if err := brackets.Retract(downstream, *m); err != nil {
				return err
			}
			if err := s.store.Matches.UpdateSides(ctx, exec, downstream); err != nil {
				return err
			}
		}
		if err := s.store.Matches.Reopen(ctx, exec, m.ID); err != nil {
			return err
		}
		m.State = models.MatchReported
		updated = m
		return nil
	})
	if err != nil {
		return nil, translateRepoError(err)
	}

	s.logger.InfoContext(ctx, "match result rolled back", slog.Int("tournament_id", tournamentID), slog.Int("match_id", matchID))
	s.afterResultChange(ctx, tournamentID, updated, false)
	return updated, nil
}

func (s *matchService) Walkover(ctx context.Context, tournamentID, matchID, winnerPairID int) (*models.Match, error) {
	var updated *models.Match
	finished := false
	err := s.store.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, m, err := s.lockMatch(ctx, exec, tournamentID, matchID)
		if err != nil {
			return err
		}
		if finished, err = awardWalkover(ctx, s.store, exec, t, m, winnerPairID); err != nil {
			return err
		}
		updated = m
		return nil
	})
	if err != nil {
		return nil, translateRepoError(err)
	}

	s.logger.InfoContext(ctx, "walkover awarded",
		slog.Int("tournament_id", tournamentID), slog.Int("match_id", matchID), slog.Int("winner_pair_id", winnerPairID))
	s.afterResultChange(ctx, tournamentID, updated, finished)
	return updated, nil
}

func (s *matchService) WithdrawPair(ctx context.Context, tournamentID, pairID int) (*WithdrawResult, error) {
	unlock, err := lockTournament(ctx, s.locker, s.logger, tournamentID, "withdraw_pair")
	if err != nil {
		return nil, err
	}
	defer unlock()

	res := &WithdrawResult{}
	finished := false
	err = s.store.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		res.Walkovers = nil
		t, err := s.store.Tournaments.LockByID(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if t.Phase == models.PhaseFinalizado {
			return phaseError("tournament %d is finished", tournamentID)
		}
		pair, err := s.store.Pairs.GetByID(ctx, exec, pairID)
		if err != nil {
			return err
		}
		if pair.TournamentID != tournamentID {
			return notFoundError("pair %d not found in tournament %d", pairID, tournamentID)
		}
		if pair.Status == models.PairWithdrawn {
			return brackets.NewError(brackets.ErrConflict, "already_withdrawn", "pair %d already withdrew", pairID)
		}
		if err := s.store.Pairs.UpdateStatus(ctx, exec, pairID, models.PairWithdrawn); err != nil {
			return err
		}
		pair.Status = models.PairWithdrawn
		res.Pair = *pair

		if t.Phase == models.PhaseInscripcion {
			return nil
		}
		categoryID := pair.CategoryID
		matches, err := s.store.Matches.List(ctx, exec, repositories.MatchFilter{TournamentID: tournamentID, CategoryID: &categoryID})
		if err != nil {
			return err
		}
		for i := range matches {
			m := &matches[i]
			if !m.Involves(pairID) || !m.Ready() || m.State == models.MatchConfirmed || checkMatchPhase(t, m) != nil {
				continue
			}
			opponent := m.PairIDs()[0]
			if opponent == pairID {
				opponent = m.PairIDs()[1]
			}
			done, err := awardWalkover(ctx, s.store, exec, t, m, opponent)
			if err != nil {
				return err
			}
			finished = finished || done
			res.Walkovers = append(res.Walkovers, *m)
		}
		return nil
	})
	if err != nil {
		return nil, translateRepoError(err)
	}

	s.logger.InfoContext(ctx, "pair withdrawn",
		slog.Int("tournament_id", tournamentID), slog.Int("pair_id", pairID), slog.Int("walkovers", len(res.Walkovers)))
	for i := range res.Walkovers {
		s.notifier.Publish(tournamentID, brackets.EventMatchUpdated, res.Walkovers[i])
	}
	if finished {
		s.finalizer.finished(ctx, tournamentID)
	}
	return res, nil
}

func (s *matchService) afterResultChange(ctx context.Context, tournamentID int, m *models.Match, finished bool) {
	s.notifier.Publish(tournamentID, brackets.EventMatchUpdated, m)
	if finished {
		s.finalizer.finished(ctx, tournamentID)
	}
}

// awardWalkover records a 6-0 6-0 forfeit for winnerPairID and confirms it.
func awardWalkover(ctx context.Context, store *repositories.Store, exec repositories.SQLExecutor, t *models.Tournament, m *models.Match, winnerPairID int) (bool, error) {
	if err := checkPlayable(m); err != nil {
		return false, err
	}
	if err := checkMatchPhase(t, m); err != nil {
		return false, err
	}

	var side models.Side
	switch {
	case m.Side1.PairIDPtr() != nil && *m.Side1.PairIDPtr() == winnerPairID:
		side = models.SideA
	case m.Side2.PairIDPtr() != nil && *m.Side2.PairIDPtr() == winnerPairID:
		side = models.SideB
	default:
		return false, brackets.NewError(brackets.ErrValidation, CodeWinnerNotInMatch, "pair %d does not play match %d", winnerPairID, m.ID)
	}

	result := brackets.WalkoverResult(side)
	if err := store.Matches.SaveResult(ctx, exec, m.ID, &result, models.MatchReported); err != nil {
		return false, err
	}
	m.Result = &result
	m.State = models.MatchReported
	return confirmMatch(ctx, store, exec, t, m)
}

// confirmMatch confirms m inside exec. A bracket winner is written into the next
// match, and a forfeit is awarded right away when the new opponent has already
// withdrawn. It reports whether the tournament finished.
func confirmMatch(ctx context.Context, store *repositories.Store, exec repositories.SQLExecutor, t *models.Tournament, m *models.Match) (bool, error) {
	if err := store.Matches.Confirm(ctx, exec, m.ID); err != nil {
		return false, err
	}
	m.State = models.MatchConfirmed
	if m.ZoneID != nil {
		return false, nil
	}

	nextRound, ok := brackets.NextRound(m.Round)
	if !ok {
		return finishIfDone(ctx, store, exec, t)
	}
	numero, _ := brackets.NextSlot(m.NumeroPartido)
	next, err := store.Matches.GetBracketMatch(ctx, exec, m.CategoryID, nextRound, numero)
	if err != nil {
		return false, err
	}
	if err := brackets.Advance(next, *m); err != nil {
		return false, err
	}
	if err := store.Matches.UpdateSides(ctx, exec, next); err != nil {
		return false, err
	}
	if !next.Ready() {
		return false, nil
	}

	for _, side := range []models.Entrant{next.Side1, next.Side2} {
		id, _ := side.PairID()
		pair, err := store.Pairs.GetByID(ctx, exec, id)
		if err != nil {
			return false, err
		}
		if pair.Status != models.PairWithdrawn {
			continue
		}
		opponent := next.PairIDs()[0]
		if opponent == id {
			opponent = next.PairIDs()[1]
		}
		return awardWalkover(ctx, store, exec, t, next, opponent)
	}
	return false, nil
}

// finishIfDone closes the tournament once the final of every category is confirmed.
func finishIfDone(ctx context.Context, store *repositories.Store, exec repositories.SQLExecutor, t *models.Tournament) (bool, error) {
	playoffs, err := store.Matches.List(ctx, exec, repositories.MatchFilter{TournamentID: t.ID, Stage: repositories.StagePlayoffs})
	if err != nil {
		return false, err
	}
	finals := 0
	for _, m := range playoffs {
		if m.Round != models.RoundFinal {
			continue
		}
		finals++
		if m.State != models.MatchConfirmed {
			return false, nil
		}
	}
	if finals == 0 {
		return false, nil
	}
	if err := advancePhase(ctx, store.Tournaments, exec, t, models.PhaseFinalizado); err != nil {
		return false, err
	}
	return true, nil
}

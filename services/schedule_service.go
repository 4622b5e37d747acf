package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/padel-tournament/brackets"
	"github.com/Dosada05/padel-tournament/models"
	"github.com/Dosada05/padel-tournament/repositories"
)

type CreateCourtInput struct {
	Name   string `json:"name"`
	Active *bool  `json:"active,omitempty"`
}

// GenerateSlotsInput describes a block of equal slots on one day, e.g. date
// "2025-03-14", 09:00 to 13:00 in 90 minute slots. CourtIDs limits the block to
// some courts; empty means every active court.
type GenerateSlotsInput struct {
	Date            string `json:"date"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	DurationMinutes int    `json:"duration_minutes"`
	CourtIDs        []int  `json:"court_ids,omitempty"`
}

type GenerateSlotsResult struct {
	Created []models.Slot `json:"created"`
	// Skipped counts slots that already existed on a court at the same start.
	Skipped int `json:"skipped"`
}

type ScheduleSummary struct {
	ScheduledCount   int                   `json:"scheduled_count"`
	UnscheduledCount int                   `json:"unscheduled_count"`
	Scheduled        []brackets.Assignment `json:"scheduled"`
	Unscheduled      []int                 `json:"unscheduled"`
}

type ScheduleService interface {
	CreateCourt(ctx context.Context, tournamentID int, input CreateCourtInput) (*models.Court, error)
	ListCourts(ctx context.Context, tournamentID int) ([]models.Court, error)
	DeleteCourt(ctx context.Context, tournamentID, courtID int) error

	GenerateSlots(ctx context.Context, tournamentID int, input GenerateSlotsInput) (*GenerateSlotsResult, error)
	ListSlots(ctx context.Context, tournamentID int) ([]models.Slot, error)

	// AutoSchedule places every ready, unassigned match on a free slot and
	// commits all assignments together.
	AutoSchedule(ctx context.Context, tournamentID int) (*ScheduleSummary, error)
	// ClearSchedule frees the slots of all pending matches and returns how many
	// matches lost their assignment.
	ClearSchedule(ctx context.Context, tournamentID int) (int, error)
}

type scheduleService struct {
	store    *repositories.Store
	locker   Locker
	notifier Notifier
	location *time.Location
	logger   *slog.Logger
}

func NewScheduleService(store *repositories.Store, locker Locker, notifier Notifier, location *time.Location, logger *slog.Logger) ScheduleService {
	if location == nil {
		location = time.UTC
	}
	return &scheduleService{
		store:    store,
		locker:   locker,
		notifier: notifierOrNoop(notifier),
		location: location,
		logger:   loggerOrDefault(logger),
	}
}

func (s *scheduleService) CreateCourt(ctx context.Context, tournamentID int, input CreateCourtInput) (*models.Court, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validationError("court name is required")
	}
	active := true
	if input.Active != nil {
		active = *input.Active
	}
	court := &models.Court{TournamentID: tournamentID, Name: name, Active: active}
	if err := s.store.Courts.Create(ctx, court); err != nil {
		return nil, translateRepoError(err)
	}
	s.logger.InfoContext(ctx, "court created", slog.Int("tournament_id", tournamentID), slog.Int("court_id", court.ID))
	return court, nil
}

func (s *scheduleService) ListCourts(ctx context.Context, tournamentID int) ([]models.Court, error) {
	if _, err := s.store.Tournaments.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, translateRepoError(err)
	}
	courts, err := s.store.Courts.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return courts, nil
}

func (s *scheduleService) DeleteCourt(ctx context.Context, tournamentID, courtID int) error {
	unlock, err := lockTournament(ctx, s.locker, s.logger, tournamentID, "delete_court")
	if err != nil {
		return err
	}
	defer unlock()

	err = s.store.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		court, err := s.store.Courts.GetByID(ctx, exec, courtID)
		if err != nil {
			return err
		}
		if court.TournamentID != tournamentID {
			return notFoundError("court %d not found in tournament %d", courtID, tournamentID)
		}
		matches, err := s.store.Matches.List(ctx, exec, repositories.MatchFilter{TournamentID: tournamentID})
		if err != nil {
			return err
		}
		for _, m := range matches {
			if m.CourtID != nil && *m.CourtID == courtID && m.State == models.MatchPending {
				if err := s.store.Matches.Assign(ctx, exec, m.ID, nil); err != nil {
					return err
				}
			}
		}
		if err := s.store.Slots.DeleteByCourt(ctx, exec, courtID); err != nil {
			return err
		}
		return s.store.Courts.Delete(ctx, exec, courtID)
	})
	if err != nil {
		return translateRepoError(err)
	}
	s.notifier.Publish(tournamentID, brackets.EventScheduleUpdated, map[string]int{"deleted_court_id": courtID})
	return nil
}

func (s *scheduleService) parseSlotWindow(input GenerateSlotsInput) (time.Time, time.Time, time.Duration, error) {
	day, err := time.ParseInLocation(time.DateOnly, input.Date, s.location)
	if err != nil {
		return time.Time{}, time.Time{}, 0, validationError("date must look like 2006-01-02")
	}
	clock := func(v string) (time.Time, error) {
		t, err := time.Parse("15:04", v)
		if err != nil {
			return time.Time{}, validationError("times must look like 15:04, got %q", v)
		}
		return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, s.location), nil
	}
	start, err := clock(input.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, 0, err
	}
	end, err := clock(input.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, 0, err
	}
	if input.DurationMinutes <= 0 {
		return time.Time{}, time.Time{}, 0, validationError("duration_minutes must be positive")
	}
	length := time.Duration(input.DurationMinutes) * time.Minute
	if end.Sub(start) < length {
		return time.Time{}, time.Time{}, 0, validationError("end_time must leave room for at least one slot after start_time")
	}
	return start, end, length, nil
}

func (s *scheduleService) GenerateSlots(ctx context.Context, tournamentID int, input GenerateSlotsInput) (*GenerateSlotsResult, error) {
	start, end, length, err := s.parseSlotWindow(input)
	if err != nil {
		return nil, err
	}
	unlock, err := lockTournament(ctx, s.locker, s.logger, tournamentID, "generate_slots")
	if err != nil {
		return nil, err
	}
	defer unlock()

	res := &GenerateSlotsResult{}
	err = s.store.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		res.Created, res.Skipped = nil, 0
		if _, err := s.store.Tournaments.LockByID(ctx, exec, tournamentID); err != nil {
			return err
		}
		courts, err := s.store.Courts.ListByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		selected, err := selectCourts(courts, input.CourtIDs)
		if err != nil {
			return err
		}
		if len(selected) == 0 {
			return brackets.NewError(brackets.ErrInsufficientData, "no_courts", "tournament %d has no active courts", tournamentID)
		}

		for _, court := range selected {
			existing, err := s.store.Slots.ListByCourt(ctx, exec, court.ID)
			if err != nil {
				return err
			}
			taken := make(map[int64]bool, len(existing))
			for _, sl := range existing {
				taken[sl.StartsAt.Unix()] = true
			}
			for at := start; !at.Add(length).After(end); at = at.Add(length) {
				if taken[at.Unix()] {
					res.Skipped++
					continue
				}
				slot := &models.Slot{CourtID: court.ID, StartsAt: at, EndsAt: at.Add(length)}
				if err := s.store.Slots.Create(ctx, exec, slot); err != nil {
					return err
				}
				res.Created = append(res.Created, *slot)
			}
		}
		return nil
	})
	if err != nil {
		return nil, translateRepoError(err)
	}
	if res.Created == nil {
		res.Created = []models.Slot{}
	}

	s.logger.InfoContext(ctx, "slots generated",
		slog.Int("tournament_id", tournamentID), slog.Int("created", len(res.Created)), slog.Int("skipped", res.Skipped))
	return res, nil
}

// selectCourts returns the active courts, or exactly the requested ones.
func selectCourts(courts []models.Court, ids []int) ([]models.Court, error) {
	if len(ids) == 0 {
		active := make([]models.Court, 0, len(courts))
		for _, c := range courts {
			if c.Active {
				active = append(active, c)
			}
		}
		return active, nil
	}
	byID := make(map[int]models.Court, len(courts))
	for _, c := range courts {
		byID[c.ID] = c
	}
	out := make([]models.Court, 0, len(ids))
	for _, id := range ids {
		c, ok := byID[id]
		if !ok {
			return nil, notFoundError("court %d not found in this tournament", id)
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *scheduleService) ListSlots(ctx context.Context, tournamentID int) ([]models.Slot, error) {
	if _, err := s.store.Tournaments.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, translateRepoError(err)
	}
	slots, err := s.store.Slots.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return slots, nil
}

func (s *scheduleService) AutoSchedule(ctx context.Context, tournamentID int) (*ScheduleSummary, error) {
	unlock, err := lockTournament(ctx, s.locker, s.logger, tournamentID, "auto_schedule")
	if err != nil {
		return nil, err
	}
	defer unlock()

	var result brackets.ScheduleResult
	err = s.store.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.store.Tournaments.LockByID(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if t.Phase != models.PhaseFaseGrupos && t.Phase != models.PhaseFaseEliminacion {
			return phaseError("matches can only be scheduled once zones exist, tournament is in %s", t.Phase)
		}

		matches, err := s.store.Matches.List(ctx, exec, repositories.MatchFilter{TournamentID: tournamentID})
		if err != nil {
			return err
		}
		courts, err := s.store.Courts.ListByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		slots, err := s.store.Slots.ListByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}

		slotByID := make(map[int]models.Slot, len(slots))
		for _, sl := range slots {
			slotByID[sl.ID] = sl
		}
		existing := make([]brackets.Assignment, 0)
		for _, m := range matches {
			if m.SlotID == nil {
				continue
			}
			sl, ok := slotByID[*m.SlotID]
			if !ok {
				continue
			}
			existing = append(existing, brackets.Assignment{
				MatchID: m.ID, SlotID: sl.ID, CourtID: sl.CourtID, StartsAt: sl.StartsAt, EndsAt: sl.EndsAt,
			})
		}

		result = brackets.ScheduleMatches(brackets.ScheduleRequest{
			Matches:     matches,
			Courts:      courts,
			Slots:       slots,
			Existing:    existing,
			RestMinutes: t.Scoring.RestMinutes,
		})

		for _, a := range result.Scheduled {
			if err := s.store.Slots.Claim(ctx, exec, a.SlotID, a.MatchID); err != nil {
				return err
			}
			slot := slotByID[a.SlotID]
			if err := s.store.Matches.Assign(ctx, exec, a.MatchID, &slot); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, translateRepoError(err)
	}

	summary := &ScheduleSummary{
		ScheduledCount:   len(result.Scheduled),
		UnscheduledCount: len(result.Unscheduled),
		Scheduled:        result.Scheduled,
		Unscheduled:      result.Unscheduled,
	}
	if summary.Scheduled == nil {
		summary.Scheduled = []brackets.Assignment{}
	}
	if summary.Unscheduled == nil {
		summary.Unscheduled = []int{}
	}

	s.logger.InfoContext(ctx, "matches scheduled",
		slog.Int("tournament_id", tournamentID), slog.Int("scheduled", summary.ScheduledCount), slog.Int("unscheduled", summary.UnscheduledCount))
	s.notifier.Publish(tournamentID, brackets.EventScheduleUpdated, summary)
	return summary, nil
}

func (s *scheduleService) ClearSchedule(ctx context.Context, tournamentID int) (int, error) {
	unlock, err := lockTournament(ctx, s.locker, s.logger, tournamentID, "clear_schedule")
	if err != nil {
		return 0, err
	}
	defer unlock()

	cleared := 0
	err = s.store.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if _, err := s.store.Tournaments.LockByID(ctx, exec, tournamentID); err != nil {
			return err
		}
		if err := s.store.Slots.ReleaseUnplayed(ctx, exec, tournamentID); err != nil {
			return err
		}
		var err error
		cleared, err = s.store.Matches.ClearAssignments(ctx, exec, tournamentID)
		return err
	})
	if err != nil {
		return 0, translateRepoError(err)
	}

	s.notifier.Publish(tournamentID, brackets.EventScheduleUpdated, map[string]int{"cleared": cleared})
	return cleared, nil
}

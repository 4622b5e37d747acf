package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/padel-tournament/brackets"
	"github.com/Dosada05/padel-tournament/db"
	"github.com/Dosada05/padel-tournament/models"
	"github.com/Dosada05/padel-tournament/repositories"
	"github.com/Dosada05/padel-tournament/storage"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Publish(_ int, eventType string, _ any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, eventType)
}

func (n *recordingNotifier) seen(eventType string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, e := range n.events {
		if e == eventType {
			return true
		}
	}
	return false
}

type testEnv struct {
	store        *repositories.Store
	locker       Locker
	events       *recordingNotifier
	objects      *storage.MemoryObjectStore
	tournaments  TournamentService
	matches      MatchService
	registration RegistrationService
	schedule     ScheduleService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvOn(t, repositories.NewMemoryStore())
}

func newTestEnvOn(t *testing.T, store *repositories.Store) *testEnv {
	t.Helper()
	env := &testEnv{
		store:   store,
		locker:  NewLocalLocker(),
		events:  &recordingNotifier{},
		objects: storage.NewMemoryObjectStore("https://files.example.com"),
	}
	env.tournaments = NewTournamentService(env.store, env.locker, nil, env.events, nil)
	env.matches = NewMatchService(env.store, env.locker, env.events, storage.NewArchiver(env.objects), nil)
	env.registration = NewRegistrationService(env.store, env.matches, nil)
	env.schedule = NewScheduleService(env.store, env.locker, env.events, nil, nil)
	return env
}

// seedTournament registers n confirmed pairs in one category. With zones of
// four and two qualifiers, four pairs give one zone and a final.
func (env *testEnv) seedTournament(t *testing.T, n int) (*models.Tournament, *models.Category, []models.Pair) {
	t.Helper()
	ctx := context.Background()
	tour, err := env.tournaments.CreateTournament(ctx, CreateTournamentInput{
		Name:    "Copa Primavera",
		Scoring: &models.ScoringConfig{TargetZoneSize: 4},
	})
	require.NoError(t, err)
	cat, err := env.registration.CreateCategory(ctx, CreateCategoryInput{TournamentID: tour.ID, Name: "5ta"})
	require.NoError(t, err)

	players := []string{"Ana", "Bea", "Caro", "Dani", "Eli", "Flor", "Gabi", "Hebe", "Inés", "Juli"}
	pairs := make([]models.Pair, 0, n)
	for i := 0; i < n; i++ {
		p, err := env.registration.RegisterPair(ctx, tour.ID, RegisterPairInput{
			CategoryID: cat.ID,
			Player1:    players[2*i],
			Player2:    players[2*i+1],
			Status:     models.PairConfirmed,
		})
		require.NoError(t, err)
		pairs = append(pairs, *p)
	}
	return tour, cat, pairs
}

// lowerIDWins returns a straight-sets score won by the pair with the lower id.
func lowerIDWins(m models.Match) []models.SetScore {
	p1, _ := m.Side1.PairID()
	p2, _ := m.Side2.PairID()
	if p1 < p2 {
		return []models.SetScore{{GamesA: 6, GamesB: 3}, {GamesA: 6, GamesB: 4}}
	}
	return []models.SetScore{{GamesA: 3, GamesB: 6}, {GamesA: 4, GamesB: 6}}
}

func (env *testEnv) playZones(t *testing.T, tournamentID int) {
	t.Helper()
	ctx := context.Background()
	zones, err := env.tournaments.ListZones(ctx, tournamentID)
	require.NoError(t, err)
	for _, z := range zones {
		for _, m := range z.Matches {
			_, err := env.matches.SubmitResult(ctx, tournamentID, m.ID, SubmitResultInput{Sets: lowerIDWins(m), Confirm: true})
			require.NoError(t, err)
		}
	}
}

func TestTournamentLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	tour, _, pairs := env.seedTournament(t, 4)

	zones, err := env.tournaments.GenerateZones(ctx, tour.ID, GenerateOptions{})
	require.NoError(t, err)
	require.Len(t, zones, 1)
	assert.Len(t, zones[0].Matches, 6)

	got, err := env.tournaments.GetTournament(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseFaseGrupos, got.Phase)
	assert.Len(t, got.Categories, 1)

	_, err = env.tournaments.GeneratePlayoffs(ctx, tour.ID, GenerateOptions{})
	assert.Equal(t, CodeUnconfirmedGroupMatches, brackets.Code(err))

	env.playZones(t, tour.ID)

	standings, err := env.tournaments.GetStandings(ctx, tour.ID, zones[0].ID)
	require.NoError(t, err)
	require.Len(t, standings.Standings, 4)
	assert.Equal(t, pairs[0].ID, standings.Standings[0].PairID)
	assert.Equal(t, 3, standings.Standings[0].Won)
	assert.Equal(t, pairs[1].ID, standings.Standings[1].PairID)

	playoffs, err := env.tournaments.GeneratePlayoffs(ctx, tour.ID, GenerateOptions{})
	require.NoError(t, err)
	require.Len(t, playoffs, 1)
	final := playoffs[0]
	assert.Equal(t, models.RoundFinal, final.Round)
	assert.ElementsMatch(t, []int{pairs[0].ID, pairs[1].ID}, final.PairIDs())

	_, err = env.tournaments.GeneratePlayoffs(ctx, tour.ID, GenerateOptions{})
	assert.ErrorIs(t, err, brackets.ErrConflict, "playoffs exist already")

	updated, err := env.matches.SubmitResult(ctx, tour.ID, final.ID, SubmitResultInput{Sets: lowerIDWins(final), Confirm: true})
	require.NoError(t, err)
	assert.Equal(t, models.MatchConfirmed, updated.State)

	got, err = env.tournaments.GetTournament(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseFinalizado, got.Phase)
	require.NotNil(t, got.ArchiveKey, "finished tournaments are archived")
	assert.Equal(t, 1, env.objects.Len())

	archive, err := storage.NewArchiver(env.objects).Load(ctx, *got.ArchiveKey)
	require.NoError(t, err)
	require.Len(t, archive.Categories, 1)
	require.NotNil(t, archive.Categories[0].ChampionPairID)
	assert.Equal(t, pairs[0].ID, *archive.Categories[0].ChampionPairID)

	_, err = env.matches.RollbackResult(ctx, tour.ID, final.ID, true)
	assert.ErrorIs(t, err, brackets.ErrState, "finished tournaments are frozen")

	for _, e := range []string{brackets.EventZonesGenerated, brackets.EventPlayoffsGenerated, brackets.EventMatchUpdated, brackets.EventPhaseChanged} {
		assert.True(t, env.events.seen(e), e)
	}
}

func TestRegistrationClosesWithZones(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	tour, cat, pairs := env.seedTournament(t, 4)

	_, err := env.tournaments.GenerateZones(ctx, tour.ID, GenerateOptions{})
	require.NoError(t, err)

	_, err = env.registration.RegisterPair(ctx, tour.ID, RegisterPairInput{CategoryID: cat.ID, Player1: "Inés", Player2: "Juli"})
	assert.Equal(t, CodeRegistrationClosed, brackets.Code(err))

	_, err = env.registration.UpdatePairStatus(ctx, tour.ID, pairs[0].ID, models.PairRejected)
	assert.Equal(t, CodeRegistrationClosed, brackets.Code(err))

	t.Run("regenerate needs confirmation", func(t *testing.T) {
		_, err := env.tournaments.GenerateZones(ctx, tour.ID, GenerateOptions{Regenerate: true})
		assert.ErrorIs(t, err, brackets.ErrConflict)

		zones, err := env.tournaments.GenerateZones(ctx, tour.ID, GenerateOptions{Regenerate: true, Confirm: true})
		require.NoError(t, err)
		assert.Len(t, zones, 1)
	})

	t.Run("delete zones reopens registration", func(t *testing.T) {
		assert.Equal(t, CodeConfirmRequired, brackets.Code(env.tournaments.DeleteZones(ctx, tour.ID, false)))
		require.NoError(t, env.tournaments.DeleteZones(ctx, tour.ID, true))

		got, err := env.tournaments.GetTournament(ctx, tour.ID)
		require.NoError(t, err)
		assert.Equal(t, models.PhaseInscripcion, got.Phase)

		_, err = env.registration.RegisterPair(ctx, tour.ID, RegisterPairInput{CategoryID: cat.ID, Player1: "Inés", Player2: "Juli"})
		assert.NoError(t, err)
	})
}

func TestGenerateZonesNeedsPairs(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	tour, _, _ := env.seedTournament(t, 1)

	_, err := env.tournaments.GenerateZones(ctx, tour.ID, GenerateOptions{})
	assert.ErrorIs(t, err, brackets.ErrInsufficientData)

	got, err := env.tournaments.GetTournament(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseInscripcion, got.Phase, "failed generation leaves no trace")
}

func TestStructuralOperationsRejectWhileBusy(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	tour, _, _ := env.seedTournament(t, 4)

	unlock, err := env.locker.TryLock(ctx, tour.ID)
	require.NoError(t, err)

	_, err = env.tournaments.GenerateZones(ctx, tour.ID, GenerateOptions{})
	assert.ErrorIs(t, err, brackets.ErrConflict)
	assert.Equal(t, CodeTournamentBusy, brackets.Code(err))

	unlock()
	_, err = env.tournaments.GenerateZones(ctx, tour.ID, GenerateOptions{})
	assert.NoError(t, err)
}

func TestConfirmResultAtMostOnce(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	tour, _, _ := env.seedTournament(t, 4)
	zones, err := env.tournaments.GenerateZones(ctx, tour.ID, GenerateOptions{})
	require.NoError(t, err)
	m := zones[0].Matches[0]

	_, err = env.matches.ConfirmResult(ctx, tour.ID, m.ID)
	assert.ErrorIs(t, err, brackets.ErrState, "nothing reported yet")

	reported, err := env.matches.SubmitResult(ctx, tour.ID, m.ID, SubmitResultInput{Sets: lowerIDWins(m)})
	require.NoError(t, err)
	assert.Equal(t, models.MatchReported, reported.State)

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.matches.ConfirmResult(ctx, tour.ID, m.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.Equal(t, CodeAlreadyConfirmed, brackets.Code(err))
	}
	assert.Equal(t, 1, ok)

	_, err = env.matches.SubmitResult(ctx, tour.ID, m.ID, SubmitResultInput{Sets: lowerIDWins(m)})
	assert.ErrorIs(t, err, brackets.ErrConflict, "confirmed results are immutable")
}

func TestRollbackResult(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	tour, _, _ := env.seedTournament(t, 4)
	zones, err := env.tournaments.GenerateZones(ctx, tour.ID, GenerateOptions{})
	require.NoError(t, err)
	m := zones[0].Matches[0]

	_, err = env.matches.SubmitResult(ctx, tour.ID, m.ID, SubmitResultInput{Sets: lowerIDWins(m), Confirm: true})
	require.NoError(t, err)

	_, err = env.matches.RollbackResult(ctx, tour.ID, m.ID, false)
	assert.Equal(t, CodeConfirmRequired, brackets.Code(err))

	reopened, err := env.matches.RollbackResult(ctx, tour.ID, m.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.MatchReported, reopened.State)

	_, err = env.matches.RollbackResult(ctx, tour.ID, m.ID, true)
	assert.Equal(t, CodeNotConfirmed, brackets.Code(err))

	corrected := []models.SetScore{{GamesA: 7, GamesB: 6}, {GamesA: 6, GamesB: 2}}
	fixed, err := env.matches.SubmitResult(ctx, tour.ID, m.ID, SubmitResultInput{Sets: corrected, Confirm: true})
	require.NoError(t, err)
	assert.Equal(t, models.MatchConfirmed, fixed.State)
	assert.Equal(t, models.SideA, fixed.Result.Winner)
}

func TestSubmitResultValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	tour, _, _ := env.seedTournament(t, 4)
	zones, err := env.tournaments.GenerateZones(ctx, tour.ID, GenerateOptions{})
	require.NoError(t, err)
	m := zones[0].Matches[0]

	_, err = env.matches.SubmitResult(ctx, tour.ID, m.ID, SubmitResultInput{Sets: []models.SetScore{{GamesA: 6, GamesB: 5}}})
	assert.ErrorIs(t, err, brackets.ErrValidation)

	_, err = env.matches.SubmitResult(ctx, tour.ID, 9999, SubmitResultInput{Sets: lowerIDWins(m)})
	assert.ErrorIs(t, err, brackets.ErrNotFound)

	stored, err := env.matches.GetMatch(ctx, tour.ID, m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchPending, stored.State)
	assert.Nil(t, stored.Result)
}

func TestWithdrawPairForfeitsRemainingMatches(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	tour, _, pairs := env.seedTournament(t, 4)
	_, err := env.tournaments.GenerateZones(ctx, tour.ID, GenerateOptions{})
	require.NoError(t, err)

	leaving := pairs[3].ID
	pair, err := env.registration.UpdatePairStatus(ctx, tour.ID, leaving, models.PairWithdrawn)
	require.NoError(t, err)
	assert.Equal(t, models.PairWithdrawn, pair.Status)

	matches, err := env.matches.ListMatches(ctx, tour.ID)
	require.NoError(t, err)
	forfeits := 0
	for _, m := range matches {
		if !m.Involves(leaving) {
			continue
		}
		forfeits++
		require.Equal(t, models.MatchConfirmed, m.State)
		require.NotNil(t, m.Result)
		assert.True(t, m.Result.Walkover)
		loser, _ := m.LoserPairID()
		assert.Equal(t, leaving, loser)
	}
	assert.Equal(t, 3, forfeits)

	_, err = env.matches.WithdrawPair(ctx, tour.ID, leaving)
	assert.ErrorIs(t, err, brackets.ErrConflict)
}

func TestWalkoverNeedsPlayingPair(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	tour, _, _ := env.seedTournament(t, 4)
	zones, err := env.tournaments.GenerateZones(ctx, tour.ID, GenerateOptions{})
	require.NoError(t, err)
	m := zones[0].Matches[0]

	outsider := 0
	for _, id := range zones[0].PairIDs {
		if !m.Involves(id) {
			outsider = id
			break
		}
	}
	_, err = env.matches.Walkover(ctx, tour.ID, m.ID, outsider)
	assert.Equal(t, CodeWinnerNotInMatch, brackets.Code(err))

	winner := m.PairIDs()[1]
	awarded, err := env.matches.Walkover(ctx, tour.ID, m.ID, winner)
	require.NoError(t, err)
	got, ok := awarded.WinnerPairID()
	require.True(t, ok)
	assert.Equal(t, winner, got)
}

func TestScheduleMatches(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	tour, _, _ := env.seedTournament(t, 4)

	_, err := env.schedule.AutoSchedule(ctx, tour.ID)
	assert.ErrorIs(t, err, brackets.ErrState, "nothing to schedule before zones")

	_, err = env.tournaments.GenerateZones(ctx, tour.ID, GenerateOptions{})
	require.NoError(t, err)

	_, err = env.schedule.GenerateSlots(ctx, tour.ID, GenerateSlotsInput{Date: "2025-03-14", StartTime: "09:00", EndTime: "18:00", DurationMinutes: 60})
	assert.ErrorIs(t, err, brackets.ErrInsufficientData, "no courts yet")

	for _, name := range []string{"Central", "Cancha 2"} {
		_, err := env.schedule.CreateCourt(ctx, tour.ID, CreateCourtInput{Name: name})
		require.NoError(t, err)
	}
	_, err = env.schedule.CreateCourt(ctx, tour.ID, CreateCourtInput{Name: "Central"})
	assert.ErrorIs(t, err, brackets.ErrConflict)

	input := GenerateSlotsInput{Date: "2025-03-14", StartTime: "09:00", EndTime: "18:00", DurationMinutes: 60}
	generated, err := env.schedule.GenerateSlots(ctx, tour.ID, input)
	require.NoError(t, err)
	assert.Len(t, generated.Created, 18)

	again, err := env.schedule.GenerateSlots(ctx, tour.ID, input)
	require.NoError(t, err)
	assert.Empty(t, again.Created)
	assert.Equal(t, 18, again.Skipped)

	summary, err := env.schedule.AutoSchedule(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, summary.ScheduledCount+summary.UnscheduledCount)
	assert.Positive(t, summary.ScheduledCount)

	used := map[int]bool{}
	for _, a := range summary.Scheduled {
		assert.False(t, used[a.SlotID], "slot %d used twice", a.SlotID)
		used[a.SlotID] = true
		m, err := env.matches.GetMatch(ctx, tour.ID, a.MatchID)
		require.NoError(t, err)
		require.NotNil(t, m.StartsAt)
		assert.True(t, a.StartsAt.Equal(*m.StartsAt))
	}

	second, err := env.schedule.AutoSchedule(ctx, tour.ID)
	require.NoError(t, err)
	assert.Zero(t, second.ScheduledCount, "assigned matches keep their slot")

	cleared, err := env.schedule.ClearSchedule(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, summary.ScheduledCount, cleared)

	slots, err := env.schedule.ListSlots(ctx, tour.ID)
	require.NoError(t, err)
	for _, sl := range slots {
		assert.False(t, sl.Occupied)
	}
	assert.True(t, env.events.seen(brackets.EventScheduleUpdated))
}

func TestGenerateSlotsValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	tour, _, _ := env.seedTournament(t, 2)

	cases := []struct {
		name  string
		input GenerateSlotsInput
	}{
		{"bad date", GenerateSlotsInput{Date: "14/03/2025", StartTime: "09:00", EndTime: "12:00", DurationMinutes: 60}},
		{"bad time", GenerateSlotsInput{Date: "2025-03-14", StartTime: "9am", EndTime: "12:00", DurationMinutes: 60}},
		{"no duration", GenerateSlotsInput{Date: "2025-03-14", StartTime: "09:00", EndTime: "12:00"}},
		{"window too short", GenerateSlotsInput{Date: "2025-03-14", StartTime: "09:00", EndTime: "09:30", DurationMinutes: 60}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.schedule.GenerateSlots(ctx, tour.ID, tc.input)
			assert.ErrorIs(t, err, brackets.ErrValidation)
		})
	}
}

func TestDeleteCourtUnassignsMatches(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	tour, _, _ := env.seedTournament(t, 4)
	_, err := env.tournaments.GenerateZones(ctx, tour.ID, GenerateOptions{})
	require.NoError(t, err)

	court, err := env.schedule.CreateCourt(ctx, tour.ID, CreateCourtInput{Name: "Central"})
	require.NoError(t, err)
	_, err = env.schedule.GenerateSlots(ctx, tour.ID, GenerateSlotsInput{Date: "2025-03-14", StartTime: "09:00", EndTime: "21:00", DurationMinutes: 90})
	require.NoError(t, err)
	summary, err := env.schedule.AutoSchedule(ctx, tour.ID)
	require.NoError(t, err)
	require.Positive(t, summary.ScheduledCount)

	require.NoError(t, env.schedule.DeleteCourt(ctx, tour.ID, court.ID))

	matches, err := env.matches.ListMatches(ctx, tour.ID)
	require.NoError(t, err)
	for _, m := range matches {
		assert.Nil(t, m.CourtID)
		assert.Nil(t, m.SlotID)
	}
	slots, err := env.schedule.ListSlots(ctx, tour.ID)
	require.NoError(t, err)
	assert.Empty(t, slots)

	err = env.schedule.DeleteCourt(ctx, tour.ID, court.ID)
	assert.True(t, errors.Is(err, brackets.ErrNotFound))
}

// testStores yields the memory store and, with TEST_DATABASE_URL set, a
// postgres store on that scratch database.
func testStores(t *testing.T) map[string]func(t *testing.T) *repositories.Store {
	t.Helper()
	stores := map[string]func(t *testing.T) *repositories.Store{
		"memory": func(*testing.T) *repositories.Store { return repositories.NewMemoryStore() },
	}
	if dsn := os.Getenv("TEST_DATABASE_URL"); dsn != "" {
		stores["postgres"] = func(t *testing.T) *repositories.Store {
			conn, err := db.Connect(dsn, 5*time.Second)
			require.NoError(t, err)
			t.Cleanup(func() { _ = conn.Close() })
			require.NoError(t, db.Migrate(context.Background(), conn))
			return repositories.NewPostgresStore(conn, slog.Default())
		}
	}
	return stores
}

func TestRegenerateZonesFreesTheirSlots(t *testing.T) {
	for name, open := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			env := newTestEnvOn(t, open(t))
			tour, _, _ := env.seedTournament(t, 4)

			_, err := env.tournaments.GenerateZones(ctx, tour.ID, GenerateOptions{})
			require.NoError(t, err)
			_, err = env.schedule.CreateCourt(ctx, tour.ID, CreateCourtInput{Name: "Central"})
			require.NoError(t, err)
			_, err = env.schedule.GenerateSlots(ctx, tour.ID, GenerateSlotsInput{Date: "2025-03-14", StartTime: "09:00", EndTime: "15:00", DurationMinutes: 60})
			require.NoError(t, err)

			first, err := env.schedule.AutoSchedule(ctx, tour.ID)
			require.NoError(t, err)
			require.Positive(t, first.ScheduledCount)

			require.NoError(t, env.tournaments.DeleteZones(ctx, tour.ID, true))
			slots, err := env.schedule.ListSlots(ctx, tour.ID)
			require.NoError(t, err)
			require.Len(t, slots, 6)
			for _, sl := range slots {
				assert.False(t, sl.Occupied, "slot %d still booked after its match was deleted", sl.ID)
				assert.Nil(t, sl.MatchID)
			}

			_, err = env.tournaments.GenerateZones(ctx, tour.ID, GenerateOptions{})
			require.NoError(t, err)
			second, err := env.schedule.AutoSchedule(ctx, tour.ID)
			require.NoError(t, err)
			assert.Equal(t, first.ScheduledCount, second.ScheduledCount)
			assert.Equal(t, first.UnscheduledCount, second.UnscheduledCount)

			// the destructive regenerate path releases the same way
			_, err = env.tournaments.GenerateZones(ctx, tour.ID, GenerateOptions{Regenerate: true, Confirm: true})
			require.NoError(t, err)
			third, err := env.schedule.AutoSchedule(ctx, tour.ID)
			require.NoError(t, err)
			assert.Equal(t, first.ScheduledCount, third.ScheduledCount)
		})
	}
}

func TestWithdrawnPairDoesNotQualify(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	tour, err := env.tournaments.CreateTournament(ctx, CreateTournamentInput{
		Name:    "Copa Otoño",
		Scoring: &models.ScoringConfig{TargetZoneSize: 2, QualifiersPerZone: 2},
	})
	require.NoError(t, err)
	cat, err := env.registration.CreateCategory(ctx, CreateCategoryInput{TournamentID: tour.ID, Name: "6ta"})
	require.NoError(t, err)
	pairs := make([]int, 0, 4)
	for _, names := range [][2]string{{"Ana", "Bea"}, {"Caro", "Dani"}, {"Eli", "Flor"}, {"Gabi", "Hebe"}} {
		p, err := env.registration.RegisterPair(ctx, tour.ID, RegisterPairInput{CategoryID: cat.ID, Player1: names[0], Player2: names[1], Status: models.PairConfirmed})
		require.NoError(t, err)
		pairs = append(pairs, p.ID)
	}

	zones, err := env.tournaments.GenerateZones(ctx, tour.ID, GenerateOptions{})
	require.NoError(t, err)
	require.Len(t, zones, 2)

	leaving := pairs[0]
	_, err = env.registration.UpdatePairStatus(ctx, tour.ID, leaving, models.PairWithdrawn)
	require.NoError(t, err)

	matches, err := env.matches.ListMatches(ctx, tour.ID)
	require.NoError(t, err)
	for _, m := range matches {
		if m.State == models.MatchConfirmed {
			continue
		}
		_, err := env.matches.SubmitResult(ctx, tour.ID, m.ID, SubmitResultInput{Sets: lowerIDWins(m), Confirm: true})
		require.NoError(t, err)
	}

	playoffs, err := env.tournaments.GeneratePlayoffs(ctx, tour.ID, GenerateOptions{})
	require.NoError(t, err)

	qualified := map[int]bool{}
	for _, m := range playoffs {
		assert.False(t, m.Involves(leaving), "withdrawn pair %d placed in %s #%d", leaving, m.Round, m.NumeroPartido)
		for _, id := range m.PairIDs() {
			qualified[id] = true
		}
	}
	assert.Len(t, qualified, 3, "the other three pairs go through")

	byes := 0
	for _, m := range playoffs {
		if m.State == models.MatchBye {
			byes++
		}
	}
	assert.Equal(t, 1, byes)
}

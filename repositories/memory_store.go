package repositories

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/Dosada05/padel-tournament/models"
)

var errMemoryExecutor = errors.New("memory store does not execute SQL")

// memoryTx is the executor handed to WithinTx callbacks of the memory store. It
// carries the undo journal; SQL methods are never called on it.
type memoryTx struct {
	undo []func()
}

func (t *memoryTx) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, errMemoryExecutor
}

func (t *memoryTx) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, errMemoryExecutor
}

func (t *memoryTx) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

type memoryDB struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	tournaments map[int]models.Tournament
	categories  map[int]models.Category
	pairs       map[int]models.Pair
	zones       map[int]models.Zone
	matches     map[int]models.Match
	courts      map[int]models.Court
	slots       map[int]models.Slot
	seq         map[string]int
}

// NewMemoryStore returns a Store kept in process memory. Transactions are
// serialized and undone on error, which is enough for tests and local runs.
func NewMemoryStore() *Store {
	m := &memoryDB{
		tournaments: make(map[int]models.Tournament),
		categories:  make(map[int]models.Category),
		pairs:       make(map[int]models.Pair),
		zones:       make(map[int]models.Zone),
		matches:     make(map[int]models.Match),
		courts:      make(map[int]models.Court),
		slots:       make(map[int]models.Slot),
		seq:         make(map[string]int),
	}
	return &Store{
		Tx:          m,
		Tournaments: &memoryTournamentRepository{m},
		Categories:  &memoryCategoryRepository{m},
		Pairs:       &memoryPairRepository{m},
		Zones:       &memoryZoneRepository{m},
		Matches:     &memoryMatchRepository{m},
		Courts:      &memoryCourtRepository{m},
		Slots:       &memorySlotRepository{m},
	}
}

func (m *memoryDB) WithinTx(ctx context.Context, fn func(exec SQLExecutor) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.txMu.Lock()
	defer m.txMu.Unlock()

	tx := &memoryTx{}
	defer func() {
		if p := recover(); p != nil {
			m.rollback(tx)
			panic(p)
		}
		if err != nil {
			m.rollback(tx)
		}
	}()
	return fn(tx)
}

func (m *memoryDB) rollback(tx *memoryTx) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
}

func (m *memoryDB) nextID(table string) int {
	m.seq[table]++
	return m.seq[table]
}

// setRow and deleteRow must be called with mu held. Inside a transaction they
// journal the previous row so rollback can restore it.
func setRow[T any](exec SQLExecutor, table map[int]T, id int, v T) {
	prev, had := table[id]
	if tx, ok := exec.(*memoryTx); ok {
		tx.undo = append(tx.undo, func() {
			if had {
				table[id] = prev
			} else {
				delete(table, id)
			}
		})
	}
	table[id] = v
}

func deleteRow[T any](exec SQLExecutor, table map[int]T, id int) {
	prev, had := table[id]
	if !had {
		return
	}
	if tx, ok := exec.(*memoryTx); ok {
		tx.undo = append(tx.undo, func() { table[id] = prev })
	}
	delete(table, id)
}

func sortedValues[T any](table map[int]T, keep func(T) bool) []T {
	ids := make([]int, 0, len(table))
	for id, v := range table {
		if keep == nil || keep(v) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, table[id])
	}
	return out
}

func cloneIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneMatch(m models.Match) models.Match {
	m.ZoneID = cloneIntPtr(m.ZoneID)
	m.SlotID = cloneIntPtr(m.SlotID)
	m.CourtID = cloneIntPtr(m.CourtID)
	if m.StartsAt != nil {
		t := *m.StartsAt
		m.StartsAt = &t
	}
	if m.Result != nil {
		r := *m.Result
		r.Sets = slices.Clone(r.Sets)
		m.Result = &r
	}
	return m
}

// releaseSlotsOf frees every slot pointing at one of the given matches.
func (m *memoryDB) releaseSlotsOf(exec SQLExecutor, matchIDs map[int]bool) {
	for id, s := range m.slots {
		if s.MatchID != nil && matchIDs[*s.MatchID] {
			s.MatchID = nil
			s.Occupied = false
			setRow(exec, m.slots, id, s)
		}
	}
}

type memoryTournamentRepository struct{ db *memoryDB }

func (r *memoryTournamentRepository) Create(_ context.Context, t *models.Tournament) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t.ID = r.db.nextID("tournaments")
	t.CreatedAt = time.Now().UTC()
	stored := *t
	stored.Categories = nil
	stored.ArchiveKey = nil
	r.db.tournaments[t.ID] = stored
	return nil
}

func (r *memoryTournamentRepository) GetByID(_ context.Context, _ SQLExecutor, id int) (*models.Tournament, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	t, ok := r.db.tournaments[id]
	if !ok {
		return nil, ErrTournamentNotFound
	}
	t.Scoring = t.Scoring.WithDefaults()
	t.ArchiveKey = cloneStringPtr(t.ArchiveKey)
	return &t, nil
}

func (r *memoryTournamentRepository) LockByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	return r.GetByID(ctx, exec, id)
}

func (r *memoryTournamentRepository) List(_ context.Context) ([]models.Tournament, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := sortedValues(r.db.tournaments, nil)
	slices.Reverse(out)
	for i := range out {
		out[i].Scoring = out[i].Scoring.WithDefaults()
	}
	return out, nil
}

func (r *memoryTournamentRepository) UpdatePhase(_ context.Context, exec SQLExecutor, id int, from, to models.Phase) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.tournaments[id]
	if !ok {
		return ErrTournamentNotFound
	}
	if t.Phase != from {
		return ErrTournamentPhaseChanged
	}
	t.Phase = to
	setRow(exec, r.db.tournaments, id, t)
	return nil
}

func (r *memoryTournamentRepository) UpdateArchiveKey(_ context.Context, exec SQLExecutor, id int, key *string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.tournaments[id]
	if !ok {
		return ErrTournamentNotFound
	}
	t.ArchiveKey = cloneStringPtr(key)
	setRow(exec, r.db.tournaments, id, t)
	return nil
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

type memoryCategoryRepository struct{ db *memoryDB }

func (r *memoryCategoryRepository) Create(_ context.Context, c *models.Category) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.tournaments[c.TournamentID]; !ok {
		return ErrTournamentNotFound
	}
	for _, existing := range r.db.categories {
		if existing.TournamentID == c.TournamentID && existing.Name == c.Name {
			return ErrCategoryNameConflict
		}
	}
	c.ID = r.db.nextID("categories")
	c.CreatedAt = time.Now().UTC()
	r.db.categories[c.ID] = *c
	return nil
}

func (r *memoryCategoryRepository) GetByID(_ context.Context, id int) (*models.Category, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	c, ok := r.db.categories[id]
	if !ok {
		return nil, ErrCategoryNotFound
	}
	return &c, nil
}

func (r *memoryCategoryRepository) ListByTournament(_ context.Context, _ SQLExecutor, tournamentID int) ([]models.Category, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return sortedValues(r.db.categories, func(c models.Category) bool { return c.TournamentID == tournamentID }), nil
}

type memoryPairRepository struct{ db *memoryDB }

func (r *memoryPairRepository) Create(_ context.Context, p *models.Pair) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.categories[p.CategoryID]; !ok {
		return ErrCategoryNotFound
	}
	for _, existing := range r.db.pairs {
		if existing.CategoryID == p.CategoryID && existing.Player1 == p.Player1 && existing.Player2 == p.Player2 {
			return ErrPairDuplicate
		}
	}
	p.ID = r.db.nextID("pairs")
	p.CreatedAt = time.Now().UTC()
	stored := *p
	stored.Seed = cloneIntPtr(p.Seed)
	r.db.pairs[p.ID] = stored
	return nil
}

func (r *memoryPairRepository) GetByID(_ context.Context, _ SQLExecutor, id int) (*models.Pair, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	p, ok := r.db.pairs[id]
	if !ok {
		return nil, ErrPairNotFound
	}
	p.Seed = cloneIntPtr(p.Seed)
	return &p, nil
}

func (r *memoryPairRepository) List(_ context.Context, _ SQLExecutor, filter PairFilter) ([]models.Pair, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := sortedValues(r.db.pairs, func(p models.Pair) bool {
		if p.TournamentID != filter.TournamentID {
			return false
		}
		if filter.CategoryID != nil && p.CategoryID != *filter.CategoryID {
			return false
		}
		return filter.Status == nil || p.Status == *filter.Status
	})
	for i := range out {
		out[i].Seed = cloneIntPtr(out[i].Seed)
	}
	return out, nil
}

func (r *memoryPairRepository) UpdateStatus(_ context.Context, exec SQLExecutor, id int, status models.PairStatus) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.pairs[id]
	if !ok {
		return ErrPairNotFound
	}
	p.Status = status
	setRow(exec, r.db.pairs, id, p)
	return nil
}

type memoryZoneRepository struct{ db *memoryDB }

func (r *memoryZoneRepository) Create(_ context.Context, exec SQLExecutor, z *models.Zone) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, id := range z.PairIDs {
		if _, ok := r.db.pairs[id]; !ok {
			return ErrPairNotFound
		}
	}
	z.ID = r.db.nextID("zones")
	stored := *z
	stored.PairIDs = slices.Clone(z.PairIDs)
	stored.Matches = nil
	setRow(exec, r.db.zones, z.ID, stored)
	return nil
}

func (r *memoryZoneRepository) GetByID(_ context.Context, _ SQLExecutor, id int) (*models.Zone, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	z, ok := r.db.zones[id]
	if !ok {
		return nil, ErrZoneNotFound
	}
	z.PairIDs = slices.Clone(z.PairIDs)
	return &z, nil
}

func (r *memoryZoneRepository) ListByTournament(_ context.Context, _ SQLExecutor, tournamentID int) ([]models.Zone, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := sortedValues(r.db.zones, func(z models.Zone) bool { return z.TournamentID == tournamentID })
	slices.SortStableFunc(out, func(a, b models.Zone) int { return cmp.Compare(a.CategoryID, b.CategoryID) })
	for i := range out {
		out[i].PairIDs = slices.Clone(out[i].PairIDs)
	}
	return out, nil
}

func (r *memoryZoneRepository) DeleteByTournament(_ context.Context, exec SQLExecutor, tournamentID int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	zoneIDs := map[int]bool{}
	for id, z := range r.db.zones {
		if z.TournamentID == tournamentID {
			zoneIDs[id] = true
		}
	}
	doomed := map[int]bool{}
	for id, m := range r.db.matches {
		if m.ZoneID != nil && zoneIDs[*m.ZoneID] {
			doomed[id] = true
		}
	}
	r.db.releaseSlotsOf(exec, doomed)
	for id := range doomed {
		deleteRow(exec, r.db.matches, id)
	}
	for id := range zoneIDs {
		deleteRow(exec, r.db.zones, id)
	}
	return nil
}

type memoryMatchRepository struct{ db *memoryDB }

func (r *memoryMatchRepository) Create(_ context.Context, exec SQLExecutor, m *models.Match) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.tournaments[m.TournamentID]; !ok {
		return ErrTournamentNotFound
	}
	if _, ok := r.db.categories[m.CategoryID]; !ok {
		return ErrCategoryNotFound
	}
	if m.ZoneID != nil {
		if _, ok := r.db.zones[*m.ZoneID]; !ok {
			return ErrZoneNotFound
		}
	} else {
		for _, existing := range r.db.matches {
			if existing.ZoneID == nil && existing.CategoryID == m.CategoryID &&
				existing.Round == m.Round && existing.NumeroPartido == m.NumeroPartido {
				return ErrMatchPositionConflict
			}
		}
	}
	for _, id := range m.PairIDs() {
		if _, ok := r.db.pairs[id]; !ok {
			return ErrPairNotFound
		}
	}
	m.ID = r.db.nextID("matches")
	m.CreatedAt = time.Now().UTC()
	setRow(exec, r.db.matches, m.ID, cloneMatch(*m))
	return nil
}

func (r *memoryMatchRepository) GetByID(_ context.Context, _ SQLExecutor, id int) (*models.Match, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	m, ok := r.db.matches[id]
	if !ok {
		return nil, ErrMatchNotFound
	}
	m = cloneMatch(m)
	return &m, nil
}

func (r *memoryMatchRepository) LockByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	return r.GetByID(ctx, exec, id)
}

func (r *memoryMatchRepository) List(_ context.Context, _ SQLExecutor, filter MatchFilter) ([]models.Match, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := sortedValues(r.db.matches, func(m models.Match) bool {
		if m.TournamentID != filter.TournamentID {
			return false
		}
		if filter.CategoryID != nil && m.CategoryID != *filter.CategoryID {
			return false
		}
		if filter.ZoneID != nil && (m.ZoneID == nil || *m.ZoneID != *filter.ZoneID) {
			return false
		}
		switch filter.Stage {
		case StageZones:
			return m.ZoneID != nil
		case StagePlayoffs:
			return m.ZoneID == nil
		}
		return true
	})
	for i := range out {
		out[i] = cloneMatch(out[i])
	}
	models.SortMatches(out)
	return out, nil
}

func (r *memoryMatchRepository) CountByZone(_ context.Context, _ SQLExecutor, zoneID int) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	n := 0
	for _, m := range r.db.matches {
		if m.ZoneID != nil && *m.ZoneID == zoneID {
			n++
		}
	}
	return n, nil
}

func (r *memoryMatchRepository) GetBracketMatch(_ context.Context, _ SQLExecutor, categoryID int, round models.Round, numero int) (*models.Match, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, m := range r.db.matches {
		if m.ZoneID == nil && m.CategoryID == categoryID && m.Round == round && m.NumeroPartido == numero {
			m = cloneMatch(m)
			return &m, nil
		}
	}
	return nil, ErrMatchNotFound
}

// update applies fn to a stored match under the write lock.
func (r *memoryMatchRepository) update(exec SQLExecutor, id int, fn func(m *models.Match) error) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	m, ok := r.db.matches[id]
	if !ok {
		return ErrMatchNotFound
	}
	m = cloneMatch(m)
	if err := fn(&m); err != nil {
		return err
	}
	setRow(exec, r.db.matches, id, m)
	return nil
}

func (r *memoryMatchRepository) UpdateSides(_ context.Context, exec SQLExecutor, match *models.Match) error {
	return r.update(exec, match.ID, func(m *models.Match) error {
		m.Side1, m.Side2, m.State = match.Side1, match.Side2, match.State
		return nil
	})
}

func (r *memoryMatchRepository) SaveResult(_ context.Context, exec SQLExecutor, id int, result *models.Result, state models.MatchState) error {
	return r.update(exec, id, func(m *models.Match) error {
		if m.State == models.MatchConfirmed {
			return ErrMatchAlreadyConfirmed
		}
		if result == nil {
			m.Result = nil
		} else {
			res := *result
			res.Sets = slices.Clone(result.Sets)
			m.Result = &res
		}
		m.State = state
		return nil
	})
}

func (r *memoryMatchRepository) Confirm(_ context.Context, exec SQLExecutor, id int) error {
	return r.update(exec, id, func(m *models.Match) error {
		switch {
		case m.State == models.MatchConfirmed:
			return ErrMatchAlreadyConfirmed
		case m.State != models.MatchReported || m.Result == nil:
			return ErrMatchNotReported
		}
		m.State = models.MatchConfirmed
		return nil
	})
}

func (r *memoryMatchRepository) Reopen(_ context.Context, exec SQLExecutor, id int) error {
	return r.update(exec, id, func(m *models.Match) error {
		if m.State != models.MatchConfirmed {
			return ErrMatchNotConfirmed
		}
		m.State = models.MatchReported
		return nil
	})
}

func (r *memoryMatchRepository) Assign(_ context.Context, exec SQLExecutor, id int, slot *models.Slot) error {
	return r.update(exec, id, func(m *models.Match) error {
		if slot == nil {
			m.SlotID, m.CourtID, m.StartsAt = nil, nil, nil
			return nil
		}
		slotID, courtID, startsAt := slot.ID, slot.CourtID, slot.StartsAt
		m.SlotID, m.CourtID, m.StartsAt = &slotID, &courtID, &startsAt
		return nil
	})
}

func (r *memoryMatchRepository) ClearAssignments(_ context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n := 0
	for id, m := range r.db.matches {
		if m.TournamentID != tournamentID || m.State != models.MatchPending || m.SlotID == nil {
			continue
		}
		m = cloneMatch(m)
		m.SlotID, m.CourtID, m.StartsAt = nil, nil, nil
		setRow(exec, r.db.matches, id, m)
		n++
	}
	return n, nil
}

func (r *memoryMatchRepository) deleteWhere(exec SQLExecutor, doomedIf func(models.Match) bool) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	doomed := map[int]bool{}
	for id, m := range r.db.matches {
		if doomedIf(m) {
			doomed[id] = true
		}
	}
	r.db.releaseSlotsOf(exec, doomed)
	for id := range doomed {
		deleteRow(exec, r.db.matches, id)
	}
}

func (r *memoryMatchRepository) DeleteByZone(_ context.Context, exec SQLExecutor, zoneID int) error {
	r.deleteWhere(exec, func(m models.Match) bool { return m.ZoneID != nil && *m.ZoneID == zoneID })
	return nil
}

func (r *memoryMatchRepository) DeleteByTournament(_ context.Context, exec SQLExecutor, tournamentID int, stage MatchStage) error {
	r.deleteWhere(exec, func(m models.Match) bool {
		if m.TournamentID != tournamentID {
			return false
		}
		switch stage {
		case StageZones:
			return m.ZoneID != nil
		case StagePlayoffs:
			return m.ZoneID == nil
		}
		return true
	})
	return nil
}

type memoryCourtRepository struct{ db *memoryDB }

func (r *memoryCourtRepository) Create(_ context.Context, c *models.Court) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.tournaments[c.TournamentID]; !ok {
		return ErrTournamentNotFound
	}
	for _, existing := range r.db.courts {
		if existing.TournamentID == c.TournamentID && existing.Name == c.Name {
			return ErrCourtNameConflict
		}
	}
	c.ID = r.db.nextID("courts")
	c.CreatedAt = time.Now().UTC()
	r.db.courts[c.ID] = *c
	return nil
}

func (r *memoryCourtRepository) GetByID(_ context.Context, _ SQLExecutor, id int) (*models.Court, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	c, ok := r.db.courts[id]
	if !ok {
		return nil, ErrCourtNotFound
	}
	return &c, nil
}

func (r *memoryCourtRepository) ListByTournament(_ context.Context, _ SQLExecutor, tournamentID int) ([]models.Court, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return sortedValues(r.db.courts, func(c models.Court) bool { return c.TournamentID == tournamentID }), nil
}

func (r *memoryCourtRepository) Delete(_ context.Context, exec SQLExecutor, id int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.courts[id]; !ok {
		return ErrCourtNotFound
	}
	for slotID, s := range r.db.slots {
		if s.CourtID == id {
			deleteRow(exec, r.db.slots, slotID)
		}
	}
	for matchID, m := range r.db.matches {
		if m.CourtID != nil && *m.CourtID == id {
			m = cloneMatch(m)
			m.CourtID = nil
			setRow(exec, r.db.matches, matchID, m)
		}
	}
	deleteRow(exec, r.db.courts, id)
	return nil
}

type memorySlotRepository struct{ db *memoryDB }

func (r *memorySlotRepository) Create(_ context.Context, exec SQLExecutor, s *models.Slot) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.courts[s.CourtID]; !ok {
		return ErrCourtNotFound
	}
	for _, existing := range r.db.slots {
		if existing.CourtID == s.CourtID && existing.StartsAt.Equal(s.StartsAt) {
			return ErrSlotConflict
		}
	}
	s.ID = r.db.nextID("slots")
	stored := *s
	stored.MatchID = cloneIntPtr(s.MatchID)
	setRow(exec, r.db.slots, s.ID, stored)
	return nil
}

func (r *memorySlotRepository) list(keep func(models.Slot) bool) []models.Slot {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := sortedValues(r.db.slots, keep)
	for i := range out {
		out[i].MatchID = cloneIntPtr(out[i].MatchID)
	}
	slices.SortStableFunc(out, func(a, b models.Slot) int {
		if c := a.StartsAt.Compare(b.StartsAt); c != 0 {
			return c
		}
		return cmp.Compare(a.CourtID, b.CourtID)
	})
	return out
}

func (r *memorySlotRepository) ListByTournament(_ context.Context, _ SQLExecutor, tournamentID int) ([]models.Slot, error) {
	r.db.mu.RLock()
	courts := map[int]bool{}
	for id, c := range r.db.courts {
		if c.TournamentID == tournamentID {
			courts[id] = true
		}
	}
	r.db.mu.RUnlock()
	return r.list(func(s models.Slot) bool { return courts[s.CourtID] }), nil
}

func (r *memorySlotRepository) ListByCourt(_ context.Context, _ SQLExecutor, courtID int) ([]models.Slot, error) {
	return r.list(func(s models.Slot) bool { return s.CourtID == courtID }), nil
}

func (r *memorySlotRepository) Claim(_ context.Context, exec SQLExecutor, slotID, matchID int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.slots[slotID]
	if !ok {
		return ErrSlotNotFound
	}
	if s.Occupied || s.MatchID != nil {
		return ErrSlotTaken
	}
	for _, other := range r.db.slots {
		if other.MatchID != nil && *other.MatchID == matchID {
			return ErrSlotTaken
		}
	}
	s.Occupied = true
	s.MatchID = &matchID
	setRow(exec, r.db.slots, slotID, s)
	return nil
}

func (r *memorySlotRepository) ReleaseUnplayed(_ context.Context, exec SQLExecutor, tournamentID int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	pending := map[int]bool{}
	for id, m := range r.db.matches {
		if m.TournamentID == tournamentID && m.State == models.MatchPending {
			pending[id] = true
		}
	}
	r.db.releaseSlotsOf(exec, pending)
	return nil
}

func (r *memorySlotRepository) DeleteByCourt(_ context.Context, exec SQLExecutor, courtID int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, s := range r.db.slots {
		if s.CourtID == courtID {
			deleteRow(exec, r.db.slots, id)
		}
	}
	return nil
}

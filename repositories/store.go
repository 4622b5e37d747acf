package repositories

import (
	"database/sql"
	"log/slog"
)

// Store bundles the repositories a service layer needs with the transactor that
// makes their writes atomic.
type Store struct {
	Tx          Transactor
	Tournaments TournamentRepository
	Categories  CategoryRepository
	Pairs       PairRepository
	Zones       ZoneRepository
	Matches     MatchRepository
	Courts      CourtRepository
	Slots       SlotRepository
}

func NewPostgresStore(db *sql.DB, logger *slog.Logger) *Store {
	return &Store{
		Tx:          NewSQLTransactor(db, logger),
		Tournaments: NewPostgresTournamentRepository(db),
		Categories:  NewPostgresCategoryRepository(db),
		Pairs:       NewPostgresPairRepository(db),
		Zones:       NewPostgresZoneRepository(db),
		Matches:     NewPostgresMatchRepository(db),
		Courts:      NewPostgresCourtRepository(db),
		Slots:       NewPostgresSlotRepository(db),
	}
}

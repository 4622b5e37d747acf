package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/padel-tournament/models"
)

var (
	ErrCourtNotFound     = errors.New("court not found")
	ErrCourtNameConflict = errors.New("court name already used in this tournament")
	ErrSlotNotFound      = errors.New("slot not found")
	ErrSlotConflict      = errors.New("slot overlaps an existing slot start on this court")
	ErrSlotTaken         = errors.New("slot already occupied")
)

type CourtRepository interface {
	Create(ctx context.Context, court *models.Court) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Court, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Court, error)
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type SlotRepository interface {
	Create(ctx context.Context, exec SQLExecutor, slot *models.Slot) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Slot, error)
	ListByCourt(ctx context.Context, exec SQLExecutor, courtID int) ([]models.Slot, error)
	// Claim marks a free slot as used by matchID; it fails with ErrSlotTaken otherwise.
	Claim(ctx context.Context, exec SQLExecutor, slotID, matchID int) error
	// ReleaseUnplayed frees the slots of the tournament's pending matches.
	ReleaseUnplayed(ctx context.Context, exec SQLExecutor, tournamentID int) error
	DeleteByCourt(ctx context.Context, exec SQLExecutor, courtID int) error
}

type postgresCourtRepository struct {
	db *sql.DB
}

func NewPostgresCourtRepository(db *sql.DB) CourtRepository {
	return &postgresCourtRepository{db: db}
}

func (r *postgresCourtRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresCourtRepository) Create(ctx context.Context, c *models.Court) error {
	query := `
		INSERT INTO courts (tournament_id, name, active)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, c.TournamentID, c.Name, c.Active).Scan(&c.ID, &c.CreatedAt)
	if err == nil {
		return nil
	}
	if pqErr, ok := asPQError(err); ok {
		switch pqErr.Code {
		case pqUniqueViolation:
			return ErrCourtNameConflict
		case pqForeignKeyViolation:
			return ErrTournamentNotFound
		}
	}
	return fmt.Errorf("failed to create court: %w", err)
}

func (r *postgresCourtRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Court, error) {
	c := &models.Court{}
	err := r.getExecutor(exec).QueryRowContext(ctx,
		`SELECT id, tournament_id, name, active, created_at FROM courts WHERE id = $1`, id,
	).Scan(&c.ID, &c.TournamentID, &c.Name, &c.Active, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourtNotFound
		}
		return nil, fmt.Errorf("failed to get court %d: %w", id, err)
	}
	return c, nil
}

func (r *postgresCourtRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Court, error) {
	rows, err := r.getExecutor(exec).QueryContext(ctx,
		`SELECT id, tournament_id, name, active, created_at FROM courts WHERE tournament_id = $1 ORDER BY id ASC`,
		tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list courts of tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	courts := make([]models.Court, 0)
	for rows.Next() {
		var c models.Court
		if scanErr := rows.Scan(&c.ID, &c.TournamentID, &c.Name, &c.Active, &c.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		courts = append(courts, c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return courts, nil
}

func (r *postgresCourtRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM courts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete court %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrCourtNotFound)
}

type postgresSlotRepository struct {
	db *sql.DB
}

func NewPostgresSlotRepository(db *sql.DB) SlotRepository {
	return &postgresSlotRepository{db: db}
}

func (r *postgresSlotRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func scanSlot(row scanner) (models.Slot, error) {
	var s models.Slot
	var matchID sql.NullInt64
	if err := row.Scan(&s.ID, &s.CourtID, &s.StartsAt, &s.EndsAt, &s.Occupied, &matchID); err != nil {
		return s, err
	}
	s.MatchID = nullIntPtr(matchID)
	return s, nil
}

func (r *postgresSlotRepository) Create(ctx context.Context, exec SQLExecutor, s *models.Slot) error {
	err := r.getExecutor(exec).QueryRowContext(ctx,
		`INSERT INTO slots (court_id, starts_at, ends_at) VALUES ($1, $2, $3) RETURNING id`,
		s.CourtID, s.StartsAt, s.EndsAt,
	).Scan(&s.ID)
	if err == nil {
		return nil
	}
	if pqErr, ok := asPQError(err); ok {
		switch pqErr.Code {
		case pqUniqueViolation:
			return ErrSlotConflict
		case pqForeignKeyViolation:
			return ErrCourtNotFound
		}
	}
	return fmt.Errorf("failed to create slot: %w", err)
}

func (r *postgresSlotRepository) list(ctx context.Context, exec SQLExecutor, where string, arg int) ([]models.Slot, error) {
	rows, err := r.getExecutor(exec).QueryContext(ctx, `
		SELECT s.id, s.court_id, s.starts_at, s.ends_at, s.occupied, s.match_id
		FROM slots s
		JOIN courts c ON c.id = s.court_id
		WHERE `+where+`
		ORDER BY s.starts_at ASC, s.court_id ASC, s.id ASC`, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	defer rows.Close()

	slots := make([]models.Slot, 0)
	for rows.Next() {
		s, scanErr := scanSlot(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		slots = append(slots, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *postgresSlotRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Slot, error) {
	return r.list(ctx, exec, `c.tournament_id = $1`, tournamentID)
}

func (r *postgresSlotRepository) ListByCourt(ctx context.Context, exec SQLExecutor, courtID int) ([]models.Slot, error) {
	return r.list(ctx, exec, `s.court_id = $1`, courtID)
}

func (r *postgresSlotRepository) Claim(ctx context.Context, exec SQLExecutor, slotID, matchID int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE slots SET occupied = TRUE, match_id = $1 WHERE id = $2 AND NOT occupied AND match_id IS NULL`,
		matchID, slotID)
	if err != nil {
		if pqErr, ok := asPQError(err); ok && pqErr.Code == pqUniqueViolation {
			return ErrSlotTaken
		}
		return fmt.Errorf("failed to claim slot %d: %w", slotID, err)
	}
	if err := checkAffectedRows(result, ErrSlotTaken); err != nil {
		var exists bool
		if qErr := executor.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM slots WHERE id = $1)`, slotID).Scan(&exists); qErr == nil && !exists {
			return ErrSlotNotFound
		}
		return err
	}
	return nil
}

func (r *postgresSlotRepository) ReleaseUnplayed(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	_, err := r.getExecutor(exec).ExecContext(ctx, `
		UPDATE slots s SET occupied = FALSE, match_id = NULL
		FROM matches m
		WHERE s.match_id = m.id AND m.tournament_id = $1 AND m.estado = $2`,
		tournamentID, models.MatchPending)
	if err != nil {
		return fmt.Errorf("failed to release slots of tournament %d: %w", tournamentID, err)
	}
	return nil
}

func (r *postgresSlotRepository) DeleteByCourt(ctx context.Context, exec SQLExecutor, courtID int) error {
	if _, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM slots WHERE court_id = $1`, courtID); err != nil {
		return fmt.Errorf("failed to delete slots of court %d: %w", courtID, err)
	}
	return nil
}

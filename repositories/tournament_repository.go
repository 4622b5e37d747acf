package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dosada05/padel-tournament/models"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentPhaseChanged = errors.New("tournament phase changed concurrently")
)

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	// LockByID reads the tournament and, inside a transaction, holds its row until commit.
	LockByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	List(ctx context.Context) ([]models.Tournament, error)
	// UpdatePhase moves the tournament from one phase to another and fails with
	// ErrTournamentPhaseChanged when it is no longer in from.
	UpdatePhase(ctx context.Context, exec SQLExecutor, id int, from, to models.Phase) error
	UpdateArchiveKey(ctx context.Context, exec SQLExecutor, id int, key *string) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `id, name, phase, scoring, archive_key, created_at`

func scanTournament(row scanner) (*models.Tournament, error) {
	t := &models.Tournament{}
	var scoring []byte
	if err := row.Scan(&t.ID, &t.Name, &t.Phase, &scoring, &t.ArchiveKey, &t.CreatedAt); err != nil {
		return nil, err
	}
	if len(scoring) > 0 {
		if err := json.Unmarshal(scoring, &t.Scoring); err != nil {
			return nil, fmt.Errorf("failed to decode scoring config of tournament %d: %w", t.ID, err)
		}
	}
	t.Scoring = t.Scoring.WithDefaults()
	return t, nil
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	scoring, err := json.Marshal(t.Scoring)
	if err != nil {
		return fmt.Errorf("failed to encode scoring config: %w", err)
	}
	query := `
		INSERT INTO tournaments (name, phase, scoring)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err = r.db.QueryRowContext(ctx, query, t.Name, t.Phase, string(scoring)).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create tournament: %w", err)
	}
	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	return r.get(ctx, r.getExecutor(exec), query, id)
}

func (r *postgresTournamentRepository) LockByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1 FOR UPDATE`
	return r.get(ctx, r.getExecutor(exec), query, id)
}

func (r *postgresTournamentRepository) get(ctx context.Context, executor SQLExecutor, query string, id int) (*models.Tournament, error) {
	t, err := scanTournament(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context) ([]models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		t, scanErr := scanTournament(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, *t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) UpdatePhase(ctx context.Context, exec SQLExecutor, id int, from, to models.Phase) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE tournaments SET phase = $1 WHERE id = $2 AND phase = $3`, to, id, from)
	if err != nil {
		return fmt.Errorf("failed to update phase of tournament %d: %w", id, err)
	}
	if err := checkAffectedRows(result, ErrTournamentPhaseChanged); err != nil {
		if _, getErr := r.GetByID(ctx, executor, id); errors.Is(getErr, ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return err
	}
	return nil
}

func (r *postgresTournamentRepository) UpdateArchiveKey(ctx context.Context, exec SQLExecutor, id int, key *string) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, `UPDATE tournaments SET archive_key = $1 WHERE id = $2`, key, id)
	if err != nil {
		return fmt.Errorf("failed to update archive key of tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Dosada05/padel-tournament/models"
)

var (
	ErrPairNotFound  = errors.New("pair not found")
	ErrPairDuplicate = errors.New("pair already enrolled in this category")
)

type PairFilter struct {
	TournamentID int
	CategoryID   *int
	Status       *models.PairStatus
}

type PairRepository interface {
	Create(ctx context.Context, pair *models.Pair) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Pair, error)
	List(ctx context.Context, exec SQLExecutor, filter PairFilter) ([]models.Pair, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.PairStatus) error
}

type postgresPairRepository struct {
	db *sql.DB
}

func NewPostgresPairRepository(db *sql.DB) PairRepository {
	return &postgresPairRepository{db: db}
}

func (r *postgresPairRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const pairColumns = `id, tournament_id, category_id, player1, player2, seed, status, created_at`

func scanPair(row scanner) (models.Pair, error) {
	var p models.Pair
	var seed sql.NullInt64
	if err := row.Scan(&p.ID, &p.TournamentID, &p.CategoryID, &p.Player1, &p.Player2, &seed, &p.Status, &p.CreatedAt); err != nil {
		return p, err
	}
	if seed.Valid {
		s := int(seed.Int64)
		p.Seed = &s
	}
	return p, nil
}

func (r *postgresPairRepository) Create(ctx context.Context, p *models.Pair) error {
	query := `
		INSERT INTO pairs (tournament_id, category_id, player1, player2, seed, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, p.TournamentID, p.CategoryID, p.Player1, p.Player2, p.Seed, p.Status).
		Scan(&p.ID, &p.CreatedAt)
	if err == nil {
		return nil
	}
	if pqErr, ok := asPQError(err); ok {
		switch pqErr.Code {
		case pqUniqueViolation:
			return ErrPairDuplicate
		case pqForeignKeyViolation:
			return ErrCategoryNotFound
		}
	}
	return fmt.Errorf("failed to create pair: %w", err)
}

func (r *postgresPairRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Pair, error) {
	query := `SELECT ` + pairColumns + ` FROM pairs WHERE id = $1`
	p, err := scanPair(r.getExecutor(exec).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPairNotFound
		}
		return nil, fmt.Errorf("failed to get pair %d: %w", id, err)
	}
	return &p, nil
}

func (r *postgresPairRepository) List(ctx context.Context, exec SQLExecutor, filter PairFilter) ([]models.Pair, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + pairColumns + ` FROM pairs WHERE tournament_id = $1`)
	args := []interface{}{filter.TournamentID}
	placeholderIndex := 2

	if filter.CategoryID != nil {
		queryBuilder.WriteString(" AND category_id = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *filter.CategoryID)
		placeholderIndex++
	}
	if filter.Status != nil {
		queryBuilder.WriteString(" AND status = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *filter.Status)
	}
	queryBuilder.WriteString(" ORDER BY id ASC")

	rows, err := r.getExecutor(exec).QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pairs of tournament %d: %w", filter.TournamentID, err)
	}
	defer rows.Close()

	pairs := make([]models.Pair, 0)
	for rows.Next() {
		p, scanErr := scanPair(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		pairs = append(pairs, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return pairs, nil
}

func (r *postgresPairRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.PairStatus) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, `UPDATE pairs SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update status of pair %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrPairNotFound)
}

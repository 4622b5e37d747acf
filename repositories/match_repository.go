package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Dosada05/padel-tournament/models"
)

var (
	ErrMatchNotFound         = errors.New("match not found")
	ErrMatchAlreadyConfirmed = errors.New("match result already confirmed")
	ErrMatchNotConfirmed     = errors.New("match is not confirmed")
	ErrMatchNotReported      = errors.New("match has no reported result")
	ErrMatchPositionConflict = errors.New("bracket position already taken")
)

// MatchStage narrows a listing to zone play or the elimination bracket.
type MatchStage int

const (
	StageAll MatchStage = iota
	StageZones
	StagePlayoffs
)

type MatchFilter struct {
	TournamentID int
	CategoryID   *int
	ZoneID       *int
	Stage        MatchStage
}

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	LockByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	List(ctx context.Context, exec SQLExecutor, filter MatchFilter) ([]models.Match, error)
	CountByZone(ctx context.Context, exec SQLExecutor, zoneID int) (int, error)
	GetBracketMatch(ctx context.Context, exec SQLExecutor, categoryID int, round models.Round, numero int) (*models.Match, error)
	// UpdateSides writes both sides and the state of a bracket match.
	UpdateSides(ctx context.Context, exec SQLExecutor, match *models.Match) error
	// SaveResult stores a validated result unless the match is already confirmed.
	SaveResult(ctx context.Context, exec SQLExecutor, id int, result *models.Result, state models.MatchState) error
	// Confirm flips a reported match to confirmed. It succeeds at most once.
	Confirm(ctx context.Context, exec SQLExecutor, id int) error
	// Reopen moves a confirmed match back to reported.
	Reopen(ctx context.Context, exec SQLExecutor, id int) error
	// Assign places the match on a slot; a nil slot clears the assignment.
	Assign(ctx context.Context, exec SQLExecutor, id int, slot *models.Slot) error
	ClearAssignments(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
	DeleteByZone(ctx context.Context, exec SQLExecutor, zoneID int) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, stage MatchStage) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `id, tournament_id, category_id, phase, zone_id, numero_partido, pareja1_id, pareja2_id,
		estado, resultado, slot_id, cancha_id, fecha_hora, created_at`

func scanMatch(row scanner) (models.Match, error) {
	var (
		m             models.Match
		zoneID        sql.NullInt64
		side1, side2  sql.NullInt64
		result        []byte
		slotID, court sql.NullInt64
		startsAt      sql.NullTime
	)
	err := row.Scan(&m.ID, &m.TournamentID, &m.CategoryID, &m.Round, &zoneID, &m.NumeroPartido, &side1, &side2,
		&m.State, &result, &slotID, &court, &startsAt, &m.CreatedAt)
	if err != nil {
		return m, err
	}

	m.ZoneID = nullIntPtr(zoneID)
	m.Side1 = models.EntrantFromColumn(nullIntPtr(side1), m.State)
	m.Side2 = models.EntrantFromColumn(nullIntPtr(side2), m.State)
	m.SlotID = nullIntPtr(slotID)
	m.CourtID = nullIntPtr(court)
	if startsAt.Valid {
		t := startsAt.Time
		m.StartsAt = &t
	}
	if len(result) > 0 {
		var res models.Result
		if err := json.Unmarshal(result, &res); err != nil {
			return m, fmt.Errorf("failed to decode result of match %d: %w", m.ID, err)
		}
		m.Result = &res
	}
	return m, nil
}

func nullIntPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

// encodeResult renders a result for the jsonb column; nil becomes SQL NULL.
func encodeResult(result *models.Result) (interface{}, error) {
	if result == nil {
		return nil, nil
	}
	b, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	result, err := encodeResult(m.Result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	query := `
		INSERT INTO matches
			(tournament_id, category_id, phase, zone_id, numero_partido, pareja1_id, pareja2_id, estado, resultado)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err = r.getExecutor(exec).QueryRowContext(ctx, query,
		m.TournamentID,
		m.CategoryID,
		m.Round,
		m.ZoneID,
		m.NumeroPartido,
		m.Side1.PairIDPtr(),
		m.Side2.PairIDPtr(),
		m.State,
		result,
	).Scan(&m.ID, &m.CreatedAt)
	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	return r.getOne(ctx, exec, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id)
}

func (r *postgresMatchRepository) LockByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	return r.getOne(ctx, exec, `SELECT `+matchColumns+` FROM matches WHERE id = $1 FOR UPDATE`, id)
}

func (r *postgresMatchRepository) GetBracketMatch(ctx context.Context, exec SQLExecutor, categoryID int, round models.Round, numero int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE category_id = $1 AND phase = $2 AND numero_partido = $3 AND zone_id IS NULL`
	return r.getOne(ctx, exec, query, categoryID, round, numero)
}

func (r *postgresMatchRepository) getOne(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) (*models.Match, error) {
	m, err := scanMatch(r.getExecutor(exec).QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return &m, nil
}

func (r *postgresMatchRepository) List(ctx context.Context, exec SQLExecutor, filter MatchFilter) ([]models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1`)
	args := []interface{}{filter.TournamentID}
	placeholderIndex := 2

	if filter.CategoryID != nil {
		queryBuilder.WriteString(" AND category_id = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *filter.CategoryID)
		placeholderIndex++
	}
	if filter.ZoneID != nil {
		queryBuilder.WriteString(" AND zone_id = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *filter.ZoneID)
	}
	switch filter.Stage {
	case StageZones:
		queryBuilder.WriteString(" AND zone_id IS NOT NULL")
	case StagePlayoffs:
		queryBuilder.WriteString(" AND zone_id IS NULL")
	}
	queryBuilder.WriteString(" ORDER BY category_id ASC, zone_id ASC NULLS LAST, numero_partido ASC, id ASC")

	rows, err := r.getExecutor(exec).QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", filter.TournamentID, err)
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		m, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	models.SortMatches(matches)
	return matches, nil
}

func (r *postgresMatchRepository) CountByZone(ctx context.Context, exec SQLExecutor, zoneID int) (int, error) {
	var n int
	err := r.getExecutor(exec).QueryRowContext(ctx, `SELECT COUNT(*) FROM matches WHERE zone_id = $1`, zoneID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count matches of zone %d: %w", zoneID, err)
	}
	return n, nil
}

func (r *postgresMatchRepository) UpdateSides(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	result, err := r.getExecutor(exec).ExecContext(ctx,
		`UPDATE matches SET pareja1_id = $1, pareja2_id = $2, estado = $3 WHERE id = $4`,
		m.Side1.PairIDPtr(), m.Side2.PairIDPtr(), m.State, m.ID)
	if err != nil {
		return fmt.Errorf("failed to update sides of match %d: %w", m.ID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) SaveResult(ctx context.Context, exec SQLExecutor, id int, res *models.Result, state models.MatchState) error {
	encoded, err := encodeResult(res)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	result, err := r.getExecutor(exec).ExecContext(ctx,
		`UPDATE matches SET resultado = $1, estado = $2 WHERE id = $3 AND estado <> $4`,
		encoded, state, id, models.MatchConfirmed)
	if err != nil {
		return fmt.Errorf("failed to save result of match %d: %w", id, err)
	}
	return r.explainNoRows(ctx, exec, result, id, ErrMatchAlreadyConfirmed)
}

func (r *postgresMatchRepository) Confirm(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := r.getExecutor(exec).ExecContext(ctx,
		`UPDATE matches SET estado = $1 WHERE id = $2 AND estado = $3 AND resultado IS NOT NULL`,
		models.MatchConfirmed, id, models.MatchReported)
	if err != nil {
		return fmt.Errorf("failed to confirm match %d: %w", id, err)
	}
	if err := r.explainNoRows(ctx, exec, result, id, ErrMatchNotReported); err != nil {
		if errors.Is(err, ErrMatchNotReported) {
			if m, getErr := r.GetByID(ctx, exec, id); getErr == nil && m.State == models.MatchConfirmed {
				return ErrMatchAlreadyConfirmed
			}
		}
		return err
	}
	return nil
}

func (r *postgresMatchRepository) Reopen(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := r.getExecutor(exec).ExecContext(ctx,
		`UPDATE matches SET estado = $1 WHERE id = $2 AND estado = $3`,
		models.MatchReported, id, models.MatchConfirmed)
	if err != nil {
		return fmt.Errorf("failed to reopen match %d: %w", id, err)
	}
	return r.explainNoRows(ctx, exec, result, id, ErrMatchNotConfirmed)
}

// explainNoRows tells a missing match apart from a conditional update that matched nothing.
func (r *postgresMatchRepository) explainNoRows(ctx context.Context, exec SQLExecutor, result sql.Result, id int, conflict error) error {
	if err := checkAffectedRows(result, conflict); err != nil {
		if errors.Is(err, conflict) {
			if _, getErr := r.GetByID(ctx, exec, id); errors.Is(getErr, ErrMatchNotFound) {
				return ErrMatchNotFound
			}
		}
		return err
	}
	return nil
}

func (r *postgresMatchRepository) Assign(ctx context.Context, exec SQLExecutor, id int, slot *models.Slot) error {
	var slotID, courtID *int
	var startsAt interface{}
	if slot != nil {
		slotID, courtID = &slot.ID, &slot.CourtID
		startsAt = slot.StartsAt
	}
	result, err := r.getExecutor(exec).ExecContext(ctx,
		`UPDATE matches SET slot_id = $1, cancha_id = $2, fecha_hora = $3 WHERE id = $4`,
		slotID, courtID, startsAt, id)
	if err != nil {
		return fmt.Errorf("failed to assign match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) ClearAssignments(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	result, err := r.getExecutor(exec).ExecContext(ctx, `
		UPDATE matches SET slot_id = NULL, cancha_id = NULL, fecha_hora = NULL
		WHERE tournament_id = $1 AND estado = $2 AND slot_id IS NOT NULL`,
		tournamentID, models.MatchPending)
	if err != nil {
		return 0, fmt.Errorf("failed to clear schedule of tournament %d: %w", tournamentID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return int(n), nil
}

func (r *postgresMatchRepository) DeleteByZone(ctx context.Context, exec SQLExecutor, zoneID int) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx,
		`UPDATE slots SET occupied = FALSE, match_id = NULL WHERE match_id IN (SELECT id FROM matches WHERE zone_id = $1)`,
		zoneID); err != nil {
		return fmt.Errorf("failed to release slots of zone %d: %w", zoneID, err)
	}
	if _, err := executor.ExecContext(ctx, `DELETE FROM matches WHERE zone_id = $1`, zoneID); err != nil {
		return fmt.Errorf("failed to delete matches of zone %d: %w", zoneID, err)
	}
	return nil
}

func (r *postgresMatchRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, stage MatchStage) error {
	where := `tournament_id = $1`
	switch stage {
	case StageZones:
		where += ` AND zone_id IS NOT NULL`
	case StagePlayoffs:
		where += ` AND zone_id IS NULL`
	}
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx,
		`UPDATE slots SET occupied = FALSE, match_id = NULL WHERE match_id IN (SELECT id FROM matches WHERE `+where+`)`,
		tournamentID); err != nil {
		return fmt.Errorf("failed to release slots of tournament %d: %w", tournamentID, err)
	}
	if _, err := executor.ExecContext(ctx, `DELETE FROM matches WHERE `+where, tournamentID); err != nil {
		return fmt.Errorf("failed to delete matches of tournament %d: %w", tournamentID, err)
	}
	return nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := asPQError(err); ok {
		switch pqErr.Code {
		case pqUniqueViolation:
			if pqErr.Constraint == "matches_bracket_position_key" {
				return ErrMatchPositionConflict
			}
		case pqForeignKeyViolation:
			switch pqErr.Constraint {
			case "matches_zone_id_fkey":
				return ErrZoneNotFound
			case "matches_pareja1_id_fkey", "matches_pareja2_id_fkey":
				return ErrPairNotFound
			case "matches_category_id_fkey":
				return ErrCategoryNotFound
			default:
				return ErrTournamentNotFound
			}
		}
	}
	return fmt.Errorf("match query failed: %w", err)
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/padel-tournament/models"
)

var ErrZoneNotFound = errors.New("zone not found")

const releaseZoneSlotsQuery = `
	UPDATE slots SET occupied = FALSE, match_id = NULL
	WHERE match_id IN (SELECT id FROM matches WHERE tournament_id = $1 AND zone_id IS NOT NULL)`

type ZoneRepository interface {
	// Create stores the zone and its ordered members.
	Create(ctx context.Context, exec SQLExecutor, zone *models.Zone) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Zone, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Zone, error)
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresZoneRepository struct {
	db *sql.DB
}

func NewPostgresZoneRepository(db *sql.DB) ZoneRepository {
	return &postgresZoneRepository{db: db}
}

func (r *postgresZoneRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresZoneRepository) Create(ctx context.Context, exec SQLExecutor, z *models.Zone) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO zones (tournament_id, category_id, name)
		VALUES ($1, $2, $3)
		RETURNING id`
	if err := executor.QueryRowContext(ctx, query, z.TournamentID, z.CategoryID, z.Name).Scan(&z.ID); err != nil {
		return fmt.Errorf("failed to create zone %s: %w", z.Name, err)
	}

	for pos, pairID := range z.PairIDs {
		_, err := executor.ExecContext(ctx,
			`INSERT INTO zone_pairs (zone_id, pair_id, position) VALUES ($1, $2, $3)`,
			z.ID, pairID, pos)
		if err != nil {
			if pqErr, ok := asPQError(err); ok && pqErr.Code == pqForeignKeyViolation {
				return ErrPairNotFound
			}
			return fmt.Errorf("failed to add pair %d to zone %d: %w", pairID, z.ID, err)
		}
	}
	return nil
}

func (r *postgresZoneRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Zone, error) {
	executor := r.getExecutor(exec)
	z := &models.Zone{}
	err := executor.QueryRowContext(ctx,
		`SELECT id, tournament_id, category_id, name FROM zones WHERE id = $1`, id,
	).Scan(&z.ID, &z.TournamentID, &z.CategoryID, &z.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrZoneNotFound
		}
		return nil, fmt.Errorf("failed to get zone %d: %w", id, err)
	}

	members, err := r.members(ctx, executor, `WHERE zp.zone_id = $1`, id)
	if err != nil {
		return nil, err
	}
	z.PairIDs = members[id]
	return z, nil
}

func (r *postgresZoneRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Zone, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx, `
		SELECT id, tournament_id, category_id, name
		FROM zones
		WHERE tournament_id = $1
		ORDER BY category_id ASC, id ASC`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list zones of tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	zones := make([]models.Zone, 0)
	for rows.Next() {
		var z models.Zone
		if scanErr := rows.Scan(&z.ID, &z.TournamentID, &z.CategoryID, &z.Name); scanErr != nil {
			return nil, scanErr
		}
		zones = append(zones, z)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	members, err := r.members(ctx, executor, `JOIN zones z ON z.id = zp.zone_id WHERE z.tournament_id = $1`, tournamentID)
	if err != nil {
		return nil, err
	}
	for i := range zones {
		zones[i].PairIDs = members[zones[i].ID]
	}
	return zones, nil
}

func (r *postgresZoneRepository) members(ctx context.Context, executor SQLExecutor, where string, arg int) (map[int][]int, error) {
	rows, err := executor.QueryContext(ctx,
		`SELECT zp.zone_id, zp.pair_id FROM zone_pairs zp `+where+` ORDER BY zp.zone_id, zp.position`, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to load zone members: %w", err)
	}
	defer rows.Close()

	out := make(map[int][]int)
	for rows.Next() {
		var zoneID, pairID int
		if scanErr := rows.Scan(&zoneID, &pairID); scanErr != nil {
			return nil, scanErr
		}
		out[zoneID] = append(out[zoneID], pairID)
	}
	return out, rows.Err()
}

// DeleteByTournament removes the zones together with their matches. The slots
// those matches held are freed first: the cascade only clears slots.match_id.
func (r *postgresZoneRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx, releaseZoneSlotsQuery, tournamentID); err != nil {
		return fmt.Errorf("failed to release slots of tournament %d: %w", tournamentID, err)
	}
	_, err := executor.ExecContext(ctx, `DELETE FROM zones WHERE tournament_id = $1`, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to delete zones of tournament %d: %w", tournamentID, err)
	}
	return nil
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/setpoint-app/setpoint/models"
)

var ErrStatNotFound = errors.New("stat entry not found")

// StatRepository stores the free-form counters attached to a match.
// Upsert keys on (match, player, key) so repeated edits of the same
// counter overwrite rather than accumulate rows.
type StatRepository interface {
	Upsert(ctx context.Context, stat *models.MatchStat) error
	ListByMatch(ctx context.Context, matchID int) ([]*models.MatchStat, error)
	// Delete removes a stat only when it belongs to the given match, so
	// an id from a foreign match reads as not found.
	Delete(ctx context.Context, matchID, id int) error
}

type postgresStatRepository struct {
	db *sql.DB
}

func NewPostgresStatRepository(db *sql.DB) StatRepository {
	return &postgresStatRepository{db: db}
}

func (r *postgresStatRepository) Upsert(ctx context.Context, stat *models.MatchStat) error {
	query := `
		INSERT INTO match_stats (match_id, player_id, key, value, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (match_id, player_id, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
		RETURNING id, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		stat.MatchID,
		stat.PlayerID,
		stat.Key,
		stat.Value,
	).Scan(&stat.ID, &stat.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert stat for match %d: %w", stat.MatchID, err)
	}
	return nil
}

func (r *postgresStatRepository) ListByMatch(ctx context.Context, matchID int) ([]*models.MatchStat, error) {
	query := `
		SELECT id, match_id, player_id, key, value, updated_at
		FROM match_stats
		WHERE match_id = $1
		ORDER BY key ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats for match %d: %w", matchID, err)
	}
	defer rows.Close()

	stats := make([]*models.MatchStat, 0)
	for rows.Next() {
		var stat models.MatchStat
		if scanErr := rows.Scan(
			&stat.ID,
			&stat.MatchID,
			&stat.PlayerID,
			&stat.Key,
			&stat.Value,
			&stat.UpdatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan stat row: %w", scanErr)
		}
		stats = append(stats, &stat)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during stat rows iteration: %w", err)
	}
	return stats, nil
}

func (r *postgresStatRepository) Delete(ctx context.Context, matchID, id int) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM match_stats WHERE id = $1 AND match_id = $2`, id, matchID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrStatNotFound)
}

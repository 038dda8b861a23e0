package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/setpoint-app/setpoint/models"
)

var ErrPlayerNotFound = errors.New("player not found")

// RosterRepository manages the player name list of a team.
type RosterRepository interface {
	AddPlayer(ctx context.Context, player *models.Player) error
	GetPlayerByID(ctx context.Context, id int) (*models.Player, error)
	ListByTeam(ctx context.Context, teamID int) ([]*models.Player, error)
	UpdatePlayer(ctx context.Context, player *models.Player) error
	RemovePlayer(ctx context.Context, id int) error
}

type postgresRosterRepository struct {
	db *sql.DB
}

func NewPostgresRosterRepository(db *sql.DB) RosterRepository {
	return &postgresRosterRepository{db: db}
}

func (r *postgresRosterRepository) AddPlayer(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (team_id, name, jersey_number, position)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		player.TeamID,
		player.Name,
		player.JerseyNumber,
		player.Position,
	).Scan(&player.ID)
	if err != nil {
		return fmt.Errorf("failed to insert player: %w", err)
	}
	return nil
}

func (r *postgresRosterRepository) GetPlayerByID(ctx context.Context, id int) (*models.Player, error) {
	query := `
		SELECT id, team_id, name, jersey_number, position
		FROM players
		WHERE id = $1`

	player := &models.Player{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&player.ID,
		&player.TeamID,
		&player.Name,
		&player.JerseyNumber,
		&player.Position,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player by id %d: %w", id, err)
	}
	return player, nil
}

func (r *postgresRosterRepository) ListByTeam(ctx context.Context, teamID int) ([]*models.Player, error) {
	query := `
		SELECT id, team_id, name, jersey_number, position
		FROM players
		WHERE team_id = $1
		ORDER BY jersey_number NULLS LAST, name ASC`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to query players for team %d: %w", teamID, err)
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		var player models.Player
		if scanErr := rows.Scan(
			&player.ID,
			&player.TeamID,
			&player.Name,
			&player.JerseyNumber,
			&player.Position,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", scanErr)
		}
		players = append(players, &player)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during player rows iteration: %w", err)
	}
	return players, nil
}

func (r *postgresRosterRepository) UpdatePlayer(ctx context.Context, player *models.Player) error {
	query := `UPDATE players SET name = $1, jersey_number = $2, position = $3 WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query,
		player.Name,
		player.JerseyNumber,
		player.Position,
		player.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update player %d: %w", player.ID, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresRosterRepository) RemovePlayer(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/setpoint-app/setpoint/models"
)

var ErrTournamentNotFound = errors.New("tournament not found")

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	ListByOrganization(ctx context.Context, orgID int) ([]*models.Tournament, error)
	Update(ctx context.Context, tournament *models.Tournament) error
	Delete(ctx context.Context, id int) error
	CountByOrganization(ctx context.Context, orgID int) (int, error)

	// AdvanceStatusesByDates moves upcoming tournaments whose start
	// date has passed to active, and active ones past their end date to
	// completed. Returns the number of rows changed.
	AdvanceStatusesByDates(ctx context.Context) (int64, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) Create(ctx context.Context, tournament *models.Tournament) error {
	query := `
		INSERT INTO tournaments (organization_id, name, location, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		tournament.OrganizationID,
		tournament.Name,
		tournament.Location,
		tournament.StartDate,
		tournament.EndDate,
		tournament.Status,
	).Scan(&tournament.ID, &tournament.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert tournament: %w", err)
	}
	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `
		SELECT id, organization_id, name, location, start_date, end_date, status, created_at
		FROM tournaments
		WHERE id = $1`

	tournament := &models.Tournament{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&tournament.ID,
		&tournament.OrganizationID,
		&tournament.Name,
		&tournament.Location,
		&tournament.StartDate,
		&tournament.EndDate,
		&tournament.Status,
		&tournament.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament by id %d: %w", id, err)
	}
	return tournament, nil
}

func (r *postgresTournamentRepository) ListByOrganization(ctx context.Context, orgID int) ([]*models.Tournament, error) {
	query := `
		SELECT id, organization_id, name, location, start_date, end_date, status, created_at
		FROM tournaments
		WHERE organization_id = $1
		ORDER BY start_date DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments for organization %d: %w", orgID, err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := rows.Scan(
			&t.ID,
			&t.OrganizationID,
			&t.Name,
			&t.Location,
			&t.StartDate,
			&t.EndDate,
			&t.Status,
			&t.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", scanErr)
		}
		tournaments = append(tournaments, &t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) Update(ctx context.Context, tournament *models.Tournament) error {
	query := `
		UPDATE tournaments
		SET name = $1, location = $2, start_date = $3, end_date = $4, status = $5
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query,
		tournament.Name,
		tournament.Location,
		tournament.StartDate,
		tournament.EndDate,
		tournament.Status,
		tournament.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update tournament %d: %w", tournament.ID, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) CountByOrganization(ctx context.Context, orgID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tournaments WHERE organization_id = $1`, orgID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tournaments for organization %d: %w", orgID, err)
	}
	return count, nil
}

func (r *postgresTournamentRepository) AdvanceStatusesByDates(ctx context.Context) (int64, error) {
	query := `
		UPDATE tournaments
		SET status = CASE
			WHEN status = 'upcoming' AND start_date <= NOW() AND end_date > NOW() THEN 'active'
			WHEN status IN ('upcoming', 'active') AND end_date <= NOW() THEN 'completed'
			ELSE status
		END
		WHERE (status = 'upcoming' AND start_date <= NOW())
		   OR (status = 'active' AND end_date <= NOW())`

	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to advance tournament statuses: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return affected, nil
}

package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/setpoint-app/setpoint/models"
)

var (
	ErrMatchNotFound    = errors.New("match not found")
	ErrMatchTeamInvalid = errors.New("match team conflict or invalid")
)

type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	// Mutate runs fn against the match row under a row lock and, if fn
	// succeeds, persists status, score and point history in the same
	// transaction. Concurrent mutations of one match serialize on the
	// lock; a failing fn leaves the row untouched.
	Mutate(ctx context.Context, id int, fn func(match *models.Match) error) (*models.Match, error)
	ListByOrganization(ctx context.Context, orgID int, status *models.MatchStatus) ([]*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error)
	UpdateDetails(ctx context.Context, match *models.Match) error
	Delete(ctx context.Context, id int) error
	CountByOrganizationAndStatus(ctx context.Context, orgID int, status models.MatchStatus) (int, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, organization_id, tournament_id, name, home_team_id, away_team_id,
	status, scoring_format, score, point_history, created_at`

func (r *postgresMatchRepository) Create(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO matches
			(organization_id, tournament_id, name, home_team_id, away_team_id, status, scoring_format)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		match.OrganizationID,
		match.TournamentID,
		match.Name,
		match.HomeTeamID,
		match.AwayTeamID,
		match.Status,
		match.ScoringFormat,
	).Scan(&match.ID, &match.CreatedAt)

	return handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	return scanMatchRow(r.db.QueryRowContext(ctx, query, id), id)
}

func (r *postgresMatchRepository) Mutate(ctx context.Context, id int, fn func(match *models.Match) error) (*models.Match, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	var txErr error
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				txErr = fmt.Errorf("%w (rollback also failed: %v)", txErr, rbErr)
			}
		}
	}()

	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1 FOR UPDATE`
	match, err := scanMatchRow(tx.QueryRowContext(ctx, query, id), id)
	if err != nil {
		txErr = err
		return nil, txErr
	}

	if err := fn(match); err != nil {
		txErr = err
		return nil, txErr
	}

	if err := r.updateScoreState(ctx, tx, match.ID, match.Status, match.Score, match.PointHistory); err != nil {
		txErr = err
		return nil, txErr
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit match %d mutation: %w", id, err)
	}
	return match, nil
}

func scanMatchRow(row *sql.Row, id int) (*models.Match, error) {
	match := &models.Match{}
	var scoreRaw, historyRaw []byte

	err := row.Scan(
		&match.ID,
		&match.OrganizationID,
		&match.TournamentID,
		&match.Name,
		&match.HomeTeamID,
		&match.AwayTeamID,
		&match.Status,
		&match.ScoringFormat,
		&scoreRaw,
		&historyRaw,
		&match.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	if err := unmarshalMatchState(match, scoreRaw, historyRaw); err != nil {
		return nil, err
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByOrganization(ctx context.Context, orgID int, status *models.MatchStatus) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE organization_id = $1`)

	args := []interface{}{orgID}
	if status != nil {
		queryBuilder.WriteString(" AND status = $" + strconv.Itoa(len(args)+1))
		args = append(args, *status)
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC, id DESC")

	return r.queryMatches(ctx, queryBuilder.String(), args...)
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1 ORDER BY created_at ASC, id ASC`
	return r.queryMatches(ctx, query, tournamentID)
}

func (r *postgresMatchRepository) queryMatches(ctx context.Context, query string, args ...interface{}) ([]*models.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match := &models.Match{}
		var scoreRaw, historyRaw []byte
		if scanErr := rows.Scan(
			&match.ID,
			&match.OrganizationID,
			&match.TournamentID,
			&match.Name,
			&match.HomeTeamID,
			&match.AwayTeamID,
			&match.Status,
			&match.ScoringFormat,
			&scoreRaw,
			&historyRaw,
			&match.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		if err := unmarshalMatchState(match, scoreRaw, historyRaw); err != nil {
			return nil, err
		}
		matches = append(matches, match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) UpdateDetails(ctx context.Context, match *models.Match) error {
	query := `
		UPDATE matches
		SET name = $1, tournament_id = $2, home_team_id = $3, away_team_id = $4, scoring_format = $5
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query,
		match.Name,
		match.TournamentID,
		match.HomeTeamID,
		match.AwayTeamID,
		match.ScoringFormat,
		match.ID,
	)
	if err != nil {
		return handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) updateScoreState(ctx context.Context, exec SQLExecutor, id int, status models.MatchStatus, score *models.Score, history []models.PointEvent) error {
	scoreRaw, historyRaw, err := marshalMatchState(score, history)
	if err != nil {
		return err
	}

	query := `UPDATE matches SET status = $1, score = $2, point_history = $3 WHERE id = $4`
	result, err := exec.ExecContext(ctx, query, status, scoreRaw, historyRaw, id)
	if err != nil {
		return fmt.Errorf("failed to update score state for match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) CountByOrganizationAndStatus(ctx context.Context, orgID int, status models.MatchStatus) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM matches WHERE organization_id = $1 AND status = $2`, orgID, status,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count matches for organization %d: %w", orgID, err)
	}
	return count, nil
}

func marshalMatchState(score *models.Score, history []models.PointEvent) ([]byte, []byte, error) {
	var scoreRaw []byte
	if score != nil {
		var err error
		scoreRaw, err = json.Marshal(score)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal score: %w", err)
		}
	}
	if history == nil {
		history = []models.PointEvent{}
	}
	historyRaw, err := json.Marshal(history)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal point history: %w", err)
	}
	return scoreRaw, historyRaw, nil
}

func unmarshalMatchState(match *models.Match, scoreRaw, historyRaw []byte) error {
	if len(scoreRaw) > 0 {
		match.Score = &models.Score{}
		if err := json.Unmarshal(scoreRaw, match.Score); err != nil {
			return fmt.Errorf("failed to unmarshal score for match %d: %w", match.ID, err)
		}
	}
	if len(historyRaw) > 0 {
		if err := json.Unmarshal(historyRaw, &match.PointHistory); err != nil {
			return fmt.Errorf("failed to unmarshal point history for match %d: %w", match.ID, err)
		}
	}
	return nil
}

func handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "matches_home_team_id_fkey", "matches_away_team_id_fkey":
			return ErrMatchTeamInvalid
		case "matches_tournament_id_fkey":
			return ErrTournamentNotFound
		case "matches_organization_id_fkey":
			return ErrOrganizationNotFound
		}
	}
	return err
}

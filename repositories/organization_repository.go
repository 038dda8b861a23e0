package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/setpoint-app/setpoint/models"
)

var (
	ErrOrganizationNotFound     = errors.New("organization not found")
	ErrOrganizationSlugConflict = errors.New("organization slug is already in use")
	ErrMembershipNotFound       = errors.New("membership not found")
	ErrMembershipConflict       = errors.New("user is already a member of this organization")
)

type OrganizationRepository interface {
	Create(ctx context.Context, exec SQLExecutor, org *models.Organization) error
	GetByID(ctx context.Context, id int) (*models.Organization, error)
	Update(ctx context.Context, org *models.Organization) error
	UpdateLogoKey(ctx context.Context, id int, logoKey *string) error
	ListByUser(ctx context.Context, userID int) ([]*models.Organization, error)

	AddMember(ctx context.Context, exec SQLExecutor, member *models.Membership) error
	GetMemberRole(ctx context.Context, orgID, userID int) (models.OrgRole, error)
	ListMembers(ctx context.Context, orgID int) ([]*models.Membership, error)
	UpdateMemberRole(ctx context.Context, orgID, userID int, role models.OrgRole) error
	RemoveMember(ctx context.Context, orgID, userID int) error
	CountMembers(ctx context.Context, orgID int) (int, error)
}

type postgresOrganizationRepository struct {
	db *sql.DB
}

func NewPostgresOrganizationRepository(db *sql.DB) OrganizationRepository {
	return &postgresOrganizationRepository{db: db}
}

func (r *postgresOrganizationRepository) Create(ctx context.Context, exec SQLExecutor, org *models.Organization) error {
	query := `
		INSERT INTO organizations (name, slug)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query, org.Name, org.Slug).Scan(&org.ID, &org.CreatedAt)
	return handleOrganizationError(err)
}

func (r *postgresOrganizationRepository) GetByID(ctx context.Context, id int) (*models.Organization, error) {
	query := `
		SELECT id, name, slug, logo_key, created_at
		FROM organizations
		WHERE id = $1`

	org := &models.Organization{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&org.ID,
		&org.Name,
		&org.Slug,
		&org.LogoKey,
		&org.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to scan organization %d: %w", id, err)
	}
	return org, nil
}

func (r *postgresOrganizationRepository) Update(ctx context.Context, org *models.Organization) error {
	query := `UPDATE organizations SET name = $1, slug = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, org.Name, org.Slug, org.ID)
	if err != nil {
		return handleOrganizationError(err)
	}
	return checkAffectedRows(result, ErrOrganizationNotFound)
}

func (r *postgresOrganizationRepository) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE organizations SET logo_key = $1 WHERE id = $2`, logoKey, id)
	if err != nil {
		return fmt.Errorf("failed to update organization logo key: %w", err)
	}
	return checkAffectedRows(result, ErrOrganizationNotFound)
}

func (r *postgresOrganizationRepository) ListByUser(ctx context.Context, userID int) ([]*models.Organization, error) {
	query := `
		SELECT o.id, o.name, o.slug, o.logo_key, o.created_at
		FROM organizations o
		JOIN organization_members m ON m.organization_id = o.id
		WHERE m.user_id = $1
		ORDER BY o.name ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query organizations for user %d: %w", userID, err)
	}
	defer rows.Close()

	orgs := make([]*models.Organization, 0)
	for rows.Next() {
		var org models.Organization
		if scanErr := rows.Scan(&org.ID, &org.Name, &org.Slug, &org.LogoKey, &org.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan organization row: %w", scanErr)
		}
		orgs = append(orgs, &org)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during organization rows iteration: %w", err)
	}
	return orgs, nil
}

func (r *postgresOrganizationRepository) AddMember(ctx context.Context, exec SQLExecutor, member *models.Membership) error {
	query := `
		INSERT INTO organization_members (organization_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	err := exec.QueryRowContext(ctx, query,
		member.OrganizationID,
		member.UserID,
		member.Role,
	).Scan(&member.CreatedAt)

	return handleOrganizationError(err)
}

func (r *postgresOrganizationRepository) GetMemberRole(ctx context.Context, orgID, userID int) (models.OrgRole, error) {
	query := `SELECT role FROM organization_members WHERE organization_id = $1 AND user_id = $2`

	var role models.OrgRole
	err := r.db.QueryRowContext(ctx, query, orgID, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrMembershipNotFound
		}
		return "", fmt.Errorf("failed to scan member role: %w", err)
	}
	return role, nil
}

func (r *postgresOrganizationRepository) ListMembers(ctx context.Context, orgID int) ([]*models.Membership, error) {
	query := `
		SELECT m.organization_id, m.user_id, m.role, m.created_at,
		       u.id, u.first_name, u.last_name, u.nickname, u.email, u.logo_key, u.created_at
		FROM organization_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.organization_id = $1
		ORDER BY m.created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to query members for organization %d: %w", orgID, err)
	}
	defer rows.Close()

	members := make([]*models.Membership, 0)
	for rows.Next() {
		var m models.Membership
		var u models.User
		if scanErr := rows.Scan(
			&m.OrganizationID,
			&m.UserID,
			&m.Role,
			&m.CreatedAt,
			&u.ID,
			&u.FirstName,
			&u.LastName,
			&u.Nickname,
			&u.Email,
			&u.LogoKey,
			&u.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan membership row: %w", scanErr)
		}
		m.User = &u
		members = append(members, &m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during membership rows iteration: %w", err)
	}
	return members, nil
}

func (r *postgresOrganizationRepository) UpdateMemberRole(ctx context.Context, orgID, userID int, role models.OrgRole) error {
	query := `UPDATE organization_members SET role = $1 WHERE organization_id = $2 AND user_id = $3`

	result, err := r.db.ExecContext(ctx, query, role, orgID, userID)
	if err != nil {
		return fmt.Errorf("failed to update member role: %w", err)
	}
	return checkAffectedRows(result, ErrMembershipNotFound)
}

func (r *postgresOrganizationRepository) RemoveMember(ctx context.Context, orgID, userID int) error {
	query := `DELETE FROM organization_members WHERE organization_id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, orgID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return checkAffectedRows(result, ErrMembershipNotFound)
}

func (r *postgresOrganizationRepository) CountMembers(ctx context.Context, orgID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM organization_members WHERE organization_id = $1`, orgID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count members for organization %d: %w", orgID, err)
	}
	return count, nil
}

func handleOrganizationError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "organizations_slug_key":
			return ErrOrganizationSlugConflict
		case "organization_members_pkey":
			return ErrMembershipConflict
		case "organization_members_user_id_fkey":
			return ErrUserNotFound
		case "organization_members_organization_id_fkey":
			return ErrOrganizationNotFound
		}
	}
	return err
}

package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/setpoint-app/setpoint/models"
	"github.com/setpoint-app/setpoint/repositories"
	"github.com/setpoint-app/setpoint/storage"
)

type OrganizationService interface {
	Create(ctx context.Context, creatorID int, input CreateOrganizationInput) (*models.Organization, error)
	GetByID(ctx context.Context, orgID, userID int) (*models.Organization, error)
	ListForUser(ctx context.Context, userID int) ([]*models.Organization, error)
	Update(ctx context.Context, orgID, userID int, input UpdateOrganizationInput) (*models.Organization, error)
	UploadLogo(ctx context.Context, orgID, userID int, contentType string, reader io.Reader) (*models.Organization, error)

	ListMembers(ctx context.Context, orgID, userID int) ([]*models.Membership, error)
	UpdateMemberRole(ctx context.Context, orgID, userID, memberID int, role models.OrgRole) error
	RemoveMember(ctx context.Context, orgID, userID, memberID int) error
}

type CreateOrganizationInput struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type UpdateOrganizationInput struct {
	Name *string `json:"name"`
	Slug *string `json:"slug"`
}

type organizationService struct {
	db       *sql.DB
	orgRepo  repositories.OrganizationRepository
	uploader storage.FileUploader
}

func NewOrganizationService(db *sql.DB, orgRepo repositories.OrganizationRepository, uploader storage.FileUploader) OrganizationService {
	return &organizationService{db: db, orgRepo: orgRepo, uploader: uploader}
}

// Create регистрирует организацию и делает создателя её владельцем в
// одной транзакции.
func (s *organizationService) Create(ctx context.Context, creatorID int, input CreateOrganizationInput) (*models.Organization, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrOrganizationNameRequired
	}
	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = slugify(name)
	}

	org := &models.Organization{Name: name, Slug: slug}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	var txErr error
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			_ = tx.Rollback()
		}
	}()

	if txErr = s.orgRepo.Create(ctx, tx, org); txErr != nil {
		return nil, txErr
	}
	member := &models.Membership{
		OrganizationID: org.ID,
		UserID:         creatorID,
		Role:           models.RoleOwner,
	}
	if txErr = s.orgRepo.AddMember(ctx, tx, member); txErr != nil {
		return nil, txErr
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit organization creation: %w", err)
	}
	return org, nil
}

func (s *organizationService) GetByID(ctx context.Context, orgID, userID int) (*models.Organization, error) {
	if err := requireOrgRole(ctx, s.orgRepo, orgID, userID,
		models.RoleOwner, models.RoleAdmin, models.RoleScorer, models.RoleViewer); err != nil {
		return nil, err
	}
	org, err := s.orgRepo.GetByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, repositories.ErrOrganizationNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	populateOrganizationLogoURL(org, s.uploader)
	return org, nil
}

func (s *organizationService) ListForUser(ctx context.Context, userID int) ([]*models.Organization, error) {
	orgs, err := s.orgRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, org := range orgs {
		populateOrganizationLogoURL(org, s.uploader)
	}
	return orgs, nil
}

func (s *organizationService) Update(ctx context.Context, orgID, userID int, input UpdateOrganizationInput) (*models.Organization, error) {
	if err := requireOrgRole(ctx, s.orgRepo, orgID, userID, models.RoleOwner, models.RoleAdmin); err != nil {
		return nil, err
	}
	org, err := s.orgRepo.GetByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, repositories.ErrOrganizationNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrOrganizationNameRequired
		}
		org.Name = name
	}
	if input.Slug != nil {
		org.Slug = slugify(*input.Slug)
	}

	if err := s.orgRepo.Update(ctx, org); err != nil {
		return nil, err
	}
	populateOrganizationLogoURL(org, s.uploader)
	return org, nil
}

func (s *organizationService) UploadLogo(ctx context.Context, orgID, userID int, contentType string, reader io.Reader) (*models.Organization, error) {
	if err := requireOrgRole(ctx, s.orgRepo, orgID, userID, models.RoleOwner, models.RoleAdmin); err != nil {
		return nil, err
	}
	org, err := s.orgRepo.GetByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, repositories.ErrOrganizationNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	ext, err := storage.ExtensionForContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	key := fmt.Sprintf("organizations/%d/logo-%s%s", orgID, uuid.NewString(), ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, reader); err != nil {
		return nil, fmt.Errorf("failed to upload organization logo: %w", err)
	}

	oldKey := org.LogoKey
	if err := s.orgRepo.UpdateLogoKey(ctx, orgID, &key); err != nil {
		return nil, err
	}
	if oldKey != nil && *oldKey != "" {
		_ = s.uploader.Delete(ctx, *oldKey)
	}

	org.LogoKey = &key
	populateOrganizationLogoURL(org, s.uploader)
	return org, nil
}

func (s *organizationService) ListMembers(ctx context.Context, orgID, userID int) ([]*models.Membership, error) {
	if err := requireOrgRole(ctx, s.orgRepo, orgID, userID,
		models.RoleOwner, models.RoleAdmin, models.RoleScorer, models.RoleViewer); err != nil {
		return nil, err
	}
	members, err := s.orgRepo.ListMembers(ctx, orgID)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if m.User != nil {
			m.User.PasswordHash = ""
			populateUserLogoURL(m.User, s.uploader)
		}
	}
	return members, nil
}

func (s *organizationService) UpdateMemberRole(ctx context.Context, orgID, userID, memberID int, role models.OrgRole) error {
	if err := requireOrgRole(ctx, s.orgRepo, orgID, userID, models.RoleOwner, models.RoleAdmin); err != nil {
		return err
	}
	if !role.Valid() || role == models.RoleOwner {
		return ErrInvalidRole
	}

	current, err := s.orgRepo.GetMemberRole(ctx, orgID, memberID)
	if err != nil {
		if errors.Is(err, repositories.ErrMembershipNotFound) {
			return ErrNotFound
		}
		return err
	}
	if current == models.RoleOwner {
		return ErrOwnerRoleImmutable
	}
	return s.orgRepo.UpdateMemberRole(ctx, orgID, memberID, role)
}

func (s *organizationService) RemoveMember(ctx context.Context, orgID, userID, memberID int) error {
	// Участник может сам выйти из организации, иначе нужна роль
	// владельца или админа.
	if userID != memberID {
		if err := requireOrgRole(ctx, s.orgRepo, orgID, userID, models.RoleOwner, models.RoleAdmin); err != nil {
			return err
		}
	}

	role, err := s.orgRepo.GetMemberRole(ctx, orgID, memberID)
	if err != nil {
		if errors.Is(err, repositories.ErrMembershipNotFound) {
			return ErrNotFound
		}
		return err
	}
	if role == models.RoleOwner {
		return ErrOwnerCannotBeRemoved
	}
	return s.orgRepo.RemoveMember(ctx, orgID, memberID)
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastDash := true
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

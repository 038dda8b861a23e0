package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/setpoint-app/setpoint/models"
	"github.com/setpoint-app/setpoint/repositories"
)

const inviteTTL = 7 * 24 * time.Hour

type InviteService interface {
	CreateInvite(ctx context.Context, orgID, userID int, role models.OrgRole) (*models.Invite, error)
	AcceptInvite(ctx context.Context, token string, userID int) (*models.Membership, error)
	PurgeExpired(ctx context.Context) (int64, error)
}

type inviteService struct {
	db         *sql.DB
	inviteRepo repositories.InviteRepository
	orgRepo    repositories.OrganizationRepository
}

func NewInviteService(db *sql.DB, inviteRepo repositories.InviteRepository, orgRepo repositories.OrganizationRepository) InviteService {
	return &inviteService{db: db, inviteRepo: inviteRepo, orgRepo: orgRepo}
}

func (s *inviteService) CreateInvite(ctx context.Context, orgID, userID int, role models.OrgRole) (*models.Invite, error) {
	if err := requireOrgRole(ctx, s.orgRepo, orgID, userID, models.RoleOwner, models.RoleAdmin); err != nil {
		return nil, err
	}
	if !role.Valid() || role == models.RoleOwner {
		return nil, ErrInvalidRole
	}

	invite := &models.Invite{
		OrganizationID: orgID,
		Token:          uuid.NewString(),
		Role:           role,
		ExpiresAt:      time.Now().Add(inviteTTL),
	}
	if err := s.inviteRepo.Create(ctx, invite); err != nil {
		return nil, err
	}
	return invite, nil
}

// AcceptInvite помечает приглашение использованным и добавляет
// пользователя в организацию в одной транзакции.
func (s *inviteService) AcceptInvite(ctx context.Context, token string, userID int) (*models.Membership, error) {
	invite, err := s.inviteRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrInviteNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if invite.AcceptedAt != nil {
		return nil, ErrInviteAlreadyAccepted
	}
	if time.Now().After(invite.ExpiresAt) {
		return nil, ErrInviteExpired
	}

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

	if txErr = s.inviteRepo.MarkAccepted(ctx, tx, invite.ID, time.Now()); txErr != nil {
		return nil, txErr
	}
	member := &models.Membership{
		OrganizationID: invite.OrganizationID,
		UserID:         userID,
		Role:           invite.Role,
	}
	if txErr = s.orgRepo.AddMember(ctx, tx, member); txErr != nil {
		return nil, txErr
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit invite acceptance: %w", err)
	}
	return member, nil
}

func (s *inviteService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.inviteRepo.DeleteExpired(ctx)
}

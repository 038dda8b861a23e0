package services

import (
	"context"
	"errors"
	"strings"

	"github.com/setpoint-app/setpoint/models"
	"github.com/setpoint-app/setpoint/repositories"
)

// StatService ведёт произвольные счётчики, привязанные к матчу. Они
// редактируются независимо от живого счёта и не влияют на него.
type StatService interface {
	PutStat(ctx context.Context, matchID, userID int, input StatInput) (*models.MatchStat, error)
	ListStats(ctx context.Context, matchID, userID int) ([]*models.MatchStat, error)
	DeleteStat(ctx context.Context, matchID, statID, userID int) error
}

type StatInput struct {
	PlayerID *int   `json:"player_id"`
	Key      string `json:"key"`
	Value    int    `json:"value"`
}

type statService struct {
	statRepo  repositories.StatRepository
	matchRepo repositories.MatchRepository
	orgRepo   repositories.OrganizationRepository
}

func NewStatService(
	statRepo repositories.StatRepository,
	matchRepo repositories.MatchRepository,
	orgRepo repositories.OrganizationRepository,
) StatService {
	return &statService{statRepo: statRepo, matchRepo: matchRepo, orgRepo: orgRepo}
}

func (s *statService) PutStat(ctx context.Context, matchID, userID int, input StatInput) (*models.MatchStat, error) {
	if err := s.authorize(ctx, matchID, userID, scorekeeperRoles); err != nil {
		return nil, err
	}
	key := strings.TrimSpace(input.Key)
	if key == "" {
		return nil, ErrStatKeyRequired
	}

	stat := &models.MatchStat{
		MatchID:  matchID,
		PlayerID: input.PlayerID,
		Key:      key,
		Value:    input.Value,
	}
	if err := s.statRepo.Upsert(ctx, stat); err != nil {
		return nil, err
	}
	return stat, nil
}

func (s *statService) ListStats(ctx context.Context, matchID, userID int) ([]*models.MatchStat, error) {
	if err := s.authorize(ctx, matchID, userID, allMemberRoles); err != nil {
		return nil, err
	}
	return s.statRepo.ListByMatch(ctx, matchID)
}

func (s *statService) DeleteStat(ctx context.Context, matchID, statID, userID int) error {
	if err := s.authorize(ctx, matchID, userID, scorekeeperRoles); err != nil {
		return err
	}
	// Удаление ограничено матчем из URL: чужой statID в рамках другого
	// матча выглядит как несуществующий.
	if err := s.statRepo.Delete(ctx, matchID, statID); err != nil {
		if errors.Is(err, repositories.ErrStatNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *statService) authorize(ctx context.Context, matchID, userID int, roles []models.OrgRole) error {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrNotFound
		}
		return err
	}
	return requireOrgRole(ctx, s.orgRepo, match.OrganizationID, userID, roles...)
}

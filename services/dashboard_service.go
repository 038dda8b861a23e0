package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/setpoint-app/setpoint/models"
	"github.com/setpoint-app/setpoint/repositories"
)

type DashboardService interface {
	GetCounts(ctx context.Context, orgID, userID int) (*models.DashboardCounts, error)
}

type dashboardService struct {
	orgRepo        repositories.OrganizationRepository
	teamRepo       repositories.TeamRepository
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
}

func NewDashboardService(
	orgRepo repositories.OrganizationRepository,
	teamRepo repositories.TeamRepository,
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
) DashboardService {
	return &dashboardService{
		orgRepo:        orgRepo,
		teamRepo:       teamRepo,
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
	}
}

// GetCounts собирает агрегаты панели организации параллельно, счётчики
// независимы друг от друга.
func (s *dashboardService) GetCounts(ctx context.Context, orgID, userID int) (*models.DashboardCounts, error) {
	if err := requireOrgRole(ctx, s.orgRepo, orgID, userID, allMemberRoles...); err != nil {
		return nil, err
	}

	counts := &models.DashboardCounts{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.orgRepo.CountMembers(gctx, orgID)
		counts.Members = n
		return err
	})
	g.Go(func() error {
		n, err := s.teamRepo.CountByOrganization(gctx, orgID)
		counts.Teams = n
		return err
	})
	g.Go(func() error {
		n, err := s.tournamentRepo.CountByOrganization(gctx, orgID)
		counts.Tournaments = n
		return err
	})
	g.Go(func() error {
		n, err := s.matchRepo.CountByOrganizationAndStatus(gctx, orgID, models.MatchStatusScheduled)
		counts.MatchesScheduled = n
		return err
	})
	g.Go(func() error {
		n, err := s.matchRepo.CountByOrganizationAndStatus(gctx, orgID, models.MatchStatusInProgress)
		counts.MatchesInProgress = n
		return err
	})
	g.Go(func() error {
		n, err := s.matchRepo.CountByOrganizationAndStatus(gctx, orgID, models.MatchStatusCompleted)
		counts.MatchesCompleted = n
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return counts, nil
}

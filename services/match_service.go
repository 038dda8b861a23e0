package services

import (
	"context"
	"errors"
	"strings"

	"github.com/setpoint-app/setpoint/models"
	"github.com/setpoint-app/setpoint/repositories"
	"github.com/setpoint-app/setpoint/scoring"
)

// MatchService покрывает CRUD матчей. Сам счёт ведёт ScoringService.
type MatchService interface {
	Create(ctx context.Context, orgID, userID int, input MatchInput) (*models.Match, error)
	GetByID(ctx context.Context, matchID, userID int) (*models.Match, error)
	ListByOrganization(ctx context.Context, orgID, userID int, status *models.MatchStatus) ([]*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID, userID int) ([]*models.Match, error)
	Update(ctx context.Context, matchID, userID int, input MatchInput) (*models.Match, error)
	Delete(ctx context.Context, matchID, userID int) error
}

type MatchInput struct {
	Name          string                `json:"name"`
	TournamentID  *int                  `json:"tournament_id"`
	HomeTeamID    int                   `json:"home_team_id"`
	AwayTeamID    int                   `json:"away_team_id"`
	ScoringFormat *models.ScoringFormat `json:"scoring_format"`
}

type matchService struct {
	matchRepo repositories.MatchRepository
	teamRepo  repositories.TeamRepository
	orgRepo   repositories.OrganizationRepository
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	teamRepo repositories.TeamRepository,
	orgRepo repositories.OrganizationRepository,
) MatchService {
	return &matchService{matchRepo: matchRepo, teamRepo: teamRepo, orgRepo: orgRepo}
}

func (s *matchService) Create(ctx context.Context, orgID, userID int, input MatchInput) (*models.Match, error) {
	if err := requireOrgRole(ctx, s.orgRepo, orgID, userID, models.RoleOwner, models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := s.validateInput(ctx, orgID, input); err != nil {
		return nil, err
	}

	match := &models.Match{
		OrganizationID: orgID,
		TournamentID:   input.TournamentID,
		Name:           strings.TrimSpace(input.Name),
		HomeTeamID:     input.HomeTeamID,
		AwayTeamID:     input.AwayTeamID,
		Status:         models.MatchStatusScheduled,
		ScoringFormat:  input.ScoringFormat,
	}
	if err := s.matchRepo.Create(ctx, match); err != nil {
		return nil, err
	}
	return match, nil
}

func (s *matchService) GetByID(ctx context.Context, matchID, userID int) (*models.Match, error) {
	match, err := s.loadWithRole(ctx, matchID, userID, allMemberRoles)
	if err != nil {
		return nil, err
	}
	s.attachTeams(ctx, match)
	return match, nil
}

func (s *matchService) ListByOrganization(ctx context.Context, orgID, userID int, status *models.MatchStatus) ([]*models.Match, error) {
	if err := requireOrgRole(ctx, s.orgRepo, orgID, userID, allMemberRoles...); err != nil {
		return nil, err
	}
	return s.matchRepo.ListByOrganization(ctx, orgID, status)
}

func (s *matchService) ListByTournament(ctx context.Context, tournamentID, userID int) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if len(matches) > 0 {
		if err := requireOrgRole(ctx, s.orgRepo, matches[0].OrganizationID, userID, allMemberRoles...); err != nil {
			return nil, err
		}
	}
	return matches, nil
}

func (s *matchService) Update(ctx context.Context, matchID, userID int, input MatchInput) (*models.Match, error) {
	match, err := s.loadWithRole(ctx, matchID, userID,
		[]models.OrgRole{models.RoleOwner, models.RoleAdmin})
	if err != nil {
		return nil, err
	}
	// Детали матча можно менять только до старта, после этого счёт и
	// формат зафиксированы.
	if match.Status != models.MatchStatusScheduled {
		return nil, ErrMatchNotScheduled
	}
	if err := s.validateInput(ctx, match.OrganizationID, input); err != nil {
		return nil, err
	}

	match.Name = strings.TrimSpace(input.Name)
	match.TournamentID = input.TournamentID
	match.HomeTeamID = input.HomeTeamID
	match.AwayTeamID = input.AwayTeamID
	match.ScoringFormat = input.ScoringFormat

	if err := s.matchRepo.UpdateDetails(ctx, match); err != nil {
		return nil, err
	}
	return match, nil
}

func (s *matchService) Delete(ctx context.Context, matchID, userID int) error {
	match, err := s.loadWithRole(ctx, matchID, userID,
		[]models.OrgRole{models.RoleOwner, models.RoleAdmin})
	if err != nil {
		return err
	}
	if match.Status != models.MatchStatusScheduled {
		return ErrMatchNotScheduled
	}
	return s.matchRepo.Delete(ctx, matchID)
}

func (s *matchService) validateInput(ctx context.Context, orgID int, input MatchInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return ErrMatchNameRequired
	}
	if input.HomeTeamID == input.AwayTeamID {
		return ErrMatchSameTeam
	}
	if input.ScoringFormat != nil {
		if _, err := scoring.RulesFor(*input.ScoringFormat); err != nil {
			return err
		}
	}
	for _, teamID := range []int{input.HomeTeamID, input.AwayTeamID} {
		team, err := s.teamRepo.GetByID(ctx, teamID)
		if err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return ErrNotFound
			}
			return err
		}
		if team.OrganizationID != orgID {
			return ErrForbiddenOperation
		}
	}
	return nil
}

func (s *matchService) loadWithRole(ctx context.Context, matchID, userID int, roles []models.OrgRole) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := requireOrgRole(ctx, s.orgRepo, match.OrganizationID, userID, roles...); err != nil {
		return nil, err
	}
	return match, nil
}

func (s *matchService) attachTeams(ctx context.Context, match *models.Match) {
	if home, err := s.teamRepo.GetByID(ctx, match.HomeTeamID); err == nil {
		match.HomeTeam = home
	}
	if away, err := s.teamRepo.GetByID(ctx, match.AwayTeamID); err == nil {
		match.AwayTeam = away
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/setpoint-app/setpoint/models"
	"github.com/setpoint-app/setpoint/repositories"
	"github.com/setpoint-app/setpoint/storage"
)

// TeamService управляет командами и их составами внутри организации.
type TeamService interface {
	CreateTeam(ctx context.Context, orgID, userID int, name string) (*models.Team, error)
	GetTeam(ctx context.Context, teamID, userID int) (*models.Team, error)
	ListTeams(ctx context.Context, orgID, userID int) ([]*models.Team, error)
	UpdateTeam(ctx context.Context, teamID, userID int, name string) (*models.Team, error)
	DeleteTeam(ctx context.Context, teamID, userID int) error
	UploadTeamLogo(ctx context.Context, teamID, userID int, contentType string, reader io.Reader) (*models.Team, error)

	AddPlayer(ctx context.Context, teamID, userID int, input PlayerInput) (*models.Player, error)
	UpdatePlayer(ctx context.Context, playerID, userID int, input PlayerInput) (*models.Player, error)
	RemovePlayer(ctx context.Context, playerID, userID int) error
}

type PlayerInput struct {
	Name         string  `json:"name"`
	JerseyNumber *int    `json:"jersey_number"`
	Position     *string `json:"position"`
}

var rosterEditorRoles = []models.OrgRole{models.RoleOwner, models.RoleAdmin}

var allMemberRoles = []models.OrgRole{
	models.RoleOwner, models.RoleAdmin, models.RoleScorer, models.RoleViewer,
}

type teamService struct {
	teamRepo   repositories.TeamRepository
	rosterRepo repositories.RosterRepository
	orgRepo    repositories.OrganizationRepository
	uploader   storage.FileUploader
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	rosterRepo repositories.RosterRepository,
	orgRepo repositories.OrganizationRepository,
	uploader storage.FileUploader,
) TeamService {
	return &teamService{
		teamRepo:   teamRepo,
		rosterRepo: rosterRepo,
		orgRepo:    orgRepo,
		uploader:   uploader,
	}
}

func (s *teamService) CreateTeam(ctx context.Context, orgID, userID int, name string) (*models.Team, error) {
	if err := requireOrgRole(ctx, s.orgRepo, orgID, userID, rosterEditorRoles...); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}

	team := &models.Team{OrganizationID: orgID, Name: name}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

func (s *teamService) GetTeam(ctx context.Context, teamID, userID int) (*models.Team, error) {
	team, err := s.loadTeamWithRole(ctx, teamID, userID, allMemberRoles)
	if err != nil {
		return nil, err
	}

	players, err := s.rosterRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	team.Players = make([]models.Player, 0, len(players))
	for _, p := range players {
		team.Players = append(team.Players, *p)
	}
	populateTeamLogoURL(team, s.uploader)
	return team, nil
}

func (s *teamService) ListTeams(ctx context.Context, orgID, userID int) ([]*models.Team, error) {
	if err := requireOrgRole(ctx, s.orgRepo, orgID, userID, allMemberRoles...); err != nil {
		return nil, err
	}
	teams, err := s.teamRepo.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	for _, team := range teams {
		populateTeamLogoURL(team, s.uploader)
	}
	return teams, nil
}

func (s *teamService) UpdateTeam(ctx context.Context, teamID, userID int, name string) (*models.Team, error) {
	team, err := s.loadTeamWithRole(ctx, teamID, userID, rosterEditorRoles)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}

	team.Name = name
	if err := s.teamRepo.Update(ctx, team); err != nil {
		return nil, err
	}
	populateTeamLogoURL(team, s.uploader)
	return team, nil
}

func (s *teamService) DeleteTeam(ctx context.Context, teamID, userID int) error {
	team, err := s.loadTeamWithRole(ctx, teamID, userID, rosterEditorRoles)
	if err != nil {
		return err
	}
	if err := s.teamRepo.Delete(ctx, team.ID); err != nil {
		return err
	}
	if team.LogoKey != nil && *team.LogoKey != "" {
		_ = s.uploader.Delete(ctx, *team.LogoKey)
	}
	return nil
}

func (s *teamService) UploadTeamLogo(ctx context.Context, teamID, userID int, contentType string, reader io.Reader) (*models.Team, error) {
	team, err := s.loadTeamWithRole(ctx, teamID, userID, rosterEditorRoles)
	if err != nil {
		return nil, err
	}

	ext, err := storage.ExtensionForContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	key := fmt.Sprintf("teams/%d/logo-%s%s", teamID, uuid.NewString(), ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, reader); err != nil {
		return nil, fmt.Errorf("failed to upload team logo: %w", err)
	}

	oldKey := team.LogoKey
	if err := s.teamRepo.UpdateLogoKey(ctx, teamID, &key); err != nil {
		return nil, err
	}
	if oldKey != nil && *oldKey != "" {
		_ = s.uploader.Delete(ctx, *oldKey)
	}

	team.LogoKey = &key
	populateTeamLogoURL(team, s.uploader)
	return team, nil
}

func (s *teamService) AddPlayer(ctx context.Context, teamID, userID int, input PlayerInput) (*models.Player, error) {
	if _, err := s.loadTeamWithRole(ctx, teamID, userID, rosterEditorRoles); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrPlayerNameRequired
	}

	player := &models.Player{
		TeamID:       teamID,
		Name:         name,
		JerseyNumber: input.JerseyNumber,
		Position:     input.Position,
	}
	if err := s.rosterRepo.AddPlayer(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}

func (s *teamService) UpdatePlayer(ctx context.Context, playerID, userID int, input PlayerInput) (*models.Player, error) {
	player, err := s.rosterRepo.GetPlayerByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if _, err := s.loadTeamWithRole(ctx, player.TeamID, userID, rosterEditorRoles); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrPlayerNameRequired
	}
	player.Name = name
	player.JerseyNumber = input.JerseyNumber
	player.Position = input.Position

	if err := s.rosterRepo.UpdatePlayer(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}

func (s *teamService) RemovePlayer(ctx context.Context, playerID, userID int) error {
	player, err := s.rosterRepo.GetPlayerByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return ErrNotFound
		}
		return err
	}
	if _, err := s.loadTeamWithRole(ctx, player.TeamID, userID, rosterEditorRoles); err != nil {
		return err
	}
	return s.rosterRepo.RemovePlayer(ctx, playerID)
}

func (s *teamService) loadTeamWithRole(ctx context.Context, teamID, userID int, roles []models.OrgRole) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := requireOrgRole(ctx, s.orgRepo, team.OrganizationID, userID, roles...); err != nil {
		return nil, err
	}
	return team, nil
}

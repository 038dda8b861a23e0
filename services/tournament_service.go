package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/setpoint-app/setpoint/models"
	"github.com/setpoint-app/setpoint/repositories"
)

type TournamentService interface {
	Create(ctx context.Context, orgID, userID int, input TournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, tournamentID, userID int) (*models.Tournament, error)
	ListByOrganization(ctx context.Context, orgID, userID int) ([]*models.Tournament, error)
	Update(ctx context.Context, tournamentID, userID int, input TournamentInput) (*models.Tournament, error)
	Delete(ctx context.Context, tournamentID, userID int) error

	// AutoAdvanceStatuses is called by the background scheduler.
	AutoAdvanceStatuses(ctx context.Context) error
}

type TournamentInput struct {
	Name      string    `json:"name"`
	Location  *string   `json:"location"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	orgRepo        repositories.OrganizationRepository
	logger         *slog.Logger
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	orgRepo repositories.OrganizationRepository,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		orgRepo:        orgRepo,
		logger:         logger,
	}
}

func (s *tournamentService) Create(ctx context.Context, orgID, userID int, input TournamentInput) (*models.Tournament, error) {
	if err := requireOrgRole(ctx, s.orgRepo, orgID, userID, models.RoleOwner, models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := validateTournamentInput(input); err != nil {
		return nil, err
	}

	tournament := &models.Tournament{
		OrganizationID: orgID,
		Name:           strings.TrimSpace(input.Name),
		Location:       input.Location,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		Status:         models.TournamentStatusUpcoming,
	}
	if !input.StartDate.After(time.Now()) {
		tournament.Status = models.TournamentStatusActive
	}

	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) GetByID(ctx context.Context, tournamentID, userID int) (*models.Tournament, error) {
	tournament, err := s.loadWithRole(ctx, tournamentID, userID, allMemberRoles)
	if err != nil {
		return nil, err
	}

	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	tournament.Matches = make([]models.Match, 0, len(matches))
	for _, m := range matches {
		tournament.Matches = append(tournament.Matches, *m)
	}
	return tournament, nil
}

func (s *tournamentService) ListByOrganization(ctx context.Context, orgID, userID int) ([]*models.Tournament, error) {
	if err := requireOrgRole(ctx, s.orgRepo, orgID, userID, allMemberRoles...); err != nil {
		return nil, err
	}
	return s.tournamentRepo.ListByOrganization(ctx, orgID)
}

func (s *tournamentService) Update(ctx context.Context, tournamentID, userID int, input TournamentInput) (*models.Tournament, error) {
	tournament, err := s.loadWithRole(ctx, tournamentID, userID,
		[]models.OrgRole{models.RoleOwner, models.RoleAdmin})
	if err != nil {
		return nil, err
	}
	if err := validateTournamentInput(input); err != nil {
		return nil, err
	}

	tournament.Name = strings.TrimSpace(input.Name)
	tournament.Location = input.Location
	tournament.StartDate = input.StartDate
	tournament.EndDate = input.EndDate

	if err := s.tournamentRepo.Update(ctx, tournament); err != nil {
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) Delete(ctx context.Context, tournamentID, userID int) error {
	if _, err := s.loadWithRole(ctx, tournamentID, userID,
		[]models.OrgRole{models.RoleOwner, models.RoleAdmin}); err != nil {
		return err
	}
	return s.tournamentRepo.Delete(ctx, tournamentID)
}

func (s *tournamentService) AutoAdvanceStatuses(ctx context.Context) error {
	affected, err := s.tournamentRepo.AdvanceStatusesByDates(ctx)
	if err != nil {
		return err
	}
	if affected > 0 {
		s.logger.Info("tournament statuses advanced by dates", slog.Int64("count", affected))
	}
	return nil
}

func (s *tournamentService) loadWithRole(ctx context.Context, tournamentID, userID int, roles []models.OrgRole) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := requireOrgRole(ctx, s.orgRepo, tournament.OrganizationID, userID, roles...); err != nil {
		return nil, err
	}
	return tournament, nil
}

func validateTournamentInput(input TournamentInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return ErrTournamentNameRequired
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() || !input.StartDate.Before(input.EndDate) {
		return ErrTournamentInvalidDateRange
	}
	return nil
}

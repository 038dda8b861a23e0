package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/setpoint-app/setpoint/models"
	"github.com/setpoint-app/setpoint/repositories"
	"github.com/setpoint-app/setpoint/scoring"
)

// Роли, которым разрешено вести счёт. Завершать матч досрочно могут
// только владелец и админ.
var (
	scorekeeperRoles = []models.OrgRole{models.RoleOwner, models.RoleAdmin, models.RoleScorer}
	endMatchRoles    = []models.OrgRole{models.RoleOwner, models.RoleAdmin}
)

// MatchScoreView is the read projection returned by every scoring
// operation and pushed to websocket subscribers.
type MatchScoreView struct {
	ID            int                      `json:"id"`
	Name          string                   `json:"name"`
	Status        models.MatchStatus       `json:"status"`
	ScoringFormat *models.ScoringFormat    `json:"scoring_format,omitempty"`
	Participants  models.MatchParticipants `json:"participants"`
	Score         *models.Score            `json:"score,omitempty"`
	CanUndo       bool                     `json:"can_undo"`
}

// ScoringService orchestrates the live-scoring engine: it loads the
// match, runs the authorization guard, applies the pure transition from
// the scoring package and persists the result as one atomic mutation.
type ScoringService interface {
	StartMatch(ctx context.Context, matchID, userID int) (*MatchScoreView, error)
	AddPoint(ctx context.Context, matchID, userID int, side models.Side) (*MatchScoreView, error)
	UndoPoint(ctx context.Context, matchID, userID int) (*MatchScoreView, error)
	EndMatch(ctx context.Context, matchID, userID int, winner *models.Side) (*MatchScoreView, error)
	GetMatchScore(ctx context.Context, matchID int) (*MatchScoreView, error)
}

type scoringService struct {
	matchRepo repositories.MatchRepository
	teamRepo  repositories.TeamRepository
	orgRepo   repositories.OrganizationRepository
	hub       *scoring.Hub
	logger    *slog.Logger
}

func NewScoringService(
	matchRepo repositories.MatchRepository,
	teamRepo repositories.TeamRepository,
	orgRepo repositories.OrganizationRepository,
	hub *scoring.Hub,
	logger *slog.Logger,
) ScoringService {
	return &scoringService{
		matchRepo: matchRepo,
		teamRepo:  teamRepo,
		orgRepo:   orgRepo,
		hub:       hub,
		logger:    logger,
	}
}

func (s *scoringService) StartMatch(ctx context.Context, matchID, userID int) (*MatchScoreView, error) {
	if err := s.authorize(ctx, matchID, userID, scorekeeperRoles); err != nil {
		return nil, err
	}

	match, err := s.matchRepo.Mutate(ctx, matchID, func(m *models.Match) error {
		if m.Status != models.MatchStatusScheduled {
			return ErrMatchAlreadyStarted
		}
		if m.ScoringFormat == nil {
			return ErrMatchScoringFormatNotSet
		}
		if _, err := scoring.RulesFor(*m.ScoringFormat); err != nil {
			return err
		}

		score := scoring.NewScore()
		m.Status = models.MatchStatusInProgress
		m.Score = &score
		m.PointHistory = []models.PointEvent{}
		return nil
	})
	if err != nil {
		return nil, mapMatchError(err)
	}

	view := s.buildView(ctx, match)
	s.broadcast(match.ID, scoring.EventMatchStarted, view)
	return view, nil
}

func (s *scoringService) AddPoint(ctx context.Context, matchID, userID int, side models.Side) (*MatchScoreView, error) {
	if !side.Valid() {
		return nil, ErrInvalidSide
	}
	if err := s.authorize(ctx, matchID, userID, scorekeeperRoles); err != nil {
		return nil, err
	}

	var matchWon bool
	match, err := s.matchRepo.Mutate(ctx, matchID, func(m *models.Match) error {
		if m.Status != models.MatchStatusInProgress {
			return ErrMatchNotInProgress
		}
		if m.Score == nil || m.ScoringFormat == nil {
			return ErrMatchScoreNotInitialized
		}
		rules, err := scoring.RulesFor(*m.ScoringFormat)
		if err != nil {
			return err
		}

		res := scoring.ApplyPoint(*m.Score, side, rules)
		m.PointHistory = append(m.PointHistory, res.Event)
		m.Score = &res.Score
		if res.MatchWon {
			m.Status = models.MatchStatusCompleted
			matchWon = true
		}
		return nil
	})
	if err != nil {
		return nil, mapMatchError(err)
	}

	view := s.buildView(ctx, match)
	s.broadcast(match.ID, scoring.EventScoreUpdated, view)
	if matchWon {
		s.broadcast(match.ID, scoring.EventMatchCompleted, view)
	}
	return view, nil
}

func (s *scoringService) UndoPoint(ctx context.Context, matchID, userID int) (*MatchScoreView, error) {
	if err := s.authorize(ctx, matchID, userID, scorekeeperRoles); err != nil {
		return nil, err
	}

	match, err := s.matchRepo.Mutate(ctx, matchID, func(m *models.Match) error {
		if m.Status != models.MatchStatusInProgress {
			return ErrMatchNotInProgress
		}
		if m.Score == nil {
			return ErrMatchScoreNotInitialized
		}
		if len(m.PointHistory) == 0 {
			return ErrNoPointsToUndo
		}

		last := m.PointHistory[len(m.PointHistory)-1]
		restored, err := scoring.UndoPoint(*m.Score, last)
		if err != nil {
			return err
		}
		m.PointHistory = m.PointHistory[:len(m.PointHistory)-1]
		m.Score = &restored
		return nil
	})
	if err != nil {
		return nil, mapMatchError(err)
	}

	view := s.buildView(ctx, match)
	s.broadcast(match.ID, scoring.EventScoreUpdated, view)
	return view, nil
}

func (s *scoringService) EndMatch(ctx context.Context, matchID, userID int, winner *models.Side) (*MatchScoreView, error) {
	if winner != nil && !winner.Valid() {
		return nil, ErrInvalidSide
	}
	if err := s.authorize(ctx, matchID, userID, endMatchRoles); err != nil {
		return nil, err
	}

	match, err := s.matchRepo.Mutate(ctx, matchID, func(m *models.Match) error {
		if m.Status == models.MatchStatusCompleted {
			return ErrMatchAlreadyCompleted
		}
		// The winner argument is accepted but not recorded; sets won so
		// far remain the only authoritative result of an early-ended
		// match.
		m.Status = models.MatchStatusCompleted
		return nil
	})
	if err != nil {
		return nil, mapMatchError(err)
	}

	view := s.buildView(ctx, match)
	s.broadcast(match.ID, scoring.EventMatchCompleted, view)
	return view, nil
}

func (s *scoringService) GetMatchScore(ctx context.Context, matchID int) (*MatchScoreView, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, mapMatchError(err)
	}
	return s.buildView(ctx, match), nil
}

// authorize loads the match only to resolve its owning organization for
// the role check. The state preconditions are re-checked under the row
// lock inside Mutate.
func (s *scoringService) authorize(ctx context.Context, matchID, userID int, roles []models.OrgRole) error {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return mapMatchError(err)
	}
	return requireOrgRole(ctx, s.orgRepo, match.OrganizationID, userID, roles...)
}

func (s *scoringService) buildView(ctx context.Context, match *models.Match) *MatchScoreView {
	return &MatchScoreView{
		ID:            match.ID,
		Name:          match.Name,
		Status:        match.Status,
		ScoringFormat: match.ScoringFormat,
		Participants: models.MatchParticipants{
			Home: s.teamName(ctx, match.HomeTeamID),
			Away: s.teamName(ctx, match.AwayTeamID),
		},
		Score:   match.Score,
		CanUndo: len(match.PointHistory) > 0,
	}
}

func (s *scoringService) teamName(ctx context.Context, teamID int) string {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if !errors.Is(err, repositories.ErrTeamNotFound) {
			s.logger.Warn("failed to resolve team name",
				slog.Int("team_id", teamID), slog.Any("error", err))
		}
		return fmt.Sprintf("Team %d", teamID)
	}
	return team.Name
}

func (s *scoringService) broadcast(matchID int, event string, view *MatchScoreView) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToRoom(scoring.MatchRoom(matchID), scoring.Message{
		Type:    event,
		Payload: view,
	})
}

func mapMatchError(err error) error {
	if errors.Is(err, repositories.ErrMatchNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, "match not found")
	}
	return err
}

package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/setpoint-app/setpoint/models"
	"github.com/setpoint-app/setpoint/repositories"
	"github.com/setpoint-app/setpoint/scoring"
)

const (
	testOrgID    = 1
	ownerID      = 10
	scorerID     = 11
	viewerID     = 12
	strangerID   = 99
	testMatchID  = 100
	homeTeamID   = 201
	awayTeamID   = 202
)

// fakeMatchRepo keeps matches in memory and mimics the repository's
// atomic Mutate contract: fn runs against a copy, and only a successful
// fn is stored back.
type fakeMatchRepo struct {
	repositories.MatchRepository
	matches map[int]*models.Match
}

func newFakeMatchRepo(matches ...*models.Match) *fakeMatchRepo {
	repo := &fakeMatchRepo{matches: make(map[int]*models.Match)}
	for _, m := range matches {
		repo.matches[m.ID] = cloneMatch(m)
	}
	return repo
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id int) (*models.Match, error) {
	match, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return cloneMatch(match), nil
}

func (r *fakeMatchRepo) Mutate(_ context.Context, id int, fn func(match *models.Match) error) (*models.Match, error) {
	match, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	working := cloneMatch(match)
	if err := fn(working); err != nil {
		return nil, err
	}
	r.matches[id] = cloneMatch(working)
	return working, nil
}

type fakeOrgRepo struct {
	repositories.OrganizationRepository
	roles map[int]models.OrgRole
}

func (r *fakeOrgRepo) GetMemberRole(_ context.Context, orgID, userID int) (models.OrgRole, error) {
	if orgID != testOrgID {
		return "", repositories.ErrMembershipNotFound
	}
	role, ok := r.roles[userID]
	if !ok {
		return "", repositories.ErrMembershipNotFound
	}
	return role, nil
}

type fakeTeamRepo struct {
	repositories.TeamRepository
}

func (r *fakeTeamRepo) GetByID(_ context.Context, id int) (*models.Team, error) {
	switch id {
	case homeTeamID:
		return &models.Team{ID: id, OrganizationID: testOrgID, Name: "Sand Sharks"}, nil
	case awayTeamID:
		return &models.Team{ID: id, OrganizationID: testOrgID, Name: "Net Force"}, nil
	}
	return nil, repositories.ErrTeamNotFound
}

func cloneMatch(m *models.Match) *models.Match {
	out := *m
	if m.Score != nil {
		score := *m.Score
		score.SetHistory = append([]models.SetScore(nil), m.Score.SetHistory...)
		out.Score = &score
	}
	if m.PointHistory != nil {
		out.PointHistory = append([]models.PointEvent(nil), m.PointHistory...)
	}
	return &out
}

func formatPtr(f models.ScoringFormat) *models.ScoringFormat { return &f }

func newTestService(matches ...*models.Match) (ScoringService, *fakeMatchRepo) {
	matchRepo := newFakeMatchRepo(matches...)
	orgRepo := &fakeOrgRepo{roles: map[int]models.OrgRole{
		ownerID:  models.RoleOwner,
		scorerID: models.RoleScorer,
		viewerID: models.RoleViewer,
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewScoringService(matchRepo, &fakeTeamRepo{}, orgRepo, nil, logger)
	return svc, matchRepo
}

func scheduledMatch(format *models.ScoringFormat) *models.Match {
	return &models.Match{
		ID:             testMatchID,
		OrganizationID: testOrgID,
		Name:           "Pool A, court 2",
		HomeTeamID:     homeTeamID,
		AwayTeamID:     awayTeamID,
		Status:         models.MatchStatusScheduled,
		ScoringFormat:  format,
	}
}

func inProgressMatch(format models.ScoringFormat) *models.Match {
	match := scheduledMatch(formatPtr(format))
	score := scoring.NewScore()
	match.Status = models.MatchStatusInProgress
	match.Score = &score
	match.PointHistory = []models.PointEvent{}
	return match
}

func TestStartMatch(t *testing.T) {
	svc, repo := newTestService(scheduledMatch(formatPtr(models.FormatStandard)))

	view, err := svc.StartMatch(context.Background(), testMatchID, scorerID)
	require.NoError(t, err)

	assert.Equal(t, models.MatchStatusInProgress, view.Status)
	require.NotNil(t, view.Score)
	assert.Equal(t, 1, view.Score.CurrentSet)
	assert.False(t, view.CanUndo)
	assert.Equal(t, "Sand Sharks", view.Participants.Home)
	assert.Equal(t, "Net Force", view.Participants.Away)

	stored := repo.matches[testMatchID]
	assert.Equal(t, models.MatchStatusInProgress, stored.Status)
	assert.Empty(t, stored.PointHistory)

	// Starting twice would discard live score state, so it fails.
	_, err = svc.StartMatch(context.Background(), testMatchID, scorerID)
	assert.ErrorIs(t, err, ErrMatchAlreadyStarted)
}

func TestStartMatchWithoutFormat(t *testing.T) {
	svc, _ := newTestService(scheduledMatch(nil))

	_, err := svc.StartMatch(context.Background(), testMatchID, ownerID)
	assert.ErrorIs(t, err, ErrMatchScoringFormatNotSet)
}

func TestStartMatchAuthorization(t *testing.T) {
	for _, userID := range []int{viewerID, strangerID} {
		svc, repo := newTestService(scheduledMatch(formatPtr(models.FormatStandard)))

		_, err := svc.StartMatch(context.Background(), testMatchID, userID)
		assert.ErrorIs(t, err, ErrForbiddenOperation)
		assert.Equal(t, models.MatchStatusScheduled, repo.matches[testMatchID].Status)
	}
}

func TestAddPoint(t *testing.T) {
	svc, repo := newTestService(inProgressMatch(models.FormatStandard))

	view, err := svc.AddPoint(context.Background(), testMatchID, scorerID, models.SideHome)
	require.NoError(t, err)

	assert.Equal(t, 1, view.Score.Home)
	assert.Equal(t, 0, view.Score.Away)
	assert.True(t, view.CanUndo)

	stored := repo.matches[testMatchID]
	require.Len(t, stored.PointHistory, 1)
	assert.Equal(t, models.PointEvent{
		Side: models.SideHome, SetNumber: 1, HomeScore: 0, AwayScore: 0,
	}, stored.PointHistory[0])
}

func TestAddPointInvalidSide(t *testing.T) {
	svc, _ := newTestService(inProgressMatch(models.FormatStandard))

	_, err := svc.AddPoint(context.Background(), testMatchID, scorerID, models.Side("left"))
	assert.ErrorIs(t, err, ErrInvalidSide)
}

func TestAddPointRejectsScheduledMatchUnchanged(t *testing.T) {
	match := scheduledMatch(formatPtr(models.FormatStandard))
	svc, repo := newTestService(match)
	before := cloneMatch(repo.matches[testMatchID])

	_, err := svc.AddPoint(context.Background(), testMatchID, ownerID, models.SideAway)
	assert.ErrorIs(t, err, ErrMatchNotInProgress)
	assert.Equal(t, before, repo.matches[testMatchID])
}

func TestAddPointCompletesMatch(t *testing.T) {
	match := inProgressMatch(models.FormatAVPBeach)
	match.Score.CurrentSet = 2
	match.Score.Home = 20
	match.Score.Away = 15
	match.Score.SetsWon = models.SetsWon{Home: 1}
	match.Score.SetHistory = []models.SetScore{{Home: 21, Away: 19}}
	svc, repo := newTestService(match)

	view, err := svc.AddPoint(context.Background(), testMatchID, ownerID, models.SideHome)
	require.NoError(t, err)

	assert.Equal(t, models.MatchStatusCompleted, view.Status)
	assert.Equal(t, models.SetsWon{Home: 2}, view.Score.SetsWon)
	assert.Equal(t, 2, view.Score.CurrentSet)
	assert.Equal(t, models.MatchStatusCompleted, repo.matches[testMatchID].Status)

	// Completed matches accept no further points.
	_, err = svc.AddPoint(context.Background(), testMatchID, ownerID, models.SideHome)
	assert.ErrorIs(t, err, ErrMatchNotInProgress)
}

func TestUndoPointRoundTrip(t *testing.T) {
	svc, repo := newTestService(inProgressMatch(models.FormatStandard))

	_, err := svc.AddPoint(context.Background(), testMatchID, scorerID, models.SideHome)
	require.NoError(t, err)
	before := cloneMatch(repo.matches[testMatchID])

	_, err = svc.AddPoint(context.Background(), testMatchID, scorerID, models.SideAway)
	require.NoError(t, err)

	view, err := svc.UndoPoint(context.Background(), testMatchID, scorerID)
	require.NoError(t, err)

	assert.Equal(t, before, repo.matches[testMatchID])
	assert.True(t, view.CanUndo)
}

func TestUndoPointAcrossSetBoundary(t *testing.T) {
	match := inProgressMatch(models.FormatAVPBeach)
	match.Score.CurrentSet = 2
	match.Score.SetsWon = models.SetsWon{Home: 1}
	match.Score.SetHistory = []models.SetScore{{Home: 21, Away: 19}}
	match.PointHistory = []models.PointEvent{
		{Side: models.SideHome, SetNumber: 1, HomeScore: 20, AwayScore: 19},
	}
	svc, repo := newTestService(match)

	view, err := svc.UndoPoint(context.Background(), testMatchID, scorerID)
	require.NoError(t, err)

	assert.Equal(t, 1, view.Score.CurrentSet)
	assert.Equal(t, 20, view.Score.Home)
	assert.Equal(t, 19, view.Score.Away)
	assert.Equal(t, models.SetsWon{}, view.Score.SetsWon)
	assert.Empty(t, view.Score.SetHistory)
	assert.False(t, view.CanUndo)
	assert.Empty(t, repo.matches[testMatchID].PointHistory)
}

func TestUndoPointEmptyHistory(t *testing.T) {
	svc, _ := newTestService(inProgressMatch(models.FormatStandard))

	_, err := svc.UndoPoint(context.Background(), testMatchID, scorerID)
	assert.ErrorIs(t, err, ErrNoPointsToUndo)
}

func TestUndoPointInconsistentSetHistory(t *testing.T) {
	match := inProgressMatch(models.FormatAVPBeach)
	match.Score.CurrentSet = 2
	match.PointHistory = []models.PointEvent{
		{Side: models.SideHome, SetNumber: 1, HomeScore: 20, AwayScore: 19},
	}
	// Set history is empty even though set 1 is closed.
	svc, repo := newTestService(match)
	before := cloneMatch(repo.matches[testMatchID])

	_, err := svc.UndoPoint(context.Background(), testMatchID, scorerID)
	assert.ErrorIs(t, err, scoring.ErrInconsistentSetHistory)
	assert.Equal(t, before, repo.matches[testMatchID])
}

func TestUndoPointOnCompletedMatch(t *testing.T) {
	match := inProgressMatch(models.FormatAVPBeach)
	match.Status = models.MatchStatusCompleted
	match.PointHistory = []models.PointEvent{
		{Side: models.SideHome, SetNumber: 1, HomeScore: 0, AwayScore: 0},
	}
	svc, _ := newTestService(match)

	_, err := svc.UndoPoint(context.Background(), testMatchID, ownerID)
	assert.ErrorIs(t, err, ErrMatchNotInProgress)
}

func TestEndMatch(t *testing.T) {
	svc, repo := newTestService(inProgressMatch(models.FormatStandard))

	// Scorers may not end a match early.
	_, err := svc.EndMatch(context.Background(), testMatchID, scorerID, nil)
	assert.ErrorIs(t, err, ErrForbiddenOperation)

	winner := models.SideHome
	view, err := svc.EndMatch(context.Background(), testMatchID, ownerID, &winner)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusCompleted, view.Status)
	assert.Equal(t, models.MatchStatusCompleted, repo.matches[testMatchID].Status)

	_, err = svc.EndMatch(context.Background(), testMatchID, ownerID, nil)
	assert.ErrorIs(t, err, ErrMatchAlreadyCompleted)
}

func TestEndMatchScheduled(t *testing.T) {
	svc, repo := newTestService(scheduledMatch(formatPtr(models.FormatStandard)))

	view, err := svc.EndMatch(context.Background(), testMatchID, ownerID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusCompleted, view.Status)
	assert.Nil(t, repo.matches[testMatchID].Score)
}

func TestGetMatchScoreDoesNotMutate(t *testing.T) {
	match := inProgressMatch(models.FormatStandard)
	match.PointHistory = []models.PointEvent{
		{Side: models.SideHome, SetNumber: 1, HomeScore: 0, AwayScore: 0},
	}
	match.Score.Home = 1
	svc, repo := newTestService(match)
	before := cloneMatch(repo.matches[testMatchID])

	for i := 0; i < 3; i++ {
		view, err := svc.GetMatchScore(context.Background(), testMatchID)
		require.NoError(t, err)
		assert.True(t, view.CanUndo)
		assert.Equal(t, 1, view.Score.Home)
	}
	assert.Equal(t, before, repo.matches[testMatchID])
}

func TestGetMatchScoreNotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.GetMatchScore(context.Background(), testMatchID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, fmt.Sprintf("%s: %s", ErrNotFound.Error(), "match not found"))
}

package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/setpoint-app/setpoint/models"
	"github.com/setpoint-app/setpoint/repositories"
)

const (
	otherOrgID   = 2
	otherMatchID = 999
)

type fakeStatRepo struct {
	repositories.StatRepository
	stats  map[int]*models.MatchStat
	nextID int
}

func newFakeStatRepo(stats ...*models.MatchStat) *fakeStatRepo {
	repo := &fakeStatRepo{stats: make(map[int]*models.MatchStat), nextID: 1000}
	for _, s := range stats {
		repo.stats[s.ID] = s
	}
	return repo
}

func (r *fakeStatRepo) Upsert(_ context.Context, stat *models.MatchStat) error {
	for _, existing := range r.stats {
		if existing.MatchID == stat.MatchID && existing.Key == stat.Key &&
			intPtrEqual(existing.PlayerID, stat.PlayerID) {
			existing.Value = stat.Value
			stat.ID = existing.ID
			return nil
		}
	}
	r.nextID++
	stat.ID = r.nextID
	copied := *stat
	r.stats[stat.ID] = &copied
	return nil
}

func (r *fakeStatRepo) ListByMatch(_ context.Context, matchID int) ([]*models.MatchStat, error) {
	out := make([]*models.MatchStat, 0)
	for _, s := range r.stats {
		if s.MatchID == matchID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeStatRepo) Delete(_ context.Context, matchID, id int) error {
	stat, ok := r.stats[id]
	if !ok || stat.MatchID != matchID {
		return repositories.ErrStatNotFound
	}
	delete(r.stats, id)
	return nil
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func newStatTestService(stats ...*models.MatchStat) (StatService, *fakeStatRepo) {
	foreign := &models.Match{
		ID:             otherMatchID,
		OrganizationID: otherOrgID,
		Name:           "Final, другая организация",
		HomeTeamID:     301,
		AwayTeamID:     302,
		Status:         models.MatchStatusInProgress,
	}
	matchRepo := newFakeMatchRepo(inProgressMatch(models.FormatStandard), foreign)
	orgRepo := &fakeOrgRepo{roles: map[int]models.OrgRole{
		ownerID:  models.RoleOwner,
		scorerID: models.RoleScorer,
		viewerID: models.RoleViewer,
	}}
	statRepo := newFakeStatRepo(stats...)
	return NewStatService(statRepo, matchRepo, orgRepo), statRepo
}

func TestPutStat(t *testing.T) {
	svc, repo := newStatTestService()

	stat, err := svc.PutStat(context.Background(), testMatchID, scorerID, StatInput{
		Key: "aces", Value: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, testMatchID, stat.MatchID)
	assert.Equal(t, 3, stat.Value)

	// Повторная запись того же ключа перезаписывает значение.
	again, err := svc.PutStat(context.Background(), testMatchID, scorerID, StatInput{
		Key: "aces", Value: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, stat.ID, again.ID)
	assert.Equal(t, 5, repo.stats[stat.ID].Value)
}

func TestPutStatRequiresKey(t *testing.T) {
	svc, _ := newStatTestService()

	_, err := svc.PutStat(context.Background(), testMatchID, scorerID, StatInput{Key: "  "})
	assert.ErrorIs(t, err, ErrStatKeyRequired)
}

func TestPutStatForbiddenForViewer(t *testing.T) {
	svc, _ := newStatTestService()

	_, err := svc.PutStat(context.Background(), testMatchID, viewerID, StatInput{
		Key: "blocks", Value: 1,
	})
	assert.ErrorIs(t, err, ErrForbiddenOperation)
}

func TestDeleteStat(t *testing.T) {
	stat := &models.MatchStat{ID: 70, MatchID: testMatchID, Key: "digs", Value: 7}
	svc, repo := newStatTestService(stat)

	require.NoError(t, svc.DeleteStat(context.Background(), testMatchID, stat.ID, scorerID))
	assert.NotContains(t, repo.stats, stat.ID)
}

func TestDeleteStatRejectsForeignMatchStat(t *testing.T) {
	// Счётчик принадлежит матчу другой организации. Скорер своего матча
	// не должен дотянуться до него, подставив чужой statID.
	foreignStat := &models.MatchStat{ID: 555, MatchID: otherMatchID, Key: "kills", Value: 12}
	svc, repo := newStatTestService(foreignStat)

	err := svc.DeleteStat(context.Background(), testMatchID, foreignStat.ID, scorerID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, repo.stats, foreignStat.ID)
}

func TestDeleteStatUnknownID(t *testing.T) {
	svc, _ := newStatTestService()

	err := svc.DeleteStat(context.Background(), testMatchID, 12345, ownerID)
	assert.ErrorIs(t, err, ErrNotFound)
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/emotionlab/server/internal/infra/httpclient"
	"github.com/emotionlab/server/internal/modules/model"
	"github.com/emotionlab/server/internal/modules/repo"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func catalogStories() []model.Story {
	var out []model.Story
	for _, e := range model.Emotions {
		for i := 0; i < 2; i++ {
			out = append(out, model.Story{ID: uuid.New(), TargetEmotion: e, Complexity: i + 1})
		}
	}
	return out
}

func TestSelectStories(t *testing.T) {
	stories := catalogStories()
	emotionOf := map[uuid.UUID]model.Emotion{}
	for _, s := range stories {
		emotionOf[s.ID] = s.TargetEmotion
	}

	ids := selectStories(stories, 5, 3)
	require.Len(t, ids, 5)
	for i, id := range ids {
		assert.Equal(t, model.Emotions[(3+i)%len(model.Emotions)], emotionOf[id])
	}

	assert.Empty(t, selectStories(nil, 5, 0))

	// a single-emotion catalog still fills every round
	only := []model.Story{{ID: uuid.New(), TargetEmotion: model.EmotionCalm}}
	ids = selectStories(only, 5, 0)
	require.Len(t, ids, 5)
	for _, id := range ids {
		assert.Equal(t, only[0].ID, id)
	}

	// stories outside the emotion list are never picked
	unknown := []model.Story{{ID: uuid.New(), TargetEmotion: "Angry"}, {ID: uuid.New(), TargetEmotion: "bored"}}
	assert.Empty(t, selectStories(unknown, 5, 0))

	mixed := append(unknown, model.Story{ID: uuid.New(), TargetEmotion: model.EmotionSad})
	ids = selectStories(mixed, 5, 2)
	require.Len(t, ids, 5)
	for _, id := range ids {
		assert.Equal(t, mixed[2].ID, id)
	}
}

func TestSessionService_Create(t *testing.T) {
	sessions, rounds, catalog, profiles := &MockSessionRepo{}, &MockRoundRepo{}, &MockCatalogRepo{}, &MockProfiles{}
	svc := NewSessionService(sessions, rounds, catalog, profiles, zap.NewNop()).(*sessionService)
	svc.offset = func(int) int { return 0 }

	childID := uuid.New()
	profiles.On("GetChildProfile", mock.Anything, childID).Return(&httpclient.ChildProfile{ID: childID, AgeBand: "6-8"}, nil)
	catalog.On("ListStories", mock.Anything).Return(catalogStories(), nil)
	sessions.On("Create", mock.Anything, mock.MatchedBy(func(s *model.Session) bool {
		return s.ChildID == childID && s.TotalRounds == 5 && s.AgentEnabled && len(s.StoryIDs) == 5
	})).Return(nil)

	ss, err := svc.Create(context.Background(), CreateSessionInput{ChildID: childID, AgentEnabled: true})
	require.NoError(t, err)
	assert.Equal(t, 0, ss.CompletedRounds)
	assert.Nil(t, ss.CompletedAt)
	sessions.AssertExpectations(t)
}

func TestSessionService_CreateChildChecks(t *testing.T) {
	sessions, rounds, catalog, profiles := &MockSessionRepo{}, &MockRoundRepo{}, &MockCatalogRepo{}, &MockProfiles{}
	svc := NewSessionService(sessions, rounds, catalog, profiles, zap.NewNop())

	missing := uuid.New()
	profiles.On("GetChildProfile", mock.Anything, missing).Return(nil, httpclient.ErrChildNotFound)
	_, err := svc.Create(context.Background(), CreateSessionInput{ChildID: missing})
	assert.ErrorIs(t, err, ErrChildNotFound)
	sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	unreachable := uuid.New()
	profiles.On("GetChildProfile", mock.Anything, unreachable).Return(nil, errors.New("timeout"))
	catalog.On("ListStories", mock.Anything).Return([]model.Story{}, nil)
	sessions.On("Create", mock.Anything, mock.Anything).Return(nil)
	ss, err := svc.Create(context.Background(), CreateSessionInput{ChildID: unreachable})
	require.NoError(t, err)
	assert.Empty(t, ss.StoryIDs)
}

func TestSessionService_Get(t *testing.T) {
	sessions, rounds, catalog := &MockSessionRepo{}, &MockRoundRepo{}, &MockCatalogRepo{}
	svc := NewSessionService(sessions, rounds, catalog, nil, zap.NewNop())

	id, storyID := uuid.New(), uuid.New()
	ss := &model.Session{ID: id, TotalRounds: 5, StoryIDs: []uuid.UUID{storyID}}
	sessions.On("Get", mock.Anything, id).Return(ss, nil)
	rounds.On("ListBySession", mock.Anything, id).Return([]model.Round{{RoundNumber: 1}}, nil)
	catalog.On("GetStoriesByIDs", mock.Anything, []uuid.UUID{storyID}).Return([]model.Story{{ID: storyID}}, nil)

	got, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, ss, got.Session)
	assert.Len(t, got.Rounds, 1)
	assert.Len(t, got.Stories, 1)

	missing := uuid.New()
	sessions.On("Get", mock.Anything, missing).Return(nil, repo.ErrSessionNotFound)
	rounds.On("ListBySession", mock.Anything, missing).Return([]model.Round{}, nil)
	_, err = svc.Get(context.Background(), missing)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCatalogService_Scripts(t *testing.T) {
	catalog := &MockCatalogRepo{}
	svc := NewCatalogService(catalog)
	generic := []model.RegulationScript{{Name: "Balloon Breathing", IsGeneric: true}}
	catalog.On("FindScripts", mock.Anything, model.EmotionAngry, 4).Return([]model.RegulationScript{{Name: "Dragon Breath"}}, nil)
	catalog.On("FindScripts", mock.Anything, model.EmotionHappy, 2).Return([]model.RegulationScript{}, nil)
	catalog.On("GenericScripts", mock.Anything).Return(generic, nil)

	sel, err := svc.Scripts(context.Background(), model.EmotionAngry, 4)
	require.NoError(t, err)
	assert.False(t, sel.Generic)
	assert.Equal(t, "Dragon Breath", sel.Scripts[0].Name)

	sel, err = svc.Scripts(context.Background(), model.EmotionHappy, 2)
	require.NoError(t, err)
	assert.True(t, sel.Generic)
	assert.Equal(t, generic, sel.Scripts)
}

package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/emotionlab/server/internal/modules/model"
	"github.com/emotionlab/server/internal/modules/repo"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeObserver records dispatched events.
type fakeObserver struct {
	mu     sync.Mutex
	events []RoundCompletedEvent
}

func (f *fakeObserver) Dispatch(_ context.Context, evt RoundCompletedEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
}

func (f *fakeObserver) Observe(context.Context, RoundCompletedEvent) error { return nil }

func (f *fakeObserver) Consume(context.Context, MessageSource) error { return nil }

func (f *fakeObserver) Wait() {}

// fakeStoryGen answers story requests and records them.
type fakeStoryGen struct {
	GenerationService
	mu    sync.Mutex
	calls []StoryRequest
}

func (f *fakeStoryGen) Story(_ context.Context, in StoryRequest) (*Outcome[model.GeneratedStory], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, in)
	return &Outcome[model.GeneratedStory]{}, nil
}

func (f *fakeStoryGen) storyCalls() []StoryRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]StoryRequest{}, f.calls...)
}

type roundFixture struct {
	sessions *MockSessionRepo
	rounds   *MockRoundRepo
	catalog  *MockCatalogRepo
	gen      *fakeStoryGen
	observer *fakeObserver
	svc      RoundService
}

func newRoundFixture(throttle ThrottleFunc) *roundFixture {
	f := &roundFixture{
		sessions: &MockSessionRepo{},
		rounds:   &MockRoundRepo{},
		catalog:  &MockCatalogRepo{},
		gen:      &fakeStoryGen{},
		observer: &fakeObserver{},
	}
	f.svc = NewRoundService(RoundDeps{
		Sessions: f.sessions,
		Rounds:   f.rounds,
		Catalog:  f.catalog,
		Gen:      f.gen,
		Observer: f.observer,
		Throttle: throttle,
		Debounce: time.Second,
		Log:      zap.NewNop(),
	})
	return f
}

func intPtr(v int) *int { return &v }

func emotionPtr(e model.Emotion) *model.Emotion { return &e }

func TestRoundService_Create(t *testing.T) {
	f := newRoundFixture(nil)
	sessionID, storyID := uuid.New(), uuid.New()
	ss := &model.Session{ID: sessionID, TotalRounds: 5, StoryIDs: []uuid.UUID{uuid.New(), uuid.New(), storyID}}
	f.sessions.On("Get", mock.Anything, sessionID).Return(ss, nil)

	existing := &model.Round{ID: uuid.New(), SessionID: sessionID, RoundNumber: 3, StoryID: &storyID}
	f.rounds.On("Create", mock.Anything, mock.MatchedBy(func(r *model.Round) bool {
		return r.RoundNumber == 3 && r.StoryID != nil && *r.StoryID == storyID
	})).Return(existing, true, nil).Once()
	f.rounds.On("Create", mock.Anything, mock.Anything).Return(existing, false, nil).Once()

	r, created, err := f.svc.Create(context.Background(), sessionID, 3)
	require.NoError(t, err)
	assert.True(t, created)

	r2, created, err := f.svc.Create(context.Background(), sessionID, 3)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, r.ID, r2.ID)

	_, _, err = f.svc.Create(context.Background(), sessionID, 0)
	assert.ErrorIs(t, err, ErrRoundOutOfRange)
	_, _, err = f.svc.Create(context.Background(), sessionID, 6)
	assert.ErrorIs(t, err, ErrRoundOutOfRange)

	missing := uuid.New()
	f.sessions.On("Get", mock.Anything, missing).Return(nil, repo.ErrSessionNotFound)
	_, _, err = f.svc.Create(context.Background(), missing, 1)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRoundService_UpdateDerivesCorrectness(t *testing.T) {
	f := newRoundFixture(nil)
	sessionID, roundID, storyID := uuid.New(), uuid.New(), uuid.New()
	f.rounds.On("Get", mock.Anything, roundID).Return(&model.Round{ID: roundID, SessionID: sessionID, RoundNumber: 3, StoryID: &storyID}, nil)
	f.catalog.On("GetStory", mock.Anything, storyID).Return(&model.Story{ID: storyID, TargetEmotion: model.EmotionAngry}, nil)
	f.rounds.On("Update", mock.Anything, roundID, mock.MatchedBy(func(p repo.RoundPatch) bool {
		return p.IsCorrect != nil && *p.IsCorrect && *p.LabeledEmotion == model.EmotionAngry && *p.PreIntensity == 4
	})).Return(&repo.RoundUpdateResult{Round: &model.Round{ID: roundID, RoundNumber: 3}}, nil)

	res, err := f.svc.Update(context.Background(), sessionID, roundID, UpdateRoundInput{
		LabeledEmotion: emotionPtr(model.EmotionAngry),
		PreIntensity:   intPtr(4),
	})
	require.NoError(t, err)
	assert.False(t, res.Completed)
	assert.Empty(t, f.observer.events)
	f.rounds.AssertExpectations(t)
}

func TestRoundService_UpdateGeneratedStoryTarget(t *testing.T) {
	f := newRoundFixture(nil)
	sessionID, roundID := uuid.New(), uuid.New()
	f.rounds.On("Get", mock.Anything, roundID).Return(&model.Round{
		ID: roundID, SessionID: sessionID, RoundNumber: 1,
		GeneratedStory: &model.GeneratedStory{TargetEmotion: model.EmotionSad},
	}, nil)
	f.rounds.On("Update", mock.Anything, roundID, mock.MatchedBy(func(p repo.RoundPatch) bool {
		return p.IsCorrect != nil && !*p.IsCorrect
	})).Return(&repo.RoundUpdateResult{Round: &model.Round{ID: roundID, RoundNumber: 1}}, nil)

	_, err := f.svc.Update(context.Background(), sessionID, roundID, UpdateRoundInput{LabeledEmotion: emotionPtr(model.EmotionHappy)})
	require.NoError(t, err)
	f.catalog.AssertNotCalled(t, "GetStory", mock.Anything, mock.Anything)
}

func TestRoundService_UpdateCompletionDispatchesObserver(t *testing.T) {
	f := newRoundFixture(nil)
	sessionID, roundID := uuid.New(), uuid.New()
	done := time.Now().UTC()
	f.rounds.On("Get", mock.Anything, roundID).Return(&model.Round{ID: roundID, SessionID: sessionID, RoundNumber: 2}, nil)
	f.rounds.On("Update", mock.Anything, roundID, mock.Anything).Return(&repo.RoundUpdateResult{
		Round:     &model.Round{ID: roundID, RoundNumber: 2, CompletedAt: &done},
		Completed: true,
	}, nil)

	res, err := f.svc.Update(context.Background(), sessionID, roundID, UpdateRoundInput{PostIntensity: intPtr(2)})
	require.NoError(t, err)
	assert.True(t, res.Completed)
	require.Len(t, f.observer.events, 1)
	assert.Equal(t, RoundCompletedEvent{SessionID: sessionID, RoundNumber: 2, CompletedAt: done}, f.observer.events[0])
}

func TestRoundService_UpdateErrors(t *testing.T) {
	f := newRoundFixture(nil)
	sessionID, roundID := uuid.New(), uuid.New()
	f.rounds.On("Get", mock.Anything, roundID).Return(&model.Round{ID: roundID, SessionID: sessionID, RoundNumber: 5}, nil)
	f.rounds.On("Update", mock.Anything, roundID, mock.Anything).Return(nil, repo.ErrSessionClosed)

	_, err := f.svc.Update(context.Background(), sessionID, roundID, UpdateRoundInput{PostIntensity: intPtr(1)})
	assert.ErrorIs(t, err, ErrSessionCompleted)

	_, err = f.svc.Update(context.Background(), uuid.New(), roundID, UpdateRoundInput{})
	assert.ErrorIs(t, err, ErrRoundMismatch)

	missing := uuid.New()
	f.rounds.On("Get", mock.Anything, missing).Return(nil, repo.ErrRoundNotFound)
	_, err = f.svc.Update(context.Background(), sessionID, missing, UpdateRoundInput{})
	assert.ErrorIs(t, err, ErrRoundNotFound)
}

func TestRoundService_PrepareStartsStoryOnce(t *testing.T) {
	var mu sync.Mutex
	claimed := map[string]bool{}
	throttle := func(_ context.Context, key string, _ time.Duration) (bool, error) {
		mu.Lock()
		defer mu.Unlock()
		if claimed[key] {
			return false, nil
		}
		claimed[key] = true
		return true, nil
	}
	f := newRoundFixture(throttle)
	sessionID, childID := uuid.New(), uuid.New()
	f.sessions.On("Get", mock.Anything, sessionID).Return(&model.Session{ID: sessionID, ChildID: childID, TotalRounds: 5, AgentEnabled: true}, nil)
	f.rounds.On("Create", mock.Anything, mock.Anything).Return(&model.Round{ID: uuid.New(), SessionID: sessionID, RoundNumber: 2}, true, nil)

	for i := 0; i < 3; i++ {
		_, _, err := f.svc.Prepare(context.Background(), sessionID, 2)
		require.NoError(t, err)
	}
	f.svc.Wait()

	calls := f.gen.storyCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, childID, calls[0].ChildID)
	assert.Equal(t, model.Emotions[1], calls[0].TargetEmotion)
	assert.Equal(t, &Target{SessionID: sessionID, RoundNumber: 2}, calls[0].Target)
}

func TestRoundService_PrepareSkipsStaticSessions(t *testing.T) {
	f := newRoundFixture(nil)
	sessionID := uuid.New()
	f.sessions.On("Get", mock.Anything, sessionID).Return(&model.Session{ID: sessionID, TotalRounds: 5}, nil)
	f.rounds.On("Create", mock.Anything, mock.Anything).Return(&model.Round{ID: uuid.New()}, true, nil)

	_, created, err := f.svc.Prepare(context.Background(), sessionID, 1)
	require.NoError(t, err)
	assert.True(t, created)
	f.svc.Wait()
	assert.Empty(t, f.gen.storyCalls())

	closed := uuid.New()
	now := time.Now()
	f.sessions.On("Get", mock.Anything, closed).Return(&model.Session{ID: closed, TotalRounds: 5, CompletedAt: &now}, nil)
	f.rounds.On("GetByNumber", mock.Anything, closed, 1).Return(nil, repo.ErrRoundNotFound)
	_, _, err = f.svc.Prepare(context.Background(), closed, 1)
	assert.ErrorIs(t, err, ErrSessionCompleted)
}

func TestRoundService_PrepareResumesCompletedSession(t *testing.T) {
	f := newRoundFixture(nil)
	sessionID := uuid.New()
	now := time.Now()
	existing := &model.Round{ID: uuid.New(), SessionID: sessionID, RoundNumber: 5, CompletedAt: &now}
	f.sessions.On("Get", mock.Anything, sessionID).Return(&model.Session{ID: sessionID, TotalRounds: 5, AgentEnabled: true, CompletedAt: &now}, nil)
	f.rounds.On("GetByNumber", mock.Anything, sessionID, 5).Return(existing, nil)

	round, created, err := f.svc.Prepare(context.Background(), sessionID, 5)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing, round)

	f.svc.Wait()
	assert.Empty(t, f.gen.storyCalls())
	f.rounds.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRoundService_Readiness(t *testing.T) {
	f := newRoundFixture(nil)
	static, agent := uuid.New(), uuid.New()
	f.sessions.On("Get", mock.Anything, static).Return(&model.Session{ID: static, TotalRounds: 5}, nil)
	f.sessions.On("Get", mock.Anything, agent).Return(&model.Session{ID: agent, TotalRounds: 5, AgentEnabled: true}, nil)

	f.rounds.On("GetByNumber", mock.Anything, static, 1).Return(&model.Round{RoundNumber: 1}, nil)
	f.rounds.On("GetByNumber", mock.Anything, static, 2).Return(nil, repo.ErrRoundNotFound)
	f.rounds.On("GetByNumber", mock.Anything, agent, 1).Return(&model.Round{RoundNumber: 1}, nil)
	f.rounds.On("GetByNumber", mock.Anything, agent, 2).Return(&model.Round{RoundNumber: 2,
		GenerationMetadata: model.GenerationMetadata{model.KindStory: {FallbackUsed: true}}}, nil)
	f.rounds.On("GetByNumber", mock.Anything, agent, 3).Return(nil, errors.New("db down"))

	ctx := context.Background()
	tests := []struct {
		name    string
		session uuid.UUID
		n       int
		ready   bool
		wantErr bool
	}{
		{"static round exists", static, 1, true, false},
		{"round not created yet", static, 2, false, false},
		{"agent story pending", agent, 1, false, false},
		{"agent story settled", agent, 2, true, false},
		{"store failure", agent, 3, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.Readiness(ctx, tt.session, tt.n)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ready, got.Ready)
		})
	}
}

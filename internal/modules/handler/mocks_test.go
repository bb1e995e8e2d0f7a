package handler

import (
	"context"

	"github.com/emotionlab/server/internal/modules/model"
	"github.com/emotionlab/server/internal/modules/repo"
	"github.com/emotionlab/server/internal/modules/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := RegisterValidators(); err != nil {
		panic(err)
	}
}

// MockSessionService is a mock implementation of service.SessionService
type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) Create(ctx context.Context, in service.CreateSessionInput) (*model.Session, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *MockSessionService) Get(ctx context.Context, id uuid.UUID) (*service.SessionDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SessionDetail), args.Error(1)
}

// MockRoundService is a mock implementation of service.RoundService
type MockRoundService struct {
	mock.Mock
}

func (m *MockRoundService) Create(ctx context.Context, sessionID uuid.UUID, n int) (*model.Round, bool, error) {
	args := m.Called(ctx, sessionID, n)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*model.Round), args.Bool(1), args.Error(2)
}

func (m *MockRoundService) Prepare(ctx context.Context, sessionID uuid.UUID, n int) (*model.Round, bool, error) {
	args := m.Called(ctx, sessionID, n)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*model.Round), args.Bool(1), args.Error(2)
}

func (m *MockRoundService) Update(ctx context.Context, sessionID, roundID uuid.UUID, in service.UpdateRoundInput) (*repo.RoundUpdateResult, error) {
	args := m.Called(ctx, sessionID, roundID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repo.RoundUpdateResult), args.Error(1)
}

func (m *MockRoundService) Readiness(ctx context.Context, sessionID uuid.UUID, n int) (*service.Readiness, error) {
	args := m.Called(ctx, sessionID, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Readiness), args.Error(1)
}

func (m *MockRoundService) Wait() {}

// MockGenerationService is a mock implementation of service.GenerationService
type MockGenerationService struct {
	mock.Mock
}

func (m *MockGenerationService) Analyze(ctx context.Context, in service.AnalysisRequest) (*service.Outcome[model.Analysis], error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Outcome[model.Analysis]), args.Error(1)
}

func (m *MockGenerationService) Story(ctx context.Context, in service.StoryRequest) (*service.Outcome[model.GeneratedStory], error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Outcome[model.GeneratedStory]), args.Error(1)
}

func (m *MockGenerationService) Script(ctx context.Context, in service.ScriptRequest) (*service.Outcome[model.GeneratedScript], error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Outcome[model.GeneratedScript]), args.Error(1)
}

func (m *MockGenerationService) Praise(ctx context.Context, in service.PraiseRequest) (*service.Outcome[model.Praise], error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Outcome[model.Praise]), args.Error(1)
}

// MockCatalogService is a mock implementation of service.CatalogService
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) Stories(ctx context.Context) ([]model.Story, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Story), args.Error(1)
}

func (m *MockCatalogService) Scripts(ctx context.Context, emotion model.Emotion, intensity int) (*service.ScriptSelection, error) {
	args := m.Called(ctx, emotion, intensity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ScriptSelection), args.Error(1)
}

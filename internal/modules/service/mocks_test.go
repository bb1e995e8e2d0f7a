package service

import (
	"context"
	"sync"

	"github.com/emotionlab/server/internal/infra/blob"
	"github.com/emotionlab/server/internal/infra/httpclient"
	"github.com/emotionlab/server/internal/infra/llm"
	"github.com/emotionlab/server/internal/modules/model"
	"github.com/emotionlab/server/internal/modules/repo"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockSessionRepo is a mock implementation of SessionRepo
type MockSessionRepo struct {
	mock.Mock
}

func (m *MockSessionRepo) Create(ctx context.Context, s *model.Session) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSessionRepo) Get(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *MockSessionRepo) GetWithRounds(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *MockSessionRepo) SetObserverContext(ctx context.Context, id uuid.UUID, roundNumber int, a *model.Analysis) error {
	args := m.Called(ctx, id, roundNumber, a)
	return args.Error(0)
}

// MockRoundRepo is a mock implementation of RoundRepo
type MockRoundRepo struct {
	mock.Mock
}

func (m *MockRoundRepo) Create(ctx context.Context, r *model.Round) (*model.Round, bool, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*model.Round), args.Bool(1), args.Error(2)
}

func (m *MockRoundRepo) Get(ctx context.Context, id uuid.UUID) (*model.Round, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Round), args.Error(1)
}

func (m *MockRoundRepo) GetByNumber(ctx context.Context, sessionID uuid.UUID, roundNumber int) (*model.Round, error) {
	args := m.Called(ctx, sessionID, roundNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Round), args.Error(1)
}

func (m *MockRoundRepo) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.Round, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Round), args.Error(1)
}

func (m *MockRoundRepo) Update(ctx context.Context, id uuid.UUID, patch repo.RoundPatch) (*repo.RoundUpdateResult, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repo.RoundUpdateResult), args.Error(1)
}

func (m *MockRoundRepo) MergeStageResult(ctx context.Context, sessionID uuid.UUID, roundNumber int, res repo.StageResult) error {
	args := m.Called(ctx, sessionID, roundNumber, res)
	return args.Error(0)
}

// MockCatalogRepo is a mock implementation of CatalogRepo
type MockCatalogRepo struct {
	mock.Mock
}

func (m *MockCatalogRepo) ListStories(ctx context.Context) ([]model.Story, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Story), args.Error(1)
}

func (m *MockCatalogRepo) GetStory(ctx context.Context, id uuid.UUID) (*model.Story, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Story), args.Error(1)
}

func (m *MockCatalogRepo) GetStoriesByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Story, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Story), args.Error(1)
}

func (m *MockCatalogRepo) GetScript(ctx context.Context, id uuid.UUID) (*model.RegulationScript, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RegulationScript), args.Error(1)
}

func (m *MockCatalogRepo) FindScripts(ctx context.Context, emotion model.Emotion, intensity int) ([]model.RegulationScript, error) {
	args := m.Called(ctx, emotion, intensity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RegulationScript), args.Error(1)
}

func (m *MockCatalogRepo) GenericScripts(ctx context.Context) ([]model.RegulationScript, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RegulationScript), args.Error(1)
}

func (m *MockCatalogRepo) CountStories(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCatalogRepo) UpsertStories(ctx context.Context, stories []model.Story) error {
	args := m.Called(ctx, stories)
	return args.Error(0)
}

func (m *MockCatalogRepo) UpsertScripts(ctx context.Context, scripts []model.RegulationScript) error {
	args := m.Called(ctx, scripts)
	return args.Error(0)
}

// MockGenerationLogRepo is a mock implementation of GenerationLogRepo
type MockGenerationLogRepo struct {
	mock.Mock
}

func (m *MockGenerationLogRepo) Create(ctx context.Context, l *model.GenerationLog) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockGenerationLogRepo) FallbackRate(ctx context.Context, kind model.GenerationKind) (float64, int64, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).(float64), args.Get(1).(int64), args.Error(2)
}

// MockProvider is a mock implementation of llm.Provider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	args := m.Called(ctx, req)
	if fn, ok := args.Get(0).(func(context.Context) (*llm.Response, error)); ok {
		return fn(ctx)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Response), args.Error(1)
}

// MockProfiles is a mock implementation of ProfileLookup
type MockProfiles struct {
	mock.Mock
}

func (m *MockProfiles) GetChildProfile(ctx context.Context, childID uuid.UUID) (*httpclient.ChildProfile, error) {
	args := m.Called(ctx, childID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*httpclient.ChildProfile), args.Error(1)
}

// MockPublisher is a mock implementation of Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishJSON(ctx context.Context, exchangeName string, routingKey string, body any) error {
	args := m.Called(ctx, exchangeName, routingKey, body)
	return args.Error(0)
}

// MockArchiver is a mock implementation of Archiver
type MockArchiver struct {
	mock.Mock
}

func (m *MockArchiver) UploadJSON(ctx context.Context, sub string, data any) (*blob.UploadedMeta, error) {
	args := m.Called(ctx, sub, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*blob.UploadedMeta), args.Error(1)
}

// recordingAudit captures audit entries synchronously.
type recordingAudit struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func (r *recordingAudit) Record(_ context.Context, e AuditEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func (r *recordingAudit) Wait() {}

func (r *recordingAudit) all() []AuditEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]AuditEntry{}, r.entries...)
}

// recordingAlerts captures crisis alerts synchronously.
type recordingAlerts struct {
	mu     sync.Mutex
	alerts []SafetyAlert
}

func (r *recordingAlerts) Crisis(_ context.Context, a SafetyAlert) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, a)
}

func (r *recordingAlerts) Wait() {}

func (r *recordingAlerts) all() []SafetyAlert {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]SafetyAlert{}, r.alerts...)
}

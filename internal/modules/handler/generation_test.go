package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/emotionlab/server/internal/modules/model"
	"github.com/emotionlab/server/internal/modules/serializer"
	"github.com/emotionlab/server/internal/modules/service"
	"github.com/emotionlab/server/internal/pkg/safety"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupGenerationRouter(svc *MockGenerationService) *gin.Engine {
	r := gin.New()
	h := NewGenerationHandler(svc)
	r.POST("/generate/analysis", h.Analysis)
	r.POST("/generate/story", h.Story)
	r.POST("/generate/script", h.Script)
	r.POST("/generate/praise", h.Praise)
	return r
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGenerationHandler_ScriptTimeoutIsSuccess(t *testing.T) {
	svc := &MockGenerationService{}
	timedOut := safety.Fail(safety.FlagTimeout, "script generation exceeded 10s")
	svc.On("Script", mock.Anything, service.ScriptRequest{
		ScriptInput: model.ScriptInput{Emotion: model.EmotionAngry, Intensity: 4},
	}).Return(&service.Outcome[model.GeneratedScript]{
		Content:      model.GeneratedScript{Name: "Dragon Breath", Steps: []model.ScriptStep{{Instruction: "Breathe out slowly", DurationSeconds: 10}}},
		FallbackUsed: true,
		Safety:       timedOut,
		Metadata:     model.StageMetadata{Model: service.StaticModel, FallbackUsed: true, SafetyFlags: timedOut.Flags},
	}, nil)
	router := setupGenerationRouter(svc)

	w := postJSON(router, "/generate/script", `{"emotion":"angry","intensity":4}`)
	require.Equal(t, http.StatusOK, w.Code)

	var res serializer.ScriptResponse
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.True(t, res.FallbackUsed)
	assert.Equal(t, "Dragon Breath", res.Script.Name)
	assert.Equal(t, []string{safety.FlagTimeout}, res.SafetyResult.Flags)
	assert.Equal(t, service.StaticModel, res.Metadata.Model)
}

func TestGenerationHandler_StoryTarget(t *testing.T) {
	sessionID, childID := uuid.New(), uuid.New()
	svc := &MockGenerationService{}
	svc.On("Story", mock.Anything, mock.MatchedBy(func(in service.StoryRequest) bool {
		return in.Target != nil && in.Target.SessionID == sessionID && in.Target.RoundNumber == 3 &&
			in.ChildID == childID && in.Complexity == 2
	})).Return(&service.Outcome[model.GeneratedStory]{
		Content: model.GeneratedStory{Title: "Thunder Night", TargetEmotion: model.EmotionScared},
		Safety:  safety.Pass(),
	}, nil)
	svc.On("Story", mock.Anything, mock.Anything).Return(nil, service.ErrChildNotFound)
	router := setupGenerationRouter(svc)

	w := postJSON(router, "/generate/story", `{"session_id":"`+sessionID.String()+`","round_number":3,"child_id":"`+childID.String()+`","target_emotion":"scared"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var res serializer.StoryResponse
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "Thunder Night", res.Story.Title)
	assert.False(t, res.FallbackUsed)

	w = postJSON(router, "/generate/story", `{"child_id":"`+uuid.NewString()+`","target_emotion":"scared"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, serializer.CodeNotFound, decodeErr(t, w).Error)
}

func TestGenerationHandler_Validation(t *testing.T) {
	router := setupGenerationRouter(&MockGenerationService{})

	tests := []struct {
		name string
		path string
		body string
	}{
		{"script unknown emotion", "/generate/script", `{"emotion":"bored","intensity":3}`},
		{"script intensity too high", "/generate/script", `{"emotion":"sad","intensity":9}`},
		{"story without child", "/generate/story", `{"target_emotion":"sad"}`},
		{"story complexity too high", "/generate/story", `{"child_id":"` + uuid.NewString() + `","target_emotion":"sad","complexity":9}`},
		{"session without round", "/generate/praise", `{"session_id":"` + uuid.NewString() + `"}`},
		{"analysis missing intensities", "/generate/analysis", `{"round_number":1,"target_emotion":"sad","labeled_emotion":"sad"}`},
		{"malformed json", "/generate/praise", `{"nickname":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(router, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, serializer.CodeValidation, decodeErr(t, w).Error)
		})
	}
}

func TestGenerationHandler_AnalysisDerivesCorrectness(t *testing.T) {
	svc := &MockGenerationService{}
	svc.On("Analyze", mock.Anything, mock.MatchedBy(func(in service.AnalysisRequest) bool {
		return in.IsCorrect && in.Target == nil && in.RoundNumber == 2
	})).Return(&service.Outcome[model.Analysis]{Content: model.Analysis{RoundNumber: 2, Summary: "ok"}, Safety: safety.Pass()}, nil)
	router := setupGenerationRouter(svc)

	w := postJSON(router, "/generate/analysis", `{"round_number":2,"target_emotion":"sad","labeled_emotion":"sad","pre_intensity":3,"post_intensity":2}`)
	require.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestGenerationHandler_PraiseClosedSessionStillServed(t *testing.T) {
	sessionID := uuid.New()
	svc := &MockGenerationService{}
	svc.On("Praise", mock.Anything, mock.Anything).Return(&service.Outcome[model.Praise]{
		Content: model.Praise{Message: "You did it!"},
		Safety:  safety.Pass(),
	}, nil)
	router := setupGenerationRouter(svc)

	w := postJSON(router, "/generate/praise", `{"session_id":"`+sessionID.String()+`","round_number":5,"nickname":"Mia","is_correct":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	var res serializer.PraiseResponse
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "You did it!", res.Praise.Message)
}

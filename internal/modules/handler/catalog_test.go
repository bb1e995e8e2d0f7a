package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/emotionlab/server/internal/modules/model"
	"github.com/emotionlab/server/internal/modules/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupCatalogRouter(svc *MockCatalogService) *gin.Engine {
	r := gin.New()
	h := NewCatalogHandler(svc)
	r.GET("/catalog/stories", h.ListStories)
	r.GET("/catalog/scripts", h.ListScripts)
	return r
}

func TestCatalogHandler_ListScripts(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		setup          func(*MockCatalogService)
		expectedStatus int
	}{
		{
			name:  "match",
			query: "?emotion=angry&intensity=4",
			setup: func(svc *MockCatalogService) {
				svc.On("Scripts", mock.Anything, model.EmotionAngry, 4).
					Return(&service.ScriptSelection{Scripts: []model.RegulationScript{{Name: "Dragon Breath"}}}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing intensity",
			query:          "?emotion=angry",
			setup:          func(*MockCatalogService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown emotion",
			query:          "?emotion=meh&intensity=2",
			setup:          func(*MockCatalogService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:  "store failure",
			query: "?emotion=calm&intensity=1",
			setup: func(svc *MockCatalogService) {
				svc.On("Scripts", mock.Anything, model.EmotionCalm, 1).Return(nil, errors.New("down"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockCatalogService{}
			tt.setup(svc)
			router := setupCatalogRouter(svc)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest("GET", "/catalog/scripts"+tt.query, nil))
			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestCatalogHandler_ListStories(t *testing.T) {
	svc := &MockCatalogService{}
	svc.On("Stories", mock.Anything).Return([]model.Story{{Title: "Sunny Kite"}}, nil)
	router := setupCatalogRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/catalog/stories", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Sunny Kite")
}

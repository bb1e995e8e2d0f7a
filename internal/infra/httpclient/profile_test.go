package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/emotionlab/server/internal/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestProfileClient(t *testing.T, h http.HandlerFunc) *ProfileClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewProfileClient(&config.Config{Profile: config.ProfileCfg{BaseURL: srv.URL}}, zap.NewNop())
}

func TestGetChildProfile(t *testing.T) {
	childID := uuid.New()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantAny bool
		want    *ChildProfile
	}{
		{
			name:   "ok",
			status: http.StatusOK,
			body:   `{"id":"` + childID.String() + `","nickname":"Mia","age_band":"6-8"}`,
			want:   &ChildProfile{ID: childID, Nickname: "Mia", AgeBand: "6-8"},
		},
		{
			name:    "not found",
			status:  http.StatusNotFound,
			body:    `{}`,
			wantErr: ErrChildNotFound,
		},
		{
			name:    "server error",
			status:  http.StatusBadGateway,
			body:    `upstream down`,
			wantAny: true,
		},
		{
			name:    "missing age band",
			status:  http.StatusOK,
			body:    `{"id":"` + childID.String() + `","nickname":"Mia"}`,
			wantAny: true,
		},
		{
			name:    "bad json",
			status:  http.StatusOK,
			body:    `{`,
			wantAny: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestProfileClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/v1/children/"+childID.String(), r.URL.Path)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			got, err := c.GetChildProfile(context.Background(), childID)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantAny:
				assert.Error(t, err)
				assert.NotErrorIs(t, err, ErrChildNotFound)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestGetChildProfile_NoBaseURL(t *testing.T) {
	c := NewProfileClient(&config.Config{}, zap.NewNop())
	_, err := c.GetChildProfile(context.Background(), uuid.New())
	assert.Error(t, err)
}

// Package client talks to the Emotion Lab HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/emotionlab/server/internal/modules/model"
	"github.com/emotionlab/server/internal/pkg/poller"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Error codes returned in the error envelope.
const (
	CodeValidation       = "validation_error"
	CodeNotFound         = "not_found"
	CodeSessionCompleted = "session_completed"
	CodeRateLimited      = "rate_limited"
)

// APIError is a non-2xx reply carrying the server's error envelope.
type APIError struct {
	Status int
	Code   string
	Msg    string
}

func (e *APIError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%d %s", e.Status, e.Code)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Msg)
}

// IsCode reports whether err is an APIError with the given error code.
func IsCode(err error, code string) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Code == code
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Msg     string          `json:"msg"`
}

type SessionDetail struct {
	Session *model.Session `json:"session"`
	Rounds  []model.Round  `json:"rounds"`
	Stories []model.Story  `json:"stories"`
}

type Readiness struct {
	Ready bool         `json:"ready"`
	Round *model.Round `json:"round"`
}

type UpdateResult struct {
	Round            *model.Round `json:"round"`
	Completed        bool         `json:"completed"`
	SessionCompleted bool         `json:"session_completed"`
}

type RoundPatch struct {
	LabeledEmotion     *model.Emotion `json:"labeled_emotion,omitempty"`
	PreIntensity       *int           `json:"pre_intensity,omitempty"`
	PostIntensity      *int           `json:"post_intensity,omitempty"`
	RegulationScriptID *uuid.UUID     `json:"regulation_script_id,omitempty"`
}

type PraiseRequest struct {
	SessionID      *uuid.UUID    `json:"session_id,omitempty"`
	RoundNumber    int           `json:"round_number,omitempty"`
	Nickname       string        `json:"nickname,omitempty"`
	Highlight      string        `json:"highlight,omitempty"`
	LabeledEmotion model.Emotion `json:"labeled_emotion,omitempty"`
	IsCorrect      *bool         `json:"is_correct,omitempty"`
	PreIntensity   int           `json:"pre_intensity,omitempty"`
	PostIntensity  int           `json:"post_intensity,omitempty"`
}

type PraiseResult struct {
	Success      bool                `json:"success"`
	Praise       model.Praise        `json:"praise"`
	FallbackUsed bool                `json:"fallback_used"`
	Metadata     model.StageMetadata `json:"metadata"`
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
	Poll       poller.Config
}

// New returns a client for the API rooted at baseURL, e.g. http://localhost:8029.
func New(baseURL string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/") + "/api/v1",
		HTTPClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		Logger: log,
		Poll:   poller.DefaultConfig(),
	}
}

// do sends body as JSON and decodes the reply into out. With enveloped set, out receives
// the data member of the success envelope.
func (c *Client) do(ctx context.Context, method, path string, body, out any, enveloped bool) (int, error) {
	var rd io.Reader
	if body != nil {
		b, err := sonic.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= 300 {
		var env envelope
		_ = sonic.Unmarshal(raw, &env)
		c.Logger.Debug("api request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode),
			zap.String("error", env.Error))
		return resp.StatusCode, &APIError{Status: resp.StatusCode, Code: env.Error, Msg: env.Msg}
	}
	if out == nil {
		return resp.StatusCode, nil
	}

	if !enveloped {
		if err := sonic.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, fmt.Errorf("unmarshal response: %w", err)
		}
		return resp.StatusCode, nil
	}
	var env envelope
	if err := sonic.Unmarshal(raw, &env); err != nil {
		return resp.StatusCode, fmt.Errorf("unmarshal response: %w", err)
	}
	if err := sonic.Unmarshal(env.Data, out); err != nil {
		return resp.StatusCode, fmt.Errorf("unmarshal data: %w", err)
	}
	return resp.StatusCode, nil
}

func (c *Client) CreateSession(ctx context.Context, childID uuid.UUID, agentEnabled bool) (*model.Session, error) {
	var out model.Session
	body := map[string]any{"child_id": childID, "agent_enabled": agentEnabled}
	if _, err := c.do(ctx, http.MethodPost, "/sessions", body, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetSession(ctx context.Context, id uuid.UUID) (*SessionDetail, error) {
	var out SessionDetail
	if _, err := c.do(ctx, http.MethodGet, "/sessions/"+id.String(), nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateRound idempotently creates round n. created is false when it already existed.
func (c *Client) CreateRound(ctx context.Context, sessionID uuid.UUID, n int) (round *model.Round, created bool, err error) {
	var out model.Round
	status, err := c.do(ctx, http.MethodPost, "/sessions/"+sessionID.String()+"/rounds",
		map[string]int{"round_number": n}, &out, true)
	if err != nil {
		return nil, false, err
	}
	return &out, status == http.StatusCreated, nil
}

func (c *Client) PrepareRound(ctx context.Context, sessionID uuid.UUID, n int) (*model.Round, error) {
	var out model.Round
	path := fmt.Sprintf("/sessions/%s/rounds/%d/prepare", sessionID, n)
	if _, err := c.do(ctx, http.MethodPost, path, nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Readiness(ctx context.Context, sessionID uuid.UUID, n int) (*Readiness, error) {
	var out Readiness
	path := fmt.Sprintf("/sessions/%s/rounds/%d/readiness", sessionID, n)
	if _, err := c.do(ctx, http.MethodGet, path, nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateRound(ctx context.Context, sessionID, roundID uuid.UUID, p RoundPatch) (*UpdateResult, error) {
	var out UpdateResult
	path := fmt.Sprintf("/sessions/%s/rounds/%s", sessionID, roundID)
	if _, err := c.do(ctx, http.MethodPatch, path, p, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Stories(ctx context.Context) ([]model.Story, error) {
	var out []model.Story
	if _, err := c.do(ctx, http.MethodGet, "/catalog/stories", nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Scripts(ctx context.Context, emotion model.Emotion, intensity int) ([]model.RegulationScript, error) {
	q := url.Values{}
	q.Set("emotion", string(emotion))
	q.Set("intensity", strconv.Itoa(intensity))
	var out []model.RegulationScript
	if _, err := c.do(ctx, http.MethodGet, "/catalog/scripts?"+q.Encode(), nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GeneratePraise(ctx context.Context, req PraiseRequest) (*PraiseResult, error) {
	var out PraiseResult
	if _, err := c.do(ctx, http.MethodPost, "/generate/praise", req, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// WaitRoundReady polls readiness with backoff until the round can be presented. Rate
// limited and failed polls count as not ready. It returns poller.ErrStillPreparing once
// the attempt ceiling is reached.
func (c *Client) WaitRoundReady(ctx context.Context, sessionID uuid.UUID, n int) (*model.Round, error) {
	h := poller.Start(ctx, c.Poll, func(ctx context.Context) (*model.Round, bool, error) {
		r, err := c.Readiness(ctx, sessionID, n)
		if err != nil {
			if IsCode(err, CodeNotFound) {
				return nil, false, err
			}
			c.Logger.Debug("readiness poll", zap.Int("round_number", n), zap.Error(err))
			return nil, false, nil
		}
		return r.Round, r.Ready, nil
	})
	return h.Wait(ctx)
}

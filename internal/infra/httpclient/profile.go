package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/emotionlab/server/internal/config"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

var ErrChildNotFound = errors.New("child not found")

// ChildProfile is the subset of the child record generation needs.
type ChildProfile struct {
	ID       uuid.UUID `json:"id"`
	Nickname string    `json:"nickname"`
	AgeBand  string    `json:"age_band"`
}

// ProfileClient is the HTTP client for the child profile service
type ProfileClient struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// NewProfileClient creates a new ProfileClient with OpenTelemetry instrumentation
func NewProfileClient(cfg *config.Config, log *zap.Logger) *ProfileClient {
	return &ProfileClient{
		BaseURL: cfg.Profile.BaseURL,
		HTTPClient: &http.Client{
			Timeout:   5 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		Logger: log,
	}
}

// GetChildProfile fetches the profile of childID. A 404 maps to ErrChildNotFound.
func (c *ProfileClient) GetChildProfile(ctx context.Context, childID uuid.UUID) (*ChildProfile, error) {
	if c.BaseURL == "" {
		return nil, errors.New("profile service base url not configured")
	}
	endpoint := fmt.Sprintf("%s/api/v1/children/%s", c.BaseURL, childID.String())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrChildNotFound
	case resp.StatusCode != http.StatusOK:
		c.Logger.Error("get_child_profile request failed",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(respBody)))
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var result ChildProfile
	if err := sonic.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if result.AgeBand == "" {
		return nil, errors.New("child profile has no age band")
	}

	return &result, nil
}

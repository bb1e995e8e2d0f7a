package service

import (
	"context"
	"time"

	"github.com/emotionlab/server/internal/infra/blob"
	"github.com/emotionlab/server/internal/infra/httpclient"
	"github.com/google/uuid"
)

// Publisher is satisfied by *mq.Publisher.
type Publisher interface {
	PublishJSON(ctx context.Context, exchangeName string, routingKey string, body any) error
}

// ProfileLookup is satisfied by *httpclient.ProfileClient.
type ProfileLookup interface {
	GetChildProfile(ctx context.Context, childID uuid.UUID) (*httpclient.ChildProfile, error)
}

// Archiver is satisfied by *blob.S3Deps.
type Archiver interface {
	UploadJSON(ctx context.Context, sub string, data any) (*blob.UploadedMeta, error)
}

// ThrottleFunc claims key for ttl and reports whether the claim succeeded.
type ThrottleFunc func(ctx context.Context, key string, ttl time.Duration) (bool, error)

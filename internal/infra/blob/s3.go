package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/bytedance/sonic"
	"github.com/emotionlab/server/internal/config"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"
)

var ErrDisabled = errors.New("s3 archive disabled")

type S3Deps struct {
	Client   *s3.Client
	Uploader *manager.Uploader
	Bucket   string
	Prefix   string
}

type UploadedMeta struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	Size   int64  `json:"size"`
}

func NewS3(ctx context.Context, cfg *config.Config) (*S3Deps, error) {
	if !cfg.S3.Enabled {
		return nil, ErrDisabled
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3.Region),
	}
	if cfg.S3.AccessKey != "" && cfg.S3.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3.AccessKey, cfg.S3.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	otelaws.AppendMiddlewares(&awsCfg.APIOptions)

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3.UsePathStyle
		if cfg.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3.Endpoint)
		}
	})

	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		if cfg.S3.UploadPartBytes >= manager.MinUploadPartSize {
			u.PartSize = cfg.S3.UploadPartBytes
		}
	})

	return &S3Deps{
		Client:   client,
		Uploader: uploader,
		Bucket:   cfg.S3.Bucket,
		Prefix:   cfg.S3.AuditPrefix,
	}, nil
}

// ObjectKey returns <prefix>/<sub>/<yyyy>/<mm>/<dd>/<uuid>.json.
func (u *S3Deps) ObjectKey(sub string, now time.Time) string {
	return path.Join(u.Prefix, sub, now.UTC().Format("2006/01/02"), uuid.NewString()+".json")
}

// UploadJSON marshals data and stores it under a fresh key below sub.
func (u *S3Deps) UploadJSON(ctx context.Context, sub string, data any) (*UploadedMeta, error) {
	b, err := sonic.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	key := u.ObjectKey(sub, time.Now())
	if _, err := u.Uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(b),
		ContentType: aws.String("application/json"),
	}); err != nil {
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}

	return &UploadedMeta{Bucket: u.Bucket, Key: key, Size: int64(len(b))}, nil
}

//go:generate go run go.uber.org/mock/mockgen -source=s3.go -destination=../mocks/mock_media_store.go -package=mocks
// Package media uploads user images to an S3-compatible object store and
// returns the public URL persisted on message and user records.
package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"pairchat/errors"
)

type IStore interface {
	Upload(ctx context.Context, data []byte) (string, error)
}

type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	PublicURL string // base URL under which uploaded objects are reachable
}

// S3Store uploads raw image bytes and returns their public URL.
type S3Store struct {
	client *s3.Client
	config Config
	log    *slog.Logger
}

func NewS3Store(ctx context.Context, config Config, log *slog.Logger) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(config.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			config.AccessKey, config.SecretKey, "",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if config.Endpoint != "" {
			o.BaseEndpoint = aws.String(config.Endpoint)
			o.UsePathStyle = true // MinIO and friends
		}
	})
	return &S3Store{client: client, config: config, log: log}, nil
}

// Upload sniffs the payload, rejects non-images, and stores the object
// under a date-partitioned random key.
func (s *S3Store) Upload(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.Validation("empty image payload")
	}

	kind := mimetype.Detect(data)
	if !strings.HasPrefix(kind.String(), "image/") {
		return "", errors.Validation("unsupported media type " + kind.String())
	}

	key := storageKey(kind.Extension())
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(kind.String()),
	})
	if err != nil {
		return "", errors.Upstream("Failed to upload image", err)
	}

	url := fmt.Sprintf("%s/%s", strings.TrimRight(s.config.PublicURL, "/"), key)
	s.log.Debug("Image uploaded", "key", key, "mime", kind.String(), "bytes", len(data))
	return url, nil
}

func storageKey(extension string) string {
	now := time.Now().UTC()
	return fmt.Sprintf("uploads/%d/%02d/%02d/%s%s",
		now.Year(), now.Month(), now.Day(), uuid.New(), extension)
}

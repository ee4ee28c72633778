package asset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wildpitch/wildpitch/internal/config"
	"github.com/wildpitch/wildpitch/internal/pkg/crypto"
)

// S3Store implements Store on an S3-compatible object store.
type S3Store struct {
	client *s3.Client
	bucket string
	// baseURL is the prefix public object URLs are built from.
	baseURL string
	logger  zerolog.Logger
}

// NewS3Store creates an S3-backed asset store.
// A custom endpoint (MinIO, localstack) is honored when set.
func NewS3Store(ctx context.Context, cfg config.S3AssetsConfig, logger zerolog.Logger) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	baseURL := cfg.Endpoint
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	} else {
		baseURL = strings.TrimSuffix(baseURL, "/") + "/" + cfg.Bucket
	}

	return &S3Store{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: baseURL,
		logger:  logger.With().Str("component", "asset_s3").Logger(),
	}, nil
}

// Upload stores image content under a random key and returns its public URL.
func (s *S3Store) Upload(ctx context.Context, reader io.Reader, contentType string) (*StoredAsset, error) {
	ext, err := extensionFor(contentType)
	if err != nil {
		return nil, err
	}

	key := "campgrounds/" + uuid.New().String() + ext

	hashed := crypto.NewHashReader(reader)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        hashed,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload asset: %w", err)
	}

	s.logger.Debug().
		Str("key", key).
		Str("sha256", hashed.SHA256()).
		Int64("bytes", hashed.Size()).
		Msg("asset uploaded")

	return &StoredAsset{
		URL:        s.baseURL + "/" + key,
		StorageKey: key,
		SHA256:     hashed.SHA256(),
		Size:       hashed.Size(),
	}, nil
}

// Delete removes an image by storage key.
func (s *S3Store) Delete(ctx context.Context, storageKey string) error {
	// HeadObject first: S3 DeleteObject succeeds on missing keys, but the
	// Store contract distinguishes them.
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageKey),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return ErrAssetNotFound
		}
		return fmt.Errorf("failed to stat asset: %w", err)
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageKey),
	})
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}

	s.logger.Debug().Str("key", storageKey).Msg("asset deleted")
	return nil
}

// Ensure S3Store implements Store.
var _ Store = (*S3Store)(nil)

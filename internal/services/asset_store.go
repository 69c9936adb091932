package services

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AssetRef points at an uploaded design-reference image
type AssetRef struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// AssetStore persists design-reference images for order records
type AssetStore interface {
	Upload(ctx context.Context, filename string, content []byte, contentType string) (*AssetRef, error)
}

// S3AssetStore implements AssetStore on AWS S3
type S3AssetStore struct {
	client    *s3.Client
	uploader  *manager.Uploader
	bucket    string
	keyPrefix string
	region    string
	logger    *logrus.Entry
}

// NewS3AssetStore creates a new S3-backed asset store
func NewS3AssetStore(cfg *ProviderConfig, bucket, keyPrefix string, logger *logrus.Logger) (*S3AssetStore, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	var awsOpts []func(*awsconfig.LoadOptions) error
	if cfg.AWSRegion != "" {
		awsOpts = append(awsOpts, awsconfig.WithRegion(cfg.AWSRegion))
	}
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		awsOpts = append(awsOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.AWSAccessKeyID,
				cfg.AWSSecretAccessKey,
				"",
			),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)

	return &S3AssetStore{
		client:    client,
		uploader:  manager.NewUploader(client),
		bucket:    bucket,
		keyPrefix: keyPrefix,
		region:    cfg.AWSRegion,
		logger:    logger.WithField("component", "asset_store"),
	}, nil
}

// Upload stores the image under a generated key and returns its reference
func (s *S3AssetStore) Upload(ctx context.Context, filename string, content []byte, contentType string) (*AssetRef, error) {
	key := fmt.Sprintf("%s%s%s", s.keyPrefix, uuid.New().String(), filepath.Ext(filename))

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 upload failed: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"bucket": s.bucket,
		"key":    key,
		"bytes":  len(content),
	}).Info("Design image uploaded")

	return &AssetRef{
		Key: key,
		URL: fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key),
	}, nil
}

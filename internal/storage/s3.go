package storage

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Config struct {
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	// PublicURL overrides the virtual-hosted bucket URL, e.g. a CDN in front of the bucket.
	PublicURL string
}

// S3Storage stores uploads as S3 objects.
type S3Storage struct {
	client  *s3.Client
	bucket  string
	baseURL string
	maxSize int64
}

func NewS3(ctx context.Context, cfg S3Config, maxSize int64) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	baseURL := strings.TrimSuffix(cfg.PublicURL, "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return &S3Storage{
		client:  s3.NewFromConfig(awsCfg),
		bucket:  cfg.Bucket,
		baseURL: baseURL,
		maxSize: maxSize,
	}, nil
}

func (s *S3Storage) Save(ctx context.Context, prefix string, fh *multipart.FileHeader, allowed map[string]bool) (string, error) {
	up, err := open(fh, prefix, allowed, s.maxSize)
	if err != nil {
		return "", err
	}
	defer up.file.Close()

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(up.key),
		Body:          up.file,
		ContentType:   aws.String(up.mimeType),
		ContentLength: aws.Int64(fh.Size),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put %s: %w", up.key, err)
	}
	return s.baseURL + "/" + up.key, nil
}

func (s *S3Storage) Delete(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok || key == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

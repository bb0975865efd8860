package storage

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ObjectAPI is the subset of the S3 client used by S3Service.
type ObjectAPI interface {
	manager.UploadAPIClient
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config describes where media objects live and how their URLs are built.
type S3Config struct {
	Bucket        string
	KeyPrefix     string
	Endpoint      string
	Region        string
	PublicBaseURL string
}

// S3Service keeps media objects in Amazon S3 (or compatible APIs).
type S3Service struct {
	client   ObjectAPI
	uploader *manager.Uploader
	cfg      S3Config
}

func NewS3Service(client ObjectAPI, cfg S3Config) *S3Service {
	cfg.KeyPrefix = strings.Trim(cfg.KeyPrefix, "/")
	return &S3Service{
		client:   client,
		uploader: manager.NewUploader(client),
		cfg:      cfg,
	}
}

func (s *S3Service) Upload(ctx context.Context, localPath string, opts UploadOptions) (*Asset, error) {
	if s.cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}
	if strings.TrimSpace(opts.StorageID) == "" {
		return nil, ErrEmptyStorageID
	}

	f, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("open file %s: %w", localPath, err)
	}
	defer f.Close()

	key := s.objectKey(opts.StorageID)
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
		Body:   f,
		ACL:    types.ObjectCannedACLPublicRead,
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}
	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return nil, fmt.Errorf("upload %s: %w", localPath, err)
	}

	return &Asset{URL: s.objectURL(key), StorageID: opts.StorageID}, nil
}

func (s *S3Service) Delete(ctx context.Context, storageID string) error {
	if s.cfg.Bucket == "" {
		return fmt.Errorf("storage bucket is required")
	}
	if strings.TrimSpace(storageID) == "" {
		return ErrEmptyStorageID
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.objectKey(storageID)),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", storageID, err)
	}
	return nil
}

func (s *S3Service) objectKey(storageID string) string {
	if s.cfg.KeyPrefix == "" {
		return storageID
	}
	return s.cfg.KeyPrefix + "/" + storageID
}

func (s *S3Service) objectURL(key string) string {
	if base := strings.TrimRight(s.cfg.PublicBaseURL, "/"); base != "" {
		return base + "/" + key
	}
	if endpoint := strings.TrimRight(s.cfg.Endpoint, "/"); endpoint != "" {
		return endpoint + "/" + s.cfg.Bucket + "/" + key
	}
	region := s.cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, region, key)
}

var _ Service = (*S3Service)(nil)

package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/google/uuid"

	"social-go/internal/config"
	"social-go/internal/mediatypes"
)

// S3MediaStore stores media objects in an S3 (or S3-compatible) bucket.
type S3MediaStore struct {
	client   *s3.S3
	uploader *s3manager.Uploader
	bucket   string
	baseURL  string
	prefix   string
}

// NewS3MediaStore builds a session from cfg. Static credentials are used when
// given; otherwise the default AWS credential chain applies.
func NewS3MediaStore(cfg config.S3Config) (*S3MediaStore, error) {
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("s3 bucket name is required")
	}
	awsCfg := &aws.Config{
		Region: aws.String(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.amazonaws.com", cfg.BucketName)
	}
	return &S3MediaStore{
		client:   s3.New(sess),
		uploader: s3manager.NewUploader(sess),
		bucket:   cfg.BucketName,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		prefix:   "media/",
	}, nil
}

func (s *S3MediaStore) Store(ctx context.Context, reader io.Reader, size int64, fileName, mimeType string) (*mediatypes.MediaRef, error) {
	key := s.prefix + uuid.New().String() + extensionFor(fileName, mimeType)
	input := &s3manager.UploadInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   reader,
	}
	if mimeType != "" {
		input.ContentType = aws.String(mimeType)
	}
	if _, err := s.uploader.UploadWithContext(ctx, input); err != nil {
		return nil, fmt.Errorf("upload %s to s3: %w", key, err)
	}
	return &mediatypes.MediaRef{
		Key:      key,
		URL:      s.baseURL + "/" + key,
		MimeType: mimeType,
		Size:     size,
		FileName: fileName,
	}, nil
}

// Delete removes the object. S3 reports success for keys that do not exist.
func (s *S3MediaStore) Delete(ctx context.Context, ref mediatypes.MediaRef) error {
	if ref.Key == "" {
		return fmt.Errorf("empty media key")
	}
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ref.Key),
	})
	if err != nil {
		return fmt.Errorf("delete %s from s3: %w", ref.Key, err)
	}
	return nil
}

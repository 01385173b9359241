package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

const maxCoverSize = 5 * 1024 * 1024 // 5MB

var ErrInvalidCover = errors.New("invalid cover image")

type S3Service struct {
	client     *s3.S3
	bucketName string
	region     string
}

func NewS3Service(region, bucketName, accessKey, secretKey string) (*S3Service, error) {
	awsCfg := &aws.Config{Region: aws.String(region)}
	if accessKey != "" && secretKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(accessKey, secretKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}

	return &S3Service{
		client:     s3.New(sess),
		bucketName: bucketName,
		region:     region,
	}, nil
}

type UploadResult struct {
	Key         string
	URL         string
	FileName    string
	ContentType string
	Size        int64
}

// ValidateCover checks the declared type and size of a cover image before
// anything is uploaded.
func ValidateCover(fileName, contentType string, size int64) (string, error) {
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = contentTypeFromExtension(fileName)
	}
	if !isValidImageType(contentType) {
		return "", fmt.Errorf("%w: unsupported file type %s", ErrInvalidCover, contentType)
	}
	if size > maxCoverSize {
		return "", fmt.Errorf("%w: %d bytes exceeds the %d byte limit", ErrInvalidCover, size, maxCoverSize)
	}
	return contentType, nil
}

func (s *S3Service) UploadCover(ctx context.Context, slug string, body io.Reader, fileName, contentType string, size int64) (*UploadResult, error) {
	contentType, err := ValidateCover(fileName, contentType, size)
	if err != nil {
		return nil, err
	}

	buffer := bytes.NewBuffer(nil)
	if _, err := io.Copy(buffer, io.LimitReader(body, maxCoverSize+1)); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if buffer.Len() > maxCoverSize {
		return nil, fmt.Errorf("%w: larger than %d bytes", ErrInvalidCover, maxCoverSize)
	}

	timestamp := time.Now().Format("2006/01/02")
	key := fmt.Sprintf("games/covers/%s/%s/%s%s", slug, timestamp, uuid.NewString(), strings.ToLower(filepath.Ext(fileName)))

	_, err = s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucketName),
		Key:          aws.String(key),
		Body:         bytes.NewReader(buffer.Bytes()),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("max-age=31536000"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &UploadResult{
		Key:         key,
		URL:         fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucketName, s.region, key),
		FileName:    fileName,
		ContentType: contentType,
		Size:        int64(buffer.Len()),
	}, nil
}

func (s *S3Service) DeleteCover(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}

	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	return err
}

func isValidImageType(contentType string) bool {
	validTypes := []string{
		"image/jpeg",
		"image/jpg",
		"image/png",
		"image/gif",
		"image/webp",
	}

	for _, validType := range validTypes {
		if strings.EqualFold(contentType, validType) {
			return true
		}
	}
	return false
}

func contentTypeFromExtension(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const mediaBucket = "agendly-media"

// MediaService stores tenant logos and professional avatars in object storage.
type MediaService interface {
	UploadAvatar(ctx context.Context, tenantID, professionalID uuid.UUID, reader io.Reader, size int64, contentType string) (string, error)
	UploadLogo(ctx context.Context, tenantID uuid.UUID, reader io.Reader, size int64, contentType string) (string, error)
	GetPresignedURL(objectName string, expiry time.Duration) (string, error)
	DeleteObject(ctx context.Context, objectName string) error
	EnsureBucketExists(ctx context.Context) error
}

type mediaService struct {
	client *minio.Client
}

func NewMediaService(endpoint, accessKey, secretKey string, useSSL bool) (MediaService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &mediaService{client: client}, nil
}

func (m *mediaService) UploadAvatar(ctx context.Context, tenantID, professionalID uuid.UUID, reader io.Reader, size int64, contentType string) (string, error) {
	objectName := fmt.Sprintf("%s/avatars/%s", tenantID.String(), professionalID.String())
	return m.upload(ctx, objectName, reader, size, contentType)
}

func (m *mediaService) UploadLogo(ctx context.Context, tenantID uuid.UUID, reader io.Reader, size int64, contentType string) (string, error) {
	objectName := fmt.Sprintf("%s/logo", tenantID.String())
	return m.upload(ctx, objectName, reader, size, contentType)
}

func (m *mediaService) upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := m.client.PutObject(ctx, mediaBucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return objectName, nil
}

func (m *mediaService) GetPresignedURL(objectName string, expiry time.Duration) (string, error) {
	url, err := m.client.PresignedGetObject(context.Background(), mediaBucket, objectName, expiry, nil)
	if err != nil {
		return "", err
	}
	return url.String(), nil
}

func (m *mediaService) DeleteObject(ctx context.Context, objectName string) error {
	return m.client.RemoveObject(ctx, mediaBucket, objectName, minio.RemoveObjectOptions{})
}

func (m *mediaService) EnsureBucketExists(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, mediaBucket)
	if err != nil {
		return err
	}
	if !exists {
		return m.client.MakeBucket(ctx, mediaBucket, minio.MakeBucketOptions{})
	}
	return nil
}

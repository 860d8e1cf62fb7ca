package storage

import (
	"context"
	"errors"
	"io"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader stores result archives in an object store.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}

// NewDisabledUploader backs deployments without object storage
// credentials: every call fails with a clear error.
func NewDisabledUploader() FileUploader {
	return disabledUploader{}
}

type disabledUploader struct{}

var errStorageDisabled = errors.New("object storage is not configured")

func (disabledUploader) Upload(context.Context, string, string, io.Reader) (*UploadResult, error) {
	return nil, errStorageDisabled
}

func (disabledUploader) Delete(context.Context, string) error { return errStorageDisabled }

func (disabledUploader) GetPublicURL(string) string { return "" }

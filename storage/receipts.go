// Package storage keeps receipt images in S3-compatible object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"buildledger/backend/logging"
)

var (
	client     *minio.Client
	bucketName string
)

// ErrNotConfigured is returned when receipt storage was never initialized.
// The rest of the service runs fine without it; only receipt endpoints
// refuse.
var ErrNotConfigured = errors.New("receipt storage not configured")

// InitStorage connects to the object store and ensures the receipts bucket
// exists. With no endpoint configured the service starts without receipt
// support.
func InitStorage() error {
	endpoint := os.Getenv("S3_ENDPOINT")
	if endpoint == "" {
		logging.Logger.Info("S3_ENDPOINT not set, receipt uploads disabled")
		return nil
	}

	bucketName = os.Getenv("S3_BUCKET")
	if bucketName == "" {
		bucketName = "buildledger-receipts"
	}

	useSSL := os.Getenv("S3_USE_SSL") != "false"
	c, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(os.Getenv("S3_ACCESS_KEY"), os.Getenv("S3_SECRET_KEY"), ""),
		Secure: useSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create s3 client: %w", err)
	}

	ctx := context.Background()
	exists, err := c.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := c.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	client = c
	logging.Logger.Infof("Receipt storage initialized (bucket %s)", bucketName)
	return nil
}

// Enabled reports whether receipt storage is available.
func Enabled() bool {
	return client != nil
}

// UploadReceipt stores a receipt image and returns its object name.
func UploadReceipt(ctx context.Context, projectID, expenseID string, r io.Reader, size int64, contentType string) (string, error) {
	if client == nil {
		return "", ErrNotConfigured
	}

	objectName := fmt.Sprintf("projects/%s/receipts/%s", projectID, expenseID)
	_, err := client.PutObject(ctx, bucketName, objectName, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload receipt: %w", err)
	}
	return objectName, nil
}

// ReceiptURL returns a short-lived presigned download link for a stored
// receipt.
func ReceiptURL(ctx context.Context, objectName string) (string, error) {
	if client == nil {
		return "", ErrNotConfigured
	}

	u, err := client.PresignedGetObject(ctx, bucketName, objectName, 15*time.Minute, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign receipt url: %w", err)
	}
	return u.String(), nil
}

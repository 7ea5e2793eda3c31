package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"

	"alugaai-backend/internal/logger"
)

// FirebaseStorage writes blobs to a Firebase Storage bucket and returns
// token-protected download URLs, the same links the mobile SDK produces.
type FirebaseStorage struct {
	bucket     *gcs.BucketHandle
	bucketName string
}

func NewFirebaseStorage(bucket *gcs.BucketHandle, bucketName string) *FirebaseStorage {
	return &FirebaseStorage{bucket: bucket, bucketName: bucketName}
}

func (s *FirebaseStorage) Put(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	if _, err := cleanKey(key); err != nil {
		return "", err
	}
	token := uuid.NewString()

	logger.ExternalServiceCall("firebase-storage", "put", "bucket", s.bucketName, "key", key)
	w := s.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{"firebaseStorageDownloadTokens": token}

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		logger.ExternalServiceResult("firebase-storage", "put", err)
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := w.Close(); err != nil {
		logger.ExternalServiceResult("firebase-storage", "put", err)
		return "", fmt.Errorf("close object writer: %w", err)
	}
	logger.ExternalServiceResult("firebase-storage", "put", nil)
	return downloadURL(s.bucketName, key, token), nil
}

func (s *FirebaseStorage) Delete(ctx context.Context, key string) error {
	logger.ExternalServiceCall("firebase-storage", "delete", "bucket", s.bucketName, "key", key)
	err := s.bucket.Object(key).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		err = nil
	}
	logger.ExternalServiceResult("firebase-storage", "delete", err)
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func downloadURL(bucket, key, token string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		bucket, url.PathEscape(key), url.QueryEscape(token))
}

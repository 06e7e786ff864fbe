package services

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"wearxture_back_end/internal/config"
	"wearxture_back_end/internal/errs"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog/log"
)

// Storage stocke les images et vidéos du catalogue.
type Storage interface {
	Upload(ctx context.Context, folder, filename string, r io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, objectURL string) error
}

type ObjectStorage struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewObjectStorage retourne nil si MinIO n'est pas configuré.
func NewObjectStorage(client *minio.Client, cfg config.MinIOConfig) *ObjectStorage {
	if client == nil {
		return nil
	}
	base := strings.TrimRight(cfg.PublicURL, "/")
	if base == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		base = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}
	return &ObjectStorage{client: client, bucket: cfg.Bucket, publicURL: base}
}

// ObjectKey construit une clé unique conservant l'extension du fichier.
func ObjectKey(folder, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return path.Join(folder, uuid.NewString()+ext)
}

func (s *ObjectStorage) Upload(ctx context.Context, folder, filename string, r io.Reader, size int64, contentType string) (string, error) {
	key := ObjectKey(folder, filename)
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", errs.Upstream("minio", err)
	}
	log.Info().Str("key", key).Msg("🪣 Fichier envoyé")
	return s.publicURL + "/" + key, nil
}

// Remove ignore les URLs qui n'appartiennent pas au bucket.
func (s *ObjectStorage) Remove(ctx context.Context, objectURL string) error {
	key, ok := s.keyFromURL(objectURL)
	if !ok {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return errs.Upstream("minio", err)
	}
	return nil
}

// SignedURL génère une URL de lecture temporaire.
func (s *ObjectStorage) SignedURL(ctx context.Context, objectURL string, ttl time.Duration) (string, error) {
	key, ok := s.keyFromURL(objectURL)
	if !ok {
		return objectURL, nil
	}
	signed, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, make(url.Values))
	if err != nil {
		return "", errs.Upstream("minio", err)
	}
	return signed.String(), nil
}

func (s *ObjectStorage) keyFromURL(objectURL string) (string, bool) {
	prefix := s.publicURL + "/"
	if !strings.HasPrefix(objectURL, prefix) {
		return "", false
	}
	return strings.TrimPrefix(objectURL, prefix), true
}

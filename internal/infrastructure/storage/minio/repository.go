package minio

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"github.com/turtacn/hivscreen/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/hivscreen/pkg/errors"
)

// UploadResult describes an uploaded artifact.
type UploadResult struct {
	Bucket     string
	ObjectKey  string
	ETag       string
	Size       int64
	URL        string
	UploadedAt time.Time
}

// ArtifactStore publishes rendered files under a key prefix.
type ArtifactStore struct {
	client *MinIOClient
	logger logging.Logger
	now    func() time.Time
}

// NewArtifactStore returns a store that writes into client's bucket.
func NewArtifactStore(client *MinIOClient, log logging.Logger) *ArtifactStore {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ArtifactStore{client: client, logger: log, now: time.Now}
}

// ObjectKey builds "<prefix><yyyy/mm/dd>/<runID>/<file name>".  An empty
// runID gets a fresh UUID.
func (s *ArtifactStore) ObjectKey(localPath, runID string) string {
	if runID == "" {
		runID = uuid.NewString()
	}
	day := s.now().UTC().Format("2006/01/02")
	return s.client.config.Prefix + path.Join(day, runID, filepath.Base(localPath))
}

// UploadFile uploads localPath under key and tags it with tags.  The returned
// URL is a presigned GET link, or empty when presigning fails.
func (s *ArtifactStore) UploadFile(ctx context.Context, localPath, key string, tags map[string]string) (*UploadResult, error) {
	if key == "" {
		return nil, errors.InvalidParam("object key is required")
	}
	f, err := os.Open(localPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to open artifact").WithDetail("path=" + localPath)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to stat artifact").WithDetail("path=" + localPath)
	}

	opts := minio.PutObjectOptions{
		ContentType: contentTypeFor(localPath),
		UserTags:    tags,
	}
	bucket := s.client.Bucket()
	info, err := s.client.GetClient().PutObject(ctx, bucket, key, f, st.Size(), opts)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "upload failed").
			WithDetail(fmt.Sprintf("bucket=%s key=%s", bucket, key))
	}

	res := &UploadResult{
		Bucket:     bucket,
		ObjectKey:  key,
		ETag:       info.ETag,
		Size:       info.Size,
		UploadedAt: s.now(),
	}
	if u, err := s.client.GetClient().PresignedGetObject(ctx, bucket, key, s.client.config.PresignExpiry, nil); err == nil {
		res.URL = u.String()
	} else {
		s.logger.Warn("failed to presign artifact url", logging.String("key", key), logging.Err(err))
	}

	s.logger.Info("artifact uploaded",
		logging.String("bucket", bucket),
		logging.String("key", key),
		logging.Int64("size", info.Size),
	)
	return res, nil
}

// Publish uploads localPath under ObjectKey(localPath, runID) and returns the
// object key with its presigned download URL, which is empty when presigning
// failed.
func (s *ArtifactStore) Publish(ctx context.Context, localPath, runID string, tags map[string]string) (string, string, error) {
	res, err := s.UploadFile(ctx, localPath, s.ObjectKey(localPath, runID), tags)
	if err != nil {
		return "", "", err
	}
	return res.ObjectKey, res.URL, nil
}

func contentTypeFor(p string) string {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".png":
		return "image/png"
	case ".svg":
		return "image/svg+xml"
	}
	if ct := mime.TypeByExtension(filepath.Ext(p)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

//Personal.AI order the ending

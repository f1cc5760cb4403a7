package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sourcery-ai-bot/vkinder-bot/internal/domain/model"
)

const archiveTimeout = 20 * time.Second

type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	PutPhoto(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
}

// Archiver copies the best photo of a presented candidate into object
// storage. It is strictly best-effort: every failure is logged and swallowed
// so a storage outage never breaks a dialogue turn.
type Archiver struct {
	storage    ObjectStorage
	httpClient *http.Client
	logger     *zap.Logger
}

func NewArchiver(storage ObjectStorage, httpClient *http.Client, logger *zap.Logger) *Archiver {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: archiveTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archiver{storage: storage, httpClient: httpClient, logger: logger}
}

// Archive downloads the candidate's top-ranked photo and stores it under
// photos/<candidate>/<uuid>.
func (a *Archiver) Archive(ctx context.Context, cand *model.Candidate) {
	if a == nil || a.storage == nil || cand == nil || len(cand.Photos) == 0 {
		return
	}
	photoURL := cand.Photos[0].URL
	if photoURL == "" {
		return
	}

	key := fmt.Sprintf("photos/%s/%s", cand.DirectoryID, uuid.NewString())
	if err := a.archive(ctx, key, photoURL); err != nil {
		a.logger.Warn("photo archive failed",
			zap.String("candidate", cand.DirectoryID), zap.String("key", key), zap.Error(err))
		return
	}
	a.logger.Debug("photo archived", zap.String("candidate", cand.DirectoryID), zap.String("key", key))
}

func (a *Archiver) archive(ctx context.Context, key, photoURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, photoURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download photo: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download photo: status %d", resp.StatusCode)
	}

	if err := a.storage.EnsureBucket(ctx); err != nil {
		return err
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := a.storage.PutPhoto(ctx, key, resp.Body, resp.ContentLength, contentType); err != nil {
		return err
	}
	return nil
}

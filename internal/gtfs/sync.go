package gtfs

import (
	"context"
	"log/slog"
	"os"

	"github.com/jiayunsun/ptskim/internal/storage"
)

// Sync ties the downloader and importer together for a batch run.
type Sync struct {
	downloader *Downloader
	importer   *Importer
	db         *storage.DB
	logger     *slog.Logger
}

// NewSync creates a Sync.
func NewSync(downloader *Downloader, db *storage.DB, logger *slog.Logger) *Sync {
	return &Sync{
		downloader: downloader,
		importer:   NewImporter(db, logger),
		db:         db,
		logger:     logger,
	}
}

// EnsureData imports the feed if the database is empty. Called on startup.
func (s *Sync) EnsureData(ctx context.Context) error {
	if s.db.HasData(ctx) {
		s.logger.Info("GTFS data already present")
		return nil
	}
	s.logger.Info("no GTFS data found, performing initial import")
	return s.update(ctx)
}

// Refresh re-imports the feed when the remote copy changed since the
// last import, as judged by the cached Last-Modified / ETag headers.
func (s *Sync) Refresh(ctx context.Context) error {
	lastModified, _ := s.db.GetMetadata(ctx, "last_modified")
	etag, _ := s.db.GetMetadata(ctx, "etag")

	changed, err := s.downloader.Changed(ctx, lastModified, etag)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return s.update(ctx)
}

// update performs a full download-parse-import cycle.
func (s *Sync) update(ctx context.Context) error {
	zipPath, lastModified, etag, err := s.downloader.Download(ctx)
	if err != nil {
		return err
	}
	defer os.Remove(zipPath)

	feed, err := ParseZip(zipPath, s.logger)
	if err != nil {
		return err
	}
	feed.LastModified = lastModified
	feed.ETag = etag

	return s.importer.Import(ctx, feed, zipPath)
}

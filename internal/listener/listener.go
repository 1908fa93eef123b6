package listener

import (
	"context"
	"time"

	"go.uber.org/zap"

	"trainnames/internal/config"
	"trainnames/internal/importer"
)

// Importer is the part of the import service the watch loop drives.
type Importer interface {
	Checksum(dir string) (string, error)
	Import(ctx context.Context, dir string) (importer.Summary, error)
}

// MetadataStore keeps the fingerprint of the last imported inputs.
type MetadataStore interface {
	GetMetadata(key string) (*string, error)
}

type Service struct {
	db       MetadataStore
	importer Importer
	cfg      config.Config
	log      *zap.Logger
}

func NewService(db MetadataStore, imp Importer, cfg config.Config, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, importer: imp, cfg: cfg, log: log}
}

// Run re-imports RAW_DIR whenever its inputs change, until ctx is cancelled.
// Cycle errors are logged and the loop keeps going.
func (s *Service) Run(ctx context.Context) error {
	for {
		if err := s.runCycle(ctx); err != nil {
			s.log.Error("watch cycle failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(s.cfg.WatchInterval):
		}
	}
}

func (s *Service) runCycle(ctx context.Context) error {
	checksum, err := s.importer.Checksum(s.cfg.RawDir)
	if err != nil {
		return err
	}

	last, err := s.db.GetMetadata(importer.MetaLastChecksum)
	if err != nil {
		return err
	}
	if last != nil && *last == checksum {
		s.log.Debug("inputs unchanged", zap.String("checksum", checksum))
		return nil
	}

	sum, err := s.importer.Import(ctx, s.cfg.RawDir)
	if err != nil {
		return err
	}
	s.log.Info("watch cycle done",
		zap.String("traceId", sum.TraceID),
		zap.Int("files", sum.Files),
		zap.Int("records", sum.Records))
	return nil
}

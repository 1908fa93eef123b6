package importer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"trainnames/internal"
	"trainnames/internal/config"
	"trainnames/internal/pipeline"
	"trainnames/internal/seed"
	"trainnames/internal/storage"
)

// MetaLastChecksum holds the fingerprint of the inputs last imported.
const MetaLastChecksum = "import.last_checksum"

type Service struct {
	db   *storage.DB
	orch *pipeline.Orchestrator
	seed *seed.Service
	log  *zap.Logger
}

func NewService(db *storage.DB, cfg config.Config, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		db:   db,
		orch: pipeline.NewOrchestrator(cfg, log),
		seed: seed.NewService(db, log),
		log:  log,
	}
}

type Summary struct {
	TraceID  string
	Checksum string
	Files    int
	Failed   int
	Records  int
	Result   seed.Result
}

// Checksum fingerprints the current input files of dir.
func (s *Service) Checksum(dir string) (string, error) {
	files, err := s.orch.ListInputs(dir)
	if err != nil {
		return "", err
	}
	return pipeline.FilesChecksum(files)
}

// Import converts every input file in dir and replaces the persisted trains.
func (s *Service) Import(ctx context.Context, dir string) (Summary, error) {
	traceID := uuid.NewString()
	log := s.log.With(zap.String("traceId", traceID))

	checksum, err := s.Checksum(dir)
	if err != nil {
		return Summary{}, err
	}

	res, err := s.orch.ProcessDir(ctx, dir)
	if err != nil {
		return Summary{}, err
	}

	seeded, err := s.seed.SeedTrains(res.Records)
	if err != nil {
		return Summary{}, fmt.Errorf("seed trains: %w", err)
	}

	run := internal.ImportRun{
		TraceID:  traceID,
		Files:    len(res.Files),
		Records:  seeded.Inserted,
		Skipped:  seeded.Skipped + seeded.Rejected,
		Checksum: checksum,
	}
	if err := s.db.InsertImport(run); err != nil {
		return Summary{}, err
	}
	if err := s.db.SetMetadata(MetaLastChecksum, checksum); err != nil {
		return Summary{}, err
	}

	log.Info("import done",
		zap.Int("files", len(res.Files)),
		zap.Int("failed", len(res.Failed)),
		zap.Int("records", len(res.Records)),
		zap.Int("inserted", seeded.Inserted),
		zap.String("checksum", checksum))

	return Summary{
		TraceID:  traceID,
		Checksum: checksum,
		Files:    len(res.Files),
		Failed:   len(res.Failed),
		Records:  len(res.Records),
		Result:   seeded,
	}, nil
}

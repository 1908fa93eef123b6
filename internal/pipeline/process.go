package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"trainnames/internal"
	"trainnames/internal/config"
)

var ErrInsufficientRows = errors.New("insufficient rows")

type Orchestrator struct {
	log         *zap.Logger
	classPrefix string
	extensions  []string
	workers     int
}

func NewOrchestrator(cfg config.Config, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	return &Orchestrator{
		log:         log,
		classPrefix: cfg.ClassPrefix,
		extensions:  cfg.InputExtensions,
		workers:     workers,
	}
}

type Result struct {
	Records []internal.TrainRecord
	Files   []string
	Failed  []string
}

// ClassIDFromFile derives the class id from a file name, e.g. "br-401.csv" -> "401".
func ClassIDFromFile(path, prefix string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimPrefix(base, prefix)
}

// ListInputs returns the input files of dir in name order. An unreadable
// directory is an error.
func (o *Orchestrator) ListInputs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}
	files := []string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if slices.Contains(o.extensions, strings.ToLower(filepath.Ext(e.Name()))) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(files)
	return files, nil
}

// ProcessDir extracts records from every input file in dir. A file that
// fails is logged and skipped; records keep file name order.
func (o *Orchestrator) ProcessDir(ctx context.Context, dir string) (Result, error) {
	files, err := o.ListInputs(dir)
	if err != nil {
		return Result{}, err
	}

	type fileResult struct {
		records []internal.TrainRecord
		err     error
	}
	slots := make([]fileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records, err := o.ProcessFile(path)
			slots[i] = fileResult{records: records, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	res := Result{Files: files}
	for i, slot := range slots {
		name := filepath.Base(files[i])
		if slot.err != nil {
			o.log.Error("processing file failed", zap.String("file", name), zap.Error(slot.err))
			res.Failed = append(res.Failed, files[i])
			continue
		}
		o.log.Info("processed file", zap.String("file", name), zap.Int("records", len(slot.records)))
		res.Records = append(res.Records, slot.records...)
	}
	o.log.Info("processing done",
		zap.Int("files", len(files)),
		zap.Int("failed", len(res.Failed)),
		zap.Int("records", len(res.Records)))
	return res, nil
}

// ProcessFile reads one source file and extracts its records.
func (o *Orchestrator) ProcessFile(path string) ([]internal.TrainRecord, error) {
	rows, err := ReadRows(path)
	if err != nil {
		return nil, err
	}
	classID := ClassIDFromFile(path, o.classPrefix)
	return o.ProcessRows(classID, rows, filepath.Base(path))
}

// ProcessRows turns the tokenized rows of one source into records.
func (o *Orchestrator) ProcessRows(classID string, rows []internal.RawRow, source string) ([]internal.TrainRecord, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s has %d rows: %w", source, len(rows), ErrInsufficientRows)
	}

	headerIdx := LocateHeader(rows)
	roles := ResolveColumns(rows[headerIdx])
	o.log.Debug("header located",
		zap.String("file", source),
		zap.Int("row", headerIdx),
		zap.Int("since", roles.Since),
		zap.Int("until", roles.Until),
		zap.Int("comment", roles.Comment))

	records := []internal.TrainRecord{}
	for i, row := range rows[headerIdx+1:] {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		tz := ExtractTz(row[0])
		if tz == "" {
			o.log.Debug("row without tz dropped", zap.String("file", source), zap.Int("row", headerIdx+1+i))
			continue
		}
		names := ExtractNamesWithDates(row[0])
		records = append(records, AssembleRecords(classID, tz, names, readMainColumns(row, roles))...)
	}
	return records, nil
}

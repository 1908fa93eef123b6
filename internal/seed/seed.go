package seed

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"trainnames/internal"
	"trainnames/internal/storage"
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidNumber = errors.New("invalid number")
	ErrNoTrains      = errors.New("no trains to insert")
)

// ParseDate parses a strict DD.MM.YYYY date. Dates that do not exist on the
// calendar, such as 31.02.2000, are rejected.
func ParseDate(value string) (time.Time, error) {
	parts := strings.Split(value, ".")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("%q: expected DD.MM.YYYY: %w", value, ErrInvalidDate)
	}

	nums := [3]int{}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, fmt.Errorf("%q: %w", value, ErrInvalidDate)
		}
		nums[i] = n
	}
	day, month, year := nums[0], nums[1], nums[2]

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, fmt.Errorf("%q: %w", value, ErrInvalidDate)
	}
	return t, nil
}

func parseNumber(field, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", field, value, ErrInvalidNumber)
	}
	return n, nil
}

// PrepareRecord validates one extracted record and converts it to a row.
func PrepareRecord(rec internal.TrainRecord) (internal.TrainRow, error) {
	since, err := ParseDate(rec.NameSince)
	if err != nil {
		return internal.TrainRow{}, fmt.Errorf("nameSince: %w", err)
	}

	var until *time.Time
	if rec.NameUntil != nil && *rec.NameUntil != "" {
		u, err := ParseDate(*rec.NameUntil)
		if err != nil {
			return internal.TrainRow{}, fmt.Errorf("nameUntil: %w", err)
		}
		until = &u
	}

	tz, err := parseNumber("tz", rec.Tz)
	if err != nil {
		return internal.TrainRow{}, err
	}
	classID, err := parseNumber("classId", rec.ClassID)
	if err != nil {
		return internal.TrainRow{}, err
	}

	var comment *string
	if rec.Comment != nil && *rec.Comment != "" {
		comment = rec.Comment
	}

	return internal.TrainRow{
		ID:        uuid.NewString(),
		Tz:        tz,
		Name:      rec.Name,
		ClassID:   classID,
		Comment:   comment,
		IsActive:  until == nil,
		NameSince: since,
		NameUntil: until,
	}, nil
}

// Prepare converts records to rows, dropping and logging every invalid one.
func Prepare(records []internal.TrainRecord, log *zap.Logger) ([]internal.TrainRow, int) {
	if log == nil {
		log = zap.NewNop()
	}
	rows := make([]internal.TrainRow, 0, len(records))
	skipped := 0
	for _, rec := range records {
		row, err := PrepareRecord(rec)
		if err != nil {
			log.Warn("record skipped",
				zap.String("classId", rec.ClassID),
				zap.String("tz", rec.Tz),
				zap.String("name", rec.Name),
				zap.Error(err))
			skipped++
			continue
		}
		rows = append(rows, row)
	}
	return rows, skipped
}

type Result struct {
	Prepared int
	Skipped  int
	Inserted int
	Rejected int
}

type Service struct {
	db  *storage.DB
	log *zap.Logger
}

func NewService(db *storage.DB, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, log: log}
}

// SeedTrains replaces the persisted train set with the valid records.
// Nothing is touched when no record survives validation.
func (s *Service) SeedTrains(records []internal.TrainRecord) (Result, error) {
	rows, skipped := Prepare(records, s.log)
	s.log.Info("trains prepared", zap.Int("prepared", len(rows)), zap.Int("skipped", skipped))
	if len(rows) == 0 {
		return Result{Skipped: skipped}, ErrNoTrains
	}

	res, err := s.db.ReplaceTrains(rows)
	if err != nil {
		return Result{}, fmt.Errorf("replace trains: %w", err)
	}
	for _, r := range res.Rejected {
		s.log.Warn("train rejected",
			zap.Int("tz", r.Row.Tz),
			zap.String("name", r.Row.Name),
			zap.Error(r.Err))
	}
	s.log.Info("trains seeded", zap.Int("inserted", res.Inserted), zap.Int("rejected", len(res.Rejected)))

	return Result{
		Prepared: len(rows),
		Skipped:  skipped,
		Inserted: res.Inserted,
		Rejected: len(res.Rejected),
	}, nil
}

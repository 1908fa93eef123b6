package storage

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"trainnames/internal"
)

type DB struct {
	conn *sql.DB
	now  func() time.Time
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn, now: time.Now}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS classes (
  id INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  createdAt INTEGER NOT NULL,
  updatedAt INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS trains (
  id TEXT PRIMARY KEY,
  tz INTEGER NOT NULL,
  name TEXT NOT NULL,
  classId INTEGER NOT NULL REFERENCES classes(id),
  comment TEXT,
  isActive INTEGER NOT NULL DEFAULT 1,
  nameSince INTEGER NOT NULL,
  nameUntil INTEGER,
  createdAt INTEGER NOT NULL,
  updatedAt INTEGER NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS active_tz_index ON trains(tz) WHERE isActive = 1;
CREATE INDEX IF NOT EXISTS name_index ON trains(name);
CREATE INDEX IF NOT EXISTS class_index ON trains(classId);

CREATE TABLE IF NOT EXISTS imports (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  fileCount INTEGER NOT NULL,
  recordCount INTEGER NOT NULL,
  skipped INTEGER NOT NULL,
  checksum TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) UpsertClasses(classes []internal.ClassRecord) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO classes (id, name, createdAt, updatedAt) VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  name=excluded.name,
  updatedAt=excluded.updatedAt
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := d.now().Unix()
	for _, c := range classes {
		if _, err := stmt.Exec(c.ID, c.Name, now, now); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListClasses() ([]internal.ClassRecord, error) {
	rows, err := d.conn.Query(`SELECT id, name FROM classes ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ClassRecord
	for rows.Next() {
		var c internal.ClassRecord
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// RejectedRow is a train the database refused, e.g. a second active name
// for the same Tz.
type RejectedRow struct {
	Row internal.TrainRow
	Err error
}

type ReplaceResult struct {
	Inserted int
	Rejected []RejectedRow
}

// ReplaceTrains swaps the persisted train set for rows in one transaction.
// Rows violating a constraint are reported and skipped.
func (d *DB) ReplaceTrains(trains []internal.TrainRow) (ReplaceResult, error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return ReplaceResult{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM trains`); err != nil {
		return ReplaceResult{}, err
	}

	stmt, err := tx.Prepare(`
INSERT INTO trains (id, tz, name, classId, comment, isActive, nameSince, nameUntil, createdAt, updatedAt)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return ReplaceResult{}, err
	}
	defer stmt.Close()

	now := d.now().Unix()
	res := ReplaceResult{}
	for _, t := range trains {
		if _, err := stmt.Exec(
			t.ID, t.Tz, t.Name, t.ClassID, t.Comment, t.IsActive,
			t.NameSince.Unix(), unixOrNil(t.NameUntil), now, now,
		); err != nil {
			res.Rejected = append(res.Rejected, RejectedRow{Row: t, Err: err})
			continue
		}
		res.Inserted++
	}

	if err := tx.Commit(); err != nil {
		return ReplaceResult{}, err
	}
	return res, nil
}

const trainViewSelect = `
SELECT t.id, t.tz, t.name, t.classId, t.comment, t.isActive,
       t.nameSince, t.nameUntil, t.createdAt, t.updatedAt, c.name
FROM trains t
LEFT JOIN classes c ON c.id = t.classId
`

// GetTrainByTz returns the first train with the given Tz, nil if none.
func (d *DB) GetTrainByTz(tz int) (*internal.TrainView, error) {
	views, err := d.queryTrains(trainViewSelect+`WHERE t.tz = ? ORDER BY t.isActive DESC, t.nameSince DESC LIMIT 1`, tz)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, nil
	}
	return &views[0], nil
}

var reLeadingNumber = regexp.MustCompile(`^[+-]?\d+`)

// SearchTrains matches names by substring. A query starting with a number,
// such as "12" or "12abc", also matches that Tz.
func (d *DB) SearchTrains(query string, limit int) ([]internal.TrainView, error) {
	pattern := "%" + query + "%"
	if tz, err := strconv.Atoi(reLeadingNumber.FindString(strings.TrimSpace(query))); err == nil {
		return d.queryTrains(trainViewSelect+`WHERE t.tz = ? OR t.name LIKE ? ORDER BY t.tz, t.nameSince LIMIT ?`, tz, pattern, limit)
	}
	return d.queryTrains(trainViewSelect+`WHERE t.name LIKE ? ORDER BY t.tz, t.nameSince LIMIT ?`, pattern, limit)
}

// ListTrains returns up to limit trains; limit <= 0 means all.
func (d *DB) ListTrains(limit int) ([]internal.TrainView, error) {
	if limit <= 0 {
		limit = -1
	}
	return d.queryTrains(trainViewSelect+`ORDER BY t.classId, t.tz, t.nameSince LIMIT ?`, limit)
}

func (d *DB) ListTrainsByClass(classID int) ([]internal.TrainView, error) {
	return d.queryTrains(trainViewSelect+`WHERE t.classId = ? ORDER BY t.tz, t.nameSince`, classID)
}

func (d *DB) queryTrains(query string, args ...any) ([]internal.TrainView, error) {
	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []internal.TrainView{}
	for rows.Next() {
		var v internal.TrainView
		var since, created, updated int64
		var until sql.NullInt64
		if err := rows.Scan(
			&v.ID, &v.Tz, &v.Name, &v.ClassID, &v.Comment, &v.IsActive,
			&since, &until, &created, &updated, &v.ClassName,
		); err != nil {
			return nil, err
		}
		v.NameSince = time.Unix(since, 0).UTC()
		if until.Valid {
			u := time.Unix(until.Int64, 0).UTC()
			v.NameUntil = &u
		}
		v.CreatedAt = time.Unix(created, 0).UTC()
		v.UpdatedAt = time.Unix(updated, 0).UTC()
		out = append(out, v)
	}
	return out, rows.Err()
}

func (d *DB) InsertImport(run internal.ImportRun) error {
	_, err := d.conn.Exec(`INSERT INTO imports (traceId, fileCount, recordCount, skipped, checksum) VALUES (?, ?, ?, ?, ?)`,
		run.TraceID, run.Files, run.Records, run.Skipped, run.Checksum)
	return err
}

func (d *DB) LatestImport() (*internal.ImportRun, error) {
	var run internal.ImportRun
	err := d.conn.QueryRow(`
SELECT id, traceId, fileCount, recordCount, skipped, checksum, createdAt
FROM imports ORDER BY id DESC LIMIT 1
`).Scan(&run.ID, &run.TraceID, &run.Files, &run.Records, &run.Skipped, &run.Checksum, &run.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func unixOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}

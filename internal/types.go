package internal

import "time"

// RawRow is one tokenized source row: trimmed fields in column order.
type RawRow []string

// NameWithDates is one name assignment pulled out of a name-history cell.
// Since and Until are nil when the cell gives no date for that end.
type NameWithDates struct {
	Name  string
	Since *string
	Until *string
}

// ColumnNotFound marks a column role the header row does not provide.
const ColumnNotFound = -1

type ColumnRoles struct {
	Since   int
	Until   int
	Comment int
}

type TrainRecord struct {
	ClassID   string  `json:"classId"`
	Tz        string  `json:"tz"`
	Comment   *string `json:"comment,omitempty"`
	Name      string  `json:"name"`
	NameSince string  `json:"nameSince"`
	NameUntil *string `json:"nameUntil,omitempty"`
	IsActive  bool    `json:"isActive"`
}

type ClassRecord struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// TrainRow is a validated record ready for persistence.
type TrainRow struct {
	ID        string
	Tz        int
	Name      string
	ClassID   int
	Comment   *string
	IsActive  bool
	NameSince time.Time
	NameUntil *time.Time
}

// TrainView is a persisted train joined with its class display name.
type TrainView struct {
	ID        string     `json:"id"`
	Tz        int        `json:"tz"`
	Name      string     `json:"name"`
	ClassID   int        `json:"classId"`
	Comment   *string    `json:"comment"`
	IsActive  bool       `json:"isActive"`
	NameSince time.Time  `json:"nameSince"`
	NameUntil *time.Time `json:"nameUntil"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	ClassName *string    `json:"className"`
}

type ImportRun struct {
	ID        int
	TraceID   string
	Files     int
	Records   int
	Skipped   int
	Checksum  string
	CreatedAt string
}

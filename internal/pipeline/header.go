package pipeline

import (
	"strings"

	"trainnames/internal"
)

const headerScanRows = 10

var headerKeywords = []string{"triebzug", "zugnummer", "name", "abnahme", "indienststellung"}

type columnRole int

const (
	roleSince columnRole = iota
	roleUntil
	roleComment
)

// columnRoleProbes lists, per role, the header keywords in priority order.
var columnRoleProbes = []struct {
	role   columnRole
	probes []string
}{
	{roleSince, []string{"abnahme", "indienststellung"}},
	{roleUntil, []string{"ausmusterung", "verschrottung", "außerbetriebnahme", "außerbetriebsetzung"}},
	{roleComment, []string{"bemerkung", "unfälle", "allgemeine bemerkungen", "besondere vorkommnisse"}},
}

// LocateHeader returns the index of the header row among the first rows, or 0
// when no row carries a header keyword.
func LocateHeader(rows []internal.RawRow) int {
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		text := strings.ToLower(strings.Join(rows[i], " "))
		for _, kw := range headerKeywords {
			if strings.Contains(text, kw) {
				return i
			}
		}
	}
	return 0
}

// ResolveColumns maps the since, until and comment roles to header positions.
// Column 0 always holds the Tz and name history and is not resolved here.
func ResolveColumns(header internal.RawRow) internal.ColumnRoles {
	lower := make([]string, 0, len(header))
	for _, h := range header {
		lower = append(lower, strings.ToLower(h))
	}

	roles := internal.ColumnRoles{
		Since:   internal.ColumnNotFound,
		Until:   internal.ColumnNotFound,
		Comment: internal.ColumnNotFound,
	}
	for _, entry := range columnRoleProbes {
		idx := findColumnIndex(lower, entry.probes)
		switch entry.role {
		case roleSince:
			roles.Since = idx
		case roleUntil:
			roles.Until = idx
		case roleComment:
			roles.Comment = idx
		}
	}
	return roles
}

// findColumnIndex tries probes in order and returns the first header that
// contains the current probe.
func findColumnIndex(headers []string, probes []string) int {
	for _, probe := range probes {
		for i, h := range headers {
			if strings.Contains(h, probe) {
				return i
			}
		}
	}
	return internal.ColumnNotFound
}

func pickCell(row internal.RawRow, idx int) string {
	if idx >= 0 && idx < len(row) {
		return row[idx]
	}
	return ""
}

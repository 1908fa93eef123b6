package pipeline

import (
	"regexp"
	"strings"

	"trainnames/internal"
	"trainnames/internal/util"
)

var reBareYear = regexp.MustCompile(`^\d{4}$`)

// MainColumns holds the row-level values read from the since, until and
// comment columns.
type MainColumns struct {
	Since   string
	Until   *string
	Comment *string
}

func readMainColumns(row internal.RawRow, roles internal.ColumnRoles) MainColumns {
	main := MainColumns{}
	if since := ExtractMainDate(pickCell(row, roles.Since), SinceMode); since != nil {
		main.Since = *since
	}
	main.Until = ExtractMainDate(pickCell(row, roles.Until), UntilMode)
	if comment := util.NormalizeSpaces(pickCell(row, roles.Comment)); comment != "" {
		main.Comment = util.StringPtr(comment)
	}
	return main
}

// AssembleRecords merges the dates found next to each name with the row's
// column dates. A bare year from a name's parenthetical is too coarse and is
// replaced by the column date.
func AssembleRecords(classID, tz string, names []internal.NameWithDates, main MainColumns) []internal.TrainRecord {
	if len(names) == 0 {
		return []internal.TrainRecord{newRecord(classID, tz, "Tz "+tz, main.Since, main.Until, main.Comment)}
	}

	out := make([]internal.TrainRecord, 0, len(names))
	for _, nd := range names {
		since := util.Deref(nd.Since)
		if since == "" {
			since = main.Since
		}
		until := main.Until
		if nd.Until != nil {
			until = nd.Until
		}

		if until != nil && isBareYear(*until) {
			until = main.Until
		}
		if isBareYear(since) {
			since = main.Since
		}

		out = append(out, newRecord(classID, tz, nd.Name, since, until, main.Comment))
	}
	return out
}

func newRecord(classID, tz, name, since string, until, comment *string) internal.TrainRecord {
	return internal.TrainRecord{
		ClassID:   classID,
		Tz:        tz,
		Comment:   comment,
		Name:      name,
		NameSince: since,
		NameUntil: until,
		IsActive:  until == nil,
	}
}

func isBareYear(value string) bool {
	return reBareYear.MatchString(strings.TrimSpace(value))
}

package pipeline

import (
	"strings"

	"trainnames/internal"
)

// Tokenize splits comma separated text into rows of trimmed fields. Quoted
// fields may contain commas and line breaks; a doubled quote inside a quoted
// field is a literal quote. Rows whose fields are all empty are dropped. An
// unterminated quote consumes the rest of the input into the current field.
func Tokenize(content string) []internal.RawRow {
	rows := []internal.RawRow{}
	row := internal.RawRow{}
	var field strings.Builder
	inQuotes := false

	endField := func() {
		row = append(row, strings.TrimSpace(field.String()))
		field.Reset()
	}
	endRow := func() {
		endField()
		if !isBlankRow(row) {
			rows = append(rows, row)
		}
		row = internal.RawRow{}
	}

	for i := 0; i < len(content); i++ {
		c := content[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(content) && content[i+1] == '"' {
				field.WriteByte('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case inQuotes:
			field.WriteByte(c)
		case c == ',':
			endField()
		case c == '\n':
			endRow()
		case c == '\r' && i+1 < len(content) && content[i+1] == '\n':
			endRow()
			i++
		default:
			field.WriteByte(c)
		}
	}

	if strings.TrimSpace(field.String()) != "" || len(row) > 0 {
		endField()
	}
	if !isBlankRow(row) {
		rows = append(rows, row)
	}
	return rows
}

func isBlankRow(row internal.RawRow) bool {
	for _, f := range row {
		if f != "" {
			return false
		}
	}
	return true
}

package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/xuri/excelize/v2"

	"trainnames/internal"
	"trainnames/internal/util"
)

var errNoTable = errors.New("no table found")

// ReadRows loads a source file into raw rows, dispatching on its extension.
func ReadRows(path string) ([]internal.RawRow, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return Tokenize(util.NormalizeText(string(blob))), nil
	case ".xlsx":
		return parseXLSXRows(blob)
	case ".html", ".htm":
		return parseHTMLRows(blob)
	default:
		return nil, fmt.Errorf("unsupported input file: %s", filepath.Base(path))
	}
}

// parseXLSXRows reads the first sheet. Line breaks inside cells survive, as
// the name history column depends on them.
func parseXLSXRows(content []byte) ([]internal.RawRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errNoTable
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}

	out := make([]internal.RawRow, 0, len(rows))
	for _, row := range rows {
		cells := make(internal.RawRow, 0, len(row))
		for _, c := range row {
			cells = append(cells, cleanCell(c))
		}
		if !isBlankRow(cells) {
			out = append(out, cells)
		}
	}
	return out, nil
}

// parseHTMLRows reads the first <table>; <br> inside a cell becomes a line break.
func parseHTMLRows(content []byte) ([]internal.RawRow, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, errNoTable
	}

	out := []internal.RawRow{}
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := internal.RawRow{}
		tr.ChildrenFiltered("th,td").Each(func(_ int, cell *goquery.Selection) {
			cell.Find("br").ReplaceWithHtml("\n")
			cells = append(cells, cleanCell(cell.Text()))
		})
		if !isBlankRow(cells) {
			out = append(out, cells)
		}
	})
	return out, nil
}

func cleanCell(value string) string {
	lines := strings.Split(util.NormalizeText(value), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

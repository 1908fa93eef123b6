package pipeline

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"trainnames/internal"
	"trainnames/internal/util"
)

const exportDateLayout = "02.01.2006"

func ExportTrainsToXLSX(rows []internal.TrainView, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	headers := []string{
		"tz", "name", "class_id", "class_name",
		"name_since", "name_until", "is_active", "comment",
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, row.Tz)
		set(2, row.Name)
		set(3, row.ClassID)
		set(4, util.Deref(row.ClassName))
		set(5, row.NameSince.Format(exportDateLayout))
		if row.NameUntil != nil {
			set(6, row.NameUntil.Format(exportDateLayout))
		}
		set(7, row.IsActive)
		set(8, util.Deref(row.Comment))
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

// Package libraryexport writes the recording library index out to a
// spreadsheet, a supplemental feature in the spirit of the teacher's
// ExportService (internal/services/export_service.go), which already
// exports match data via excelize — reused here for a different
// export subject (the recording library instead of match history).
package libraryexport

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"lol-match-exporter/internal/library"
)

const sheetName = "Recordings"

// ToXLSX writes the recording library to an .xlsx workbook at path.
func ToXLSX(recordings []library.Recording, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("libraryexport: rename sheet: %w", err)
	}

	headers := []string{"Video", "Game ID", "Platform", "Queue", "Champion", "Favorite", "Recorded At"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheetName, cell, h)
	}

	for row, r := range recordings {
		excelRow := row + 2
		values := []interface{}{r.VideoName, r.GameId, r.PlatformId, r.QueueName, r.Champion, r.Favorite, r.RecordedAt.Format("2006-01-02 15:04:05")}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, excelRow)
			f.SetCellValue(sheetName, cell, v)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("libraryexport: save %s: %w", path, err)
	}
	return nil
}

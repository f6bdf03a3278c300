// Package export renders filtered participant sets into downloadable
// spreadsheet artifacts. The protocol layer supplies rows and a filter; all
// file-format details live here.
package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/eventreg/registration-system/internal/core/domain"
	"github.com/eventreg/registration-system/internal/core/ports"
)

const (
	sheetName = "Participants"
	// maxColumnWidth caps auto-sizing so one long value cannot blow up the
	// whole column.
	maxColumnWidth = 50
)

var header = []string{"Номер", "ID", "Телефон", "Имя", "Фамилия", "Согласие", "Дата регистрации (UTC)"}

// ExcelExporter implements ports.Exporter producing .xlsx workbooks.
type ExcelExporter struct{}

func NewExcelExporter() *ExcelExporter {
	return &ExcelExporter{}
}

// Render builds a workbook with one header row plus one row per
// participant, auto-sized columns, and a file name tagged with the filter.
func (e *ExcelExporter) Render(participants []domain.Participant, r domain.Range) (ports.File, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return ports.File{}, fmt.Errorf("export sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return ports.File{}, fmt.Errorf("export sheet: %w", err)
	}

	rows := make([][]interface{}, 0, len(participants)+1)
	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	rows = append(rows, headerRow)

	for _, p := range participants {
		consent := "Нет"
		if p.Consent {
			consent = "Да"
		}
		rows = append(rows, []interface{}{
			p.Number,
			p.CallerID,
			p.Phone,
			p.FirstName,
			p.LastName,
			consent,
			p.RegisteredAt.UTC().Format(time.RFC3339),
		})
	}

	widths := make([]int, len(header))
	for rowIdx, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, rowIdx+1)
		if err != nil {
			return ports.File{}, fmt.Errorf("export row: %w", err)
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return ports.File{}, fmt.Errorf("export row: %w", err)
		}
		for colIdx, v := range row {
			if l := len(fmt.Sprint(v)); l > widths[colIdx] {
				widths[colIdx] = l
			}
		}
	}

	for colIdx, w := range widths {
		name, err := excelize.ColumnNumberToName(colIdx + 1)
		if err != nil {
			return ports.File{}, fmt.Errorf("export column: %w", err)
		}
		if w+2 > maxColumnWidth {
			w = maxColumnWidth - 2
		}
		if err := f.SetColWidth(sheetName, name, name, float64(w+2)); err != nil {
			return ports.File{}, fmt.Errorf("export column: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return ports.File{}, fmt.Errorf("export write: %w", err)
	}

	return ports.File{
		Name:    fmt.Sprintf("participants_%s.xlsx", r.Suffix),
		Caption: fmt.Sprintf("Выгрузка участников: %d записей", len(participants)),
		Content: buf.Bytes(),
	}, nil
}

package formatter

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/report"
)

const sheetName = "Reporte"

// ExcelRenderer は 1 シートの xlsx を書き出します。見出し行は太字で固定表示します。
type ExcelRenderer struct{}

func (ExcelRenderer) Render(w io.Writer, req report.FileRequest) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	header := make([]any, len(req.Columns))
	for i, c := range req.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
	})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(sheetName, 1, 1, bold); err != nil {
		return err
	}

	for r, row := range req.Rows {
		values := make([]any, len(req.Columns))
		for i, c := range req.Columns {
			values[i] = row[c]
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return err
		}
	}

	if len(req.Columns) > 0 {
		last, err := excelize.ColumnNumberToName(len(req.Columns))
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheetName, "A", last, 20); err != nil {
			return err
		}
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	_, err = f.WriteTo(w)
	return err
}

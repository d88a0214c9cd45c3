package formatter

import (
	"encoding/csv"
	"io"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/report"
)

// utf8BOM は表計算ソフトで開く前提で先頭に付けます。
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVRenderer は列見出し付きの CSV を書き出します。
type CSVRenderer struct{}

func (CSVRenderer) Render(w io.Writer, req report.FileRequest) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(req.Columns); err != nil {
		return err
	}
	record := make([]string, len(req.Columns))
	for _, row := range req.Rows {
		for i, col := range req.Columns {
			record[i] = cellText(row[col])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

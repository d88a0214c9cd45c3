package formatter

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/report"
)

const (
	pdfFont       = "Helvetica"
	pdfRowHeight  = 6.0
	pdfFontSize   = 8.0
	pdfTitleSize  = 14.0
	pdfHeaderFill = 221
)

// PDFRenderer は横向き A4 の表形式 PDF を書き出します。
type PDFRenderer struct{}

func (PDFRenderer) Render(w io.Writer, req report.FileRequest) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	title := req.Type.Name()
	pdf.SetTitle(title, true)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(pdfFont, "I", pdfFontSize)
		pdf.CellFormat(0, 8, fmt.Sprintf("%s - %d", tr(req.Name), pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont(pdfFont, "B", pdfTitleSize)
	pdf.CellFormat(0, 10, tr(title), "", 1, "L", false, 0, "")
	pdf.SetFont(pdfFont, "", pdfFontSize)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Registros: %d", len(req.Rows))), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	width := columnWidth(pdf, len(req.Columns))
	header := func() {
		pdf.SetFont(pdfFont, "B", pdfFontSize)
		pdf.SetFillColor(pdfHeaderFill, pdfHeaderFill, pdfHeaderFill)
		for _, c := range req.Columns {
			pdf.CellFormat(width, pdfRowHeight, tr(c), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont(pdfFont, "", pdfFontSize)
	}
	header()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, row := range req.Rows {
		if pdf.GetY()+pdfRowHeight > pageHeight-bottom-10 {
			pdf.AddPage()
			header()
		}
		for _, c := range req.Columns {
			pdf.CellFormat(width, pdfRowHeight, tr(truncate(pdf, cellText(row[c]), width)), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

func columnWidth(pdf *fpdf.Fpdf, columns int) float64 {
	if columns == 0 {
		return 0
	}
	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	return (pageWidth - left - right) / float64(columns)
}

// truncate はセル幅に収まるよう末尾を切り詰めます。
func truncate(pdf *fpdf.Fpdf, s string, width float64) string {
	limit := width - 2
	if pdf.GetStringWidth(s) <= limit {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > limit {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

package report

import (
	"fmt"
	"strings"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/domainerr"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/valueobject"
)

const (
	FormatExcel = "excel"
	FormatCSV   = "csv"
	FormatPDF   = "pdf"
)

var formatExtensions = map[string]string{
	FormatExcel: "xlsx",
	FormatCSV:   "csv",
	FormatPDF:   "pdf",
}

var formatContentTypes = map[string]string{
	FormatExcel: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FormatCSV:   "text/csv",
	FormatPDF:   "application/pdf",
}

// Format は出力形式です。
type Format struct {
	value string
}

// NewFormat は出力形式を検証します。
func NewFormat(raw string) (Format, error) {
	v, err := valueobject.Normalize(raw,
		func(s string) string { return strings.ToLower(strings.TrimSpace(s)) },
		func(s string) error {
			if _, ok := formatExtensions[s]; !ok {
				return domainerr.InvalidValue(ErrInvalidFormat, "formato", s, "must be one of excel, csv, pdf")
			}
			return nil
		},
	)
	if err != nil {
		return Format{}, err
	}
	return Format{value: v}, nil
}

func (f Format) String() string { return f.value }

func (f Format) Extension() string { return formatExtensions[f.value] }

func (f Format) ContentType() string { return formatContentTypes[f.value] }

// FormatSize はバイト数を B / KB / MB の表記にします。
func FormatSize(bytes int64) string {
	const unit = 1024
	switch {
	case bytes < unit:
		return fmt.Sprintf("%d B", bytes)
	case bytes < unit*unit:
		return fmt.Sprintf("%.1f KB", float64(bytes)/unit)
	default:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(unit*unit))
	}
}

// Package formatter はレポート行を CSV / Excel / PDF に変換し、ストレージへ保存します。
package formatter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/report"
)

// Renderer は 1 形式分の書き出し処理です。
type Renderer interface {
	Render(w io.Writer, req report.FileRequest) error
}

// Uploader は生成済みファイルを保存し、参照 URL を返します。
type Uploader interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}

// Formatter は report.Formatter の実装です。
type Formatter struct {
	uploader  Uploader
	renderers map[string]Renderer
}

var _ report.Formatter = (*Formatter)(nil)

// Option は Formatter の設定を変更します。
type Option func(*Formatter)

// WithRenderer は形式ごとのレンダラを差し替えます。
func WithRenderer(format string, r Renderer) Option {
	return func(f *Formatter) { f.renderers[format] = r }
}

// New は 3 形式のレンダラを登録した Formatter を生成します。
func New(uploader Uploader, opts ...Option) *Formatter {
	f := &Formatter{
		uploader: uploader,
		renderers: map[string]Renderer{
			report.FormatCSV:   CSVRenderer{},
			report.FormatExcel: ExcelRenderer{},
			report.FormatPDF:   PDFRenderer{},
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Produce は行データを書き出して保存先へアップロードします。
func (f *Formatter) Produce(ctx context.Context, req report.FileRequest) (report.File, error) {
	renderer, ok := f.renderers[req.Format.String()]
	if !ok {
		return report.File{}, fmt.Errorf("formatter: %q: %w", req.Format.String(), report.ErrInvalidFormat)
	}

	var buf bytes.Buffer
	if err := renderer.Render(&buf, req); err != nil {
		return report.File{}, fmt.Errorf("formatter: render %s: %w", req.Format.String(), err)
	}
	if err := ctx.Err(); err != nil {
		return report.File{}, err
	}

	key := strings.TrimPrefix(req.StoragePath, "/")
	url, err := f.uploader.Put(ctx, key, req.Format.ContentType(), buf.Bytes())
	if err != nil {
		return report.File{}, fmt.Errorf("formatter: upload: %w", err)
	}

	size := int64(buf.Len())
	return report.File{
		Path:      req.StoragePath,
		URL:       url,
		Size:      report.FormatSize(size),
		SizeBytes: size,
	}, nil
}

// cellText はセル値を表示用文字列にします。
func cellText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// Package report はレポートエンティティと生成パイプラインを提供します。
package report

import (
	"fmt"
	"time"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/domainerr"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/query"
)

const (
	// RegenerationWindow は再生成を許可する作成後の期間です。境界を含みます。
	RegenerationWindow = 24 * time.Hour
	// DownloadWindow はファイル添付後にダウンロードを許可する期間です。境界を含みます。
	DownloadWindow = 2 * time.Hour
)

// Row は列名をキーとする 1 行分の値です。
type Row map[string]any

// File はフォーマッタが生成したファイルの情報です。
type File struct {
	Path      string
	URL       string
	Size      string
	SizeBytes int64
}

// Report は生成済みレポートです。ファイル添付後は不変です。
type Report struct {
	id          int64
	typ         Type
	format      Format
	createdAt   time.Time
	requestedBy int64
	columns     []string
	rows        []Row
	rowCount    int
	criteria    query.Criteria
	file        *File
}

// Params は New の入力です。
type Params struct {
	Type        Type
	Format      Format
	CreatedAt   time.Time
	RequestedBy int64
	Columns     []string
	Rows        []Row
	Criteria    query.Criteria
}

// New は未保存のレポートを生成します。
func New(p Params) (*Report, error) {
	if p.Type.String() == "" {
		return nil, domainerr.InvalidValue(ErrInvalidType, "tipo", "", "must not be empty")
	}
	if p.Format.String() == "" {
		return nil, domainerr.InvalidValue(ErrInvalidFormat, "formato", "", "must not be empty")
	}
	if len(p.Columns) == 0 {
		return nil, domainerr.InvalidValue(ErrInvalidColumns, "columnas", "", "must not be empty")
	}
	return &Report{
		typ:         p.Type,
		format:      p.Format,
		createdAt:   p.CreatedAt.UTC(),
		requestedBy: p.RequestedBy,
		columns:     append([]string(nil), p.Columns...),
		rows:        cloneRows(p.Rows),
		rowCount:    len(p.Rows),
		criteria:    p.Criteria,
	}, nil
}

// Record は永続化層からレポートを復元するための値です。
type Record struct {
	ID          int64
	Type        string
	Format      string
	CreatedAt   time.Time
	RequestedBy int64
	Columns     []string
	Rows        []Row
	RowCount    int
	Criteria    query.Criteria
	File        *File
}

// Rehydrate は保存済みの値からレポートを復元します。行データを持たない記録も扱えます。
func Rehydrate(rec Record) (*Report, error) {
	t, err := NewType(rec.Type)
	if err != nil {
		return nil, err
	}
	f, err := NewFormat(rec.Format)
	if err != nil {
		return nil, err
	}
	if rec.RowCount < 0 {
		return nil, domainerr.InvalidValue(ErrInvalidRowCount, "cantidadRegistros", fmt.Sprint(rec.RowCount), "must not be negative")
	}
	r, err := New(Params{
		Type:        t,
		Format:      f,
		CreatedAt:   rec.CreatedAt,
		RequestedBy: rec.RequestedBy,
		Columns:     rec.Columns,
		Rows:        rec.Rows,
		Criteria:    rec.Criteria,
	})
	if err != nil {
		return nil, err
	}
	r.id = rec.ID
	if rec.RowCount > len(rec.Rows) {
		r.rowCount = rec.RowCount
	}
	if rec.File != nil {
		file := *rec.File
		r.file = &file
	}
	return r, nil
}

// Record は永続化用の値を返します。
func (r *Report) Record() Record {
	rec := Record{
		ID:          r.id,
		Type:        r.typ.String(),
		Format:      r.format.String(),
		CreatedAt:   r.createdAt,
		RequestedBy: r.requestedBy,
		Columns:     r.Columns(),
		Rows:        r.Rows(),
		RowCount:    r.rowCount,
		Criteria:    r.criteria,
	}
	if r.file != nil {
		f := *r.file
		rec.File = &f
	}
	return rec
}

// WithID は ID を付与したコピーを返します。
func (r *Report) WithID(id int64) *Report {
	cp := *r
	cp.id = id
	return &cp
}

func (r *Report) ID() int64 { return r.id }

func (r *Report) Type() Type { return r.typ }

func (r *Report) Format() Format { return r.format }

func (r *Report) CreatedAt() time.Time { return r.createdAt }

func (r *Report) RequestedBy() int64 { return r.requestedBy }

func (r *Report) Columns() []string { return append([]string(nil), r.columns...) }

func (r *Report) Rows() []Row { return cloneRows(r.rows) }

func (r *Report) RowCount() int { return r.rowCount }

func (r *Report) Criteria() query.Criteria { return r.criteria }

// File は添付済みファイルを返します。
func (r *Report) File() (File, bool) {
	if r.file == nil {
		return File{}, false
	}
	return *r.file, true
}

// HasFile はファイルが添付済みかを判定します。
func (r *Report) HasFile() bool { return r.file != nil }

// StoragePath は "/reportes/<種別>/<YYYY-MM-DD>_<種別>.<拡張子>" 形式の保存先です。
func (r *Report) StoragePath() string {
	return fmt.Sprintf("/reportes/%s/%s_%s.%s",
		r.typ.String(), r.createdAt.UTC().Format(time.DateOnly), r.typ.String(), r.format.Extension())
}

// FileName はダウンロード用のファイル名です。
func (r *Report) FileName() string {
	return fmt.Sprintf("%s_%s.%s", r.typ.FileBaseName(), r.createdAt.UTC().Format(time.DateOnly), r.format.Extension())
}

// AttachFile はファイル情報を一度だけ添付します。
func (r *Report) AttachFile(f File) error {
	if r.file != nil {
		return ErrFileAlreadyAttached
	}
	if f.Size == "" {
		f.Size = FormatSize(f.SizeBytes)
	}
	r.file = &f
	return nil
}

// CanBeRegenerated は作成から 24 時間以内かを判定します。
func (r *Report) CanBeRegenerated(now time.Time) bool {
	return within(r.createdAt, now, RegenerationWindow)
}

// IsDownloadable はファイル添付済みかつ作成から 2 時間以内かを判定します。
func (r *Report) IsDownloadable(now time.Time) bool {
	return r.file != nil && within(r.createdAt, now, DownloadWindow)
}

func within(from, now time.Time, window time.Duration) bool {
	elapsed := now.UTC().Sub(from.UTC())
	return elapsed >= 0 && elapsed <= window
}

func cloneRows(rows []Row) []Row {
	if rows == nil {
		return nil
	}
	out := make([]Row, len(rows))
	for i, row := range rows {
		cp := make(Row, len(row))
		for k, v := range row {
			cp[k] = v
		}
		out[i] = cp
	}
	return out
}

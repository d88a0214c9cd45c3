package employee

import (
	"context"
	"time"
)

// Reader は社員の読み取りを提供します。
type Reader interface {
	FindAll(ctx context.Context) ([]*Employee, error)
	FindByID(ctx context.Context, id int64) (*Employee, error)
}

// Writer は社員の書き込みを提供します。
type Writer interface {
	Save(ctx context.Context, e *Employee) (*Employee, error)
	Update(ctx context.Context, e *Employee) (*Employee, error)
	Delete(ctx context.Context, id int64) error
}

// Searcher はストレージ側での絞り込み検索を提供します。
type Searcher interface {
	SearchByText(ctx context.Context, text string) ([]*Employee, error)
	FindByDepartment(ctx context.Context, d Department) ([]*Employee, error)
	FindByStatus(ctx context.Context, s AccountStatus) ([]*Employee, error)
	FindWithConflict(ctx context.Context) ([]*Employee, error)
}

// MetadataReader は一覧画面の選択肢などに使う集計値を提供します。
type MetadataReader interface {
	DistinctDepartments(ctx context.Context) ([]string, error)
	DistinctStatuses(ctx context.Context) ([]string, error)
	DistinctTitles(ctx context.Context) ([]string, error)
}

// Auditor は変更履歴を記録します。
type Auditor interface {
	RecordChange(ctx context.Context, c ChangeRecord) error
	ChangeHistory(ctx context.Context, employeeID int64) ([]ChangeRecord, error)
}

// ChangeRecord は 1 項目分の変更履歴です。
type ChangeRecord struct {
	EmployeeID int64
	Field      string
	OldValue   string
	NewValue   string
	ChangedBy  int64
	ChangedAt  time.Time
	Reason     string
}

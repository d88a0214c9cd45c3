package report

import (
	"context"
	"time"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/employee"
)

// Store はレポートの永続化を抽象化します。見つからない場合は ErrReportNotFound を返します。
type Store interface {
	Save(ctx context.Context, r *Report) (*Report, error)
	FindByID(ctx context.Context, id int64) (*Report, error)
}

// Schedules は定期実行設定の参照と実行記録です。見つからない場合は ErrScheduleNotFound を返します。
type Schedules interface {
	FindSchedule(ctx context.Context, id int64) (*Schedule, error)
	ListActive(ctx context.Context) ([]*Schedule, error)
	RecordRun(ctx context.Context, scheduleID, reportID int64, at time.Time) error
}

// FileRequest はフォーマッタへの入力です。
type FileRequest struct {
	Type        Type
	Format      Format
	Name        string
	StoragePath string
	Columns     []string
	Rows        []Row
}

// Formatter は行データを指定形式のファイルにして保存します。
type Formatter interface {
	Produce(ctx context.Context, req FileRequest) (File, error)
}

// Notifier は生成済みレポートを受信者へ通知します。
type Notifier interface {
	Notify(ctx context.Context, r *Report, recipients []Recipient) error
}

// EmployeeSource は条件指定生成で母集団を読み込みます。
type EmployeeSource interface {
	FindAll(ctx context.Context) ([]*employee.Employee, error)
}

// Package log は通知をログ出力だけで済ませる Notifier です。ブローカーのない環境で使います。
package log

import (
	"context"

	"go.uber.org/zap"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/report"
)

// Notifier は report.Notifier の zap 実装です。
type Notifier struct {
	logger *zap.Logger
}

var _ report.Notifier = (*Notifier)(nil)

func NewNotifier(logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{logger: logger.Named("notify")}
}

func (n *Notifier) Notify(ctx context.Context, r *report.Report, recipients []report.Recipient) error {
	fields := []zap.Field{
		zap.Int64("report_id", r.ID()),
		zap.String("report_type", r.Type().String()),
		zap.String("file_name", r.FileName()),
		zap.Int("recipients", len(recipients)),
	}
	if f, ok := r.File(); ok {
		fields = append(fields, zap.String("file_url", f.URL))
	}
	for _, rc := range recipients {
		n.logger.Info("report notification", append(fields, zap.String("to", rc.Email))...)
	}
	return nil
}

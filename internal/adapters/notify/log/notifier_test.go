package log

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/report"
)

func TestNotifier_LogsEachRecipient(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	n := NewNotifier(zap.New(core))

	typ, _ := report.NewType(report.TypeMembers)
	r, err := report.Rehydrate(report.Record{
		ID:        3,
		Type:      typ.String(),
		Format:    report.FormatCSV,
		CreatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Columns:   typ.Columns(),
	})
	if err != nil {
		t.Fatalf("Rehydrate returned error: %v", err)
	}

	err = n.Notify(context.Background(), r, []report.Recipient{{Email: "a@empresa.com"}, {Email: "b@empresa.com"}})
	if err != nil {
		t.Fatalf("Notify returned error: %v", err)
	}
	if logs.Len() != 2 {
		t.Fatalf("expected 2 log entries, got %d", logs.Len())
	}
	entry := logs.All()[1]
	if entry.ContextMap()["to"] != "b@empresa.com" {
		t.Fatalf("unexpected recipient field: %v", entry.ContextMap())
	}
	if entry.ContextMap()["report_id"] != int64(3) {
		t.Fatalf("unexpected report id field: %v", entry.ContextMap())
	}
}

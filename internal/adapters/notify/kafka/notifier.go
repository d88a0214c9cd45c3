// Package kafka は生成済みレポートの通知を Kafka トピックへ送信します。
package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/report"
	"github.com/ogurasousui/codex-compliance-audit/internal/platform/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const eventType = "report.generated"

// Producer は利用する kgo.Client の操作です。
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Notifier は report.Notifier の Kafka 実装です。
type Notifier struct {
	producer Producer
	topic    string
	newID    func() uuid.UUID
}

var _ report.Notifier = (*Notifier)(nil)

// NewClient は notification 設定から kgo.Client を生成します。
func NewClient(cfg config.NotificationConfig) (*kgo.Client, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka: new client: %w", err)
	}
	return client, nil
}

// NewNotifier は Notifier を生成します。
func NewNotifier(producer Producer, topic string) *Notifier {
	return &Notifier{producer: producer, topic: topic, newID: uuid.New}
}

type notification struct {
	ID          string    `json:"id"`
	Event       string    `json:"event"`
	ReportID    int64     `json:"reportId"`
	Type        string    `json:"type"`
	Format      string    `json:"format"`
	RowCount    int       `json:"rowCount"`
	CreatedAt   time.Time `json:"createdAt"`
	FileName    string    `json:"fileName"`
	FileURL     string    `json:"fileUrl,omitempty"`
	FileSize    string    `json:"fileSize,omitempty"`
	Recipients  []string  `json:"recipients"`
	RequestedBy int64     `json:"requestedBy"`
}

// Notify は受信者全員分を 1 メッセージにまとめて送信します。受信者がいなければ何もしません。
func (n *Notifier) Notify(ctx context.Context, r *report.Report, recipients []report.Recipient) error {
	if len(recipients) == 0 {
		return nil
	}

	id := n.newID()
	msg := notification{
		ID:          id.String(),
		Event:       eventType,
		ReportID:    r.ID(),
		Type:        r.Type().String(),
		Format:      r.Format().String(),
		RowCount:    r.RowCount(),
		CreatedAt:   r.CreatedAt(),
		FileName:    r.FileName(),
		Recipients:  lo.Map(recipients, func(rc report.Recipient, _ int) string { return rc.Email }),
		RequestedBy: r.RequestedBy(),
	}
	if f, ok := r.File(); ok {
		msg.FileURL = f.URL
		msg.FileSize = f.Size
	}

	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("kafka: encode notification: %w", err)
	}

	rec := &kgo.Record{
		Topic: n.topic,
		Key:   []byte(id.String()),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "event", Value: []byte(eventType)},
			{Key: "report-type", Value: []byte(msg.Type)},
		},
	}
	if err := n.producer.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("kafka: produce to %s: %w", n.topic, err)
	}
	return nil
}

// Package reporttest はレポートパイプラインのテスト用ダブルを提供します。
package reporttest

import (
	"context"
	"sync"
	"time"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/report"
)

// Clock は固定時刻を返します。
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(now time.Time) *Clock { return &Clock{now: now} }

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance は時刻を進めます。
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Store はメモリ上のレポートストアです。
type Store struct {
	mu      sync.Mutex
	nextID  int64
	reports map[int64]*report.Report
	Err     error
}

func NewStore(seed ...*report.Report) *Store {
	s := &Store{reports: make(map[int64]*report.Report)}
	for _, r := range seed {
		if r.ID() > s.nextID {
			s.nextID = r.ID()
		}
		s.reports[r.ID()] = r
	}
	return s
}

func (s *Store) Save(_ context.Context, r *report.Report) (*report.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	s.nextID++
	saved := r.WithID(s.nextID)
	s.reports[saved.ID()] = saved
	return saved, nil
}

func (s *Store) FindByID(_ context.Context, id int64) (*report.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	r, ok := s.reports[id]
	if !ok {
		return nil, report.ErrReportNotFound
	}
	return r, nil
}

// Len は保存済み件数です。
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}

// Formatter は要求を記録し、固定のファイル情報を返します。
type Formatter struct {
	mu       sync.Mutex
	Requests []report.FileRequest
	Err      error
	// Hook が設定されていれば Produce の最初に呼ばれます。
	Hook func(ctx context.Context, req report.FileRequest) error
}

func (f *Formatter) Produce(ctx context.Context, req report.FileRequest) (report.File, error) {
	if f.Hook != nil {
		if err := f.Hook(ctx, req); err != nil {
			return report.File{}, err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Requests = append(f.Requests, req)
	if f.Err != nil {
		return report.File{}, f.Err
	}
	return report.File{
		Path:      req.StoragePath,
		URL:       "https://files.example.test" + req.StoragePath,
		SizeBytes: int64(2048 + 100*len(req.Rows)),
	}, nil
}

// Calls は Produce の呼び出し回数です。
func (f *Formatter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Requests)
}

// Schedules はメモリ上の定期設定です。
type Schedules struct {
	mu        sync.Mutex
	schedules map[int64]*report.Schedule
	Runs      []Run
	Err       error
	RecordErr error
}

// Run は RecordRun の記録です。
type Run struct {
	ScheduleID int64
	ReportID   int64
	At         time.Time
}

func NewSchedules(seed ...*report.Schedule) *Schedules {
	s := &Schedules{schedules: make(map[int64]*report.Schedule)}
	for _, sc := range seed {
		s.schedules[sc.ID] = sc
	}
	return s
}

func (s *Schedules) FindSchedule(_ context.Context, id int64) (*report.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	sc, ok := s.schedules[id]
	if !ok {
		return nil, report.ErrScheduleNotFound
	}
	return sc, nil
}

func (s *Schedules) ListActive(context.Context) ([]*report.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []*report.Schedule
	for _, sc := range s.schedules {
		if sc.Active {
			out = append(out, sc)
		}
	}
	return out, nil
}

func (s *Schedules) RecordRun(_ context.Context, scheduleID, reportID int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.RecordErr != nil {
		return s.RecordErr
	}
	s.Runs = append(s.Runs, Run{ScheduleID: scheduleID, ReportID: reportID, At: at})
	if sc, ok := s.schedules[scheduleID]; ok {
		t := at
		sc.LastRunAt = &t
	}
	return nil
}

// Notifier は通知を記録します。
type Notifier struct {
	mu   sync.Mutex
	Sent []Notification
	Err  error
}

// Notification は Notify の記録です。
type Notification struct {
	ReportID   int64
	Recipients []report.Recipient
}

func (n *Notifier) Notify(_ context.Context, r *report.Report, recipients []report.Recipient) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.Sent = append(n.Sent, Notification{ReportID: r.ID(), Recipients: recipients})
	return nil
}

// Observer は段階遷移を記録します。
type Observer struct {
	mu          sync.Mutex
	Transitions []Transition
	Completions int
	Failures    []report.State
}

// Transition は 1 回の段階遷移です。
type Transition struct {
	Type string
	From report.State
	To   report.State
}

func (o *Observer) Transition(t report.Type, from, to report.State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Transitions = append(o.Transitions, Transition{Type: t.String(), From: from, To: to})
}

func (o *Observer) Completed(report.Type, report.Format, int, time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Completions++
}

func (o *Observer) Failed(_ report.Type, stage report.State, _ error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Failures = append(o.Failures, stage)
}

// Path は To だけを順に並べた遷移経路です。
func (o *Observer) Path() []report.State {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]report.State, 0, len(o.Transitions))
	for _, tr := range o.Transitions {
		out = append(out, tr.To)
	}
	return out
}

package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/domainerr"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/employee"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/query"
)

// MaxEmployees は 1 回の生成で扱える社員数の上限です。
const MaxEmployees = 10000

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// Observer は生成処理の段階遷移と結果を受け取ります。
type Observer interface {
	Transition(t Type, from, to State)
	Completed(t Type, f Format, rows int, elapsed time.Duration)
	Failed(t Type, stage State, err error)
}

type noopObserver struct{}

func (noopObserver) Transition(Type, State, State) {}

func (noopObserver) Completed(Type, Format, int, time.Duration) {}

func (noopObserver) Failed(Type, State, error) {}

// Request は社員集合を直接渡す生成要求です。
type Request struct {
	Type        string
	Format      string
	RequestedBy int64
	Employees   []*employee.Employee
	Criteria    query.Criteria
}

// CriteriaRequest は条件から母集団を組み立てる生成要求です。
type CriteriaRequest struct {
	Type        string
	Format      string
	RequestedBy int64
	Criteria    query.Criteria
}

// RegenerateRequest は既存レポートの再生成要求です。空の項目は元のレポートの値を使います。
type RegenerateRequest struct {
	ReportID    int64
	Format      string
	RequestedBy int64
	Criteria    *query.Criteria
}

// UseCase はレポート生成の公開インターフェースです。
type UseCase interface {
	Generate(ctx context.Context, req Request) (*Report, error)
	GenerateBatch(ctx context.Context, reqs []Request) ([]*Report, error)
	GenerateFromCriteria(ctx context.Context, req CriteriaRequest) (*Report, error)
	RunScheduled(ctx context.Context, scheduleID int64) (*Report, error)
	Regenerate(ctx context.Context, req RegenerateRequest) (*Report, error)
}

// Pipeline は検証・組み立て・ファイル生成・保存を順に行います。
type Pipeline struct {
	formatter Formatter
	store     Store
	schedules Schedules
	notifier  Notifier
	employees EmployeeSource
	clock     Clock
	logger    *zap.Logger
	observer  Observer
	newID     func() string
}

var _ UseCase = (*Pipeline)(nil)

// Option は Pipeline の任意設定です。
type Option func(*Pipeline)

func WithSchedules(s Schedules) Option { return func(p *Pipeline) { p.schedules = s } }

func WithNotifier(n Notifier) Option { return func(p *Pipeline) { p.notifier = n } }

func WithEmployeeSource(s EmployeeSource) Option { return func(p *Pipeline) { p.employees = s } }

func WithClock(c Clock) Option { return func(p *Pipeline) { p.clock = c } }

func WithLogger(l *zap.Logger) Option { return func(p *Pipeline) { p.logger = l } }

func WithObserver(o Observer) Option { return func(p *Pipeline) { p.observer = o } }

// NewPipeline は Pipeline を生成します。
func NewPipeline(formatter Formatter, store Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		formatter: formatter,
		store:     store,
		clock:     realClock{},
		logger:    zap.NewNop(),
		observer:  noopObserver{},
		newID:     func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.clock == nil {
		p.clock = realClock{}
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	if p.observer == nil {
		p.observer = noopObserver{}
	}
	return p
}

func (p *Pipeline) now() time.Time { return p.clock.Now().UTC() }

// Generate は 1 件のレポートを生成します。失敗した段階で処理を打ち切ります。
func (p *Pipeline) Generate(ctx context.Context, req Request) (*Report, error) {
	x := newExecution(p.newID(), p.now())
	r, err := p.run(ctx, x, req)
	if err != nil {
		from := x.State()
		x.fail(err)
		p.observer.Transition(typeOrZero(req.Type), from, StateFailed)
		p.observer.Failed(typeOrZero(req.Type), from, err)
		p.logger.Warn("report generation failed",
			zap.String("execution_id", x.ID),
			zap.String("type", req.Type),
			zap.String("stage", string(from)),
			zap.Error(err),
		)
		return nil, err
	}
	p.observer.Completed(r.Type(), r.Format(), r.RowCount(), p.now().Sub(x.StartedAt))
	p.logger.Info("report generated",
		zap.String("execution_id", x.ID),
		zap.Int64("report_id", r.ID()),
		zap.String("type", r.Type().String()),
		zap.String("format", r.Format().String()),
		zap.Int("rows", r.RowCount()),
	)
	return r, nil
}

func (p *Pipeline) run(ctx context.Context, x *Execution, req Request) (*Report, error) {
	t, f, err := validateRequest(req)
	if err != nil {
		return nil, err
	}
	if err := p.step(x, t, StateValidated); err != nil {
		return nil, err
	}

	r, err := New(Params{
		Type:        t,
		Format:      f,
		CreatedAt:   p.now(),
		RequestedBy: req.RequestedBy,
		Columns:     t.Columns(),
		Rows:        Project(t, req.Employees),
		Criteria:    req.Criteria,
	})
	if err != nil {
		return nil, err
	}
	if err := p.step(x, t, StateAssembled); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	file, err := p.formatter.Produce(ctx, FileRequest{
		Type:        t,
		Format:      f,
		Name:        r.FileName(),
		StoragePath: r.StoragePath(),
		Columns:     r.Columns(),
		Rows:        r.Rows(),
	})
	if err != nil {
		return nil, domainerr.Dependency("formatter.produce", err)
	}
	if err := r.AttachFile(file); err != nil {
		return nil, err
	}
	if err := p.step(x, t, StateFileProduced); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	saved, err := p.store.Save(ctx, r)
	if err != nil {
		return nil, domainerr.Dependency("store.save", err)
	}
	if err := p.step(x, t, StateCompleted); err != nil {
		return nil, err
	}
	return saved, nil
}

func (p *Pipeline) step(x *Execution, t Type, to State) error {
	from := x.State()
	if err := x.advance(to); err != nil {
		return err
	}
	p.observer.Transition(t, from, to)
	return nil
}

func validateRequest(req Request) (Type, Format, error) {
	t, err := NewType(req.Type)
	if err != nil {
		return Type{}, Format{}, err
	}
	f, err := NewFormat(req.Format)
	if err != nil {
		return Type{}, Format{}, err
	}
	n := len(req.Employees)
	if n == 0 {
		return Type{}, Format{}, &domainerr.Error{
			Kind:    domainerr.KindValidation,
			Field:   "empleados",
			Message: "employee set must not be empty",
			Err:     ErrEmptyEmployeeSet,
		}
	}
	if n > MaxEmployees {
		e := domainerr.Capacity("empleados", MaxEmployees, n)
		e.Err = ErrTooManyEmployees
		return Type{}, Format{}, e
	}
	if t.String() == TypeConflictOfInterest && !lo.SomeBy(req.Employees, (*employee.Employee).HasConflictOfInterest) {
		return Type{}, Format{}, &domainerr.Error{
			Kind:    domainerr.KindPolicyViolation,
			Field:   "empleados",
			Message: "conflict-of-interest report needs at least one employee with a declared conflict",
			Err:     ErrNoConflictedEmployees,
		}
	}
	return t, f, nil
}

// GenerateBatch は要求を並行に生成します。1 件でも失敗すると残りを中断し、その最初のエラーを返します。
// 既に保存済みのレポートは取り消しません。
func (p *Pipeline) GenerateBatch(ctx context.Context, reqs []Request) ([]*Report, error) {
	batchID := p.newID()
	out := make([]*Report, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		g.Go(func() error {
			r, err := p.Generate(gctx, req)
			if err != nil {
				return fmt.Errorf("batch item %d: %w", i, err)
			}
			out[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		p.logger.Warn("report batch aborted", zap.String("batch_id", batchID), zap.Error(err))
		return nil, err
	}
	p.logger.Info("report batch completed", zap.String("batch_id", batchID), zap.Int("reports", len(out)))
	return out, nil
}

// GenerateFromCriteria は条件を最適化・検証・適用した結果からレポートを生成します。
func (p *Pipeline) GenerateFromCriteria(ctx context.Context, req CriteriaRequest) (*Report, error) {
	if p.employees == nil {
		return nil, domainerr.Dependency("employees.find_all", ErrMissingCollaborator)
	}
	c := query.OptimizeCriteria(req.Criteria)
	if err := query.ValidateCriteria(c).Err(); err != nil {
		return nil, err
	}
	all, err := p.employees.FindAll(ctx)
	if err != nil {
		return nil, domainerr.Dependency("employees.find_all", err)
	}
	return p.Generate(ctx, Request{
		Type:        req.Type,
		Format:      req.Format,
		RequestedBy: req.RequestedBy,
		Employees:   query.ApplyFilters(all, c),
		Criteria:    c,
	})
}

// RunScheduled は定期設定に従ってレポートを生成し、通知と実行記録を行います。
// 通知と実行記録の失敗はログに残すだけで結果には影響しません。
func (p *Pipeline) RunScheduled(ctx context.Context, scheduleID int64) (*Report, error) {
	if p.schedules == nil {
		return nil, domainerr.Dependency("schedules.find", ErrMissingCollaborator)
	}
	s, err := p.schedules.FindSchedule(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, ErrScheduleNotFound) {
			return nil, domainerr.NotFound("programacion", scheduleID)
		}
		return nil, domainerr.Dependency("schedules.find", err)
	}
	if !s.Active {
		return nil, &domainerr.Error{
			Kind:    domainerr.KindValidation,
			Field:   "programacion",
			Message: "schedule is not active",
			ID:      fmt.Sprint(scheduleID),
			Err:     ErrScheduleInactive,
		}
	}

	r, err := p.GenerateFromCriteria(ctx, CriteriaRequest{
		Type:        s.Type.String(),
		Format:      s.Format.String(),
		RequestedBy: s.CreatedBy,
		Criteria:    s.Criteria,
	})
	if err != nil {
		return nil, err
	}

	logger := p.logger.With(zap.Int64("schedule_id", s.ID), zap.Int64("report_id", r.ID()))
	if recipients := s.ActiveRecipients(); p.notifier != nil && len(recipients) > 0 {
		if err := p.notifier.Notify(ctx, r, recipients); err != nil {
			logger.Warn("report notification failed", zap.Int("recipients", len(recipients)), zap.Error(err))
		}
	}
	if err := p.schedules.RecordRun(ctx, s.ID, r.ID(), p.now()); err != nil {
		logger.Warn("recording scheduled run failed", zap.Error(err))
	}
	return r, nil
}

// Regenerate は作成から 24 時間以内のレポートを、元の条件か新しい条件で作り直します。
func (p *Pipeline) Regenerate(ctx context.Context, req RegenerateRequest) (*Report, error) {
	orig, err := p.store.FindByID(ctx, req.ReportID)
	if err != nil {
		if errors.Is(err, ErrReportNotFound) {
			return nil, domainerr.NotFound("reporte", req.ReportID)
		}
		return nil, domainerr.Dependency("store.find", err)
	}
	if !orig.CanBeRegenerated(p.now()) {
		return nil, &domainerr.Error{
			Kind:    domainerr.KindPolicyViolation,
			Field:   "reporte",
			Message: "report is older than the regeneration window",
			ID:      fmt.Sprint(req.ReportID),
			Err:     ErrRegenerationWindowExpired,
		}
	}

	criteria := orig.Criteria()
	if req.Criteria != nil {
		criteria = *req.Criteria
	}
	format := orig.Format().String()
	if req.Format != "" {
		format = req.Format
	}
	requestedBy := orig.RequestedBy()
	if req.RequestedBy != 0 {
		requestedBy = req.RequestedBy
	}
	return p.GenerateFromCriteria(ctx, CriteriaRequest{
		Type:        orig.Type().String(),
		Format:      format,
		RequestedBy: requestedBy,
		Criteria:    criteria,
	})
}

func typeOrZero(raw string) Type {
	t, err := NewType(raw)
	if err != nil {
		return Type{}
	}
	return t
}

// Package cache は社員リポジトリのメタデータ読み取りをメモリにキャッシュします。
package cache

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/employee"
)

const metadataPrefix = "employees:distinct:"

// Backend はキャッシュ対象のリポジトリです。
type Backend interface {
	employee.Reader
	employee.Writer
	employee.Searcher
	employee.MetadataReader
	employee.Auditor
}

// EmployeeRepository は Distinct 系の結果を TTL 付きで保持し、書き込み時に破棄します。
// それ以外の操作は Backend にそのまま委譲します。
type EmployeeRepository struct {
	Backend
	cache *gocache.Cache
	ttl   time.Duration
}

// NewEmployeeRepository は ttl と掃除間隔を指定してキャッシュを生成します。
func NewEmployeeRepository(backend Backend, ttl, cleanupInterval time.Duration) *EmployeeRepository {
	return &EmployeeRepository{
		Backend: backend,
		cache:   gocache.New(ttl, cleanupInterval),
		ttl:     ttl,
	}
}

func (r *EmployeeRepository) DistinctDepartments(ctx context.Context) ([]string, error) {
	return r.cached(ctx, "departments", r.Backend.DistinctDepartments)
}

func (r *EmployeeRepository) DistinctStatuses(ctx context.Context) ([]string, error) {
	return r.cached(ctx, "statuses", r.Backend.DistinctStatuses)
}

func (r *EmployeeRepository) DistinctTitles(ctx context.Context) ([]string, error) {
	return r.cached(ctx, "titles", r.Backend.DistinctTitles)
}

func (r *EmployeeRepository) Save(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	saved, err := r.Backend.Save(ctx, e)
	if err == nil {
		r.Invalidate()
	}
	return saved, err
}

func (r *EmployeeRepository) Update(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	updated, err := r.Backend.Update(ctx, e)
	if err == nil {
		r.Invalidate()
	}
	return updated, err
}

func (r *EmployeeRepository) Delete(ctx context.Context, id int64) error {
	err := r.Backend.Delete(ctx, id)
	if err == nil {
		r.Invalidate()
	}
	return err
}

// Invalidate はメタデータのキャッシュをすべて破棄します。
// トランザクション内の書き込みでは、コミット後に呼び出し側が改めて呼びます。
func (r *EmployeeRepository) Invalidate() {
	for k := range r.cache.Items() {
		if strings.HasPrefix(k, metadataPrefix) {
			r.cache.Delete(k)
		}
	}
}

func (r *EmployeeRepository) cached(ctx context.Context, name string, load func(context.Context) ([]string, error)) ([]string, error) {
	key := metadataPrefix + name
	if v, ok := r.cache.Get(key); ok {
		return append([]string(nil), v.([]string)...), nil
	}
	values, err := load(ctx)
	if err != nil {
		return nil, err
	}
	r.cache.Set(key, append([]string(nil), values...), r.ttl)
	return values, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/ogurasousui/codex-compliance-audit/internal/adapters/formatter"
	"github.com/ogurasousui/codex-compliance-audit/internal/adapters/grpc/handler"
	kafkanotify "github.com/ogurasousui/codex-compliance-audit/internal/adapters/notify/kafka"
	lognotify "github.com/ogurasousui/codex-compliance-audit/internal/adapters/notify/log"
	"github.com/ogurasousui/codex-compliance-audit/internal/adapters/repository/cache"
	"github.com/ogurasousui/codex-compliance-audit/internal/adapters/repository/postgres"
	"github.com/ogurasousui/codex-compliance-audit/internal/adapters/scheduler"
	s3storage "github.com/ogurasousui/codex-compliance-audit/internal/adapters/storage/s3"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/admin"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/policy"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/report"
	"github.com/ogurasousui/codex-compliance-audit/internal/platform/config"
	pg "github.com/ogurasousui/codex-compliance-audit/internal/platform/db/postgres"
	"github.com/ogurasousui/codex-compliance-audit/internal/platform/logger"
	"github.com/ogurasousui/codex-compliance-audit/internal/platform/metrics"
	"github.com/ogurasousui/codex-compliance-audit/internal/platform/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(ctx, cfg, zl); err != nil {
		zl.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, zl *zap.Logger) error {
	dbPool, err := pg.NewPool(ctx, cfg.Database, zl)
	if err != nil {
		return fmt.Errorf("initialize database pool: %w", err)
	}
	defer dbPool.Close()

	txManager := pg.NewTransactionManager(dbPool, pg.WithTxLogger(zl))
	employeeRepo := cache.NewEmployeeRepository(
		postgres.NewEmployeeRepository(dbPool),
		cfg.Cache.MetadataTTL,
		cfg.Cache.CleanupInterval,
	)
	reportRepo := postgres.NewReportRepository(dbPool)
	scheduleRepo := postgres.NewScheduleRepository(dbPool)

	rules := policy.NewService(policy.Config{
		MinDaysBetweenUpdates:    cfg.Policy.MinDaysBetweenUpdates,
		RequiresManagerApproval:  *cfg.Policy.RequiresManagerApproval,
		NotifyOnImportantChanges: *cfg.Policy.NotifyOnImportantChanges,
	}, nil)
	adminSvc := admin.NewService(employeeRepo, rules, nil, txManager)

	s3Client, err := s3storage.NewClient(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("initialize storage client: %w", err)
	}
	files := formatter.New(s3storage.New(s3Client, cfg.Storage))

	notifier, closeNotifier, err := newNotifier(cfg.Notification, zl)
	if err != nil {
		return fmt.Errorf("initialize notifier: %w", err)
	}
	defer closeNotifier()

	m := metrics.New()
	pipeline := report.NewPipeline(files, reportRepo,
		report.WithSchedules(scheduleRepo),
		report.WithNotifier(notifier),
		report.WithEmployeeSource(employeeRepo),
		report.WithLogger(zl),
		report.WithObserver(m),
	)

	grpcServer := server.New(cfg.Server.ListenAddr,
		handler.NewComplianceGrpcHandler(adminSvc, pipeline),
		zl,
		grpc.ChainUnaryInterceptor(m.UnaryServerInterceptor()),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return grpcServer.Run(gctx) })

	if cfg.Metrics.Enabled {
		g.Go(func() error { return serveMetrics(gctx, cfg.Metrics, m, zl) })
	}

	if cfg.Scheduler.Enabled {
		sched := scheduler.New(scheduleRepo, pipeline,
			scheduler.WithLogger(zl),
			scheduler.WithInterval(cfg.Scheduler.Interval),
			scheduler.WithMaxRetries(cfg.Scheduler.MaxRetries),
		)
		g.Go(func() error {
			if err := sched.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	return g.Wait()
}

func newNotifier(cfg config.NotificationConfig, zl *zap.Logger) (report.Notifier, func(), error) {
	if cfg.Driver != config.NotificationDriverKafka {
		return lognotify.NewNotifier(zl), func() {}, nil
	}
	client, err := kafkanotify.NewClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	zl.Info("kafka notifier enabled", zap.Strings("brokers", cfg.Brokers), zap.String("topic", cfg.Topic))
	return kafkanotify.NewNotifier(client, cfg.Topic), client.Close, nil
}

func serveMetrics(ctx context.Context, cfg config.MetricsConfig, m *metrics.Metrics, zl *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, m.Handler())
	srv := &http.Server{Addr: cfg.ListenAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	zl.Info("metrics endpoint listening", zap.String("addr", cfg.ListenAddr), zap.String("path", cfg.Path))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve metrics: %w", err)
	}
	return nil
}

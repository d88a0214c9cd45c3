package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	Log          LogConfig          `yaml:"log"`
	Metrics      MetricsConfig      `yaml:"metrics"`
	Policy       PolicyConfig       `yaml:"policy"`
	Storage      StorageConfig      `yaml:"storage"`
	Notification NotificationConfig `yaml:"notification"`
	Scheduler    SchedulerConfig    `yaml:"scheduler"`
	Cache        CacheConfig        `yaml:"cache"`
}

// ServerConfig は gRPC サーバーに関する設定です。
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	SSLMode            string        `yaml:"ssl_mode"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`
}

// LogConfig は zap ロガーの設定です。
type LogConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	Development bool   `yaml:"development"`
}

// MetricsConfig は Prometheus エンドポイントの設定です。
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
	Path       string `yaml:"path"`
}

// PolicyConfig は業務ルールの設定です。省略された真偽値は true として扱います。
type PolicyConfig struct {
	MinDaysBetweenUpdates    int   `yaml:"min_days_between_updates"`
	RequiresManagerApproval  *bool `yaml:"requires_manager_approval"`
	NotifyOnImportantChanges *bool `yaml:"notify_on_important_changes"`
}

// StorageConfig はレポートファイルを保存する S3 互換ストレージの設定です。
type StorageConfig struct {
	Bucket        string `yaml:"bucket"`
	Region        string `yaml:"region"`
	Endpoint      string `yaml:"endpoint"`
	Prefix        string `yaml:"prefix"`
	PublicBaseURL string `yaml:"public_base_url"`
	UsePathStyle  bool   `yaml:"use_path_style"`
}

// NotificationConfig は定期レポートの通知先です。driver は log か kafka です。
type NotificationConfig struct {
	Driver   string   `yaml:"driver"`
	Brokers  []string `yaml:"brokers"`
	Topic    string   `yaml:"topic"`
	ClientID string   `yaml:"client_id"`
}

// SchedulerConfig は定期レポート実行ループの設定です。
type SchedulerConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Interval    time.Duration `yaml:"-"`
	IntervalRaw string        `yaml:"interval"`
	MaxRetries  int           `yaml:"max_retries"`
}

// CacheConfig はメタデータキャッシュの設定です。
type CacheConfig struct {
	MetadataTTL        time.Duration `yaml:"-"`
	CleanupInterval    time.Duration `yaml:"-"`
	MetadataTTLRaw     string        `yaml:"metadata_ttl"`
	CleanupIntervalRaw string        `yaml:"cleanup_interval"`
}

const (
	NotificationDriverLog   = "log"
	NotificationDriverKafka = "kafka"
)

// Load は指定されたパスから設定ファイルを読み込みます。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validateAndNormalize() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr must be set")
	}

	steps := []func() error{
		c.Database.validateAndNormalize,
		c.Log.validateAndNormalize,
		c.Metrics.validateAndNormalize,
		c.Policy.validateAndNormalize,
		c.Storage.validateAndNormalize,
		c.Notification.validateAndNormalize,
		c.Scheduler.validateAndNormalize,
		c.Cache.validateAndNormalize,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}

	lifetime, err := parseDurationAllowEmpty(d.ConnMaxLifetimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(d.ConnMaxIdleTimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	return nil
}

func (l *LogConfig) validateAndNormalize() error {
	l.Level = strings.ToLower(strings.TrimSpace(l.Level))
	switch l.Level {
	case "":
		l.Level = "info"
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is not supported", l.Level)
	}

	l.Format = strings.ToLower(strings.TrimSpace(l.Format))
	switch l.Format {
	case "":
		l.Format = "json"
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is not supported", l.Format)
	}
	return nil
}

func (m *MetricsConfig) validateAndNormalize() error {
	if !m.Enabled {
		return nil
	}
	if m.ListenAddr == "" {
		m.ListenAddr = ":9090"
	}
	if m.Path == "" {
		m.Path = "/metrics"
	}
	if !strings.HasPrefix(m.Path, "/") {
		return fmt.Errorf("config: metrics.path must start with /")
	}
	return nil
}

func (p *PolicyConfig) validateAndNormalize() error {
	if p.MinDaysBetweenUpdates < 0 {
		return fmt.Errorf("config: policy.min_days_between_updates must not be negative")
	}
	if p.MinDaysBetweenUpdates == 0 {
		p.MinDaysBetweenUpdates = 30
	}
	if p.RequiresManagerApproval == nil {
		p.RequiresManagerApproval = boolPtr(true)
	}
	if p.NotifyOnImportantChanges == nil {
		p.NotifyOnImportantChanges = boolPtr(true)
	}
	return nil
}

func (s *StorageConfig) validateAndNormalize() error {
	if s.Bucket == "" {
		return fmt.Errorf("config: storage.bucket must be set")
	}
	if s.Region == "" {
		s.Region = "us-east-1"
	}
	if s.Endpoint != "" {
		if _, err := url.ParseRequestURI(s.Endpoint); err != nil {
			return fmt.Errorf("config: storage.endpoint: %w", err)
		}
	}
	s.Prefix = strings.Trim(s.Prefix, "/")
	s.PublicBaseURL = strings.TrimSuffix(s.PublicBaseURL, "/")
	return nil
}

func (n *NotificationConfig) validateAndNormalize() error {
	n.Driver = strings.ToLower(strings.TrimSpace(n.Driver))
	switch n.Driver {
	case "":
		n.Driver = NotificationDriverLog
	case NotificationDriverLog:
	case NotificationDriverKafka:
		if len(n.Brokers) == 0 {
			return fmt.Errorf("config: notification.brokers must be set for the kafka driver")
		}
		if n.Topic == "" {
			return fmt.Errorf("config: notification.topic must be set for the kafka driver")
		}
		if n.ClientID == "" {
			n.ClientID = "compliance-audit"
		}
	default:
		return fmt.Errorf("config: notification.driver %q is not supported", n.Driver)
	}
	return nil
}

func (s *SchedulerConfig) validateAndNormalize() error {
	interval, err := parseDurationAllowEmpty(s.IntervalRaw)
	if err != nil {
		return fmt.Errorf("config: scheduler.interval: %w", err)
	}
	if interval == 0 {
		interval = time.Minute
	}
	s.Interval = interval
	if s.MaxRetries < 0 {
		return fmt.Errorf("config: scheduler.max_retries must not be negative")
	}
	if s.MaxRetries == 0 {
		s.MaxRetries = 3
	}
	return nil
}

func (c *CacheConfig) validateAndNormalize() error {
	ttl, err := parseDurationAllowEmpty(c.MetadataTTLRaw)
	if err != nil {
		return fmt.Errorf("config: cache.metadata_ttl: %w", err)
	}
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	c.MetadataTTL = ttl

	cleanup, err := parseDurationAllowEmpty(c.CleanupIntervalRaw)
	if err != nil {
		return fmt.Errorf("config: cache.cleanup_interval: %w", err)
	}
	if cleanup == 0 {
		cleanup = 10 * time.Minute
	}
	c.CleanupInterval = cleanup
	return nil
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

func boolPtr(v bool) *bool { return &v }

// DSN は pgx 用の接続文字列を返します。ユーザー名とパスワードはエスケープされます。
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}
	return u.String()
}

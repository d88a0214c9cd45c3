// Package s3 はレポートファイルを S3 互換ストレージへ保存します。
package s3

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ogurasousui/codex-compliance-audit/internal/platform/config"
)

// API は利用する S3 クライアントの操作です。
type API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Storage はバケットとキー接頭辞を固定したアップローダです。
type Storage struct {
	api           API
	bucket        string
	prefix        string
	publicBaseURL string
	region        string
}

// NewClient は storage 設定から S3 クライアントを生成します。
func NewClient(ctx context.Context, cfg config.StorageConfig) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}

	opts := []func(*s3.Options){}
	if cfg.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.UsePathStyle
		})
	}
	return s3.NewFromConfig(awsCfg, opts...), nil
}

// New は Storage を生成します。
func New(api API, cfg config.StorageConfig) *Storage {
	return &Storage{
		api:           api,
		bucket:        cfg.Bucket,
		prefix:        strings.Trim(cfg.Prefix, "/"),
		publicBaseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
		region:        cfg.Region,
	}
}

// Put はオブジェクトを保存し、参照用 URL を返します。
func (s *Storage) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	objectKey := s.objectKey(key)
	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return "", fmt.Errorf("s3: put %s/%s: %w", s.bucket, objectKey, err)
	}
	return s.objectURL(objectKey), nil
}

func (s *Storage) objectKey(key string) string {
	key = strings.TrimPrefix(key, "/")
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}

func (s *Storage) objectURL(objectKey string) string {
	escaped := (&url.URL{Path: objectKey}).EscapedPath()
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + escaped
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, escaped)
}

package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	"notevi/internal/config"
)

type ossStorage struct {
	bucket *oss.Bucket
	prefix string
}

func NewOSSStorage(cfg config.Config) (Storage, error) {
	endpoint := strings.TrimSpace(cfg.StorageOSSEndpoint)
	if endpoint == "" {
		return nil, errors.New("storage: missing OSS endpoint")
	}
	bucketName := strings.TrimSpace(cfg.StorageOSSBucket)
	if bucketName == "" {
		return nil, errors.New("storage: missing OSS bucket")
	}
	accessKey := strings.TrimSpace(cfg.StorageOSSAccessKeyID)
	secretKey := strings.TrimSpace(cfg.StorageOSSAccessKeySecret)
	if accessKey == "" || secretKey == "" {
		return nil, errors.New("storage: missing OSS credentials")
	}

	client, err := oss.New(endpoint, accessKey, secretKey)
	if err != nil {
		return nil, fmt.Errorf("storage: create OSS client: %w", err)
	}
	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("storage: open OSS bucket: %w", err)
	}

	return &ossStorage{
		bucket: bucket,
		prefix: trimPrefix(cfg.StorageOSSPrefix),
	}, nil
}

func (s *ossStorage) key(p string) string {
	if s.prefix == "" {
		return strings.TrimLeft(p, "/")
	}
	return path.Join(s.prefix, strings.TrimLeft(p, "/"))
}

func (s *ossStorage) Save(ctx context.Context, data []byte, p string) error {
	if len(data) == 0 {
		return errors.New("empty payload")
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	options := []oss.Option{oss.WithContext(ctx)}
	if ct := detectContentType(p); ct != "" {
		options = append(options, oss.ContentType(ct))
	}

	if err := s.bucket.PutObject(s.key(p), bytes.NewReader(data), options...); err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

func (s *ossStorage) Delete(ctx context.Context, p string) error {
	if err := s.bucket.DeleteObject(s.key(p), oss.WithContext(ctx)); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func (s *ossStorage) Exists(ctx context.Context, p string) (bool, error) {
	exists, err := s.bucket.IsObjectExist(s.key(p), oss.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("check object: %w", err)
	}
	return exists, nil
}

var _ Storage = (*ossStorage)(nil)

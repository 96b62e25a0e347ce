// Package cache provides the key/value store used for computed reports.
package cache

import (
	"context"
	"time"
)

// Cache lưu giá trị đã mã hóa theo key với thời hạn TTL. Miss không phải là lỗi.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

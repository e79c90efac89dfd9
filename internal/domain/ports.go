package domain

import "context"

// PageFetcher retrieves one remote page body. Implementations own the
// courtesy delay between requests; callers just iterate URLs in order.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// ReviewArchive persists a finished run for longitudinal keeping. The file
// outputs are the contract; archiving is best-effort on top.
type ReviewArchive interface {
	UpsertReviews(ctx context.Context, biz BusinessInfo, rs []Review) error
}

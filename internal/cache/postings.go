// Package cache keeps a Redis snapshot of the job postings list.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jonathan/talenttrek/internal/db"
)

// DefaultTTL is how long a snapshot stays valid.
const DefaultTTL = time.Minute

// PostingsKey prefixes the snapshot keys. Each snapshot is stored under the generation
// that was current before its load started.
const PostingsKey = "talenttrek:postings:all"

// GenerationKey counts invalidations. A load that overlaps an invalidation is written under
// the old generation and is never read again.
const GenerationKey = "talenttrek:postings:gen"

// PostingSource loads the postings list from the system of record.
type PostingSource interface {
	ListJobPostings(ctx context.Context) ([]db.JobPosting, error)
}

// Postings wraps a PostingSource with a Redis snapshot. Redis failures are logged and the
// source is used instead.
type Postings struct {
	source PostingSource
	rdb    goredis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

// Connect parses a redis:// URL and verifies the server answers.
func Connect(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second

	rdb := goredis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// NewPostings creates the cache. A nil client disables caching.
func NewPostings(source PostingSource, rdb goredis.Cmdable, ttl time.Duration, logger *zap.Logger) *Postings {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Postings{source: source, rdb: rdb, ttl: ttl, logger: logger}
}

// ListJobPostings returns the cached snapshot, loading and storing it on a miss.
func (c *Postings) ListJobPostings(ctx context.Context) ([]db.JobPosting, error) {
	if c.rdb == nil {
		return c.source.ListJobPostings(ctx)
	}

	gen, err := c.generation(ctx)
	if err != nil {
		c.logger.Warn("postings cache generation read failed", zap.Error(err))
		return c.source.ListJobPostings(ctx)
	}
	key := snapshotKey(gen)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var postings []db.JobPosting
		if jsonErr := json.Unmarshal(raw, &postings); jsonErr == nil {
			return postings, nil
		}
		c.logger.Warn("discarding unreadable postings snapshot")
	case !errors.Is(err, goredis.Nil):
		c.logger.Warn("postings cache read failed", zap.Error(err))
	}

	postings, err := c.source.ListJobPostings(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(postings)
	if err == nil {
		if setErr := c.rdb.Set(ctx, key, payload, c.ttl).Err(); setErr != nil {
			c.logger.Warn("postings cache write failed", zap.Error(setErr))
		}
	}
	return postings, nil
}

// Invalidate moves to a new generation, retiring every earlier snapshot.
func (c *Postings) Invalidate(ctx context.Context) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Incr(ctx, GenerationKey).Err(); err != nil {
		c.logger.Warn("postings cache invalidation failed", zap.Error(err))
	}
}

func (c *Postings) generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, GenerationKey).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	return gen, err
}

func snapshotKey(gen int64) string {
	return fmt.Sprintf("%s:%d", PostingsKey, gen)
}

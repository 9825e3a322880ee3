package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/exam-engine/internal/config"
	"github.com/stemsi/exam-engine/internal/model"
)

// CachedExamCatalog is a Redis read-through cache in front of an ExamCatalog.
// It backs the read-only exam overview; the session engine never reads through
// it. Only found exams are cached, so a deleted exam stays listed for at most
// ttl. Redis failures fall back to the underlying catalog.
type CachedExamCatalog struct {
	next ExamCatalog
	rdb  *redis.Client
	ttl  time.Duration
	log  zerolog.Logger
}

// NewCachedExamCatalog wraps next. A non-positive ttl disables caching.
func NewCachedExamCatalog(next ExamCatalog, rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *CachedExamCatalog {
	return &CachedExamCatalog{
		next: next,
		rdb:  rdb,
		ttl:  ttl,
		log:  log.With().Str("component", "exam_cache").Logger(),
	}
}

func (c *CachedExamCatalog) GetByID(ctx context.Context, id model.ID) (*model.Exam, error) {
	if c.ttl <= 0 {
		return c.next.GetByID(ctx, id)
	}

	key := config.CacheKey.ExamPayloadKey(id.String())

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var exam model.Exam
		if jsonErr := json.Unmarshal(raw, &exam); jsonErr == nil {
			return &exam, nil
		}
		c.log.Warn().Str("key", key).Msg("Discarding undecodable cached exam")
	case !errors.Is(err, redis.Nil):
		c.log.Warn().Err(err).Str("key", key).Msg("Exam cache read failed")
	}

	exam, err := c.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(exam)
	if err != nil {
		return exam, nil
	}
	if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Exam cache write failed")
	}
	return exam, nil
}

// Invalidate drops the cached copy of an exam.
func (c *CachedExamCatalog) Invalidate(ctx context.Context, id model.ID) error {
	return c.rdb.Del(ctx, config.CacheKey.ExamPayloadKey(id.String())).Err()
}

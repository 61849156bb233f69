// Package cache provides AI response caching keyed by prompt content.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/ports/outbound"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	cacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "broodjes_ai_cache_hits_total",
		Help: "Number of AI prompt cache hits by operation.",
	}, []string{"operation"})

	cacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "broodjes_ai_cache_misses_total",
		Help: "Number of AI prompt cache misses by operation.",
	}, []string{"operation"})
)

// PromptCache stores AI responses keyed by a hash of the prompt payload,
// so identical requests are answered without a second model call.
type PromptCache struct {
	store  outbound.CacheRepository
	ttl    time.Duration
	logger *zap.Logger
}

// NewPromptCache creates a prompt cache on top of a cache repository.
// A zero TTL means entries never expire (subject to store eviction).
func NewPromptCache(store outbound.CacheRepository, ttl time.Duration, logger *zap.Logger) *PromptCache {
	return &PromptCache{
		store:  store,
		ttl:    ttl,
		logger: logger,
	}
}

// Key derives a deterministic cache key from an operation name and its
// payload. The payload is serialized to JSON before hashing, so any
// comparable struct works as long as its field order is stable.
func (c *PromptCache) Key(operation string, payload interface{}) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("serialize cache payload: %w", err)
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("ai:%s:%s", operation, hex.EncodeToString(sum[:])), nil
}

// Get returns the cached response for a key, or ErrCacheMiss.
func (c *PromptCache) Get(ctx context.Context, operation, key string) (string, error) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		cacheMisses.WithLabelValues(operation).Inc()
		c.logger.Debug("AI cache miss",
			zap.String("operation", operation),
			zap.String("key", key),
		)
		return "", outbound.ErrCacheMiss
	}
	cacheHits.WithLabelValues(operation).Inc()
	c.logger.Debug("AI cache hit",
		zap.String("operation", operation),
		zap.String("key", key),
	)
	return string(data), nil
}

// Set stores a response under a key. Failures are logged, not returned:
// a broken cache must never fail the request it was meant to speed up.
func (c *PromptCache) Set(ctx context.Context, operation, key, response string) {
	if err := c.store.Set(ctx, key, []byte(response), c.ttl); err != nil {
		c.logger.Warn("AI cache store failed",
			zap.String("operation", operation),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yourusername/lms-api/internal/domain/repository"
	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
	"github.com/yourusername/lms-api/internal/pkg/logger"
)

const defaultStatsTTL = 5 * time.Minute

// StatsCache кеширует статистику тестов в Redis.
// Ошибки кеша только логируются: при недоступности Redis статистика считается из БД.
type StatsCache struct {
	cache repository.CacheRepository
	ttl   time.Duration
	log   *logger.Logger
}

// NewStatsCache создает кеш статистики. cache может быть nil, тогда кеш отключен
func NewStatsCache(cache repository.CacheRepository, ttl time.Duration, log *logger.Logger) *StatsCache {
	if ttl <= 0 {
		ttl = defaultStatsTTL
	}
	return &StatsCache{cache: cache, ttl: ttl, log: log.Component("stats_cache")}
}

func quizStatsKey(quizID uint) string {
	return fmt.Sprintf("quiz:%d:stats", quizID)
}

// Get возвращает статистику из кеша; ok = false при промахе или ошибке
func (c *StatsCache) Get(ctx context.Context, quizID uint) (*repository.QuizStatistics, bool) {
	if c == nil || c.cache == nil {
		return nil, false
	}
	var stats repository.QuizStatistics
	if err := c.cache.GetJSON(ctx, quizStatsKey(quizID), &stats); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			c.log.Warn("[StatsCache] Ошибка чтения кеша", "quiz_id", quizID, "error", err)
		}
		return nil, false
	}
	return &stats, true
}

// Set сохраняет статистику в кеш
func (c *StatsCache) Set(ctx context.Context, quizID uint, stats *repository.QuizStatistics) {
	if c == nil || c.cache == nil || stats == nil {
		return
	}
	if err := c.cache.SetJSON(ctx, quizStatsKey(quizID), stats, c.ttl); err != nil {
		c.log.Warn("[StatsCache] Ошибка записи кеша", "quiz_id", quizID, "error", err)
	}
}

// Invalidate удаляет статистику теста из кеша
func (c *StatsCache) Invalidate(ctx context.Context, quizID uint) {
	if c == nil || c.cache == nil {
		return
	}
	if err := c.cache.Delete(ctx, quizStatsKey(quizID)); err != nil {
		c.log.Warn("[StatsCache] Ошибка инвалидации кеша", "quiz_id", quizID, "error", err)
	}
}

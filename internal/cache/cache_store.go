package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"telegram-chat-analytics/internal/domain"
)

// ReportEntry — отчет по документу и срок его жизни.
type ReportEntry struct {
	Report    *domain.Report
	ExpiresAt time.Time
}

// ReportCache хранит готовые отчеты по SHA256 исходного документа,
// чтобы повторная загрузка того же файла не пересчитывала агрегаты.
type ReportCache struct {
	entries map[string]*ReportEntry
	mutex   sync.RWMutex
	group   singleflight.Group
	now     func() time.Time
}

// NewReportCache создает пустой кеш отчетов.
func NewReportCache() *ReportCache {
	return &ReportCache{
		entries: make(map[string]*ReportEntry),
		now:     time.Now,
	}
}

// Get возвращает отчет по дайджесту, если он есть и не просрочен.
func (c *ReportCache) Get(digest string) (*domain.Report, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, ok := c.entries[digest]
	if !ok || c.now().After(entry.ExpiresAt) {
		return nil, false
	}
	return entry.Report, true
}

// Put сохраняет отчет на ttl.
func (c *ReportCache) Put(digest string, report *domain.Report, ttl time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[digest] = &ReportEntry{
		Report:    report,
		ExpiresAt: c.now().Add(ttl),
	}
}

// GetOrBuild возвращает отчет из кеша, а при промахе строит его через build.
// Параллельные запросы с одним дайджестом вызывают build один раз.
func (c *ReportCache) GetOrBuild(digest string, ttl time.Duration, build func() *domain.Report) *domain.Report {
	if report, ok := c.Get(digest); ok {
		return report
	}

	v, _, _ := c.group.Do(digest, func() (interface{}, error) {
		if report, ok := c.Get(digest); ok {
			return report, nil
		}
		report := build()
		c.Put(digest, report, ttl)
		return report, nil
	})
	return v.(*domain.Report)
}

// CleanupExpired удаляет просроченные записи и возвращает их число.
func (c *ReportCache) CleanupExpired() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	removed := 0
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// StartCleanupTicker запускает периодическую очистку до отмены ctx.
func (c *ReportCache) StartCleanupTicker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.CleanupExpired()
			}
		}
	}()
}

// CalculateHash вычисляет SHA256 содержимого документа в hex.
func CalculateHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

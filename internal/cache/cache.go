// Package cache keeps a short-lived Redis view of the exchange marketplace so
// repeated role/date lookups skip the join against the roster.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/medrota/shiftswap/internal/model"
)

const marketplaceTTL = 30 * time.Second

// Marketplace caches ListAvailableEntriesByRoleAndDate results. A nil
// receiver or nil client disables caching entirely.
type Marketplace struct {
	rdb *redis.Client
}

func NewMarketplace(address, username, password string) *Marketplace {
	if address == "" {
		return nil
	}
	return &Marketplace{rdb: redis.NewClient(&redis.Options{
		Addr:     address,
		Username: username,
		Password: password,
		DB:       0,
	})}
}

func marketplaceKey(role model.Role, date time.Time) string {
	return fmt.Sprintf("marketplace:%s:%s", role, date.Format("2006-01-02"))
}

func (m *Marketplace) Get(ctx context.Context, role model.Role, date time.Time) ([]model.ScheduleEntry, bool) {
	if m == nil || m.rdb == nil {
		return nil, false
	}
	raw, err := m.rdb.Get(ctx, marketplaceKey(role, date)).Bytes()
	if err != nil {
		return nil, false
	}
	var entries []model.ScheduleEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func (m *Marketplace) Set(ctx context.Context, role model.Role, date time.Time, entries []model.ScheduleEntry) {
	if m == nil || m.rdb == nil {
		return
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := m.rdb.Set(ctx, marketplaceKey(role, date), raw, marketplaceTTL).Err(); err != nil {
		log.Error().Err(err).Msg("failed to cache marketplace entries")
	}
}

// InvalidateDate drops every cached role view of the given date. Called on
// any write that could change that day's marketplace.
func (m *Marketplace) InvalidateDate(ctx context.Context, date time.Time) {
	if m == nil || m.rdb == nil {
		return
	}
	pattern := fmt.Sprintf("marketplace:*:%s", date.Format("2006-01-02"))
	keys, err := m.rdb.Keys(ctx, pattern).Result()
	if err != nil || len(keys) == 0 {
		return
	}
	if err := m.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Error().Err(err).Msg("failed to invalidate marketplace cache")
	}
}

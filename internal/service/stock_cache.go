package service

import (
	"context"
	"encoding/json"
	"time"

	"gescom/internal/dto"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// StockCache caches depot stock listings in Redis. A nil cache or a nil
// client disables caching; every Redis failure falls back to the database.
type StockCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStockCache(rdb *redis.Client, ttl time.Duration) *StockCache {
	return &StockCache{rdb: rdb, ttl: ttl}
}

func depotStockKey(depotID uuid.UUID) string { return "stock:depot:" + depotID.String() }

func (c *StockCache) actif() bool { return c != nil && c.rdb != nil }

func (c *StockCache) Depot(ctx context.Context, depotID uuid.UUID) (*dto.DepotStockResponse, bool) {
	if !c.actif() {
		return nil, false
	}
	b, err := c.rdb.Get(ctx, depotStockKey(depotID)).Bytes()
	if err != nil {
		return nil, false
	}
	var resp dto.DepotStockResponse
	if err := json.Unmarshal(b, &resp); err != nil {
		return nil, false
	}
	return &resp, true
}

func (c *StockCache) StockerDepot(ctx context.Context, resp *dto.DepotStockResponse) {
	if !c.actif() {
		return
	}
	b, err := json.Marshal(resp)
	if err != nil {
		return
	}
	id, err := uuid.Parse(resp.DepotID)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, depotStockKey(id), b, c.ttl).Err()
}

// Invalider drops the cached listings of the given depots. Called after commit.
func (c *StockCache) Invalider(ctx context.Context, depotIDs ...uuid.UUID) {
	if !c.actif() || len(depotIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(depotIDs))
	for _, id := range depotIDs {
		keys = append(keys, depotStockKey(id))
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Strs("keys", keys).Msg("stock cache invalidation failed")
	}
}

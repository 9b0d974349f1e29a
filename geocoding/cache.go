package geocoding

import (
	"context"
	"encoding/json"
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/redis/go-redis/v9"
	"netcov/metrics"
	"time"
)

const cacheKeyPrefix = "netcov:geocode:"

type cacheEntry struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Address string  `json:"address"`
}

// Cache stores geocoding results in redis. A nil cache is valid and caches nothing. Redis errors are only logged and
// never fail a geocoding request.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(addr string, password string, db int, ttl time.Duration) *Cache {
	if addr == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &Cache{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}),
		ttl:    ttl,
	}
}

func (c *Cache) get(ctx context.Context, key string) (*Location, bool) {
	if c == nil {
		return nil, false
	}

	value, err := c.client.Get(ctx, cacheKeyPrefix+key).Result()
	if err == redis.Nil {
		metrics.CacheMissesTotal.Inc()
		return nil, false
	}
	if err != nil {
		sigolo.Errorf("Unable to read geocoder cache entry %s: %+v", key, err)
		return nil, false
	}

	var entry cacheEntry
	err = json.Unmarshal([]byte(value), &entry)
	if err != nil {
		sigolo.Errorf("Invalid geocoder cache entry %s: %+v", key, err)
		return nil, false
	}

	metrics.CacheHitsTotal.Inc()
	return &Location{Point: orb.Point{entry.Lon, entry.Lat}, Address: entry.Address}, true
}

func (c *Cache) set(ctx context.Context, key string, location *Location) {
	if c == nil {
		return
	}

	value, err := json.Marshal(cacheEntry{Lat: location.Lat(), Lon: location.Lon(), Address: location.Address})
	if err != nil {
		sigolo.Errorf("Unable to serialize geocoder cache entry %s: %+v", key, err)
		return
	}

	err = c.client.Set(ctx, cacheKeyPrefix+key, value, c.ttl).Err()
	if err != nil {
		sigolo.Errorf("Unable to write geocoder cache entry %s: %+v", key, err)
	}
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	countriesKey        = "directory:countries"
	defaultCountriesTTL = 24 * time.Hour
)

// GeoCacheRepo stores the full country catalog returned by the directory so
// repeated sessions do not re-fetch it over the paced transport. Cache
// failures are never fatal: reads degrade to a miss, writes log and move on.
type GeoCacheRepo struct {
	client *goredis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewGeoCacheRepo(client *goredis.Client, ttl time.Duration, logger *zap.Logger) *GeoCacheRepo {
	if ttl <= 0 {
		ttl = defaultCountriesTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeoCacheRepo{client: client, ttl: ttl, logger: logger}
}

// GetCountries returns the cached catalog payload. The second result is false
// on a miss; lookup errors count as a miss so the caller falls through to the
// directory.
func (r *GeoCacheRepo) GetCountries(ctx context.Context) ([]byte, bool) {
	if r == nil || r.client == nil {
		return nil, false
	}
	payload, err := r.client.Get(ctx, countriesKey).Bytes()
	if err != nil {
		if err != goredis.Nil {
			r.logger.Warn("country cache read failed", zap.Error(err))
		}
		return nil, false
	}
	if len(payload) == 0 {
		return nil, false
	}
	return payload, true
}

// SetCountries stores the catalog payload with the configured TTL.
func (r *GeoCacheRepo) SetCountries(ctx context.Context, payload []byte) {
	if r == nil || r.client == nil || len(payload) == 0 {
		return
	}
	if err := r.client.Set(ctx, countriesKey, payload, r.ttl).Err(); err != nil {
		r.logger.Warn("country cache write failed", zap.Error(err))
	}
}

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTLs per entity class. Wallets, markets and sessions change quickly;
// users, arenas and NFTs are slow-moving listings.
const (
	TTLFast   = 60 * time.Second
	TTLMedium = 120 * time.Second
	TTLSlow   = 300 * time.Second
)

// Store is the narrow cache interface injected into services. Every
// implementation is best-effort: lookups miss and writes are dropped on
// backend failure, they never surface errors into business logic.
type Store interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string, ttl time.Duration)
	Invalidate(ctx context.Context, keys ...string)
}

// ConnectRedis opens and pings a Redis client
func ConnectRedis(addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}

// RedisStore is the production Store backed by go-redis
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a RedisStore around an existing client
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool) {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) {
	s.client.Set(ctx, key, value, ttl)
}

func (s *RedisStore) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	s.client.Del(ctx, keys...)
}

// Nop is a Store that caches nothing; used in tests and as a fallback
// when Redis is unavailable.
type Nop struct{}

// NewNop creates a no-op Store
func NewNop() *Nop {
	return &Nop{}
}

func (*Nop) Get(ctx context.Context, key string) (string, bool) { return "", false }

func (*Nop) Set(ctx context.Context, key, value string, ttl time.Duration) {}

func (*Nop) Invalidate(ctx context.Context, keys ...string) {}

// GetJSON reads a cached value into dest, reporting whether it was a hit
func GetJSON(ctx context.Context, s Store, key string, dest interface{}) bool {
	raw, ok := s.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		// Corrupt entry, drop it so the next read repopulates
		s.Invalidate(ctx, key)
		return false
	}
	return true
}

// SetJSON stores a JSON-encoded value under key
func SetJSON(ctx context.Context, s Store, key string, value interface{}, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	s.Set(ctx, key, string(raw), ttl)
}

// Key builders. Every write path invalidates through the same builders
// so readers and writers agree on naming.

func WalletKey(userID uint) string { return fmt.Sprintf("wallet:%d", userID) }

func MarketKey(marketID uint) string { return fmt.Sprintf("market:%d", marketID) }

func UserKey(userID uint) string { return fmt.Sprintf("user:%d", userID) }

func UserStatsKey(userID uint) string { return fmt.Sprintf("user:stats:%d", userID) }

func BettingStatsKey(userID uint) string { return fmt.Sprintf("user:betting:stats:%d", userID) }

func ArenaKey(arenaID uint) string { return fmt.Sprintf("arena:%d", arenaID) }

func ArenaStatsKey(arenaID uint) string { return fmt.Sprintf("arena:stats:%d", arenaID) }

func SessionKey(sessionID uint) string { return fmt.Sprintf("session:%d", sessionID) }

func NFTKey(nftID uint) string { return fmt.Sprintf("nft:%d", nftID) }

func TournamentKey(id uint) string { return fmt.Sprintf("tournament:%d", id) }

func BracketKey(id uint) string { return fmt.Sprintf("tournament:bracket:%d", id) }

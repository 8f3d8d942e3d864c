package cache

import (
	"context"
	"testing"
	"time"
)

// mapStore is an in-memory Store for tests
type mapStore struct {
	data map[string]string
}

func newMapStore() *mapStore {
	return &mapStore{data: make(map[string]string)}
}

func (s *mapStore) Get(ctx context.Context, key string) (string, bool) {
	v, ok := s.data[key]
	return v, ok
}

func (s *mapStore) Set(ctx context.Context, key, value string, ttl time.Duration) {
	s.data[key] = value
}

func (s *mapStore) Invalidate(ctx context.Context, keys ...string) {
	for _, k := range keys {
		delete(s.data, k)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	store := newMapStore()
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	SetJSON(ctx, store, "k", payload{Name: "x", Count: 3}, TTLFast)

	var out payload
	if !GetJSON(ctx, store, "k", &out) {
		t.Fatalf("expected cache hit")
	}
	if out.Name != "x" || out.Count != 3 {
		t.Errorf("round trip mangled the value: %+v", out)
	}
}

func TestGetJSONDropsCorruptEntries(t *testing.T) {
	store := newMapStore()
	ctx := context.Background()

	store.data["bad"] = "{not json"

	var out map[string]interface{}
	if GetJSON(ctx, store, "bad", &out) {
		t.Fatalf("corrupt entry must read as a miss")
	}
	if _, still := store.data["bad"]; still {
		t.Errorf("corrupt entry must be invalidated")
	}
}

func TestNopStoreNeverHits(t *testing.T) {
	store := NewNop()
	ctx := context.Background()

	store.Set(ctx, "k", "v", TTLFast)
	if _, ok := store.Get(ctx, "k"); ok {
		t.Errorf("nop store must never hit")
	}
}

func TestKeyBuilders(t *testing.T) {
	if WalletKey(7) != "wallet:7" {
		t.Errorf("unexpected wallet key %s", WalletKey(7))
	}
	if BracketKey(3) != "tournament:bracket:3" {
		t.Errorf("unexpected bracket key %s", BracketKey(3))
	}
	if WalletKey(1) == UserKey(1) {
		t.Errorf("key builders must not collide across entities")
	}
}

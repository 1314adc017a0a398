package cacheinfra

import (
	"context"
	"time"

	"github.com/viccon/sturdyc"
)

// entry is what the sturdyc client stores. sturdyc only knows a client-wide
// TTL, so each entry carries its own expiry and is checked on read.
type entry struct {
	value     any
	expiresAt time.Time
}

// SturdycStore is the in-process store backed by a sturdyc client.
type SturdycStore struct {
	client *sturdyc.Client[entry]
	ttl    time.Duration
	now    func() time.Time
}

// NewSturdycStore creates a new in-process store.
//
// The constructor translates Config parameters to sturdyc initialization:
// - Capacity, NumShards, MaxTTL, EvictionPercentage are passed to sturdyc.New()
// - EvictionInterval is applied as an option when set
//
// ttl is the default entry TTL used when Set receives ttl <= 0.
func NewSturdycStore(cfg MemoryConfig, ttl time.Duration) (*SturdycStore, error) {
	if ttl <= 0 {
		return nil, &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}
	if err := cfg.validate(ttl); err != nil {
		return nil, err
	}

	var options []sturdyc.Option
	if cfg.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(cfg.EvictionInterval))
	}

	client := sturdyc.New[entry](
		cfg.Capacity,
		cfg.NumShards,
		cfg.MaxTTL,
		cfg.EvictionPercentage,
		options...,
	)

	return &SturdycStore{client: client, ttl: ttl, now: time.Now}, nil
}

// Get returns the value stored under key while it has not expired.
// Expired entries are removed on the way out.
func (s *SturdycStore) Get(_ context.Context, key string) (any, bool, error) {
	e, ok := s.client.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !s.now().Before(e.expiresAt) {
		s.client.Delete(key)
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set stores value under key, replacing any previous entry.
func (s *SturdycStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.ttl
	}
	s.client.Set(key, entry{value: value, expiresAt: s.now().Add(ttl)})
	return nil
}

// Delete removes a single entry. Missing keys are ignored.
func (s *SturdycStore) Delete(_ context.Context, key string) error {
	s.client.Delete(key)
	return nil
}

// Reset removes every entry currently held by the client.
func (s *SturdycStore) Reset(ctx context.Context) error {
	for _, key := range s.client.ScanKeys() {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.client.Delete(key)
	}
	return nil
}

// Size reports the number of entries, including ones not yet swept.
func (s *SturdycStore) Size() int {
	return s.client.Size()
}

// Close is a no-op, the sturdyc client has no resources to release.
func (s *SturdycStore) Close() error {
	return nil
}

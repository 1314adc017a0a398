package testsupport

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrInjected is the failure returned by FakeStore operations armed with Fail.
var ErrInjected = errors.New("testsupport: injected store failure")

type fakeEntry struct {
	value     any
	expiresAt time.Time
}

// FakeStore is a map backed store with per-key fault injection and call
// counters. It satisfies cache.Store.
type FakeStore struct {
	mu         sync.Mutex
	entries    map[string]fakeEntry
	failures   map[string]map[string]error
	calls      map[string]int
	defaultTTL time.Duration
	resetErr   error
	now        func() time.Time
}

// NewFakeStore returns an empty store with a one hour default TTL.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		entries:    make(map[string]fakeEntry),
		failures:   make(map[string]map[string]error),
		calls:      make(map[string]int),
		defaultTTL: time.Hour,
		now:        time.Now,
	}
}

// SetClock replaces the time source used for expiry.
func (s *FakeStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Fail makes op ("get", "set", "delete") fail for key with err.
// A nil err uses ErrInjected.
func (s *FakeStore) Fail(op, key string, err error) {
	if err == nil {
		err = ErrInjected
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures[op] == nil {
		s.failures[op] = make(map[string]error)
	}
	s.failures[op][key] = err
}

// FailReset makes Reset return err.
func (s *FakeStore) FailReset(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetErr = err
}

// Calls returns how many times op was invoked.
func (s *FakeStore) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// Len returns the number of stored entries, expired or not.
func (s *FakeStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Contains reports whether key is stored and not expired, bypassing fault injection.
func (s *FakeStore) Contains(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	return ok && s.now().Before(e.expiresAt)
}

func (s *FakeStore) failure(op, key string) error {
	s.calls[op]++
	return s.failures[op][key]
}

func (s *FakeStore) Get(_ context.Context, key string) (any, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("get", key); err != nil {
		return nil, false, err
	}
	e, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return nil, false, nil
	}
	return e.value, true, nil
}

func (s *FakeStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("set", key); err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	s.entries[key] = fakeEntry{value: value, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *FakeStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("delete", key); err != nil {
		return err
	}
	delete(s.entries, key)
	return nil
}

func (s *FakeStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["reset"]++
	if s.resetErr != nil {
		return s.resetErr
	}
	s.entries = make(map[string]fakeEntry)
	return nil
}

func (s *FakeStore) Close() error {
	return nil
}

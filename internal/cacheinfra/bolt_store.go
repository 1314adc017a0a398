package cacheinfra

import (
	"context"
	"encoding/binary"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	bolt "go.etcd.io/bbolt"
)

// headerSize is the expiry prefix written before every payload.
const headerSize = 8

// BoltStore is a file backed store. Each value is laid out as
// 8 bytes big endian expiry (unix nanoseconds) followed by the msgpack payload.
type BoltStore struct {
	db     *bolt.DB
	bucket []byte
	ttl    time.Duration
	now    func() time.Time

	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// OpenBoltStore initializes or opens a store at cfg.Path.
func OpenBoltStore(cfg BoltConfig, ttl time.Duration) (*BoltStore, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	db, err := bolt.Open(cfg.Path, 0o600, &bolt.Options{Timeout: cfg.OpenTimeout})
	if err != nil {
		return nil, errors.Wrapf(err, "cache: open bolt file %s", cfg.Path)
	}

	bucket := []byte("cache")
	if cfg.Bucket != "" {
		bucket = []byte(cfg.Bucket)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "cache: create bolt bucket")
	}

	s := &BoltStore{
		db:     db,
		bucket: bucket,
		ttl:    ttl,
		now:    time.Now,
		stop:   make(chan struct{}),
	}

	if cfg.SweepInterval > 0 {
		s.wg.Add(1)
		go s.run(cfg.SweepInterval)
	}

	return s, nil
}

// Get returns the payload as Encoded while it has not expired.
func (s *BoltStore) Get(_ context.Context, key string) (any, bool, error) {
	var (
		out     []byte
		expired bool
	)
	if err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(s.bucket).Get([]byte(key))
		if v == nil {
			return nil
		}
		if len(v) < headerSize || s.isExpired(v) {
			expired = true
			return nil
		}
		out = append([]byte(nil), v[headerSize:]...)
		return nil
	}); err != nil {
		return nil, false, errors.Wrapf(err, "cache: bolt get %q", key)
	}

	if expired {
		// lazily drop the stale record; a failure here only delays the purge
		_ = s.db.Update(func(tx *bolt.Tx) error {
			b := tx.Bucket(s.bucket)
			if v := b.Get([]byte(key)); v != nil && (len(v) < headerSize || s.isExpired(v)) {
				return b.Delete([]byte(key))
			}
			return nil
		})
		return nil, false, nil
	}
	if out == nil {
		return nil, false, nil
	}
	return Encoded(out), true, nil
}

// Set encodes value and stores it with an absolute expiry of now+ttl.
func (s *BoltStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.ttl
	}
	data, err := encode(value)
	if err != nil {
		return err
	}

	buf := make([]byte, headerSize+len(data))
	binary.BigEndian.PutUint64(buf[:headerSize], uint64(s.now().Add(ttl).UnixNano()))
	copy(buf[headerSize:], data)

	if err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), buf)
	}); err != nil {
		return errors.Wrapf(err, "cache: bolt put %q", key)
	}
	return nil
}

// Delete removes a key.
func (s *BoltStore) Delete(_ context.Context, key string) error {
	if err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(key))
	}); err != nil {
		return errors.Wrapf(err, "cache: bolt delete %q", key)
	}
	return nil
}

// Reset drops and recreates the bucket.
func (s *BoltStore) Reset(_ context.Context) error {
	if err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(s.bucket); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket(s.bucket)
		return err
	}); err != nil {
		return errors.Wrap(err, "cache: bolt reset")
	}
	return nil
}

// Sweep removes every expired record and reports how many were dropped.
func (s *BoltStore) Sweep() (int, error) {
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		var stale [][]byte
		if err := b.ForEach(func(k, v []byte) error {
			if len(v) < headerSize || s.isExpired(v) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		}); err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return removed, errors.Wrap(err, "cache: bolt sweep")
	}
	return removed, nil
}

// Close stops the sweeper and closes the database.
func (s *BoltStore) Close() error {
	var err error
	s.once.Do(func() {
		close(s.stop)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *BoltStore) isExpired(v []byte) bool {
	expiresAt := int64(binary.BigEndian.Uint64(v[:headerSize]))
	return s.now().UnixNano() >= expiresAt
}

func (s *BoltStore) run(interval time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			_, _ = s.Sweep()
		}
	}
}

package kvcache

import (
	"encoding/json"
	"errors"
	"time"

	bolt "go.etcd.io/bbolt"
)

// KV is the minimal key-value contract with TTL semantics used by the fetch
// pipeline. Implementations must be safe for concurrent use.
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
}

var (
	ErrNotFound = errors.New("kvcache: not found")
	ErrExpired  = errors.New("kvcache: expired")
)

// entry is the stored envelope. ExpiresAt is unix seconds; zero means the
// entry never expires.
type entry struct {
	ExpiresAt int64  `json:"expires_at"`
	Value     []byte `json:"value"`
}

type Options struct {
	// Bucket names the bolt bucket; defaults to "kv".
	Bucket string
	// DefaultTTL applies when Set is called with ttl <= 0.
	DefaultTTL time.Duration
}

// Store is a persistent TTL cache on top of bbolt. Expired entries are
// dropped lazily on read.
type Store struct {
	db         *bolt.DB
	bucket     []byte
	defaultTTL time.Duration
}

// Open opens or creates the database at path.
func Open(path string, opts Options) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	bucket := []byte("kv")
	if opts.Bucket != "" {
		bucket = []byte(opts.Bucket)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, bucket: bucket, defaultTTL: opts.DefaultTTL}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Set stores value with expiry now+ttl. With ttl <= 0 the DefaultTTL applies;
// if that is also <= 0 the entry never expires.
func (s *Store) Set(key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	e := entry{Value: value}
	if ttl > 0 {
		e.ExpiresAt = time.Now().Add(ttl).Unix()
	}
	buf, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), buf)
	})
}

// Get returns the stored value if present and not expired. An expired entry
// is deleted on the way out.
func (s *Store) Get(key string) ([]byte, error) {
	var e entry
	var exists bool
	if err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(s.bucket).Get([]byte(key))
		if v == nil {
			return nil
		}
		exists = true
		return json.Unmarshal(v, &e)
	}); err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}
	if e.ExpiresAt > 0 && time.Now().Unix() > e.ExpiresAt {
		_ = s.Delete(key)
		return nil, ErrExpired
	}
	return e.Value, nil
}

// Delete removes a key. Deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(key))
	})
}

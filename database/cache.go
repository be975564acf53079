package database

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"

	"classBook/config"
	"classBook/logger"
)

// ListCache holds list results keyed by collection path.
type ListCache interface {
	Get(ctx context.Context, key string) ([]Document, bool, error)
	Set(ctx context.Context, key string, docs []Document, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// CachedStore serves List from cache for ttl and drops the cached path on
// every Add to it. Cache failures fall through to the store.
type CachedStore struct {
	store DocumentStore
	cache ListCache
	ttl   time.Duration
	log   *logger.Logger
}

func NewCachedStore(store DocumentStore, cache ListCache, ttl time.Duration) *CachedStore {
	return &CachedStore{store: store, cache: cache, ttl: ttl, log: logger.GetInstance()}
}

func (s *CachedStore) Add(ctx context.Context, path Path, fields Fields) (string, error) {
	id, err := s.store.Add(ctx, path, fields)
	if err != nil {
		return "", err
	}
	if err := s.cache.Delete(ctx, path.String()); err != nil {
		s.log.Warnf("cache: invalidate %s: %v", path, err)
	}
	return id, nil
}

func (s *CachedStore) List(ctx context.Context, path Path) ([]Document, error) {
	key := path.String()

	docs, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warnf("cache: get %s: %v", key, err)
	} else if ok {
		return docs, nil
	}

	docs, err = s.store.List(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, docs, s.ttl); err != nil {
		s.log.Warnf("cache: set %s: %v", key, err)
	}
	return docs, nil
}

func (s *CachedStore) Close() error {
	cacheErr := s.cache.Close()
	if err := s.store.Close(); err != nil {
		return err
	}
	return cacheErr
}

type cacheEntry struct {
	docs    []Document
	expires time.Time
}

// LocalCache is an in-process ListCache.
type LocalCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	now     func() time.Time
}

func NewLocalCache() *LocalCache {
	return &LocalCache{entries: make(map[string]cacheEntry), now: time.Now}
}

func (c *LocalCache) Get(_ context.Context, key string) ([]Document, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(entry.expires) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return copyDocuments(entry.docs), true, nil
}

func (c *LocalCache) Set(_ context.Context, key string, docs []Document, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{docs: copyDocuments(docs), expires: c.now().Add(ttl)}
	return nil
}

func (c *LocalCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

func (c *LocalCache) Close() error { return nil }

const listKeyPrefix = "classbook:list:"

// RedisCache shares list results between processes.
type RedisCache struct {
	rdb *goredis.Client
}

func NewRedisCache(cfg *config.RedisConfig) (*RedisCache, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "connect redis")
	}

	return &RedisCache{rdb: rdb}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]Document, bool, error) {
	data, err := c.rdb.Get(ctx, listKeyPrefix+key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var docs []Document
	if err := dec.Decode(&docs); err != nil {
		return nil, false, errors.Wrap(err, "decode cached list")
	}
	return docs, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, docs []Document, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(docs)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, listKeyPrefix+key, data, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, listKeyPrefix+key).Err()
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

package fetch

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const cacheKeyPrefix = "page:"

// Cache keeps fetched pages on disk so repeated runs over the areas index
// do not refetch every area.
type Cache struct {
	db  *badger.DB
	ttl time.Duration
}

// OpenCache opens (or creates) a cache in dir. Entries expire after ttl; a
// zero ttl keeps them forever.
func OpenCache(dir string, ttl time.Duration) (*Cache, error) {
	return openCache(badger.DefaultOptions(dir), ttl)
}

// OpenMemoryCache opens a cache that lives only as long as the process.
func OpenMemoryCache(ttl time.Duration) (*Cache, error) {
	return openCache(badger.DefaultOptions("").WithInMemory(true), ttl)
}

func openCache(opts badger.Options, ttl time.Duration) (*Cache, error) {
	db, err := badger.Open(opts.WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open page cache: %w", err)
	}
	return &Cache{db: db, ttl: ttl}, nil
}

// Get returns the cached body for url.
func (c *Cache) Get(url string) (string, bool, error) {
	var body []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(cacheKeyPrefix + url))
		if err != nil {
			return err
		}
		body, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(body), true, nil
}

// Put stores body for url.
func (c *Cache) Put(url, body string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(cacheKeyPrefix+url), []byte(body))
		if c.ttl > 0 {
			e = e.WithTTL(c.ttl)
		}
		return txn.SetEntry(e)
	})
}

// Close flushes and closes the cache.
func (c *Cache) Close() error {
	return c.db.Close()
}

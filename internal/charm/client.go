// ABOUTME: Charm KV client wrapper for training-record storage.
// ABOUTME: Provides thread-safe initialization and automatic cloud sync.
package charm

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	"github.com/dgraph-io/badger/v3"
)

const (
	// DBName is the Charm KV database holding the records.
	DBName           = "proguard"
	defaultCharmHost = "charm.2389.dev"

	RecordPrefix = "record:"
)

var (
	globalClient *Client
	clientOnce   sync.Once
	clientErr    error
)

// kvStore is the subset of *kv.KV the client uses.
type kvStore interface {
	Set(key, value []byte) error
	Delete(key []byte) error
	View(fn func(txn *badger.Txn) error) error
	Sync() error
	Reset() error
	IsReadOnly() bool
	Close() error
}

type Client struct {
	kv       kvStore
	autoSync bool
	mu       sync.RWMutex
}

// InitClient initializes the global Charm client.
// Thread-safe; can be called multiple times.
func InitClient() (*Client, error) {
	clientOnce.Do(func() {
		if os.Getenv("CHARM_HOST") == "" {
			if err := os.Setenv("CHARM_HOST", defaultCharmHost); err != nil {
				clientErr = err
				return
			}
		}

		db, err := kv.OpenWithDefaultsFallback(DBName)
		if err != nil {
			clientErr = err
			return
		}

		globalClient = newClient(db)

		// Pull remote data on startup (skip in read-only mode)
		if !db.IsReadOnly() {
			_ = db.Sync()
		}
	})

	return globalClient, clientErr
}

func newClient(store kvStore) *Client {
	return &Client{kv: store, autoSync: true}
}

// Close closes the KV database connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kv != nil {
		return c.kv.Close()
	}
	return nil
}

// IsReadOnly returns true if the database is open in read-only mode.
// This happens when another process (like an MCP server) holds the lock.
func (c *Client) IsReadOnly() bool {
	return c.kv.IsReadOnly()
}

// Sync synchronizes local state with Charm Cloud.
func (c *Client) Sync() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.kv.IsReadOnly() {
		return nil
	}
	return c.kv.Sync()
}

func (c *Client) syncIfEnabled() {
	if c.autoSync && !c.kv.IsReadOnly() {
		_ = c.kv.Sync()
	}
}

// SetAutoSync enables or disables automatic sync after writes.
func (c *Client) SetAutoSync(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoSync = enabled
}

// ID returns the Charm user ID for the current account.
func (c *Client) ID() (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("create charm client: %w", err)
	}
	return cc.ID()
}

// Reset wipes local data and rebuilds from Charm Cloud.
func (c *Client) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kv.Reset()
}

var errReadOnly = fmt.Errorf("cannot write: database is locked by another process (MCP server?)")

func (c *Client) set(key string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv.IsReadOnly() {
		return errReadOnly
	}

	if err := c.kv.Set([]byte(key), data); err != nil {
		return err
	}
	c.syncIfEnabled()
	return nil
}

// scan walks every key under prefix in one read transaction.
func (c *Client) scan(prefix string, fn func(key string, val []byte) error) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p := []byte(prefix)
	return c.kv.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = p
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := fn(string(item.KeyCopy(nil)), val); err != nil {
				return err
			}
		}
		return nil
	})
}

// resolveKey finds the single key under typePrefix whose ID starts with idPrefix.
func (c *Client) resolveKey(typePrefix, idPrefix string) (string, []byte, error) {
	if idPrefix == "" {
		return "", nil, fmt.Errorf("empty record ID")
	}

	var keys []string
	var vals [][]byte
	err := c.scan(typePrefix+idPrefix, func(key string, val []byte) error {
		keys = append(keys, key)
		vals = append(vals, val)
		return nil
	})
	if err != nil {
		return "", nil, err
	}

	if len(keys) == 0 {
		return "", nil, fmt.Errorf("not found: %s", idPrefix)
	}
	if len(keys) > 1 {
		return "", nil, fmt.Errorf("ambiguous prefix %s: matches multiple records", idPrefix)
	}
	return keys[0], vals[0], nil
}

func (c *Client) deleteByIDPrefix(typePrefix, idPrefix string) error {
	key, _, err := c.resolveKey(typePrefix, idPrefix)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv.IsReadOnly() {
		return errReadOnly
	}
	if err := c.kv.Delete([]byte(key)); err != nil {
		return err
	}
	c.syncIfEnabled()
	return nil
}

func unmarshalJSON[T any](data []byte) (*T, error) {
	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// extractID extracts the ID portion from a prefixed key.
func extractID(key, prefix string) string {
	return strings.TrimPrefix(key, prefix)
}

package ssi

import (
	"crypto/ed25519"
	"sync"
)

// Cache keeps the private keys in memory per wallet because they are so
// slow to load from the sealed storage.
type Cache struct {
	cache map[string]ed25519.PrivateKey
	sync.RWMutex
}

// Add adds the private key by its verkey.
func (c *Cache) Add(verkey string, key ed25519.PrivateKey) {
	c.Lock()
	defer c.Unlock()

	if c.cache == nil {
		c.cache = make(map[string]ed25519.PrivateKey)
	}
	c.cache[verkey] = key
}

// Get returns the key of the verkey if it's cached.
func (c *Cache) Get(verkey string) (ed25519.PrivateKey, bool) {
	c.RLock()
	defer c.RUnlock()

	k, ok := c.cache[verkey]
	return k, ok
}

// Len returns the number of cached keys.
func (c *Cache) Len() int {
	c.RLock()
	defer c.RUnlock()

	return len(c.cache)
}

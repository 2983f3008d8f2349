// Copyright (c) 2024 The Stakeline developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package cache wraps hashicorp/golang-lru with read-through loading.
package cache

import lru "github.com/hashicorp/golang-lru"

// Loader fetches the value for a key absent from the cache.
type Loader func(key interface{}) (interface{}, error)

// LRU is a fixed-capacity cache. Writes evict the least recently used
// entry once the capacity is reached.
type LRU struct {
	cache *lru.Cache
}

// NewLRU creates a cache holding at most maxSize entries, maxSize > 0.
func NewLRU(maxSize int) (*LRU, error) {
	c, err := lru.New(maxSize)
	if err != nil {
		return nil, err
	}
	return &LRU{c}, nil
}

// Add stores the value under key.
func (l *LRU) Add(key, value interface{}) {
	l.cache.Add(key, value)
}

// Get returns the cached value and whether it was present.
func (l *LRU) Get(key interface{}) (interface{}, bool) {
	return l.cache.Get(key)
}

// GetOrLoad returns the cached value, invoking loader on a miss and
// caching what it returns. Loader errors are returned and not cached.
func (l *LRU) GetOrLoad(key interface{}, loader Loader) (interface{}, error) {
	if v, ok := l.cache.Get(key); ok {
		return v, nil
	}
	v, err := loader(key)
	if err != nil {
		return nil, err
	}
	l.cache.Add(key, v)
	return v, nil
}

// Copyright (c) 2024 The Stakeline developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLRUGetOrLoad(t *testing.T) {
	c, err := NewLRU(8)
	assert.Nil(t, err)

	loads := 0
	loader := func(key interface{}) (interface{}, error) {
		loads++
		return key.(string) + "-value", nil
	}

	v, err := c.GetOrLoad("k", loader)
	assert.Nil(t, err)
	assert.Equal(t, "k-value", v)
	assert.Equal(t, 1, loads)

	// second access served from cache
	v, err = c.GetOrLoad("k", loader)
	assert.Nil(t, err)
	assert.Equal(t, "k-value", v)
	assert.Equal(t, 1, loads)

	// loader failure is not cached
	wantErr := errors.New("load failed")
	_, err = c.GetOrLoad("bad", func(interface{}) (interface{}, error) { return nil, wantErr })
	assert.Equal(t, wantErr, err)
	_, ok := c.Get("bad")
	assert.False(t, ok)
}

func TestLRUEviction(t *testing.T) {
	c, err := NewLRU(2)
	assert.Nil(t, err)

	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3) // evicts "a"

	_, ok := c.Get("a")
	assert.False(t, ok)
	v, ok := c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	_, err = NewLRU(0)
	assert.NotNil(t, err)
}

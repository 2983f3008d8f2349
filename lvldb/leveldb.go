// Copyright (c) 2024 The Stakeline developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"slices"

	"github.com/pkg/errors"
	"github.com/qianbin/directcache"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/lineax/stakeline/kv"
)

var _ kv.GetPutCloser = (*LevelDB)(nil)

// Options options for creating level db instance.
type Options struct {
	CacheSize              int // block cache size in MB
	OpenFilesCacheCapacity int
	PointCacheSize         int // in-process point-read cache size in MB, 0 disables
}

var writeOpt = opt.WriteOptions{}
var readOpt = opt.ReadOptions{}

// LevelDB wraps level db impls.
// Point reads are optionally served from an in-process cache maintained
// write-through by Put/Delete and batch writes.
type LevelDB struct {
	db    *leveldb.DB
	cache *directcache.Cache
}

// New create a persistent level db instance.
// Create an empty one if not exists, or open if already there.
func New(path string, opts Options) (*LevelDB, error) {
	stg, err := storage.OpenFile(path, false)
	if err != nil {
		return nil, errors.Wrap(err, "new persistent level db")
	}
	return openLevelDB(stg, opts)
}

// NewMem create a level db in memory.
func NewMem() (*LevelDB, error) {
	return openLevelDB(storage.NewMemStorage(), Options{})
}

func openLevelDB(stg storage.Storage, opts Options) (*LevelDB, error) {
	if opts.CacheSize < 16 {
		opts.CacheSize = 16
	}

	if opts.OpenFilesCacheCapacity < 16 {
		opts.OpenFilesCacheCapacity = 16
	}

	db, err := leveldb.Open(stg, &opt.Options{
		OpenFilesCacheCapacity: opts.OpenFilesCacheCapacity,
		BlockCacheCapacity:     opts.CacheSize / 2 * opt.MiB,
		WriteBuffer:            opts.CacheSize / 4 * opt.MiB, // Two of these are used internally
		Filter:                 filter.NewBloomFilter(10),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open level db")
	}

	var cache *directcache.Cache
	if opts.PointCacheSize > 0 {
		cache = directcache.New(opts.PointCacheSize * opt.MiB)
	}
	return &LevelDB{db: db, cache: cache}, nil
}

// IsNotFound to check if the error returned by Get indicates key not found.
func (ldb *LevelDB) IsNotFound(err error) bool {
	return err == leveldb.ErrNotFound
}

// Get retrieve value for given key.
// It returns an error if key not found. The error can be checked via IsNotFound.
func (ldb *LevelDB) Get(key []byte) (value []byte, err error) {
	if ldb.cache != nil {
		var hit []byte
		if ldb.cache.AdvGet(key, func(val []byte) {
			hit = slices.Clone(val)
		}, false) {
			return hit, nil
		}
	}
	value, err = ldb.db.Get(key, &readOpt)
	if err != nil {
		return nil, err
	}
	if ldb.cache != nil {
		_ = ldb.cache.Set(key, value)
	}
	return value, nil
}

// Has returns whether a key exists.
func (ldb *LevelDB) Has(key []byte) (bool, error) {
	if ldb.cache != nil && ldb.cache.AdvGet(key, func([]byte) {}, true) {
		return true, nil
	}
	return ldb.db.Has(key, &readOpt)
}

// Put save value for given key.
func (ldb *LevelDB) Put(key, value []byte) error {
	if err := ldb.db.Put(key, value, &writeOpt); err != nil {
		return err
	}
	if ldb.cache != nil {
		_ = ldb.cache.Set(key, value)
	}
	return nil
}

// Delete deletes the given key and its value.
func (ldb *LevelDB) Delete(key []byte) error {
	if err := ldb.db.Delete(key, &writeOpt); err != nil {
		return err
	}
	if ldb.cache != nil {
		ldb.cache.Del(key)
	}
	return nil
}

// Close close the level db.
// Later operations will all fail.
func (ldb *LevelDB) Close() error {
	return ldb.db.Close()
}

// NewBatch create a batch for writing ops.
func (ldb *LevelDB) NewBatch() kv.Batch {
	return &levelDBBatch{ldb: ldb}
}

// NewIterator create an iterator by range.
func (ldb *LevelDB) NewIterator(r kv.Range) kv.Iterator {
	return ldb.db.NewIterator(&util.Range{
		Start: r.From,
		Limit: r.To,
	}, &readOpt)
}

//////

type batchOp struct {
	key, value []byte
	del        bool
}

// levelDBBatch wraps batch operations.
type levelDBBatch struct {
	ldb   *LevelDB
	batch leveldb.Batch
	ops   []batchOp
}

// Put adds a put operation.
func (b *levelDBBatch) Put(key, value []byte) error {
	b.batch.Put(key, value)
	if b.ldb.cache != nil {
		b.ops = append(b.ops, batchOp{slices.Clone(key), slices.Clone(value), false})
	}
	return nil
}

// Delete adds a delete operation.
func (b *levelDBBatch) Delete(key []byte) error {
	b.batch.Delete(key)
	if b.ldb.cache != nil {
		b.ops = append(b.ops, batchOp{slices.Clone(key), nil, true})
	}
	return nil
}

func (b *levelDBBatch) NewBatch() kv.Batch {
	return &levelDBBatch{ldb: b.ldb}
}

// Len returns ops in the batch.
func (b *levelDBBatch) Len() int {
	return b.batch.Len()
}

// Write perform all ops in this batch.
func (b *levelDBBatch) Write() error {
	if err := b.ldb.db.Write(&b.batch, &writeOpt); err != nil {
		return err
	}
	for _, op := range b.ops {
		if op.del {
			b.ldb.cache.Del(op.key)
		} else {
			_ = b.ldb.cache.Set(op.key, op.value)
		}
	}
	return nil
}

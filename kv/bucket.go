// Copyright (c) 2024 The Stakeline developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Bucket provides logical bucket for a kv store.
type Bucket string

// MakeKey prefixes the key with the bucket name.
func (b Bucket) MakeKey(key []byte) []byte {
	return append(append(make([]byte, 0, len(b)+len(key)), b...), key...)
}

// NewRange makes the key range covering the whole bucket.
func (b Bucket) NewRange() Range {
	r := util.BytesPrefix([]byte(b))
	return Range{From: r.Start, To: r.Limit}
}

// NewGetter creates a bucket getter from the source getter.
func (b Bucket) NewGetter(src Getter) Getter {
	return &struct {
		GetFunc
		HasFunc
		IsNotFoundFunc
		NewIteratorFunc
	}{
		func(key []byte) ([]byte, error) {
			return src.Get(b.MakeKey(key))
		},
		func(key []byte) (bool, error) {
			return src.Has(b.MakeKey(key))
		},
		src.IsNotFound,
		func(r Range) Iterator {
			r.From = b.MakeKey(r.From)
			if len(r.To) == 0 {
				r.To = util.BytesPrefix([]byte(b)).Limit
			} else {
				r.To = b.MakeKey(r.To)
			}
			iter := src.NewIterator(r)
			return &struct {
				NextFunc
				ReleaseFunc
				ErrorFunc
				KeyFunc
				ValueFunc
			}{
				iter.Next,
				iter.Release,
				iter.Error,
				// strip the bucket
				func() []byte { return iter.Key()[len(b):] },
				iter.Value,
			}
		},
	}
}

// NewPutter creates a bucket putter from the source putter.
func (b Bucket) NewPutter(src Putter) Putter {
	return &struct {
		PutFunc
		DeleteFunc
		NewBatchFunc
	}{
		func(key, val []byte) error {
			return src.Put(b.MakeKey(key), val)
		},
		func(key []byte) error {
			return src.Delete(b.MakeKey(key))
		},
		func() Batch {
			batch := src.NewBatch()
			return &struct {
				Putter
				LenFunc
				WriteFunc
			}{
				b.NewPutter(batch),
				batch.Len,
				batch.Write,
			}
		},
	}
}

// NewGetPutter creates a bucket get-putter from the source get-putter.
func (b Bucket) NewGetPutter(src GetPutter) GetPutter {
	return &struct {
		Getter
		Putter
	}{
		b.NewGetter(src),
		b.NewPutter(src),
	}
}

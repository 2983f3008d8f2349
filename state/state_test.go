// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state_test

import (
	"math/big"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"

	"github.com/lineax/stakeline/lvldb"
	"github.com/lineax/stakeline/state"
)

func newTestState(t *testing.T) (*state.State, *lvldb.LevelDB) {
	db, err := lvldb.NewMem()
	assert.Nil(t, err)
	t.Cleanup(func() { db.Close() })

	st, err := state.New(db, 128)
	assert.Nil(t, err)
	return st, db
}

func TestStateRawReadWrite(t *testing.T) {
	st, _ := newTestState(t)

	key := []byte("k1")

	raw, err := st.GetRaw(key)
	assert.Nil(t, err)
	assert.Len(t, raw, 0, "absent record reads empty")

	st.SetRaw(key, []byte("v1"))
	raw, err = st.GetRaw(key)
	assert.Nil(t, err)
	assert.Equal(t, []byte("v1"), raw)

	// zero-length value marks the record absent again
	st.SetRaw(key, nil)
	raw, err = st.GetRaw(key)
	assert.Nil(t, err)
	assert.Len(t, raw, 0)
}

func TestStateCheckpointRevert(t *testing.T) {
	st, _ := newTestState(t)

	st.SetRaw([]byte("k"), []byte("base"))

	rev := st.NewCheckpoint()
	st.SetRaw([]byte("k"), []byte("changed"))
	st.SetRaw([]byte("k2"), []byte("new"))

	raw, _ := st.GetRaw([]byte("k"))
	assert.Equal(t, []byte("changed"), raw)

	st.RevertTo(rev)

	raw, _ = st.GetRaw([]byte("k"))
	assert.Equal(t, []byte("base"), raw)
	raw, _ = st.GetRaw([]byte("k2"))
	assert.Len(t, raw, 0, "write after checkpoint must be gone")

	// nested checkpoints unwind in order
	rev1 := st.NewCheckpoint()
	st.SetRaw([]byte("k"), []byte("one"))
	rev2 := st.NewCheckpoint()
	st.SetRaw([]byte("k"), []byte("two"))
	st.RevertTo(rev2)
	raw, _ = st.GetRaw([]byte("k"))
	assert.Equal(t, []byte("one"), raw)
	st.RevertTo(rev1)
	raw, _ = st.GetRaw([]byte("k"))
	assert.Equal(t, []byte("base"), raw)
}

func TestStateCommit(t *testing.T) {
	st, db := newTestState(t)

	st.SetRaw([]byte("a"), []byte("1"))
	st.SetRaw([]byte("b"), []byte("2"))
	st.SetRaw([]byte("a"), []byte("3")) // later write wins
	assert.Nil(t, st.Commit())

	got, err := db.Get([]byte("a"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("3"), got)

	// reload through a fresh state over the same store
	st2, err := state.New(db, 128)
	assert.Nil(t, err)
	raw, _ := st2.GetRaw([]byte("b"))
	assert.Equal(t, []byte("2"), raw)

	// committing an empty value deletes the record
	st.SetRaw([]byte("a"), nil)
	assert.Nil(t, st.Commit())
	_, err = db.Get([]byte("a"))
	assert.True(t, db.IsNotFound(err))
}

func TestStateCommitDropsJournal(t *testing.T) {
	st, _ := newTestState(t)

	st.SetRaw([]byte("k"), []byte("v"))
	assert.Nil(t, st.Commit())

	// a revert after commit must not unwind committed writes
	rev := st.NewCheckpoint()
	st.SetRaw([]byte("k"), []byte("scratch"))
	st.RevertTo(rev)

	raw, _ := st.GetRaw([]byte("k"))
	assert.Equal(t, []byte("v"), raw)
}

func TestAmountSlot(t *testing.T) {
	st, _ := newTestState(t)

	slot := state.NewAmountSlot(st, []byte("total"))

	v, err := slot.Get()
	assert.Nil(t, err)
	assert.Equal(t, new(big.Int), v)

	assert.Nil(t, slot.Add(big.NewInt(1000)))
	assert.Nil(t, slot.Add(big.NewInt(500)))
	assert.Nil(t, slot.Sub(big.NewInt(300)))

	v, err = slot.Get()
	assert.Nil(t, err)
	assert.Equal(t, big.NewInt(1200), v)

	// setting zero removes the record
	slot.Set(new(big.Int))
	raw, _ := st.GetRaw([]byte("total"))
	assert.Len(t, raw, 0)
}

func TestTimeSlot(t *testing.T) {
	st, _ := newTestState(t)

	slot := state.NewTimeSlot(st, []byte("last-update"))

	ts, err := slot.Get()
	assert.Nil(t, err)
	assert.Zero(t, ts)

	slot.Set(31536000)
	ts, err = slot.Get()
	assert.Nil(t, err)
	assert.Equal(t, uint64(31536000), ts)
}

func TestStateFuzzedRoundTrip(t *testing.T) {
	st, db := newTestState(t)

	f := fuzz.New().NilChance(0).NumElements(1, 64)

	written := make(map[string][]byte)
	for i := 0; i < 32; i++ {
		var key, val []byte
		f.Fuzz(&key)
		f.Fuzz(&val)
		if len(key) == 0 || len(val) == 0 {
			continue
		}
		st.SetRaw(key, val)
		written[string(key)] = val
	}
	assert.Nil(t, st.Commit())

	st2, err := state.New(db, 16)
	assert.Nil(t, err)
	for k, want := range written {
		got, err := st2.GetRaw([]byte(k))
		assert.Nil(t, err)
		assert.Equal(t, want, got)
	}
}

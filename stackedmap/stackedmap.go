// Copyright (c) 2024 The Stakeline developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stackedmap

// StackedMap maintains maps in a stack. Each map inherits the key/values
// of the map below it, and writes always land in the top map, so popping
// a map reverts every Put made since the matching Push.
type StackedMap struct {
	src       MapGetter
	levels    []*level
	revisions map[interface{}][]int // key -> indexes of the levels that set it
}

type level struct {
	kvs     map[interface{}]interface{}
	journal []journalEntry
}

type journalEntry struct {
	key   interface{}
	value interface{}
}

// MapGetter defines the getter method of the source map.
type MapGetter func(key interface{}) (value interface{}, exist bool, err error)

// New creates a StackedMap reading through to src.
func New(src MapGetter) *StackedMap {
	return &StackedMap{
		src:       src,
		revisions: make(map[interface{}][]int),
	}
}

// Depth returns the count of stacked maps.
func (sm *StackedMap) Depth() int {
	return len(sm.levels)
}

// Push stacks a new map and returns the depth before the push.
func (sm *StackedMap) Push() int {
	sm.levels = append(sm.levels, &level{kvs: make(map[interface{}]interface{})})
	return len(sm.levels) - 1
}

// Pop removes the top map, reverting every Put since the matching Push.
func (sm *StackedMap) Pop() {
	top := sm.levels[len(sm.levels)-1]
	for key := range top.kvs {
		revs := sm.revisions[key]
		if len(revs) == 1 {
			delete(sm.revisions, key)
		} else {
			sm.revisions[key] = revs[:len(revs)-1]
		}
	}
	sm.levels = sm.levels[:len(sm.levels)-1]
}

// PopTo pops maps until the stack is depth maps deep.
func (sm *StackedMap) PopTo(depth int) {
	for len(sm.levels) > depth {
		sm.Pop()
	}
}

// Get returns the value visible at the top of the stack, falling back to
// the source map. The bool reports whether the key was found.
func (sm *StackedMap) Get(key interface{}) (interface{}, bool, error) {
	if revs, ok := sm.revisions[key]; ok {
		if v, ok := sm.levels[revs[len(revs)-1]].kvs[key]; ok {
			return v, true, nil
		}
	}
	return sm.src(key)
}

// Put writes the value into the top map. It panics when nothing has been
// pushed yet.
func (sm *StackedMap) Put(key, value interface{}) {
	top := sm.levels[len(sm.levels)-1]
	top.kvs[key] = value
	top.journal = append(top.journal, journalEntry{key: key, value: value})

	// one revision entry per level and key keeps Pop's bookkeeping exact
	rev := len(sm.levels) - 1
	revs := sm.revisions[key]
	if len(revs) == 0 || revs[len(revs)-1] != rev {
		sm.revisions[key] = append(revs, rev)
	}
}

// Journal replays every surviving Put in order, stopping early when the
// callback returns false.
func (sm *StackedMap) Journal(cb func(key, value interface{}) bool) {
	for _, lvl := range sm.levels {
		for _, entry := range lvl.journal {
			if !cb(entry.key, entry.value) {
				return
			}
		}
	}
}

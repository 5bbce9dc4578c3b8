// Copyright 2021 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hashtable

import (
	"github.com/computronium/hashlist/pkg/common/moerr"
)

// Cell is one slot of a Table. A cell whose Key equals the table's
// sentinel is empty.
type Cell[K comparable, V any] struct {
	Key    K
	Mapped V
}

// Table is an open-addressing hash table with linear probing.
//
// The capacity doubles whenever an insert would push the load factor above
// one half, so a probe always terminates at an empty cell. Deleting a key
// shifts the rest of its cluster back, so every stored key stays reachable
// from its home cell without tombstones.
//
// Table does not reject duplicate keys; callers that need uniqueness must
// Search before Insert.
type Table[K comparable, V any] struct {
	hasher   Hasher[K]
	sentinel K

	cellCnt    uint64
	elemCnt    uint64
	collisions uint64
	cells      []Cell[K, V]
	freed      bool
}

// New creates a table with capacity 2*initialSize whose empty cells hold
// sentinel. A nil hasher selects DefaultHasher[K].
func New[K comparable, V any](initialSize int, sentinel K, hasher Hasher[K]) (*Table[K, V], error) {
	if initialSize <= 0 {
		return nil, moerr.NewInvalidCapacityNoCtx(initialSize)
	}
	if hasher == nil {
		var err error
		if hasher, err = DefaultHasher[K](); err != nil {
			return nil, err
		}
	}
	ht := &Table[K, V]{
		hasher:   hasher,
		sentinel: sentinel,
	}
	ht.init(uint64(initialSize) << 1)
	return ht, nil
}

func (ht *Table[K, V]) init(cellCnt uint64) {
	ht.cellCnt = cellCnt
	ht.elemCnt = 0
	ht.cells = make([]Cell[K, V], cellCnt)
	for i := range ht.cells {
		ht.cells[i].Key = ht.sentinel
	}
}

func (ht *Table[K, V]) equal(a, b K) bool {
	return !ht.hasher.Less(a, b) && !ht.hasher.Less(b, a)
}

func (ht *Table[K, V]) isEmpty(idx uint64) bool {
	return ht.cells[idx].Key == ht.sentinel
}

func (ht *Table[K, V]) home(key K) uint64 {
	return ht.hasher.Hash(key, ht.cellCnt) % ht.cellCnt
}

// Insert stores (key, value). Inserting the sentinel is a no-op.
// The table grows before probing when the insert would take the load
// factor above one half.
func (ht *Table[K, V]) Insert(key K, value V) {
	if key == ht.sentinel {
		return
	}
	if ht.freed {
		panic(moerr.NewTableFreedNoCtx())
	}
	if ht.elemCnt+1 > ht.cellCnt/2 {
		ht.Expand()
	}
	ht.place(key, value)
}

// place writes (key, value) into the first empty cell of key's probe
// sequence. The caller guarantees that an empty cell exists.
func (ht *Table[K, V]) place(key K, value V) uint64 {
	idx := ht.home(key)
	if !ht.isEmpty(idx) {
		ht.collisions++
	}
	for !ht.isEmpty(idx) {
		idx = (idx + 1) % ht.cellCnt
	}
	ht.cells[idx] = Cell[K, V]{Key: key, Mapped: value}
	ht.elemCnt++
	return idx
}

// Expand doubles the capacity and re-places every stored entry, since a
// cell's position depends on the capacity. The collision counter restarts.
func (ht *Table[K, V]) Expand() {
	if ht.freed {
		panic(moerr.NewTableFreedNoCtx())
	}
	old := ht.cells
	ht.init(ht.cellCnt << 1)
	ht.collisions = 0
	for i := range old {
		if old[i].Key != ht.sentinel {
			ht.place(old[i].Key, old[i].Mapped)
		}
	}
}

// find returns the index of the cell holding key.
func (ht *Table[K, V]) find(key K) (uint64, bool) {
	if ht.freed || key == ht.sentinel {
		return 0, false
	}
	for idx := ht.home(key); !ht.isEmpty(idx); idx = (idx + 1) % ht.cellCnt {
		if ht.equal(key, ht.cells[idx].Key) {
			return idx, true
		}
	}
	return 0, false
}

// Search returns the value stored under key.
func (ht *Table[K, V]) Search(key K) (value V, ok bool) {
	idx, ok := ht.find(key)
	if !ok {
		return
	}
	return ht.cells[idx].Mapped, true
}

// SearchKey returns the stored key equal to key, or the sentinel.
func (ht *Table[K, V]) SearchKey(key K) K {
	idx, ok := ht.find(key)
	if !ok {
		return ht.sentinel
	}
	return ht.cells[idx].Key
}

// Contains reports whether key is stored.
func (ht *Table[K, V]) Contains(key K) bool {
	_, ok := ht.find(key)
	return ok
}

// Delete removes key and reports whether it was present.
//
// The cells that follow the freed one in the same cluster are taken out
// and placed again, so none of them is left behind an empty cell that
// would end its probe early.
func (ht *Table[K, V]) Delete(key K) bool {
	idx, ok := ht.find(key)
	if !ok {
		return false
	}
	ht.clear(idx)

	for j := (idx + 1) % ht.cellCnt; !ht.isEmpty(j); j = (j + 1) % ht.cellCnt {
		cell := ht.cells[j]
		ht.clear(j)
		ht.place(cell.Key, cell.Mapped)
	}
	return true
}

func (ht *Table[K, V]) clear(idx uint64) {
	var zero V
	ht.cells[idx] = Cell[K, V]{Key: ht.sentinel, Mapped: zero}
	ht.elemCnt--
}

// Free drops the cells. It is safe to call more than once; a freed table
// reports no entries and panics on Insert.
func (ht *Table[K, V]) Free() {
	if ht.freed {
		return
	}
	ht.cells = nil
	ht.elemCnt = 0
	ht.freed = true
}

// Released reports whether Free has been called.
func (ht *Table[K, V]) Released() bool {
	return ht.freed
}

// Count returns the number of stored entries.
func (ht *Table[K, V]) Count() uint64 {
	return ht.elemCnt
}

// Capacity returns the number of cells.
func (ht *Table[K, V]) Capacity() uint64 {
	return ht.cellCnt
}

// Collisions returns how many inserts found their home cell taken since
// the last expansion.
func (ht *Table[K, V]) Collisions() uint64 {
	return ht.collisions
}

func (ht *Table[K, V]) Sentinel() K {
	return ht.sentinel
}

// IsSentinel reports whether key equals the key-absent marker under the
// table's ordering.
func (ht *Table[K, V]) IsSentinel(key K) bool {
	return ht.equal(key, ht.sentinel)
}

func (ht *Table[K, V]) Hasher() Hasher[K] {
	return ht.hasher
}

func (ht *Table[K, V]) LoadFactor() float64 {
	if ht.cellCnt == 0 {
		return 0
	}
	return float64(ht.elemCnt) / float64(ht.cellCnt)
}

// Iterate calls fn on every entry in cell order until fn returns false.
func (ht *Table[K, V]) Iterate(fn func(key K, value V) bool) {
	for i := range ht.cells {
		if ht.cells[i].Key == ht.sentinel {
			continue
		}
		if !fn(ht.cells[i].Key, ht.cells[i].Mapped) {
			return
		}
	}
}

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
	"github.com/google/btree"

	"github.com/computronium/hashlist/pkg/common/moerr"
)

const kOrderedDegree = 32

type keyItem[K any] struct {
	key  K
	less func(a, b K) bool
}

func (i keyItem[K]) Less(than btree.Item) bool {
	return i.less(i.key, than.(keyItem[K]).key)
}

// orderedKeys loads every stored key into a btree ordered by the table's
// Less. It stops at the first key that compares equal to one already
// loaded and returns it as a duplicate.
func (ht *Table[K, V]) orderedKeys() (tree *btree.BTree, dup K, hasDup bool) {
	tree = btree.New(kOrderedDegree)
	ht.Iterate(func(key K, _ V) bool {
		if tree.ReplaceOrInsert(keyItem[K]{key: key, less: ht.hasher.Less}) != nil {
			dup, hasDup = key, true
			return false
		}
		return true
	})
	return
}

// SortedKeys returns the stored keys in ascending Less order.
func (ht *Table[K, V]) SortedKeys() []K {
	tree, _, _ := ht.orderedKeys()
	keys := make([]K, 0, tree.Len())
	tree.Ascend(func(i btree.Item) bool {
		keys = append(keys, i.(keyItem[K]).key)
		return true
	})
	return keys
}

// Validate checks the table invariants: no two cells hold equal keys, every
// key is found by probing from its home cell, the entry count matches the
// occupied cells and the load factor does not exceed one half.
func (ht *Table[K, V]) Validate() error {
	if ht.freed {
		return nil
	}
	tree, dup, hasDup := ht.orderedKeys()
	if hasDup {
		return moerr.NewDuplicateKeyNoCtx(dup)
	}
	if uint64(tree.Len()) != ht.elemCnt {
		return moerr.NewInvalidStateNoCtx("table holds %d keys but counts %d", tree.Len(), ht.elemCnt)
	}
	if ht.elemCnt > ht.cellCnt/2 {
		return moerr.NewInvalidStateNoCtx("load factor %d/%d above one half", ht.elemCnt, ht.cellCnt)
	}
	for i := range ht.cells {
		key := ht.cells[i].Key
		if key == ht.sentinel {
			continue
		}
		idx, ok := ht.find(key)
		if !ok || idx != uint64(i) {
			return moerr.NewInvalidStateNoCtx("key %v at cell %d is not reachable from its home cell", key, i)
		}
	}
	return nil
}

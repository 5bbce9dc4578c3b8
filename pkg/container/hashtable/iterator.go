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

// TableIterator walks the occupied cells of a Table in cell order. The
// table must not be modified while an iterator is in use.
type TableIterator[K comparable, V any] struct {
	table *Table[K, V]
	pos   uint64
}

func (it *TableIterator[K, V]) Init(ht *Table[K, V]) {
	it.table = ht
	it.pos = 0
}

func (it *TableIterator[K, V]) Next() (cell *Cell[K, V], err error) {
	cells := it.table.cells
	for it.pos < uint64(len(cells)) {
		cell = &cells[it.pos]
		if cell.Key != it.table.sentinel {
			break
		}
		it.pos++
	}

	if it.pos >= uint64(len(cells)) {
		err = moerr.NewOutOfRangeNoCtx("table iterator at cell %d", it.pos)
		return nil, err
	}
	it.pos++

	return
}

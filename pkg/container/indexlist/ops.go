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

package indexlist

import (
	"go.uber.org/zap"

	"github.com/computronium/hashlist/pkg/common/moerr"
	"github.com/computronium/hashlist/pkg/container/hashtable"
)

// Remove unlinks n, hands its payload to d and deletes key from the index
// unless keepIndexEntry is set. A nil d drops the payload.
//
// key must be n's key or a key that is not indexed; removing n under the
// key of another node is rejected with ErrInvalidArg.
func (l *List[K, P]) Remove(n *Node[K, P], d Destructor[P], key K, keepIndexEntry bool) error {
	if n == nil {
		return moerr.NewInvalidArgNoCtx("node", nil)
	}
	if n.list != l {
		return moerr.NewInvalidStateNoCtx("node %d does not belong to the list", n.id)
	}
	if !keepIndexEntry && l.index != nil {
		if other, ok := l.index.Search(key); ok && other != n {
			return moerr.NewInvalidArgNoCtx("key", key)
		}
	}

	l.unlink(n)
	if !keepIndexEntry && l.index != nil {
		l.index.Delete(key)
	}
	n.list, n.index = nil, nil
	if d != nil {
		d.Release(n.payload)
	}
	return nil
}

// Delete removes the node stored under key and reports whether there was
// one.
func (l *List[K, P]) Delete(key K, d Destructor[P]) bool {
	n := l.Lookup(key)
	if n == nil {
		return false
	}
	return l.Remove(n, d, key, false) == nil
}

// Apply calls fn on every payload from head to tail. The walk stops at the
// first error; it is reported as ErrApplyFailed carrying the node id,
// except for OkStopCurrRecur which ends the walk without error.
func (l *List[K, P]) Apply(fn func(P) error) error {
	for n := l.head; n != nil; n = n.next {
		if err := fn(n.payload); err != nil {
			if moerr.IsMoErrCode(err, moerr.OkStopCurrRecur) {
				return nil
			}
			return moerr.NewApplyFailedNoCtx(n.id, err)
		}
	}
	return nil
}

// Range calls fn on every node from head to tail until fn returns false.
func (l *List[K, P]) Range(fn func(*Node[K, P]) bool) {
	for n := l.head; n != nil; {
		next := n.next
		if !fn(n) {
			return
		}
		n = next
	}
}

// Find returns the first node from the head that satisfies pred.
func (l *List[K, P]) Find(pred func(*Node[K, P]) bool) *Node[K, P] {
	return l.FindFrom(l.head, pred)
}

// FindFrom returns the first node from n onwards that satisfies pred.
func (l *List[K, P]) FindFrom(n *Node[K, P], pred func(*Node[K, P]) bool) *Node[K, P] {
	for ; n != nil; n = n.next {
		if pred(n) {
			return n
		}
	}
	return nil
}

// FindByFlag returns the first node that has any of the given flag bits.
func (l *List[K, P]) FindByFlag(flags int) *Node[K, P] {
	return l.FindByFlagFrom(l.head, flags)
}

// FindByFlagFrom is FindByFlag starting at n.
func (l *List[K, P]) FindByFlagFrom(n *Node[K, P], flags int) *Node[K, P] {
	return l.FindFrom(n, func(n *Node[K, P]) bool {
		return n.flags&flags != 0
	})
}

// ReleaseAll hands every payload to d, frees the index and empties the
// list. Calling it again does nothing. A list sharing the index sees it
// freed as well.
func (l *List[K, P]) ReleaseAll(d Destructor[P]) {
	if l.released {
		return
	}
	cnt := l.len
	if l.index != nil {
		l.index.Free()
	}
	for n := l.head; n != nil; {
		next := n.next
		if d != nil {
			d.Release(n.payload)
		}
		n.next, n.prev, n.list, n.index = nil, nil, nil, nil
		n = next
	}
	l.head, l.tail, l.len = nil, nil, 0
	l.released = true
	l.logger.Debug("index list released", zap.Int("nodes", cnt))
}

// ClearIndex drops every index entry and starts over with an empty table
// of the same capacity. The nodes stay linked but are no longer found by
// Lookup until Reindex.
func (l *List[K, P]) ClearIndex() error {
	if l.released {
		return moerr.NewInvalidStateNoCtx("list released")
	}
	if l.index == nil {
		return nil
	}
	size := int(l.index.Capacity() / 2)
	hasher := l.index.Hasher()
	l.index.Free()
	t, err := hashtable.New[K, *Node[K, P]](size, l.sentinel, hasher)
	if err != nil {
		return err
	}
	l.setIndex(t)
	return nil
}

// ReplaceIndex makes t the index of every node. The previous index is
// freed unless it is t.
func (l *List[K, P]) ReplaceIndex(t *hashtable.Table[K, *Node[K, P]]) error {
	if l.released {
		return moerr.NewInvalidStateNoCtx("list released")
	}
	if t == nil {
		return moerr.NewInvalidArgNoCtx("table", nil)
	}
	if err := l.checkTable(t); err != nil {
		return err
	}
	if l.index != nil && l.index != t {
		l.index.Free()
	}
	l.setIndex(t)
	return nil
}

// Reindex registers every node's key in the index, skipping keys that are
// already present for the same node. A key held by another node fails
// with ErrDuplicateKey; the nodes before it stay registered.
func (l *List[K, P]) Reindex() error {
	if l.released {
		return moerr.NewInvalidStateNoCtx("list released")
	}
	if l.index == nil {
		if err := l.attachIndex(nil); err != nil {
			return err
		}
		l.setIndex(l.index)
	}
	for n := l.head; n != nil; n = n.next {
		other, ok := l.index.Search(n.key)
		if ok {
			if other != n {
				return moerr.NewDuplicateKeyNoCtx(n.key)
			}
			continue
		}
		l.index.Insert(n.key, n)
	}
	return nil
}

func (l *List[K, P]) setIndex(t *hashtable.Table[K, *Node[K, P]]) {
	l.index = t
	for n := l.head; n != nil; n = n.next {
		n.index = t
	}
}

// Validate checks that the links are consistent in both directions, that
// every node shares the list's index and that every index entry points to
// a node of the list under its own key.
func (l *List[K, P]) Validate() error {
	cnt := 0
	var prev *Node[K, P]
	for n := l.head; n != nil; n = n.next {
		if n.prev != prev {
			return moerr.NewInvalidStateNoCtx("node %d has a broken back link", n.id)
		}
		if n.list != l {
			return moerr.NewInvalidStateNoCtx("node %d belongs to another list", n.id)
		}
		if n.index != l.index {
			return moerr.NewInvalidStateNoCtx("node %d does not share the list index", n.id)
		}
		prev = n
		cnt++
	}
	if prev != l.tail {
		return moerr.NewInvalidStateNoCtx("tail is not the last node")
	}
	if cnt != l.len {
		return moerr.NewInvalidStateNoCtx("list links %d nodes but counts %d", cnt, l.len)
	}
	if l.index == nil || l.index.Released() {
		return nil
	}
	var err error
	l.index.Iterate(func(key K, n *Node[K, P]) bool {
		if n.key != key {
			err = moerr.NewInvalidStateNoCtx("key %v maps to node %d keyed %v", key, n.id, n.key)
		} else if n.list != l && n.list != nil {
			// a table shared through WithTable holds nodes of other lists
			return true
		} else if n.list == nil {
			err = moerr.NewInvalidStateNoCtx("key %v maps to a removed node", key)
		}
		return err == nil
	})
	if err != nil {
		return err
	}
	return l.index.Validate()
}

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
	"reflect"

	"go.uber.org/zap"

	"github.com/computronium/hashlist/pkg/common/moerr"
	"github.com/computronium/hashlist/pkg/container/hashtable"
	"github.com/computronium/hashlist/pkg/logutil"
)

// List is a doubly linked list whose nodes are also reachable by key
// through one hash table shared by all of them.
//
// Keys are unique within a list. A List is not safe for concurrent use.
type List[K comparable, P any] struct {
	head, tail *Node[K, P]
	len        int

	index     *hashtable.Table[K, *Node[K, P]]
	sentinel  K
	tableSize int
	hasher    hashtable.Hasher[K]
	released  bool

	logger *zap.Logger
}

// Create builds a list holding a single node. The node is registered in the
// index unless WithoutIndex is given. tableSize is the initial size of the
// index, whose capacity is twice that.
func Create[K comparable, P any](payload P, key K, sentinel K, tableSize int, opts ...Option[K, P]) (*List[K, P], error) {
	o := applyOptions(opts)
	if tableSize <= 0 && o.table == nil {
		return nil, moerr.NewInvalidCapacityNoCtx(tableSize)
	}
	if isNil(payload) {
		return nil, moerr.NewMissingPayloadNoCtx(key)
	}
	l := newList(sentinel, tableSize, o)
	if err := l.attachIndex(o.table); err != nil {
		return nil, err
	}
	if l.index.IsSentinel(key) {
		return nil, moerr.NewInvalidArgNoCtx("key", key)
	}

	n := l.newNode(payload, key, 0, 0)
	l.head, l.tail, l.len = n, n, 1
	if !o.noIndex {
		l.index.Insert(key, n)
	}
	l.logger.Debug("index list created",
		zap.Uint64("capacity", l.index.Capacity()),
		zap.Bool("indexed", !o.noIndex))
	return l, nil
}

// NewEmpty returns a list with no nodes. Its index is built by the first
// Insert.
func NewEmpty[K comparable, P any](sentinel K, tableSize int, opts ...Option[K, P]) (*List[K, P], error) {
	o := applyOptions(opts)
	if tableSize <= 0 && o.table == nil {
		return nil, moerr.NewInvalidCapacityNoCtx(tableSize)
	}
	l := newList(sentinel, tableSize, o)
	if o.table != nil {
		if err := l.checkTable(o.table); err != nil {
			return nil, err
		}
		l.index = o.table
	}
	return l, nil
}

func applyOptions[K comparable, P any](opts []Option[K, P]) *options[K, P] {
	o := &options[K, P]{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logutil.GetGlobalLogger()
	}
	return o
}

func newList[K comparable, P any](sentinel K, tableSize int, o *options[K, P]) *List[K, P] {
	return &List[K, P]{
		sentinel:  sentinel,
		tableSize: tableSize,
		hasher:    o.hasher,
		logger:    o.logger.Named("indexlist"),
	}
}

// attachIndex adopts table, or builds a new index when table is nil.
func (l *List[K, P]) attachIndex(table *hashtable.Table[K, *Node[K, P]]) error {
	if table != nil {
		if err := l.checkTable(table); err != nil {
			return err
		}
		l.index = table
		return nil
	}
	t, err := hashtable.New[K, *Node[K, P]](l.tableSize, l.sentinel, l.hasher)
	if err != nil {
		return err
	}
	l.index = t
	return nil
}

// checkTable rejects a released table or one whose key-absent marker is
// not the list's.
func (l *List[K, P]) checkTable(table *hashtable.Table[K, *Node[K, P]]) error {
	if table.Released() {
		return moerr.NewTableFreedNoCtx()
	}
	if !table.IsSentinel(l.sentinel) {
		return moerr.NewInvalidArgNoCtx("table sentinel", table.Sentinel())
	}
	return nil
}

func (l *List[K, P]) newNode(payload P, key K, id, flags int) *Node[K, P] {
	return &Node[K, P]{
		list:    l,
		index:   l.index,
		key:     key,
		payload: payload,
		id:      id,
		flags:   flags,
	}
}

// Insert adds a node at pos and returns the head of the list afterwards.
//
// With After the node goes right after mark; a nil mark means after the
// head, or at the beginning of an empty list. An existing key is rejected
// with ErrDuplicateKey before anything changes.
func (l *List[K, P]) Insert(payload P, id, flags int, pos Position, mark *Node[K, P], key K) (*Node[K, P], error) {
	if _, err := l.insert(payload, id, flags, pos, mark, key); err != nil {
		return l.head, err
	}
	return l.head, nil
}

// PushFront inserts a node at the beginning and returns it.
func (l *List[K, P]) PushFront(payload P, id, flags int, key K) (*Node[K, P], error) {
	return l.insert(payload, id, flags, Beginning, nil, key)
}

// PushBack inserts a node at the end and returns it.
func (l *List[K, P]) PushBack(payload P, id, flags int, key K) (*Node[K, P], error) {
	return l.insert(payload, id, flags, End, nil, key)
}

// InsertAfter inserts a node right after mark and returns it. A nil mark
// puts the node at the beginning.
func (l *List[K, P]) InsertAfter(mark *Node[K, P], payload P, id, flags int, key K) (*Node[K, P], error) {
	if mark == nil {
		return l.insert(payload, id, flags, Beginning, nil, key)
	}
	return l.insert(payload, id, flags, After, mark, key)
}

func (l *List[K, P]) insert(payload P, id, flags int, pos Position, mark *Node[K, P], key K) (*Node[K, P], error) {
	if l.released {
		return nil, moerr.NewInvalidStateNoCtx("list released")
	}
	if isNil(payload) {
		return nil, moerr.NewMissingPayloadNoCtx(key)
	}
	if pos < Beginning || pos > End {
		return nil, moerr.NewInvalidArgNoCtx("position", pos)
	}
	if mark != nil && mark.list != l {
		return nil, moerr.NewInvalidStateNoCtx("mark node does not belong to the list")
	}
	if l.index == nil {
		if err := l.attachIndex(nil); err != nil {
			return nil, err
		}
	}
	if l.index.Released() {
		return nil, moerr.NewTableFreedNoCtx()
	}
	if l.index.IsSentinel(key) {
		return nil, moerr.NewInvalidArgNoCtx("key", key)
	}
	if l.index.Contains(key) {
		l.logger.Debug("duplicate key rejected", zap.Any("key", key), zap.Int("id", id))
		return nil, moerr.NewDuplicateKeyNoCtx(key)
	}

	n := l.newNode(payload, key, id, flags)
	switch {
	case l.head == nil:
		l.head, l.tail = n, n
	case pos == Beginning:
		l.linkBefore(n, l.head)
	case pos == After:
		if mark == nil {
			mark = l.head
		}
		l.linkAfter(n, mark)
	default:
		l.linkAfter(n, l.tail)
	}
	l.len++

	capacity := l.index.Capacity()
	if l.index.Count() == capacity {
		l.index.Expand()
	}
	l.index.Insert(key, n)
	if c := l.index.Capacity(); c != capacity {
		l.logger.Debug("index expanded",
			zap.Uint64("from", capacity),
			zap.Uint64("to", c),
			zap.Uint64("count", l.index.Count()))
	}
	return n, nil
}

func (l *List[K, P]) linkBefore(n, at *Node[K, P]) {
	n.next = at
	n.prev = at.prev
	if at.prev != nil {
		at.prev.next = n
	} else {
		l.head = n
	}
	at.prev = n
}

func (l *List[K, P]) linkAfter(n, at *Node[K, P]) {
	n.prev = at
	n.next = at.next
	if at.next != nil {
		at.next.prev = n
	} else {
		l.tail = n
	}
	at.next = n
}

func (l *List[K, P]) unlink(n *Node[K, P]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.next, n.prev = nil, nil
	l.len--
}

// Lookup returns the node stored under key, or nil.
func (l *List[K, P]) Lookup(key K) *Node[K, P] {
	if l.index == nil {
		return nil
	}
	n, ok := l.index.Search(key)
	if !ok {
		return nil
	}
	return n
}

// LookupPayload returns the payload of the node stored under key.
func (l *List[K, P]) LookupPayload(key K) (payload P, ok bool) {
	n := l.Lookup(key)
	if n == nil {
		return
	}
	return n.payload, true
}

// Contains reports whether key is in the index.
func (l *List[K, P]) Contains(key K) bool {
	return l.Lookup(key) != nil
}

func (l *List[K, P]) Len() int {
	return l.len
}

func (l *List[K, P]) Head() *Node[K, P] {
	return l.head
}

func (l *List[K, P]) Tail() *Node[K, P] {
	return l.tail
}

// Released reports whether ReleaseAll was called.
func (l *List[K, P]) Released() bool {
	return l.released
}

// Table returns the index so that another list can share it through
// WithTable. It is nil for an empty list that was never inserted into.
func (l *List[K, P]) Table() *hashtable.Table[K, *Node[K, P]] {
	return l.index
}

func (l *List[K, P]) Stats() Stats {
	s := Stats{Len: l.len}
	if l.index != nil {
		s.Count = l.index.Count()
		s.Capacity = l.index.Capacity()
		s.Collisions = l.index.Collisions()
		s.LoadFactor = l.index.LoadFactor()
	}
	return s
}

// SortedKeys returns the indexed keys in the order of the hasher's Less.
func (l *List[K, P]) SortedKeys() []K {
	if l.index == nil {
		return nil
	}
	return l.index.SortedKeys()
}

func isNil[P any](payload P) bool {
	v := reflect.ValueOf(any(payload))
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

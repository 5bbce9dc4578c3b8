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

	"github.com/computronium/hashlist/pkg/container/hashtable"
)

// Position tells Insert where the new node goes.
type Position int

const (
	// Beginning makes the new node the head.
	Beginning Position = iota
	// After places the new node right after a mark node.
	After
	// End appends the new node after the tail.
	End
)

func (p Position) String() string {
	switch p {
	case Beginning:
		return "beginning"
	case After:
		return "after"
	case End:
		return "end"
	}
	return "unknown"
}

// Destructor releases a payload when its node leaves the list.
type Destructor[P any] interface {
	Release(payload P)
}

// DestructorFunc adapts a plain function to Destructor.
type DestructorFunc[P any] func(payload P)

func (f DestructorFunc[P]) Release(payload P) {
	f(payload)
}

// Node is an element of a List.
type Node[K comparable, P any] struct {
	// next and prev are nil at the tail and at the head respectively.
	next, prev *Node[K, P]

	// The list this node belongs to, nil once removed.
	list *List[K, P]
	// index is the owning list's shared table.
	index *hashtable.Table[K, *Node[K, P]]

	key     K
	payload P
	id      int
	flags   int
}

// Next returns the next node or nil.
func (n *Node[K, P]) Next() *Node[K, P] {
	return n.next
}

// Prev returns the previous node or nil.
func (n *Node[K, P]) Prev() *Node[K, P] {
	return n.prev
}

func (n *Node[K, P]) Key() K {
	return n.key
}

func (n *Node[K, P]) Payload() P {
	return n.payload
}

func (n *Node[K, P]) ID() int {
	return n.id
}

func (n *Node[K, P]) Flags() int {
	return n.flags
}

// SetFlags replaces the flag bits of n.
func (n *Node[K, P]) SetFlags(flags int) {
	n.flags = flags
}

// AddFlags sets the given bits in addition to those already set.
func (n *Node[K, P]) AddFlags(flags int) {
	n.flags |= flags
}

// ClearFlags unsets the given bits.
func (n *Node[K, P]) ClearFlags(flags int) {
	n.flags &^= flags
}

// Stats is a snapshot of a list's index.
type Stats struct {
	Len        int
	Count      uint64
	Capacity   uint64
	Collisions uint64
	LoadFactor float64
}

type options[K comparable, P any] struct {
	table   *hashtable.Table[K, *Node[K, P]]
	hasher  hashtable.Hasher[K]
	noIndex bool
	logger  *zap.Logger
}

// Option configures Create and NewEmpty.
type Option[K comparable, P any] func(*options[K, P])

// WithTable makes the list use table instead of building its own. Lists
// that share a table must be mutated as one unit.
func WithTable[K comparable, P any](table *hashtable.Table[K, *Node[K, P]]) Option[K, P] {
	return func(o *options[K, P]) {
		o.table = table
	}
}

// WithHasher sets the key strategy of the table the list builds.
func WithHasher[K comparable, P any](h hashtable.Hasher[K]) Option[K, P] {
	return func(o *options[K, P]) {
		o.hasher = h
	}
}

// WithoutIndex keeps the first node out of the table. The table is still
// built or attached.
func WithoutIndex[K comparable, P any]() Option[K, P] {
	return func(o *options[K, P]) {
		o.noIndex = true
	}
}

// WithLogger sets the logger of the list; the global logger is used
// otherwise.
func WithLogger[K comparable, P any](logger *zap.Logger) Option[K, P] {
	return func(o *options[K, P]) {
		o.logger = logger
	}
}

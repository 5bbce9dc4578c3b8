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

// Hasher is the key strategy a Table is built with. Hash maps a key onto a
// slot in [0, capacity); Less is a strict ordering from which key equality
// is derived as !Less(a, b) && !Less(b, a).
type Hasher[K any] interface {
	Hash(key K, capacity uint64) uint64
	Less(a, b K) bool
}

// Integer is the set of key types IntHasher accepts.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// HashFunc hashes a string key onto a slot in [0, capacity).
type HashFunc func(key string, capacity uint64) uint64

// StringHasher hashes strings with Fn and orders them lexically.
// The zero value uses HsiehHash.
type StringHasher struct {
	Fn HashFunc
}

func (h StringHasher) Hash(key string, capacity uint64) uint64 {
	if h.Fn == nil {
		return HsiehHash(key, capacity)
	}
	return h.Fn(key, capacity)
}

func (h StringHasher) Less(a, b string) bool {
	return a < b
}

// IntHasher spreads integer keys by multiplying them with a prime chosen
// by the key itself.
type IntHasher[K Integer] struct{}

func (IntHasher[K]) Hash(key K, capacity uint64) uint64 {
	v := uint64(key)
	return (uint64(primes[v%uint64(len(primes))]) * v) % capacity
}

func (IntHasher[K]) Less(a, b K) bool {
	return a < b
}

// IdentityHasher places integer key k in slot k mod capacity. It is only
// useful for dense small keys and for building deliberate collisions.
type IdentityHasher[K Integer] struct{}

func (IdentityHasher[K]) Hash(key K, capacity uint64) uint64 {
	return uint64(key) % capacity
}

func (IdentityHasher[K]) Less(a, b K) bool {
	return a < b
}

// FuncHasher adapts a pair of plain functions to Hasher.
type FuncHasher[K any] struct {
	HashFn func(key K, capacity uint64) uint64
	LessFn func(a, b K) bool
}

func (h FuncHasher[K]) Hash(key K, capacity uint64) uint64 {
	return h.HashFn(key, capacity)
}

func (h FuncHasher[K]) Less(a, b K) bool {
	return h.LessFn(a, b)
}

// NewFuncHasher builds a Hasher from hashFn and lessFn. A nil function is
// replaced with the default for K: HsiehHash and lexical order for strings,
// IntHasher for the builtin integer types.
func NewFuncHasher[K any](hashFn func(K, uint64) uint64, lessFn func(a, b K) bool) (Hasher[K], error) {
	if hashFn != nil && lessFn != nil {
		return FuncHasher[K]{HashFn: hashFn, LessFn: lessFn}, nil
	}
	def, err := DefaultHasher[K]()
	if err != nil {
		return nil, err
	}
	if hashFn == nil {
		hashFn = def.Hash
	}
	if lessFn == nil {
		lessFn = def.Less
	}
	return FuncHasher[K]{HashFn: hashFn, LessFn: lessFn}, nil
}

// DefaultHasher returns the hasher used when a table is built without one.
func DefaultHasher[K any]() (Hasher[K], error) {
	var zero K
	var h any
	switch any(zero).(type) {
	case string:
		h = StringHasher{}
	case int:
		h = IntHasher[int]{}
	case int8:
		h = IntHasher[int8]{}
	case int16:
		h = IntHasher[int16]{}
	case int32:
		h = IntHasher[int32]{}
	case int64:
		h = IntHasher[int64]{}
	case uint:
		h = IntHasher[uint]{}
	case uint8:
		h = IntHasher[uint8]{}
	case uint16:
		h = IntHasher[uint16]{}
	case uint32:
		h = IntHasher[uint32]{}
	case uint64:
		h = IntHasher[uint64]{}
	case uintptr:
		h = IntHasher[uintptr]{}
	default:
		return nil, moerr.NewConstructionFailureNoCtx("no default hasher for key type %T", zero)
	}
	return h.(Hasher[K]), nil
}

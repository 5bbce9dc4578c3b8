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

// The functions below hash a string directly onto a slot in [0, capacity).
// capacity must be non-zero.

// PolynomialHash is Horner's rule with radix 127, reduced at every step.
func PolynomialHash(key string, capacity uint64) uint64 {
	var h uint64
	for i := 0; i < len(key); i++ {
		h = (127*h + uint64(key[i])) % capacity
	}
	return h
}

// UniversalHash varies the multiplier per character, which keeps keys that
// share long prefixes from clustering.
func UniversalHash(key string, capacity uint64) uint64 {
	a, b := uint64(805306457), uint64(1610612741)
	mod := capacity - 1
	if mod == 0 {
		mod = 1
	}
	var h uint64
	for i := 0; i < len(key); i++ {
		h = (a*h + uint64(key[i])) % capacity
		a = a * b % mod
	}
	return h
}

// DJB2Hash is Bernstein's hash * 33 + c.
func DJB2Hash(key string, capacity uint64) uint64 {
	h := uint64(5381)
	for i := 0; i < len(key); i++ {
		h = (h << 5) + h + uint64(key[i])
	}
	return h % capacity
}

// SDBMHash is the hash used by the sdbm database library.
func SDBMHash(key string, capacity uint64) uint64 {
	var h uint64
	for i := 0; i < len(key); i++ {
		h = uint64(key[i]) + (h << 6) + (h << 16) - h
	}
	return h % capacity
}

// HsiehHash is Paul Hsieh's SuperFastHash. It is the default string hash.
func HsiehHash(key string, capacity uint64) uint64 {
	return uint64(superFastHash(key)) % capacity
}

func get16(s string, i int) uint32 {
	return uint32(s[i]) | uint32(s[i+1])<<8
}

func superFastHash(data string) uint32 {
	n := len(data)
	if n == 0 {
		return 0
	}
	hash := uint32(n)
	rem := n & 3
	i := 0
	for blocks := n >> 2; blocks > 0; blocks-- {
		hash += get16(data, i)
		tmp := (get16(data, i+2) << 11) ^ hash
		hash = (hash << 16) ^ tmp
		i += 4
		hash += hash >> 11
	}

	switch rem {
	case 3:
		hash += get16(data, i)
		hash ^= hash << 16
		hash ^= uint32(data[i+2]) << 18
		hash += hash >> 11
	case 2:
		hash += get16(data, i)
		hash ^= hash << 11
		hash += hash >> 17
	case 1:
		hash += uint32(data[i])
		hash ^= hash << 10
		hash += hash >> 1
	}

	// force avalanching of the final bits
	hash ^= hash << 3
	hash += hash >> 5
	hash ^= hash << 4
	hash += hash >> 17
	hash ^= hash << 25
	hash += hash >> 6
	return hash
}

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

// kPrimeCnt is the number of primes IntHasher picks multipliers from.
const kPrimeCnt = 1000

var primes []uint32

func init() {
	primes = firstPrimes(kPrimeCnt)
}

// firstPrimes returns the first n primes using a sieve whose bound is grown
// until it holds enough of them.
func firstPrimes(n int) []uint32 {
	for limit := 2 * n; ; limit <<= 1 {
		composite := make([]bool, limit+1)
		res := make([]uint32, 0, n)
		for i := 2; i <= limit && len(res) < n; i++ {
			if composite[i] {
				continue
			}
			res = append(res, uint32(i))
			for j := i * i; j <= limit; j += i {
				composite[j] = true
			}
		}
		if len(res) == n {
			return res
		}
	}
}

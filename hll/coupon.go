/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package hll

import (
	"math/bits"

	"github.com/apache/datasketches-hll-go/internal"
	"github.com/cespare/xxhash/v2"
	"github.com/twmb/murmur3"
)

// DefaultSeed is the default seed used when hashing items into coupons.
const DefaultSeed = internal.DEFAULT_UPDATE_SEED

// coupon builds a coupon from a 128-bit hash: the slot key is the low 26 bits of hashLo and
// the value is one more than the number of leading zeros of hashHi, capped at 63.
func coupon(hashLo uint64, hashHi uint64) int {
	addr26 := hashLo & keyMask26
	lz := uint64(bits.LeadingZeros64(hashHi))
	value := min(lz, 62) + 1
	return int((value << keyBits26) | addr26)
}

// couponOf hashes datum with the configured hash function and seed.
func (a *HllArray) couponOf(datum []byte) int {
	if a.options.hashFunction == HashXXHash {
		return coupon(xxHash128(datum, a.options.seed))
	}
	return coupon(murmur3.SeedSum128(a.options.seed, a.options.seed, datum))
}

// xxHash128 returns two 64-bit XXHash values, the second seeded with the first.
func xxHash128(datum []byte, seed uint64) (uint64, uint64) {
	h := xxhash.NewWithSeed(seed)
	_, _ = h.Write(datum)
	h0 := h.Sum64()

	h = xxhash.NewWithSeed(h0)
	_, _ = h.Write(datum)
	return h0, h.Sum64()
}

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
	"fmt"
)

// TgtHllType specifies the number of bits each slot of the HLL array occupies.
//
//   - Hll 4 This uses a 4-bit field per HLL bucket and for large counts may require
//     the use of a small internal auxiliary array for storing statistical exceptions, which are rare.
//     For the values of lgConfigK > 13 (K = 8192),
//     this additional array adds about 3% to the overall storage. It is generally the slowest in
//     terms of update time, but has the smallest storage footprint of about
//     K/2 * 1.03 bytes.
//
//   - Hll 8 This uses an 8-bit byte per HLL bucket. It is generally the
//     fastest in terms of update time, but has the largest storage footprint of about
//     K bytes.
//
// The numeric ids match the mode byte of the serialized image.
type TgtHllType int

const (
	TgtHllTypeHll4    = TgtHllType(0)
	TgtHllTypeHll8    = TgtHllType(2)
	TgtHllTypeDefault = TgtHllTypeHll4
)

func (t TgtHllType) String() string {
	switch t {
	case TgtHllTypeHll4:
		return "HLL_4"
	case TgtHllTypeHll8:
		return "HLL_8"
	}
	return fmt.Sprintf("TgtHllType(%d)", int(t))
}

type curMode int

// curModeHll is the only mode this package reads or writes; LIST and SET images
// belong to the sparse coupon states.
const curModeHll curMode = 2

type hllSketchConfig struct {
	lgConfigK  int
	tgtHllType TgtHllType

	slotNoMask int // mask from lgConfigK to extract slotNo
}

func newHllSketchConfig(lgConfigK int, tgtHllType TgtHllType) hllSketchConfig {
	return hllSketchConfig{
		lgConfigK:  lgConfigK,
		tgtHllType: tgtHllType,
		slotNoMask: (1 << lgConfigK) - 1,
	}
}

// GetLgConfigK returns the log2 of the number of slots.
func (c *hllSketchConfig) GetLgConfigK() int {
	return c.lgConfigK
}

// GetTgtHllType returns the slot width of the sketch.
func (c *hllSketchConfig) GetTgtHllType() TgtHllType {
	return c.tgtHllType
}

// HashFunction selects how UpdateXxx methods turn a datum into a coupon.
type HashFunction int

const (
	// HashMurmur3 is the 128-bit murmur3 hash shared by the whole sketch family.
	HashMurmur3 HashFunction = iota
	// HashXXHash derives the two 64-bit halves with XXHash64, the second one seeded by the first.
	HashXXHash
)

// MemoryRequestFunc returns a region of at least minBytes bytes. It is called when the aux
// hash map of a direct sketch outgrows its region. The sketch copies itself into the returned
// region and stops using the old one, which the caller may then release.
type MemoryRequestFunc func(minBytes int) []byte

type options struct {
	seed          uint64
	hashFunction  HashFunction
	memoryRequest MemoryRequestFunc
}

// Option is a functional option for configuring an HllArray.
type Option func(*options)

// WithSeed sets the seed used when hashing items into coupons.
func WithSeed(seed uint64) Option {
	return func(opts *options) {
		opts.seed = seed
	}
}

// WithHashFunction sets the hash used when hashing items into coupons.
func WithHashFunction(fn HashFunction) Option {
	return func(opts *options) {
		opts.hashFunction = fn
	}
}

// WithMemoryRequest sets the function a direct sketch calls when it needs a bigger region.
func WithMemoryRequest(fn MemoryRequestFunc) Option {
	return func(opts *options) {
		opts.memoryRequest = fn
	}
}

func newOptions(opts []Option) options {
	o := options{
		seed:         DefaultSeed,
		hashFunction: HashMurmur3,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

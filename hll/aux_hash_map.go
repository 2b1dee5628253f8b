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
	"iter"

	"github.com/apache/datasketches-hll-go/internal"
)

// auxHashMap holds the true values of HLL_4 slots whose nibble is auxToken.
// Entries are coupon-packed pairs in an open addressing table of 2^lgAuxArrInts ints,
// where 0 marks an empty entry.
type auxHashMap interface {
	// mustFindValueFor returns the value stored for slotNo and panics if there is none.
	mustFindValueFor(slotNo int) int
	// put inserts the pair or replaces the value of an existing slotNo.
	put(slotNo int, value int) error
	// pairs yields the non-empty entries in table order.
	pairs() iter.Seq[int]
	getAuxCount() int
	getLgAuxArrInts() int
	getAuxIntArr() []int
	getCompactSizeBytes() int
	getUpdatableSizeBytes() int
	copy() auxHashMap
}

// heapAuxHashMap is a standalone aux table.
type heapAuxHashMap struct {
	lgConfigK    int //required for #slot bits
	lgAuxArrInts int
	auxCount     int
	auxIntArr    []int
}

// newHeapAuxHashMap returns an empty heapAuxHashMap with 2^lgAuxArrInts entries.
func newHeapAuxHashMap(lgAuxArrInts int, lgConfigK int) *heapAuxHashMap {
	return &heapAuxHashMap{
		lgConfigK:    lgConfigK,
		lgAuxArrInts: lgAuxArrInts,
		auxIntArr:    make([]int, 1<<lgAuxArrInts),
	}
}

// deserializeAuxHashMap rebuilds a heapAuxHashMap from the aux region of an image starting at offset.
func deserializeAuxHashMap(mem memory, offset int, lgConfigK int, auxCount int, srcCompact bool) (*heapAuxHashMap, error) {
	var (
		lgAuxArrInts int
		err          error
	)
	if srcCompact {
		lgAuxArrInts, err = computeLgArr(auxCount, lgConfigK)
		if err != nil {
			return nil, err
		}
	} else {
		lgAuxArrInts = extractLgArr(mem)
	}

	auxMap := newHeapAuxHashMap(lgAuxArrInts, lgConfigK)
	configKMask := (1 << lgConfigK) - 1

	numInts := auxCount
	if !srcCompact {
		numInts = 1 << lgAuxArrInts
	}
	for i := 0; i < numInts; i++ {
		p := mem.getInt(offset + (i << 2))
		if p == empty {
			continue
		}
		if err := auxMap.put(getPairLow26(p)&configKMask, getPairValue(p)); err != nil {
			return nil, err
		}
	}
	if auxMap.getAuxCount() != auxCount {
		return nil, fmt.Errorf("%w: aux count %d, found %d entries", ErrCorruptImage, auxCount, auxMap.getAuxCount())
	}
	return auxMap, nil
}

// computeLgArr returns the table size needed to hold count entries below the resize threshold.
func computeLgArr(count int, lgConfigK int) (int, error) {
	ceilPwr2 := internal.CeilPowerOf2(count)
	if (resizeDenom * count) > (resizeNumber * ceilPwr2) {
		ceilPwr2 <<= 1
	}
	lg, err := internal.ExactLog2(ceilPwr2)
	if err != nil {
		return 0, err
	}
	return max(lgAuxArrInts[lgConfigK], lg), nil
}

func (a *heapAuxHashMap) mustFindValueFor(slotNo int) int {
	index := findAuxHashMap(a.lgAuxArrInts, a.lgConfigK, slotNo, a.entry)
	if index < 0 {
		panic(fmt.Sprintf("SlotNo not found: %d", slotNo))
	}
	return getPairValue(a.auxIntArr[index])
}

func (a *heapAuxHashMap) put(slotNo int, value int) error {
	index := findAuxHashMap(a.lgAuxArrInts, a.lgConfigK, slotNo, a.entry)
	if index >= 0 {
		a.auxIntArr[index] = pair(slotNo, value)
		return nil
	}
	if needsGrow(a.auxCount+1, a.lgAuxArrInts) {
		a.growAuxSpace()
		index = findAuxHashMap(a.lgAuxArrInts, a.lgConfigK, slotNo, a.entry)
	}
	a.auxIntArr[^index] = pair(slotNo, value)
	a.auxCount++
	return nil
}

func (a *heapAuxHashMap) entry(index int) int {
	return a.auxIntArr[index]
}

// growAuxSpace doubles the size of the aux array and reinserts the existing entries.
func (a *heapAuxHashMap) growAuxSpace() {
	oldArray := a.auxIntArr
	configKMask := (1 << a.lgConfigK) - 1
	a.lgAuxArrInts++
	a.auxIntArr = make([]int, 1<<a.lgAuxArrInts)
	for _, fetched := range oldArray {
		if fetched != empty {
			idx := findAuxHashMap(a.lgAuxArrInts, a.lgConfigK, fetched&configKMask, a.entry)
			a.auxIntArr[^idx] = fetched
		}
	}
}

func (a *heapAuxHashMap) pairs() iter.Seq[int] {
	return func(yield func(int) bool) {
		for _, p := range a.auxIntArr {
			if p != empty && !yield(p) {
				return
			}
		}
	}
}

func (a *heapAuxHashMap) getAuxCount() int {
	return a.auxCount
}

func (a *heapAuxHashMap) getLgAuxArrInts() int {
	return a.lgAuxArrInts
}

func (a *heapAuxHashMap) getAuxIntArr() []int {
	return a.auxIntArr
}

func (a *heapAuxHashMap) getCompactSizeBytes() int {
	return a.auxCount << 2
}

func (a *heapAuxHashMap) getUpdatableSizeBytes() int {
	return 4 << a.lgAuxArrInts
}

func (a *heapAuxHashMap) copy() auxHashMap {
	newA := *a
	newA.auxIntArr = make([]int, len(a.auxIntArr))
	copy(newA.auxIntArr, a.auxIntArr)
	return &newA
}

// needsGrow reports whether a table of 2^lgAuxArrInts entries is over the load factor with count entries.
func needsGrow(count int, lgAuxArrInts int) bool {
	return (resizeDenom * count) > (resizeNumber << lgAuxArrInts)
}

// findAuxHashMap searches the aux table for an empty entry or a matching slotNo.
// If the entry is empty, returns the one's complement of its index.
// If the entry contains the given slotNo, returns its index.
// entry reads the table at the given index, so heap and direct tables share the probe sequence.
func findAuxHashMap(lgAuxArrInts int, lgConfigK int, slotNo int, entry func(int) int) int {
	auxArrMask := (1 << lgAuxArrInts) - 1
	configKMask := (1 << lgConfigK) - 1
	probe := slotNo & auxArrMask
	loopIndex := probe
	for {
		arrVal := entry(probe)
		if arrVal == empty {
			return ^probe
		} else if slotNo == (arrVal & configKMask) {
			return probe
		}
		stride := (slotNo >> lgAuxArrInts) | 1
		probe = (probe + stride) & auxArrMask
		if probe == loopIndex {
			panic("key not found and no empty slots")
		}
	}
}

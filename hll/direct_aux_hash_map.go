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
)

// directAuxHashMap is an aux table embedded in the host's region right after the HLL array.
// Its size and count live in the host's preamble, so an updatable region is always a valid image.
type directAuxHashMap struct {
	host *HllArray
}

// newDirectAuxHashMap returns a view over the aux region of host. If initialize is true the
// region is cleared and sized for lgConfigK, which requires the region to already reserve it.
func newDirectAuxHashMap(host *HllArray, initialize bool) (*directAuxHashMap, error) {
	a := &directAuxHashMap{host: host}
	if !initialize {
		return a, nil
	}
	lgAuxArrInts := lgAuxArrInts[host.lgConfigK]
	required := host.auxStart + (4 << lgAuxArrInts)
	if required > host.mem.capacity() {
		return nil, fmt.Errorf("%w: aux hash map needs %d bytes, region holds %d",
			ErrInsufficientCapacity, required, host.mem.capacity())
	}
	w := memoryWriter{mem: host.mem}
	w.clear(host.auxStart, 4<<lgAuxArrInts)
	insertLgArr(&w, lgAuxArrInts)
	insertAuxCount(&w, 0)
	return a, w.err
}

func (a *directAuxHashMap) mustFindValueFor(slotNo int) int {
	index := findAuxHashMap(a.getLgAuxArrInts(), a.host.lgConfigK, slotNo, a.entry)
	if index < 0 {
		panic(fmt.Sprintf("SlotNo not found: %d", slotNo))
	}
	return getPairValue(a.entry(index))
}

func (a *directAuxHashMap) put(slotNo int, value int) error {
	lgAuxArrInts := a.getLgAuxArrInts()
	index := findAuxHashMap(lgAuxArrInts, a.host.lgConfigK, slotNo, a.entry)
	if index >= 0 {
		return a.host.mem.putInt(a.host.auxStart+(index<<2), pair(slotNo, value))
	}
	auxCount := a.getAuxCount()
	if needsGrow(auxCount+1, lgAuxArrInts) {
		if err := a.growAuxSpace(); err != nil {
			return err
		}
		index = findAuxHashMap(a.getLgAuxArrInts(), a.host.lgConfigK, slotNo, a.entry)
	}
	w := memoryWriter{mem: a.host.mem}
	w.putInt(a.host.auxStart+((^index)<<2), pair(slotNo, value))
	insertAuxCount(&w, auxCount+1)
	return w.err
}

func (a *directAuxHashMap) entry(index int) int {
	return a.host.mem.getInt(a.host.auxStart + (index << 2))
}

// growAuxSpace doubles the table in place, asking the host for a bigger region if needed.
func (a *directAuxHashMap) growAuxSpace() error {
	oldLgAuxArrInts := a.getLgAuxArrInts()
	oldArray := a.getAuxIntArr()
	newLgAuxArrInts := oldLgAuxArrInts + 1
	if err := a.host.ensureCapacity(a.host.auxStart + (4 << newLgAuxArrInts)); err != nil {
		return err
	}
	w := memoryWriter{mem: a.host.mem}
	w.clear(a.host.auxStart, 4<<newLgAuxArrInts)
	insertLgArr(&w, newLgAuxArrInts)
	if w.err != nil {
		return w.err
	}
	configKMask := (1 << a.host.lgConfigK) - 1
	for _, fetched := range oldArray {
		if fetched != empty {
			idx := findAuxHashMap(newLgAuxArrInts, a.host.lgConfigK, fetched&configKMask, a.entry)
			w.putInt(a.host.auxStart+((^idx)<<2), fetched)
		}
	}
	return w.err
}

func (a *directAuxHashMap) pairs() iter.Seq[int] {
	return func(yield func(int) bool) {
		auxArrInts := 1 << a.getLgAuxArrInts()
		for i := 0; i < auxArrInts; i++ {
			p := a.entry(i)
			if p != empty && !yield(p) {
				return
			}
		}
	}
}

func (a *directAuxHashMap) getAuxCount() int {
	return extractAuxCount(a.host.mem)
}

func (a *directAuxHashMap) getLgAuxArrInts() int {
	return extractLgArr(a.host.mem)
}

// getAuxIntArr returns a copy of the table.
func (a *directAuxHashMap) getAuxIntArr() []int {
	arr := make([]int, 1<<a.getLgAuxArrInts())
	for i := range arr {
		arr[i] = a.entry(i)
	}
	return arr
}

func (a *directAuxHashMap) getCompactSizeBytes() int {
	return a.getAuxCount() << 2
}

func (a *directAuxHashMap) getUpdatableSizeBytes() int {
	return 4 << a.getLgAuxArrInts()
}

// copy returns a heap copy of the table.
func (a *directAuxHashMap) copy() auxHashMap {
	return &heapAuxHashMap{
		lgConfigK:    a.host.lgConfigK,
		lgAuxArrInts: a.getLgAuxArrInts(),
		auxCount:     a.getAuxCount(),
		auxIntArr:    a.getAuxIntArr(),
	}
}

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

// GetCompactSerializationBytes returns the size in bytes of ToCompactSlice.
func (a *HllArray) GetCompactSerializationBytes() int {
	auxBytes := 0
	if a.auxHashMap != nil {
		auxBytes = a.auxHashMap.getCompactSizeBytes()
	}
	return a.auxStart + auxBytes
}

// GetUpdatableSerializationBytes returns the size in bytes of ToUpdatableSlice.
// HLL_4 images always reserve an aux region so they can be wrapped for writing.
func (a *HllArray) GetUpdatableSerializationBytes() int {
	if a.tgtHllType != TgtHllTypeHll4 {
		return a.auxStart
	}
	if a.auxHashMap == nil {
		return a.auxStart + (4 << lgAuxArrInts[a.lgConfigK])
	}
	return a.auxStart + a.auxHashMap.getUpdatableSizeBytes()
}

// ToCompactSlice serializes the sketch with the aux hash map packed to exactly its entries.
func (a *HllArray) ToCompactSlice() ([]byte, error) {
	if !a.direct {
		return a.toHllByteArr(true)
	}
	totBytes := a.GetCompactSerializationBytes()
	byteArr := make([]byte, totBytes)
	if extractCompactFlag(a.mem) { //mem is already consistent with result
		a.mem.copyTo(0, byteArr, 0, totBytes)
		return byteArr, nil
	}
	//everything but the aux array is consistent
	a.mem.copyTo(0, byteArr, 0, a.auxStart)
	w := memoryWriter{mem: &heapMemory{arr: byteArr}}
	insertCompactFlag(&w, true)
	if w.err != nil {
		return nil, w.err
	}
	if err := a.insertAux(&w, true); err != nil {
		return nil, err
	}
	return byteArr, nil
}

// ToUpdatableSlice serializes the sketch with the aux hash map laid out as its full table.
func (a *HllArray) ToUpdatableSlice() ([]byte, error) {
	if !a.direct {
		return a.toHllByteArr(false)
	}
	totBytes := a.GetUpdatableSerializationBytes()
	byteArr := make([]byte, totBytes)
	if !extractCompactFlag(a.mem) { //mem is already consistent with result
		a.mem.copyTo(0, byteArr, 0, min(totBytes, a.mem.capacity()))
		return byteArr, nil
	}
	if a.auxHashMap != nil {
		// the compact aux layout cannot be widened in place
		compactBytes, err := a.ToCompactSlice()
		if err != nil {
			return nil, err
		}
		heapSk, err := Heapify(compactBytes)
		if err != nil {
			return nil, err
		}
		return heapSk.ToUpdatableSlice()
	}
	//no aux array
	a.mem.copyTo(0, byteArr, 0, a.auxStart)
	w := memoryWriter{mem: &heapMemory{arr: byteArr}}
	insertCompactFlag(&w, false)
	return byteArr, w.err
}

// toHllByteArr serializes a heap sketch.
func (a *HllArray) toHllByteArr(compact bool) ([]byte, error) {
	totalBytes := a.GetUpdatableSerializationBytes()
	if compact {
		totalBytes = a.GetCompactSerializationBytes()
	}
	byteArr := make([]byte, totalBytes)
	w := memoryWriter{mem: &heapMemory{arr: byteArr}}
	a.insertCommonHll(&w, compact)
	if w.err != nil {
		return nil, w.err
	}
	a.mem.copyTo(a.denseStart, byteArr, hllByteArrStart, a.codec.arrBytes(a.lgConfigK))
	if err := a.insertAux(&w, compact); err != nil {
		return nil, err
	}
	return byteArr, nil
}

// insertAux writes auxCount, lgArr and the aux region of an image.
func (a *HllArray) insertAux(w *memoryWriter, compact bool) error {
	if a.auxHashMap == nil {
		insertAuxCount(w, 0)
		return w.err
	}
	auxCount := a.auxHashMap.getAuxCount()
	insertAuxCount(w, auxCount)
	insertLgArr(w, a.auxHashMap.getLgAuxArrInts())
	if compact {
		cnt := 0
		for p := range a.auxHashMap.pairs() {
			w.putInt(a.auxStart+(cnt<<2), p)
			cnt++
		}
		if cnt != auxCount {
			return fmt.Errorf("corruption, should not happen: %d != %d", cnt, auxCount)
		}
	} else {
		for i, v := range a.auxHashMap.getAuxIntArr() {
			w.putInt(a.auxStart+(i<<2), v)
		}
	}
	return w.err
}

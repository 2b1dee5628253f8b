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

// Package hll is the dense storage engine of the HyperLogLog sketch family.
//
// HllArray keeps one rank value per slot, packed 4 or 8 bits per slot, in memory that is
// either owned by the sketch (heap) or supplied by the caller (direct). HLL_4 slots whose
// value does not fit a nibble above curMin are redirected to a small aux hash map. Both
// variants serialize to the same compact and updatable images, and an updatable direct
// region is at all times a valid image of the sketch it backs.
//
// An HllArray is not safe for concurrent use. Reads may run concurrently with each other
// but never with an update.
package hll

import (
	"fmt"
	"strings"

	"github.com/apache/datasketches-hll-go/internal"
)

// HllArray is the state of a sketch in HLL mode.
type HllArray struct {
	hllSketchConfig
	codec slotCodec

	oooFlag     bool //Out-Of-Order Flag
	curMin      int  //always zero for Hll8, only used by Hll4
	numAtCurMin int  //# of values at curMin. If curMin = 0, it is # of zeros
	hipAccum    float64
	kxq0        float64
	kxq1        float64

	mem        memory
	direct     bool
	denseStart int // offset of the HLL array in mem
	auxStart   int // offset of the aux region in an image or region

	auxHashMap auxHashMap

	options options
	scratch [8]byte
}

func newHllArrayBase(lgConfigK int, tgtHllType TgtHllType, opts options) (*HllArray, error) {
	lgK, err := checkLgK(lgConfigK)
	if err != nil {
		return nil, err
	}
	codec, err := newSlotCodec(tgtHllType)
	if err != nil {
		return nil, err
	}
	return &HllArray{
		hllSketchConfig: newHllSketchConfig(lgK, tgtHllType),
		codec:           codec,
		curMin:          0,
		numAtCurMin:     1 << lgK,
		hipAccum:        0,
		kxq0:            float64(uint64(1 << lgK)),
		kxq1:            0,
		auxStart:        hllByteArrStart + codec.arrBytes(lgK),
		options:         opts,
	}, nil
}

// NewHllArray returns an empty heap sketch.
//
//   - lgConfigK, the Log2 of K. This value must be between 4 and 21 inclusively.
//   - tgtHllType, the slot width.
func NewHllArray(lgConfigK int, tgtHllType TgtHllType, opts ...Option) (*HllArray, error) {
	a, err := newHllArrayBase(lgConfigK, tgtHllType, newOptions(opts))
	if err != nil {
		return nil, err
	}
	a.mem = newHeapMemory(a.codec.arrBytes(a.lgConfigK))
	return a, nil
}

// NewHllArrayWithDefault returns an empty heap sketch with the default lgK and TgtHllType.
func NewHllArrayWithDefault(opts ...Option) (*HllArray, error) {
	return NewHllArray(defaultLgK, TgtHllTypeDefault, opts...)
}

// NewDirectHllArray initializes an empty updatable image in region and returns a sketch
// that updates it in place. region must hold at least GetMaxUpdatableSerializationBytes bytes
// and must stay valid while the sketch is in use.
func NewDirectHllArray(lgConfigK int, tgtHllType TgtHllType, region []byte, opts ...Option) (*HllArray, error) {
	a, err := newHllArrayBase(lgConfigK, tgtHllType, newOptions(opts))
	if err != nil {
		return nil, err
	}
	required, err := GetMaxUpdatableSerializationBytes(a.lgConfigK, a.tgtHllType)
	if err != nil {
		return nil, err
	}
	if len(region) < required {
		return nil, fmt.Errorf("%w: region holds %d bytes, needs %d", ErrInsufficientCapacity, len(region), required)
	}
	a.mem = newRegionMemory(region, false)
	a.direct = true
	a.denseStart = hllByteArrStart

	w := memoryWriter{mem: a.mem}
	w.clear(0, required)
	a.insertCommonHll(&w, false)
	insertLgArr(&w, 0)
	insertAuxCount(&w, 0)
	if w.err != nil {
		return nil, w.err
	}
	return a, nil
}

// Wrap returns a read-only sketch over a compact or updatable image.
// The region is not copied; it must stay valid and unchanged while the sketch is in use.
func Wrap(region []byte, opts ...Option) (*HllArray, error) {
	return wrap(region, true, opts)
}

// WritableWrap returns a sketch that updates the updatable image in region in place.
// Compact images cannot be wrapped for writing; heapify them instead.
func WritableWrap(region []byte, opts ...Option) (*HllArray, error) {
	return wrap(region, false, opts)
}

func wrap(region []byte, readOnly bool, opts []Option) (*HllArray, error) {
	mem := newRegionMemory(region, readOnly)
	layout, err := checkPreamble(mem)
	if err != nil {
		return nil, err
	}
	if !readOnly {
		if layout.compact {
			return nil, ErrCompactImageNotWritable
		}
		required := layout.totalBytes
		if layout.tgtHllType == TgtHllTypeHll4 {
			required = max(required, layout.auxStart+(4<<lgAuxArrInts[layout.lgConfigK]))
		}
		if len(region) < required {
			return nil, fmt.Errorf("%w: region holds %d bytes, needs %d", ErrInsufficientCapacity, len(region), required)
		}
	}

	a, err := newHllArrayBase(layout.lgConfigK, layout.tgtHllType, newOptions(opts))
	if err != nil {
		return nil, err
	}
	a.mem = mem
	a.direct = true
	a.denseStart = hllByteArrStart
	a.extractCommonHll(mem)

	if layout.auxCount > 0 {
		if layout.compact {
			auxMap, err := deserializeAuxHashMap(mem, layout.auxStart, layout.lgConfigK, layout.auxCount, true)
			if err != nil {
				return nil, err
			}
			a.auxHashMap = auxMap
		} else {
			auxMap, err := newDirectAuxHashMap(a, false)
			if err != nil {
				return nil, err
			}
			a.auxHashMap = auxMap
		}
	}
	return a, nil
}

// Heapify returns a heap sketch rebuilt from a compact or updatable image.
// The image is not modified and is not retained by the sketch.
func Heapify(image []byte, opts ...Option) (*HllArray, error) {
	mem := newRegionMemory(image, true)
	layout, err := checkPreamble(mem)
	if err != nil {
		return nil, err
	}
	a, err := newHllArrayBase(layout.lgConfigK, layout.tgtHllType, newOptions(opts))
	if err != nil {
		return nil, err
	}
	heap := newHeapMemory(a.codec.arrBytes(a.lgConfigK))
	mem.copyTo(hllByteArrStart, heap.arr, 0, len(heap.arr))
	a.mem = heap
	a.extractCommonHll(mem)

	if layout.auxCount > 0 {
		auxMap, err := deserializeAuxHashMap(mem, layout.auxStart, layout.lgConfigK, layout.auxCount, layout.compact)
		if err != nil {
			return nil, err
		}
		a.auxHashMap = auxMap
	}
	return a, nil
}

// Copy returns a heap copy of this sketch.
func (a *HllArray) Copy() (*HllArray, error) {
	bytes, err := a.ToCompactSlice()
	if err != nil {
		return nil, err
	}
	cp, err := Heapify(bytes)
	if err != nil {
		return nil, err
	}
	cp.options = a.options
	cp.options.memoryRequest = nil
	return cp, nil
}

// Reset returns the sketch to its empty state keeping lgConfigK and TgtHllType.
func (a *HllArray) Reset() error {
	if a.mem.isReadOnly() {
		return ErrReadOnly
	}
	a.oooFlag = false
	a.curMin = 0
	a.numAtCurMin = 1 << a.lgConfigK
	a.hipAccum = 0
	a.kxq0 = float64(uint64(1 << a.lgConfigK))
	a.kxq1 = 0
	arrBytes := a.codec.arrBytes(a.lgConfigK)
	if !a.direct {
		a.mem = newHeapMemory(arrBytes)
		a.auxHashMap = nil
		return nil
	}
	auxBytes := 0
	if a.auxHashMap != nil {
		auxBytes = a.auxHashMap.getUpdatableSizeBytes()
	}
	a.auxHashMap = nil
	w := memoryWriter{mem: a.mem}
	w.clear(a.denseStart, arrBytes+auxBytes)
	insertLgArr(&w, 0)
	insertAuxCount(&w, 0)
	insertOooFlag(&w, false)
	a.syncPreamble(&w)
	return w.err
}

// extractCommonHll reads the preamble fields that live in the sketch state.
func (a *HllArray) extractCommonHll(mem memory) {
	a.oooFlag = extractOooFlag(mem)
	a.curMin = extractCurMin(mem)
	a.numAtCurMin = extractNumAtCurMin(mem)
	a.hipAccum = extractHipAccum(mem)
	a.kxq0 = extractKxQ0(mem)
	a.kxq1 = extractKxQ1(mem)
}

// insertCommonHll writes every preamble field except lgArr and auxCount.
func (a *HllArray) insertCommonHll(w *memoryWriter, compact bool) {
	insertPreInts(w, hllPreInts)
	insertSerVer(w)
	insertFamilyID(w)
	insertLgK(w, a.lgConfigK)
	insertEmptyFlag(w, false)
	insertCompactFlag(w, compact)
	insertOooFlag(w, a.oooFlag)
	insertModeByte(w, a.tgtHllType)
	a.syncPreamble(w)
}

// syncPreamble writes the fields an update may change.
func (a *HllArray) syncPreamble(w *memoryWriter) {
	insertCurMin(w, a.curMin)
	insertNumAtCurMin(w, a.numAtCurMin)
	insertHipAccum(w, a.hipAccum)
	insertKxQ0(w, a.kxq0)
	insertKxQ1(w, a.kxq1)
}

// ensureCapacity makes sure the region of a direct sketch holds at least required bytes,
// moving the preamble and HLL array to a region from the memory request function if needed.
// The aux region of the new region is cleared and must be rebuilt by the caller.
func (a *HllArray) ensureCapacity(required int) error {
	if required <= a.mem.capacity() {
		return nil
	}
	if a.options.memoryRequest == nil {
		return fmt.Errorf("%w: need %d bytes, region holds %d", ErrInsufficientCapacity, required, a.mem.capacity())
	}
	region := a.options.memoryRequest(required)
	if len(region) < required {
		return fmt.Errorf("%w: memory request returned %d bytes, need %d", ErrInsufficientCapacity, len(region), required)
	}
	newMem := newRegionMemory(region, false)
	a.mem.copyTo(0, region, 0, a.auxStart)
	if err := newMem.clear(a.auxStart, len(region)-a.auxStart); err != nil {
		return err
	}
	a.mem = newMem
	return nil
}

// getNewAuxHashMap returns an empty aux hash map of the sketch's flavor.
func (a *HllArray) getNewAuxHashMap() (auxHashMap, error) {
	if a.direct {
		return newDirectAuxHashMap(a, true)
	}
	return newHeapAuxHashMap(lgAuxArrInts[a.lgConfigK], a.lgConfigK), nil
}

// putAuxHashMap replaces the aux hash map. A direct sketch copies the table into its region.
func (a *HllArray) putAuxHashMap(auxMap *heapAuxHashMap) error {
	if !a.direct {
		if auxMap == nil {
			a.auxHashMap = nil
		} else {
			a.auxHashMap = auxMap
		}
		return nil
	}
	if auxMap != nil {
		if err := a.ensureCapacity(a.auxStart + auxMap.getUpdatableSizeBytes()); err != nil {
			return err
		}
	}
	w := memoryWriter{mem: a.mem}
	if a.auxHashMap != nil {
		w.clear(a.auxStart, a.auxHashMap.getUpdatableSizeBytes())
	}
	if auxMap == nil {
		a.auxHashMap = nil
		insertLgArr(&w, 0)
		insertAuxCount(&w, 0)
		return w.err
	}
	for i, v := range auxMap.auxIntArr {
		w.putInt(a.auxStart+(i<<2), v)
	}
	insertLgArr(&w, auxMap.getLgAuxArrInts())
	insertAuxCount(&w, auxMap.getAuxCount())
	a.auxHashMap = &directAuxHashMap{host: a}
	return w.err
}

// hipAndKxQIncrementalUpdate is the HIP and KxQ incremental update for hll.
// This is used when incrementally updating an existing array with non-zero values.
func (a *HllArray) hipAndKxQIncrementalUpdate(oldValue int, newValue int) error {
	if oldValue >= newValue {
		return fmt.Errorf("oldValue >= newValue: %d, %d", oldValue, newValue)
	}
	kxq0 := a.kxq0
	kxq1 := a.kxq1
	//update hipAccum BEFORE updating kxq0 and kxq1
	a.hipAccum += float64(uint64(1<<a.lgConfigK)) / (kxq0 + kxq1)
	return a.incrementalUpdateKxQ(oldValue, newValue)
}

// incrementalUpdateKxQ updates kxq0 and kxq1; subtract first, then add.
func (a *HllArray) incrementalUpdateKxQ(oldValue int, newValue int) error {
	oldInv, err := internal.InvPow2(oldValue)
	if err != nil {
		return err
	}
	newInv, err := internal.InvPow2(newValue)
	if err != nil {
		return err
	}
	if oldValue < 32 {
		a.kxq0 -= oldInv
	} else {
		a.kxq1 -= oldInv
	}
	if newValue < 32 {
		a.kxq0 += newInv
	} else {
		a.kxq1 += newInv
	}
	return nil
}

// GetSlotValue returns the effective value of slotNo, resolving the aux hash map if needed.
func (a *HllArray) GetSlotValue(slotNo int) int {
	if slotNo < 0 || slotNo > a.slotNoMask {
		panic(fmt.Sprintf("slotNo out of range: %d", slotNo))
	}
	v := a.codec.readSlot(a.mem, a.denseStart, slotNo)
	if a.tgtHllType != TgtHllTypeHll4 {
		return v
	}
	if v == auxToken {
		rtAssert(a.auxHashMap != nil, "aux token without aux hash map at slot %d", slotNo)
		return a.auxHashMap.mustFindValueFor(slotNo)
	}
	return v + a.curMin
}

// GetCurMin returns the lower bound of every slot value. Always 0 for HLL_8.
func (a *HllArray) GetCurMin() int {
	return a.curMin
}

// GetNumAtCurMin returns the number of slots whose value equals curMin.
func (a *HllArray) GetNumAtCurMin() int {
	return a.numAtCurMin
}

// GetHipAccum returns the HIP accumulator.
func (a *HllArray) GetHipAccum() float64 {
	return a.hipAccum
}

func (a *HllArray) GetKxQ0() float64 {
	return a.kxq0
}

func (a *HllArray) GetKxQ1() float64 {
	return a.kxq1
}

// GetAuxCount returns the number of slots held in the aux hash map.
func (a *HllArray) GetAuxCount() int {
	if a.auxHashMap == nil {
		return 0
	}
	return a.auxHashMap.getAuxCount()
}

// IsEmpty returns true if no slot has been raised since construction or Reset.
func (a *HllArray) IsEmpty() bool {
	return a.curMin == 0 && a.numAtCurMin == 1<<a.lgConfigK
}

// IsDirect returns true if the sketch lives in a caller-owned region.
func (a *HllArray) IsDirect() bool {
	return a.direct
}

// IsReadOnly returns true if the sketch cannot be updated.
func (a *HllArray) IsReadOnly() bool {
	return a.mem.isReadOnly()
}

// IsCompact returns true if the sketch wraps a compact image.
func (a *HllArray) IsCompact() bool {
	return a.direct && extractCompactFlag(a.mem)
}

// IsOutOfOrder returns the out-of-order flag carried by the image the sketch came from.
func (a *HllArray) IsOutOfOrder() bool {
	return a.oooFlag
}

func (a *HllArray) String() string {
	var sb strings.Builder
	sb.WriteString("### HLL array summary:\n")
	sb.WriteString(fmt.Sprintf("   lg k           : %d\n", a.lgConfigK))
	sb.WriteString(fmt.Sprintf("   type           : %v\n", a.tgtHllType))
	sb.WriteString(fmt.Sprintf("   direct?        : %t\n", a.direct))
	sb.WriteString(fmt.Sprintf("   read only?     : %t\n", a.IsReadOnly()))
	sb.WriteString(fmt.Sprintf("   compact?       : %t\n", a.IsCompact()))
	sb.WriteString(fmt.Sprintf("   cur min        : %d\n", a.curMin))
	sb.WriteString(fmt.Sprintf("   num at cur min : %d\n", a.numAtCurMin))
	sb.WriteString(fmt.Sprintf("   aux count      : %d\n", a.GetAuxCount()))
	sb.WriteString(fmt.Sprintf("   hip accum      : %g\n", a.hipAccum))
	sb.WriteString(fmt.Sprintf("   kxq0           : %g\n", a.kxq0))
	sb.WriteString(fmt.Sprintf("   kxq1           : %g\n", a.kxq1))
	if a.auxHashMap != nil {
		sb.WriteString("### Aux hash map:\n")
		for p := range a.auxHashMap.pairs() {
			sb.WriteString("   " + pairString(p) + "\n")
		}
	}
	sb.WriteString("### End HLL array summary\n")
	return sb.String()
}

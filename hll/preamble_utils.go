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

	"github.com/apache/datasketches-hll-go/internal"
)

const (
	preambleIntsByte = 0
	serVerByte       = 1
	familyByte       = 2
	lgKByte          = 3
	lgArrByte        = 4
	flagsByte        = 5
	hllCurMinByte    = 6
	// modeByte
	// mode encoding of combined curMode and TgtHllType:
	// Dec  Lo4Bits TgtHllType, curMode
	//   2     0010      HLL_4,     HLL
	//  10     1010      HLL_8,     HLL
	modeByte = 7 //lo2bits = curMode, next 2 bits = tgtHllType
)

const (
	hipAccumDouble  = 8
	kxq0Double      = 16
	kxq1Double      = 24
	curMinCountInt  = 32
	auxCountInt     = 36
	hllByteArrStart = 40
)

const (
	//Flag bit masks
	emptyFlagMask      = 4
	compactFlagMask    = 8
	outOfOrderFlagMask = 16
)

const (
	//Mode byte masks
	curModeMask    = 3
	tgtHllTypeMask = 12
)

const (
	serVer     = 1
	hllPreInts = 10
)

func extractPreInts(mem memory) int {
	return int(mem.getByte(preambleIntsByte) & 0x3F)
}

func extractSerVer(mem memory) int {
	return int(mem.getByte(serVerByte))
}

func extractFamilyID(mem memory) int {
	return int(mem.getByte(familyByte))
}

func extractLgK(mem memory) int {
	return int(mem.getByte(lgKByte))
}

func extractLgArr(mem memory) int {
	return int(mem.getByte(lgArrByte))
}

func extractCompactFlag(mem memory) bool {
	return (mem.getByte(flagsByte) & compactFlagMask) > 0
}

func extractOooFlag(mem memory) bool {
	return (mem.getByte(flagsByte) & outOfOrderFlagMask) > 0
}

func extractCurMin(mem memory) int {
	return int(mem.getByte(hllCurMinByte))
}

func extractCurMode(mem memory) curMode {
	return curMode(mem.getByte(modeByte) & curModeMask)
}

func extractTgtHllType(mem memory) TgtHllType {
	return TgtHllType((mem.getByte(modeByte) & tgtHllTypeMask) >> 2)
}

func extractHipAccum(mem memory) float64 {
	return mem.getDouble(hipAccumDouble)
}

func extractKxQ0(mem memory) float64 {
	return mem.getDouble(kxq0Double)
}

func extractKxQ1(mem memory) float64 {
	return mem.getDouble(kxq1Double)
}

func extractNumAtCurMin(mem memory) int {
	return mem.getInt(curMinCountInt)
}

func extractAuxCount(mem memory) int {
	return mem.getInt(auxCountInt)
}

func insertPreInts(w *memoryWriter, preInts int) {
	w.putByte(preambleIntsByte, byte(preInts&0x3F))
}

func insertSerVer(w *memoryWriter) {
	w.putByte(serVerByte, byte(serVer))
}

func insertFamilyID(w *memoryWriter) {
	w.putByte(familyByte, byte(internal.FamilyEnum.HLL.Id))
}

func insertLgK(w *memoryWriter, lgK int) {
	w.putByte(lgKByte, byte(lgK))
}

func insertLgArr(w *memoryWriter, lgArr int) {
	w.putByte(lgArrByte, byte(lgArr))
}

func insertFlag(w *memoryWriter, mask byte, set bool) {
	flags := w.mem.getByte(flagsByte)
	if set {
		flags |= mask
	} else {
		flags &= ^mask
	}
	w.putByte(flagsByte, flags)
}

func insertEmptyFlag(w *memoryWriter, emptyFlag bool) {
	insertFlag(w, emptyFlagMask, emptyFlag)
}

func insertCompactFlag(w *memoryWriter, compactFlag bool) {
	insertFlag(w, compactFlagMask, compactFlag)
}

func insertOooFlag(w *memoryWriter, oooFlag bool) {
	insertFlag(w, outOfOrderFlagMask, oooFlag)
}

func insertCurMin(w *memoryWriter, curMin int) {
	w.putByte(hllCurMinByte, byte(curMin))
}

func insertModeByte(w *memoryWriter, tgtHllType TgtHllType) {
	mode := byte(curModeHll) & curModeMask
	mode |= (byte(tgtHllType) << 2) & tgtHllTypeMask
	w.putByte(modeByte, mode)
}

func insertHipAccum(w *memoryWriter, hipAccum float64) {
	w.putDouble(hipAccumDouble, hipAccum)
}

func insertKxQ0(w *memoryWriter, kxq0 float64) {
	w.putDouble(kxq0Double, kxq0)
}

func insertKxQ1(w *memoryWriter, kxq1 float64) {
	w.putDouble(kxq1Double, kxq1)
}

func insertNumAtCurMin(w *memoryWriter, numAtCurMin int) {
	w.putInt(curMinCountInt, numAtCurMin)
}

func insertAuxCount(w *memoryWriter, auxCount int) {
	w.putInt(auxCountInt, auxCount)
}

// imageLayout is what checkPreamble learns from a serialized HLL image.
type imageLayout struct {
	lgConfigK  int
	tgtHllType TgtHllType
	compact    bool
	auxCount   int
	auxStart   int
	totalBytes int
}

// checkPreamble verifies that mem holds an HLL mode image that can be read without going
// out of bounds. It does not validate the slot contents.
func checkPreamble(mem memory) (imageLayout, error) {
	var layout imageLayout
	if mem.capacity() < hllByteArrStart {
		return layout, fmt.Errorf("%w: image too small: %d", ErrCorruptImage, mem.capacity())
	}
	if famId := extractFamilyID(mem); famId != internal.FamilyEnum.HLL.Id {
		return layout, fmt.Errorf("%w: invalid family: %d", ErrCorruptImage, famId)
	}
	if v := extractSerVer(mem); v != serVer {
		return layout, fmt.Errorf("%w: invalid serialization version: %d", ErrCorruptImage, v)
	}
	if preInts := extractPreInts(mem); preInts != hllPreInts {
		return layout, fmt.Errorf("%w: invalid preamble ints: %d", ErrCorruptImage, preInts)
	}
	if mode := extractCurMode(mem); mode != curModeHll {
		return layout, fmt.Errorf("%w: not an HLL mode image: %d", ErrCorruptImage, mode)
	}
	lgK, err := checkLgK(extractLgK(mem))
	if err != nil {
		return layout, fmt.Errorf("%w: %w", ErrCorruptImage, err)
	}
	tgtHllType := extractTgtHllType(mem)
	codec, err := newSlotCodec(tgtHllType)
	if err != nil {
		return layout, fmt.Errorf("%w: %w", ErrCorruptImage, err)
	}

	layout.lgConfigK = lgK
	layout.tgtHllType = tgtHllType
	layout.compact = extractCompactFlag(mem)
	layout.auxCount = extractAuxCount(mem)
	layout.auxStart = hllByteArrStart + codec.arrBytes(lgK)
	layout.totalBytes = layout.auxStart

	if layout.auxCount > 0 {
		if tgtHllType != TgtHllTypeHll4 {
			return layout, fmt.Errorf("%w: aux count %d for %v", ErrCorruptImage, layout.auxCount, tgtHllType)
		}
		if layout.auxCount >= 1<<lgK {
			return layout, fmt.Errorf("%w: aux count %d for lgK %d", ErrCorruptImage, layout.auxCount, lgK)
		}
		if layout.compact {
			layout.totalBytes += layout.auxCount << 2
		} else {
			lgArr := extractLgArr(mem)
			if lgArr > keyBits26 || layout.auxCount >= 1<<lgArr {
				return layout, fmt.Errorf("%w: lgArr %d for aux count %d", ErrCorruptImage, lgArr, layout.auxCount)
			}
			layout.totalBytes += 4 << lgArr
		}
	}
	if mem.capacity() < layout.totalBytes {
		return layout, fmt.Errorf("%w: image holds %d bytes, needs %d", ErrCorruptImage, mem.capacity(), layout.totalBytes)
	}
	return layout, nil
}

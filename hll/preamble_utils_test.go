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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreambleInsertExtract(t *testing.T) {
	mem := newHeapMemory(hllByteArrStart)
	w := memoryWriter{mem: mem}
	insertPreInts(&w, hllPreInts)
	insertSerVer(&w)
	insertFamilyID(&w)
	insertLgK(&w, 11)
	insertLgArr(&w, 6)
	insertCompactFlag(&w, true)
	insertOooFlag(&w, true)
	insertEmptyFlag(&w, false)
	insertCurMin(&w, 9)
	insertModeByte(&w, TgtHllTypeHll8)
	insertHipAccum(&w, 123.5)
	insertKxQ0(&w, 0.25)
	insertKxQ1(&w, 0.125)
	insertNumAtCurMin(&w, 77)
	insertAuxCount(&w, 3)
	assert.NoError(t, w.err)

	assert.Equal(t, hllPreInts, extractPreInts(mem))
	assert.Equal(t, serVer, extractSerVer(mem))
	assert.Equal(t, 7, extractFamilyID(mem))
	assert.Equal(t, 11, extractLgK(mem))
	assert.Equal(t, 6, extractLgArr(mem))
	assert.True(t, extractCompactFlag(mem))
	assert.True(t, extractOooFlag(mem))
	assert.Equal(t, byte(compactFlagMask|outOfOrderFlagMask), mem.arr[flagsByte])
	assert.Equal(t, 9, extractCurMin(mem))
	assert.Equal(t, curModeHll, extractCurMode(mem))
	assert.Equal(t, TgtHllTypeHll8, extractTgtHllType(mem))
	assert.Equal(t, 123.5, extractHipAccum(mem))
	assert.Equal(t, 0.25, extractKxQ0(mem))
	assert.Equal(t, 0.125, extractKxQ1(mem))
	assert.Equal(t, 77, extractNumAtCurMin(mem))
	assert.Equal(t, 3, extractAuxCount(mem))

	insertCompactFlag(&w, false)
	assert.False(t, extractCompactFlag(mem))
	assert.True(t, extractOooFlag(mem))
}

func TestCheckPreamble(t *testing.T) {
	sk, err := NewHllArray(8, TgtHllTypeHll4)
	assert.NoError(t, err)
	fillSketch(t, sk, 1000, 4)
	image, err := sk.ToUpdatableSlice()
	assert.NoError(t, err)

	layout, err := checkPreamble(newRegionMemory(image, true))
	assert.NoError(t, err)
	assert.Equal(t, 8, layout.lgConfigK)
	assert.Equal(t, TgtHllTypeHll4, layout.tgtHllType)
	assert.False(t, layout.compact)
	assert.Equal(t, 4, layout.auxCount)
	assert.Equal(t, hllByteArrStart+128, layout.auxStart)
	assert.Equal(t, len(image), layout.totalBytes)

	badLgArr := append([]byte(nil), image...)
	badLgArr[lgArrByte] = 1
	_, err = checkPreamble(newRegionMemory(badLgArr, true))
	assert.ErrorIs(t, err, ErrCorruptImage)
}

func TestCheckPreambleAuxCountForHll8(t *testing.T) {
	sk, err := NewHllArray(6, TgtHllTypeHll8)
	assert.NoError(t, err)
	image, err := sk.ToUpdatableSlice()
	assert.NoError(t, err)
	mem := &heapMemory{arr: image}
	w := memoryWriter{mem: mem}
	insertAuxCount(&w, 1)
	_, err = checkPreamble(mem)
	assert.ErrorIs(t, err, ErrCorruptImage)
}

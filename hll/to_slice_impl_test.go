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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompactSizeWithoutAux(t *testing.T) {
	for tgtHllType, bitsPerSlot := range map[TgtHllType]int{TgtHllTypeHll4: 4, TgtHllTypeHll8: 8} {
		sk, err := NewHllArray(4, tgtHllType)
		assert.NoError(t, err)
		assert.NoError(t, sk.CouponUpdate(pair(7, 9)))
		image, err := sk.ToCompactSlice()
		assert.NoError(t, err)
		expected := hllByteArrStart + 16*bitsPerSlot/8
		assert.Equal(t, expected, len(image))
		assert.Equal(t, expected, sk.GetCompactSerializationBytes())
	}
}

func TestSerializationBytes(t *testing.T) {
	sk, err := NewHllArray(4, TgtHllTypeHll4)
	assert.NoError(t, err)
	assert.Equal(t, 48, sk.GetCompactSerializationBytes())
	assert.Equal(t, 64, sk.GetUpdatableSerializationBytes())
	assert.NoError(t, sk.CouponUpdate(pair(1, 20)))
	assert.Equal(t, 52, sk.GetCompactSerializationBytes())
	assert.Equal(t, 64, sk.GetUpdatableSerializationBytes())

	sk, err = NewHllArray(4, TgtHllTypeHll8)
	assert.NoError(t, err)
	assert.Equal(t, 56, sk.GetCompactSerializationBytes())
	assert.Equal(t, 56, sk.GetUpdatableSerializationBytes())
}

func TestImagePreamble(t *testing.T) {
	sk, err := NewHllArray(10, TgtHllTypeHll4)
	assert.NoError(t, err)
	fillSketch(t, sk, 2000, 3)
	compact, err := sk.ToCompactSlice()
	assert.NoError(t, err)
	updatable, err := sk.ToUpdatableSlice()
	assert.NoError(t, err)

	for _, image := range [][]byte{compact, updatable} {
		assert.Equal(t, byte(hllPreInts), image[preambleIntsByte])
		assert.Equal(t, byte(serVer), image[serVerByte])
		assert.Equal(t, byte(7), image[familyByte])
		assert.Equal(t, byte(10), image[lgKByte])
		assert.Equal(t, byte(2), image[modeByte])
		assert.Equal(t, byte(sk.GetCurMin()), image[hllCurMinByte])
		mem := &heapMemory{arr: image}
		assert.Equal(t, sk.GetNumAtCurMin(), extractNumAtCurMin(mem))
		assert.Equal(t, 3, extractAuxCount(mem))
		assert.Equal(t, sk.GetHipAccum(), extractHipAccum(mem))
	}
	assert.Equal(t, byte(compactFlagMask), compact[flagsByte])
	assert.Equal(t, byte(0), updatable[flagsByte])
	assert.Equal(t, sk.GetCompactSerializationBytes(), len(compact))
	assert.Equal(t, sk.GetUpdatableSerializationBytes(), len(updatable))
	assert.Equal(t, hllByteArrStart+512+3*4, len(compact))

	sk8, err := NewHllArray(10, TgtHllTypeHll8)
	assert.NoError(t, err)
	image, err := sk8.ToCompactSlice()
	assert.NoError(t, err)
	assert.Equal(t, byte(10), image[modeByte])
}

func TestRoundTrips(t *testing.T) {
	for _, tgtHllType := range []TgtHllType{TgtHllTypeHll4, TgtHllTypeHll8} {
		for _, lgK := range []int{4, 8, 12} {
			t.Run(fmt.Sprintf("%v/lgK=%d", tgtHllType, lgK), func(t *testing.T) {
				sk, err := NewHllArray(lgK, tgtHllType)
				assert.NoError(t, err)
				fillSketch(t, sk, 20<<lgK, 5)

				compact, err := sk.ToCompactSlice()
				assert.NoError(t, err)
				updatable, err := sk.ToUpdatableSlice()
				assert.NoError(t, err)

				fromCompact, err := Heapify(compact)
				assert.NoError(t, err)
				assertSameState(t, sk, fromCompact)
				fromUpdatable, err := Heapify(updatable)
				assert.NoError(t, err)
				assertSameState(t, sk, fromUpdatable)

				// fromBytes(toCompactBytes(fromBytes(image)))
				recompacted, err := fromUpdatable.ToCompactSlice()
				assert.NoError(t, err)
				again, err := Heapify(recompacted)
				assert.NoError(t, err)
				assertSameState(t, sk, again)

				wrappedCompact, err := Wrap(compact)
				assert.NoError(t, err)
				assert.True(t, wrappedCompact.IsCompact())
				assertSameState(t, sk, wrappedCompact)
				copied, err := wrappedCompact.ToCompactSlice()
				assert.NoError(t, err)
				assert.Equal(t, compact, copied)
				widened, err := wrappedCompact.ToUpdatableSlice()
				assert.NoError(t, err)
				fromWidened, err := Heapify(widened)
				assert.NoError(t, err)
				assertSameState(t, sk, fromWidened)

				wrappedUpdatable, err := Wrap(updatable)
				assert.NoError(t, err)
				assert.False(t, wrappedUpdatable.IsCompact())
				assertSameState(t, sk, wrappedUpdatable)
				copied, err = wrappedUpdatable.ToUpdatableSlice()
				assert.NoError(t, err)
				assert.Equal(t, updatable, copied)
				copied, err = wrappedUpdatable.ToCompactSlice()
				assert.NoError(t, err)
				assert.Equal(t, compact, copied)
			})
		}
	}
}

func TestWidenCompactWithoutAux(t *testing.T) {
	sk, err := NewHllArray(6, TgtHllTypeHll4)
	assert.NoError(t, err)
	fillSketch(t, sk, 300, 0)
	compact, err := sk.ToCompactSlice()
	assert.NoError(t, err)
	updatable, err := sk.ToUpdatableSlice()
	assert.NoError(t, err)

	wrapped, err := Wrap(compact)
	assert.NoError(t, err)
	widened, err := wrapped.ToUpdatableSlice()
	assert.NoError(t, err)
	assert.Equal(t, updatable, widened)
	assert.Equal(t, byte(0), widened[flagsByte]&compactFlagMask)
	assert.NotEqual(t, byte(0), compact[flagsByte]&compactFlagMask)
}

func TestHeapifyDoesNotRetainImage(t *testing.T) {
	sk, err := NewHllArray(5, TgtHllTypeHll4)
	assert.NoError(t, err)
	fillSketch(t, sk, 100, 2)
	image, err := sk.ToUpdatableSlice()
	assert.NoError(t, err)
	heapSk, err := Heapify(image)
	assert.NoError(t, err)
	assert.False(t, heapSk.IsDirect())
	clear(image)
	assertSameState(t, sk, heapSk)
}

func TestHeapifyCorruptImages(t *testing.T) {
	_, err := Heapify(make([]byte, hllByteArrStart-1))
	assert.ErrorIs(t, err, ErrCorruptImage)

	sk, err := NewHllArray(5, TgtHllTypeHll4)
	assert.NoError(t, err)
	fillSketch(t, sk, 100, 3)
	image, err := sk.ToCompactSlice()
	assert.NoError(t, err)

	_, err = Heapify(image[:len(image)-4])
	assert.ErrorIs(t, err, ErrCorruptImage)

	badFamily := append([]byte(nil), image...)
	badFamily[familyByte] = 3
	_, err = Heapify(badFamily)
	assert.ErrorIs(t, err, ErrCorruptImage)

	badLgK := append([]byte(nil), image...)
	badLgK[lgKByte] = 30
	_, err = Heapify(badLgK)
	assert.ErrorIs(t, err, ErrCorruptImage)

	badMode := append([]byte(nil), image...)
	badMode[modeByte] = 0
	_, err = Wrap(badMode)
	assert.ErrorIs(t, err, ErrCorruptImage)

	badType := append([]byte(nil), image...)
	badType[modeByte] = 2 | (1 << 2)
	_, err = Wrap(badType)
	assert.ErrorIs(t, err, ErrCorruptImage)

	badSerVer := append([]byte(nil), image...)
	badSerVer[serVerByte] = 2
	_, err = WritableWrap(badSerVer)
	assert.ErrorIs(t, err, ErrCorruptImage)
}

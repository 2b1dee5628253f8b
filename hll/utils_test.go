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

func TestCheckLgK(t *testing.T) {
	for lgK := minLogK; lgK <= maxLogK; lgK++ {
		v, err := checkLgK(lgK)
		assert.NoError(t, err)
		assert.Equal(t, lgK, v)
	}
	_, err := checkLgK(minLogK - 1)
	assert.Error(t, err)
	_, err = checkLgK(maxLogK + 1)
	assert.Error(t, err)
}

func TestPair(t *testing.T) {
	p := pair(12345, 42)
	assert.Equal(t, 12345, getPairLow26(p))
	assert.Equal(t, 42, getPairValue(p))
	assert.Equal(t, "SlotNo: 12345, Value: 42", pairString(p))

	p = pair(keyMask26, valMask6)
	assert.Equal(t, keyMask26, getPairLow26(p))
	assert.Equal(t, valMask6, getPairValue(p))
}

func TestGetMaxUpdatableSerializationBytes(t *testing.T) {
	n, err := GetMaxUpdatableSerializationBytes(4, TgtHllTypeHll4)
	assert.NoError(t, err)
	assert.Equal(t, 64, n)

	n, err = GetMaxUpdatableSerializationBytes(4, TgtHllTypeHll8)
	assert.NoError(t, err)
	assert.Equal(t, 56, n)

	n, err = GetMaxUpdatableSerializationBytes(12, TgtHllTypeHll4)
	assert.NoError(t, err)
	assert.Equal(t, hllByteArrStart+2048+(4<<5), n)

	n, err = GetMaxUpdatableSerializationBytes(21, TgtHllTypeHll8)
	assert.NoError(t, err)
	assert.Equal(t, hllByteArrStart+(1<<21), n)

	_, err = GetMaxUpdatableSerializationBytes(3, TgtHllTypeHll4)
	assert.Error(t, err)
	_, err = GetMaxUpdatableSerializationBytes(10, TgtHllType(3))
	assert.Error(t, err)
}

func TestOptions(t *testing.T) {
	opts := newOptions(nil)
	assert.Equal(t, DefaultSeed, opts.seed)
	assert.Equal(t, HashMurmur3, opts.hashFunction)
	assert.Nil(t, opts.memoryRequest)

	opts = newOptions([]Option{
		WithSeed(7),
		WithHashFunction(HashXXHash),
		WithMemoryRequest(func(minBytes int) []byte { return make([]byte, minBytes) }),
	})
	assert.Equal(t, uint64(7), opts.seed)
	assert.Equal(t, HashXXHash, opts.hashFunction)
	assert.Len(t, opts.memoryRequest(5), 5)
}

func TestSeedChangesCoupons(t *testing.T) {
	a, err := NewHllArray(12, TgtHllTypeHll8)
	assert.NoError(t, err)
	b, err := NewHllArray(12, TgtHllTypeHll8, WithSeed(DefaultSeed+1))
	assert.NoError(t, err)
	for i := int64(0); i < 100; i++ {
		assert.NoError(t, a.UpdateInt64(i))
		assert.NoError(t, b.UpdateInt64(i))
	}
	assert.NotEqual(t, slotValues(a), slotValues(b))
}

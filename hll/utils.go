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

const (
	defaultLgK = 12
	minLogK    = 4
	maxLogK    = 21
)

const (
	empty        = 0
	keyBits26    = 26
	valBits6     = 6
	keyMask26    = (1 << keyBits26) - 1
	valMask6     = (1 << valBits6) - 1
	resizeNumber = 3
	resizeDenom  = 4
	hiNibbleMask = 0xf0
	loNibbleMask = 0x0f

	// auxToken is the nibble that redirects a slot to the aux hash map.
	auxToken = 0xf
)

var (
	// lgAuxArrInts is the Log2 table sizes for exceptions based on lgK from 0 to 26.
	// However, only lgK from 4 to 21 are used.
	lgAuxArrInts = []int{
		0, 2, 2, 2, 2, 2, 2, 3, 3, 3, //0 - 9
		4, 4, 5, 5, 6, 7, 8, 9, 10, 11, //10 - 19
		12, 13, 14, 15, 16, 17, 18, //20 - 26
	}
)

// checkLgK returns lgK if it is valid and an error otherwise.
func checkLgK(lgK int) (int, error) {
	if lgK >= minLogK && lgK <= maxLogK {
		return lgK, nil
	}
	return 0, fmt.Errorf("log K must be between %d and %d, inclusive: %d", minLogK, maxLogK, lgK)
}

// pair returns a value where the lower 26 bits are the slotNo and the upper 6 bits are the value.
// This is also the layout of a coupon.
func pair(slotNo int, value int) int {
	return ((value & valMask6) << keyBits26) | (slotNo & keyMask26)
}

// pairString returns a string representation of the pair.
func pairString(pair int) string {
	return fmt.Sprintf("SlotNo: %d, Value: %d", getPairLow26(pair), getPairValue(pair))
}

// getPairLow26 returns the lower 26 bits of the pair.
func getPairLow26(pair int) int {
	return pair & keyMask26
}

// getPairValue returns the value of the pair, the 6 bits above the key.
func getPairValue(pair int) int {
	return (pair >> keyBits26) & valMask6
}

// GetMaxUpdatableSerializationBytes returns the number of bytes a caller-owned region must
// provide to hold a direct sketch of the given configuration before its aux hash map grows.
func GetMaxUpdatableSerializationBytes(lgConfigK int, tgtHllType TgtHllType) (int, error) {
	lgK, err := checkLgK(lgConfigK)
	if err != nil {
		return 0, err
	}
	codec, err := newSlotCodec(tgtHllType)
	if err != nil {
		return 0, err
	}
	auxBytes := 0
	if tgtHllType == TgtHllTypeHll4 {
		auxBytes = 4 << lgAuxArrInts[lgK]
	}
	return hllByteArrStart + codec.arrBytes(lgK) + auxBytes, nil
}

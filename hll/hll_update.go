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
	"encoding/binary"
	"unsafe"
)

// CouponUpdate presents a coupon to the sketch: the low 26 bits select the slot (masked to
// lgConfigK bits) and the next 6 bits are the candidate value. A slot only ever goes up.
func (a *HllArray) CouponUpdate(coupon int) error {
	if a.mem.isReadOnly() {
		return ErrReadOnly
	}
	newValue := getPairValue(coupon)
	if newValue == empty {
		return nil
	}
	if newValue <= a.curMin {
		return nil // super quick rejection; only works for large N
	}
	slotNo := getPairLow26(coupon) & a.slotNoMask

	var (
		changed bool
		err     error
	)
	if a.tgtHllType == TgtHllTypeHll4 {
		changed, err = a.hll4Update(slotNo, newValue)
	} else {
		changed, err = a.hll8Update(slotNo, newValue)
	}
	if err != nil || !changed || !a.direct {
		return err
	}
	w := memoryWriter{mem: a.mem}
	a.syncPreamble(&w)
	return w.err
}

// hll8Update applies newValue to an 8-bit slot.
func (a *HllArray) hll8Update(slotNo int, newValue int) (bool, error) {
	oldValue := a.codec.readSlot(a.mem, a.denseStart, slotNo)
	if newValue <= oldValue {
		return false, nil
	}
	if err := a.codec.writeSlot(a.mem, a.denseStart, slotNo, newValue); err != nil {
		return false, err
	}
	if err := a.hipAndKxQIncrementalUpdate(oldValue, newValue); err != nil {
		return true, err
	}
	if oldValue == 0 {
		a.numAtCurMin-- //interpret numAtCurMin as num Zeros
		rtAssert(a.numAtCurMin >= 0, "numAtCurMin < 0")
	}
	return true, nil
}

// UpdateUInt64 presents the given unsigned 64-bit integer as a potential unique item.
func (a *HllArray) UpdateUInt64(datum uint64) error {
	binary.LittleEndian.PutUint64(a.scratch[:], datum)
	return a.CouponUpdate(a.couponOf(a.scratch[:]))
}

// UpdateInt64 presents the given signed 64-bit integer as a potential unique item.
func (a *HllArray) UpdateInt64(datum int64) error {
	return a.UpdateUInt64(uint64(datum))
}

// UpdateSlice presents the given byte slice as a potential unique item.
// Empty slices are ignored.
func (a *HllArray) UpdateSlice(datum []byte) error {
	if len(datum) == 0 {
		return nil
	}
	return a.CouponUpdate(a.couponOf(datum))
}

// UpdateString presents the given string as a potential unique item.
func (a *HllArray) UpdateString(datum string) error {
	// get a slice to the string data (avoiding a copy to heap)
	return a.UpdateSlice(unsafe.Slice(unsafe.StringData(datum), len(datum)))
}

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

// hll4Update applies newValue to a 4-bit slot.
//
// Based on whether the slot holds an aux token and whether shiftedNewValue (newValue - curMin)
// reaches auxToken, there are four cases:
//  1. old is aux token, new >= auxToken: only the aux hash map changes.
//  2. old is aux token, new < auxToken: impossible, curMin has not changed and newValue > oldValue.
//  3. old < auxToken, new >= auxToken: store the token and add the value to the aux hash map.
//  4. old < auxToken, new < auxToken: overwrite the nibble.
//
// The aux hash map is written before the nibble so a failed aux write leaves the slot untouched.
func (a *HllArray) hll4Update(slotNo int, newValue int) (bool, error) {
	var (
		actualOldValue     int
		curMin             = a.curMin
		rawStoredOldNibble = a.codec.readSlot(a.mem, a.denseStart, slotNo) // could be 0
		lb0nOldValue       = rawStoredOldNibble + curMin                    // provable lower bound, could be 0
		shiftedNewValue    = newValue - curMin
	)

	if newValue <= lb0nOldValue {
		return false, nil
	}

	if rawStoredOldNibble == auxToken {
		rtAssert(a.auxHashMap != nil, "aux token without aux hash map at slot %d", slotNo)
		actualOldValue = a.auxHashMap.mustFindValueFor(slotNo)
		if newValue <= actualOldValue {
			return false, nil
		}
		// CASE 1
		if err := a.auxHashMap.put(slotNo, newValue); err != nil {
			return false, err
		}
	} else {
		actualOldValue = lb0nOldValue
		if shiftedNewValue >= auxToken { // CASE 3
			if a.auxHashMap == nil {
				auxMap, err := a.getNewAuxHashMap()
				if err != nil {
					return false, err
				}
				a.auxHashMap = auxMap
			}
			if err := a.auxHashMap.put(slotNo, newValue); err != nil {
				return false, err
			}
			if err := a.codec.writeSlot(a.mem, a.denseStart, slotNo, auxToken); err != nil {
				return true, err
			}
		} else { // CASE 4
			if err := a.codec.writeSlot(a.mem, a.denseStart, slotNo, shiftedNewValue); err != nil {
				return false, err
			}
		}
	}

	if err := a.hipAndKxQIncrementalUpdate(actualOldValue, newValue); err != nil {
		return true, err
	}

	// We just changed the HLL array, so it might be time to change curMin.
	if actualOldValue == curMin {
		rtAssert(a.numAtCurMin >= 1, "numAtCurMin < 1")
		a.numAtCurMin--
		for a.numAtCurMin == 0 {
			if err := a.shiftToBiggerCurMin(); err != nil {
				return true, err
			}
		}
	}
	return true, nil
}

// shiftToBiggerCurMin increases curMin by 1, shifts the nibbles down, rebuilds the aux hash map
// and recounts numAtCurMin. hipAccum, kxq0 and kxq1 are untouched.
//
// Entering this routine assumes that all slots have valid nibbles > 0 and <= 15.
// An aux hash map must exist if any nibble is already auxToken.
func (a *HllArray) shiftToBiggerCurMin() error {
	var (
		oldCurMin = a.curMin
		newCurMin = oldCurMin + 1
		configK   = 1 << a.lgConfigK

		numAtNewCurMin = 0
		numAuxTokens   = 0
	)

	// Decrement every stored nibble by one unless it is auxToken, which is only counted.
	for i := 0; i < configK; i++ {
		oldStoredNibble := a.codec.readSlot(a.mem, a.denseStart, i)
		rtAssert(oldStoredNibble != 0, "array slots cannot be 0 at this point: slot %d", i)
		if oldStoredNibble < auxToken {
			oldStoredNibble--
			if err := a.codec.writeSlot(a.mem, a.denseStart, i, oldStoredNibble); err != nil {
				return err
			}
			if oldStoredNibble == 0 {
				numAtNewCurMin++
			}
		} else {
			numAuxTokens++
			rtAssert(a.auxHashMap != nil, "auxHashMap cannot be nil at this point")
		}
	}

	// Former exceptions that now fit a nibble go back to the array, the rest to a new map.
	var newAuxMap *heapAuxHashMap
	if a.auxHashMap != nil {
		for p := range a.auxHashMap.pairs() {
			slotNum := getPairLow26(p) & a.slotNoMask
			oldActualVal := getPairValue(p)
			newShiftedVal := oldActualVal - newCurMin
			rtAssert(newShiftedVal >= 0, "newShiftedVal < 0 at slot %d", slotNum)
			rtAssert(a.codec.readSlot(a.mem, a.denseStart, slotNum) == auxToken,
				"array slot %d != AUX_TOKEN", slotNum)
			if newShiftedVal < auxToken {
				rtAssertEqualsInt(newShiftedVal, 14, "newShiftedVal")
				if err := a.codec.writeSlot(a.mem, a.denseStart, slotNum, newShiftedVal); err != nil {
					return err
				}
				numAuxTokens--
			} else {
				if newAuxMap == nil {
					newAuxMap = newHeapAuxHashMap(lgAuxArrInts[a.lgConfigK], a.lgConfigK)
				}
				if err := newAuxMap.put(slotNum, oldActualVal); err != nil {
					return err
				}
			}
		}
	} else {
		rtAssertEqualsInt(numAuxTokens, 0, "numAuxTokens")
	}
	if newAuxMap != nil {
		rtAssertEqualsInt(newAuxMap.getAuxCount(), numAuxTokens, "aux count")
	}

	if err := a.putAuxHashMap(newAuxMap); err != nil {
		return err
	}
	a.curMin = newCurMin
	a.numAtCurMin = numAtNewCurMin
	return nil
}

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

// slotCodec packs slot values into the dense region of a memory.
// base is the offset of slot 0's byte. Codecs know nothing about auxToken or curMin.
type slotCodec interface {
	readSlot(mem memory, base int, slotNo int) int
	writeSlot(mem memory, base int, slotNo int, value int) error
	bitsPerSlot() int
	arrBytes(lgConfigK int) int
}

func newSlotCodec(tgtHllType TgtHllType) (slotCodec, error) {
	switch tgtHllType {
	case TgtHllTypeHll4:
		return nibbleCodec{}, nil
	case TgtHllTypeHll8:
		return byteCodec{}, nil
	}
	return nil, fmt.Errorf("unsupported TgtHllType: %v", tgtHllType)
}

// nibbleCodec stores two slots per byte, even slots in the low nibble.
type nibbleCodec struct{}

func (nibbleCodec) readSlot(mem memory, base int, slotNo int) int {
	theByte := int(mem.getByte(base + (slotNo >> 1)))
	if (slotNo & 1) > 0 { //odd?
		theByte >>= 4
	}
	return theByte & loNibbleMask
}

func (nibbleCodec) writeSlot(mem memory, base int, slotNo int, value int) error {
	offset := base + (slotNo >> 1)
	oldValue := mem.getByte(offset)
	nib := byte(value)
	if (slotNo & 1) == 0 {
		return mem.putByte(offset, (oldValue&hiNibbleMask)|(nib&loNibbleMask))
	}
	return mem.putByte(offset, (oldValue&loNibbleMask)|((nib<<4)&hiNibbleMask))
}

func (nibbleCodec) bitsPerSlot() int {
	return 4
}

func (c nibbleCodec) arrBytes(lgConfigK int) int {
	return internal.WholeBytesToHoldBits((1 << lgConfigK) * c.bitsPerSlot())
}

// byteCodec stores one slot per byte.
type byteCodec struct{}

func (byteCodec) readSlot(mem memory, base int, slotNo int) int {
	return int(mem.getByte(base+slotNo)) & valMask6
}

func (byteCodec) writeSlot(mem memory, base int, slotNo int, value int) error {
	return mem.putByte(base+slotNo, byte(value&valMask6))
}

func (byteCodec) bitsPerSlot() int {
	return 8
}

func (c byteCodec) arrBytes(lgConfigK int) int {
	return internal.WholeBytesToHoldBits((1 << lgConfigK) * c.bitsPerSlot())
}

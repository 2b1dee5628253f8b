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
	"math"
)

// memory is the byte-addressable storage behind an HllArray.
// Offsets are absolute within the backing bytes.
type memory interface {
	getByte(offset int) byte
	putByte(offset int, value byte) error
	getInt(offset int) int
	putInt(offset int, value int) error
	getDouble(offset int) float64
	putDouble(offset int, value float64) error

	// copyTo copies length bytes starting at srcOffset into dst at dstOffset.
	copyTo(srcOffset int, dst []byte, dstOffset int, length int)
	clear(offset int, length int) error

	capacity() int
	isReadOnly() bool
}

// heapMemory owns its byte slice.
type heapMemory struct {
	arr []byte
}

func newHeapMemory(numBytes int) *heapMemory {
	return &heapMemory{arr: make([]byte, numBytes)}
}

func (m *heapMemory) getByte(offset int) byte {
	return m.arr[offset]
}

func (m *heapMemory) putByte(offset int, value byte) error {
	m.arr[offset] = value
	return nil
}

func (m *heapMemory) getInt(offset int) int {
	return int(binary.LittleEndian.Uint32(m.arr[offset : offset+4]))
}

func (m *heapMemory) putInt(offset int, value int) error {
	binary.LittleEndian.PutUint32(m.arr[offset:offset+4], uint32(value))
	return nil
}

func (m *heapMemory) getDouble(offset int) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(m.arr[offset : offset+8]))
}

func (m *heapMemory) putDouble(offset int, value float64) error {
	binary.LittleEndian.PutUint64(m.arr[offset:offset+8], math.Float64bits(value))
	return nil
}

func (m *heapMemory) copyTo(srcOffset int, dst []byte, dstOffset int, length int) {
	copy(dst[dstOffset:dstOffset+length], m.arr[srcOffset:srcOffset+length])
}

func (m *heapMemory) clear(offset int, length int) error {
	clear(m.arr[offset : offset+length])
	return nil
}

func (m *heapMemory) capacity() int {
	return len(m.arr)
}

func (m *heapMemory) isReadOnly() bool {
	return false
}

// regionMemory is a view over a region owned by the caller, e.g. a slice of an mmap'd file
// or a pooled buffer. It never copies or retains ownership of the region: the caller must keep
// the region alive, and unchanged by others, for as long as any sketch uses it.
type regionMemory struct {
	region   []byte
	readOnly bool
}

func newRegionMemory(region []byte, readOnly bool) *regionMemory {
	return &regionMemory{
		region:   region,
		readOnly: readOnly,
	}
}

func (m *regionMemory) getByte(offset int) byte {
	return m.region[offset]
}

func (m *regionMemory) putByte(offset int, value byte) error {
	if m.readOnly {
		return ErrReadOnly
	}
	m.region[offset] = value
	return nil
}

func (m *regionMemory) getInt(offset int) int {
	return int(binary.LittleEndian.Uint32(m.region[offset : offset+4]))
}

func (m *regionMemory) putInt(offset int, value int) error {
	if m.readOnly {
		return ErrReadOnly
	}
	binary.LittleEndian.PutUint32(m.region[offset:offset+4], uint32(value))
	return nil
}

func (m *regionMemory) getDouble(offset int) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(m.region[offset : offset+8]))
}

func (m *regionMemory) putDouble(offset int, value float64) error {
	if m.readOnly {
		return ErrReadOnly
	}
	binary.LittleEndian.PutUint64(m.region[offset:offset+8], math.Float64bits(value))
	return nil
}

func (m *regionMemory) copyTo(srcOffset int, dst []byte, dstOffset int, length int) {
	copy(dst[dstOffset:dstOffset+length], m.region[srcOffset:srcOffset+length])
}

func (m *regionMemory) clear(offset int, length int) error {
	if m.readOnly {
		return ErrReadOnly
	}
	clear(m.region[offset : offset+length])
	return nil
}

func (m *regionMemory) capacity() int {
	return len(m.region)
}

func (m *regionMemory) isReadOnly() bool {
	return m.readOnly
}

// memoryWriter sequences writes to a memory and keeps the first error.
type memoryWriter struct {
	mem memory
	err error
}

func (w *memoryWriter) putByte(offset int, value byte) {
	if w.err == nil {
		w.err = w.mem.putByte(offset, value)
	}
}

func (w *memoryWriter) putInt(offset int, value int) {
	if w.err == nil {
		w.err = w.mem.putInt(offset, value)
	}
}

func (w *memoryWriter) putDouble(offset int, value float64) {
	if w.err == nil {
		w.err = w.mem.putDouble(offset, value)
	}
}

func (w *memoryWriter) clear(offset int, length int) {
	if w.err == nil {
		w.err = w.mem.clear(offset, length)
	}
}

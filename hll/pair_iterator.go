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
	"iter"
)

// All returns an iterator over (slotNo, value) for every slot in ascending slotNo order.
// Values are read from the backing memory on each call; nothing is cached.
func (a *HllArray) All() iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		configK := 1 << a.lgConfigK
		for slotNo := 0; slotNo < configK; slotNo++ {
			if !yield(slotNo, a.GetSlotValue(slotNo)) {
				return
			}
		}
	}
}

// Valid returns an iterator over (slotNo, value) for the slots whose value is not zero.
func (a *HllArray) Valid() iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		for slotNo, value := range a.All() {
			if value != empty && !yield(slotNo, value) {
				return
			}
		}
	}
}

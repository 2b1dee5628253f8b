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

package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvPow2(t *testing.T) {
	v, err := InvPow2(0)
	assert.NoError(t, err)
	assert.Equal(t, 1.0, v)

	v, err = InvPow2(3)
	assert.NoError(t, err)
	assert.Equal(t, 0.125, v)

	_, err = InvPow2(-1)
	assert.Error(t, err)
	_, err = InvPow2(1024)
	assert.Error(t, err)
}

func TestCeilPowerOf2(t *testing.T) {
	testCases := []struct {
		input    int
		expected int
	}{
		{input: -3, expected: 1},
		{input: 0, expected: 1},
		{input: 1, expected: 1},
		{input: 2, expected: 2},
		{input: 3, expected: 4},
		{input: 5, expected: 8},
		{input: 8, expected: 8},
		{input: 1000, expected: 1024},
		{input: 1 << 30, expected: 1 << 30},
		{input: (1 << 30) + 1, expected: 1 << 30},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, CeilPowerOf2(tc.input), "input %d", tc.input)
	}
}

func TestExactLog2(t *testing.T) {
	v, err := ExactLog2(1)
	assert.NoError(t, err)
	assert.Equal(t, 0, v)

	v, err = ExactLog2(1 << 13)
	assert.NoError(t, err)
	assert.Equal(t, 13, v)

	_, err = ExactLog2(0)
	assert.Error(t, err)
	_, err = ExactLog2(12)
	assert.Error(t, err)
}

func TestWholeBytesToHoldBits(t *testing.T) {
	assert.Equal(t, 0, WholeBytesToHoldBits(0))
	assert.Equal(t, 1, WholeBytesToHoldBits(1))
	assert.Equal(t, 1, WholeBytesToHoldBits(8))
	assert.Equal(t, 2, WholeBytesToHoldBits(9))
	assert.Equal(t, uint32(8), WholeBytesToHoldBits(uint32(16*4)))
}

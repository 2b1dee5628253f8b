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
	"errors"
)

var (
	// ErrReadOnly is returned when a mutation is attempted on a sketch or region without write access.
	ErrReadOnly = errors.New("hll: no write access")
	// ErrInsufficientCapacity is returned when a caller-owned region is too small and cannot be replaced.
	ErrInsufficientCapacity = errors.New("hll: insufficient region capacity")
	// ErrCompactImageNotWritable is returned when a compact image is wrapped for writing.
	ErrCompactImageNotWritable = errors.New("hll: compact image cannot be wrapped for writing")
	// ErrCorruptImage is returned when a serialized image cannot be read safely.
	ErrCorruptImage = errors.New("hll: possible corruption")
)

// Copyright 2021-2023
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package common

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// ErrCorruptPayload is returned when a cached report is not a valid lz4 frame
var ErrCorruptPayload = errors.New("corrupt cached payload")

// Compress wraps an encoded report in a single lz4 frame. Cached reports
// are small so the smallest block size is used.
func Compress(report []byte) ([]byte, error) {
	var frame bytes.Buffer
	zw := lz4.NewWriter(&frame)
	if err := zw.Apply(lz4.BlockSizeOption(lz4.Block64Kb), lz4.ChecksumOption(true)); err != nil {
		return nil, err
	}
	if _, err := zw.Write(report); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return frame.Bytes(), nil
}

// Decompress reverses Compress
func Decompress(frame []byte) ([]byte, error) {
	report, err := io.ReadAll(lz4.NewReader(bytes.NewReader(frame)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCorruptPayload, err)
	}
	return report, nil
}

// Copyright ©2021 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package transform

import (
	"math/bits"
	"sync"
)

// bufPool holds size-stratified []byte pools; pool element i returns
// slices capped at 1<<i. The gzip inflater's background reader draws
// its scratch read buffer from it.
var bufPool [63]sync.Pool

func init() {
	for i := range bufPool {
		l := 1 << uint(i)
		bufPool[i].New = func() interface{} {
			return make([]byte, l)
		}
	}
}

// GetBuffer returns a []byte of length size and a capacity less than
// 2*size, drawn from a shared pool.
func GetBuffer(size int) []byte {
	if size == 0 {
		return nil
	}
	b := bufPool[poolFor(uint(size))].Get().([]byte)
	return b[:size]
}

// PutBuffer returns buf to the shared pool for later reuse by GetBuffer.
func PutBuffer(buf []byte) {
	if buf == nil {
		return
	}
	bufPool[poolFor(uint(cap(buf)))].Put(buf[:0]) //nolint:staticcheck
}

// poolFor returns the ceiling of the base-2 log of size, the index of
// the smallest pool able to satisfy a request for size bytes.
func poolFor(size uint) int {
	return bits.Len(size - 1)
}

// Copyright (c) 2026 guidoreina. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.
package capture

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// ringLegacy reads the original (TPACKET_V1) ring format: one packet
// per frame, timestamped in microseconds directly (no nanosecond
// field to divide down), used as the last-resort fallback on kernels
// that accept neither V3 nor V2.
type ringLegacy struct {
	data      []byte
	frameSize int
	nframes   int
	idx       int
}

func (r *ringLegacy) hdr(i int) *unix.TpacketHdr {
	off := i * r.frameSize
	return (*unix.TpacketHdr)(unsafe.Pointer(&r.data[off]))
}

func (r *ringLegacy) userOwns() bool {
	return r.hdr(r.idx).Status&unix.TP_STATUS_USER != 0
}

func (r *ringLegacy) process(handle func(frameMeta, []byte) bool) bool {
	h := r.hdr(r.idx)
	frameStart := r.idx * r.frameSize
	start := frameStart + int(h.Mac)
	end := start + int(h.Snaplen)
	if start < 0 || end > len(r.data) || start > end {
		return false
	}
	meta := frameMeta{tsSec: uint32(h.Sec), tsUsec: uint32(h.Usec)}
	return handle(meta, r.data[start:end])
}

func (r *ringLegacy) release() {
	r.hdr(r.idx).Status = unix.TP_STATUS_KERNEL
	r.idx = (r.idx + 1) % r.nframes
}

func (r *ringLegacy) close() error { return unix.Munmap(r.data) }

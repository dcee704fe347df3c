// Copyright (c) 2026 guidoreina. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.
package capture

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// ringV2 reads a TPACKET_V2 ring: one packet per frame, timestamped
// in nanoseconds.
type ringV2 struct {
	data      []byte
	frameSize int
	nframes   int
	idx       int
}

func (r *ringV2) hdr(i int) *unix.Tpacket2Hdr {
	off := i * r.frameSize
	return (*unix.Tpacket2Hdr)(unsafe.Pointer(&r.data[off]))
}

func (r *ringV2) userOwns() bool {
	return r.hdr(r.idx).Status&unix.TP_STATUS_USER != 0
}

func (r *ringV2) process(handle func(frameMeta, []byte) bool) bool {
	h := r.hdr(r.idx)
	frameStart := r.idx * r.frameSize
	start := frameStart + int(h.Mac)
	end := start + int(h.Snaplen)
	if start < 0 || end > len(r.data) || start > end {
		return false
	}
	meta := frameMeta{tsSec: h.Sec, tsUsec: h.Nsec / 1000}
	return handle(meta, r.data[start:end])
}

func (r *ringV2) release() {
	r.hdr(r.idx).Status = unix.TP_STATUS_KERNEL
	r.idx = (r.idx + 1) % r.nframes
}

func (r *ringV2) close() error { return unix.Munmap(r.data) }

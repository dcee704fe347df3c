// Copyright (c) 2026 guidoreina. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.
package capture

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// ringV3 reads a TPACKET_V3 ring: each ring unit is a block that may
// hold many packets, addressed through a block descriptor whose first
// variant (Hv1/TpacketHdrV1) carries the block's ownership bit and
// packet count.
type ringV3 struct {
	data      []byte
	blockSize int
	nblocks   int
	idx       int
}

func (r *ringV3) blockDesc(i int) *unix.TpacketBlockDesc {
	off := i * r.blockSize
	return (*unix.TpacketBlockDesc)(unsafe.Pointer(&r.data[off]))
}

func (r *ringV3) hdrV1(i int) *unix.TpacketHdrV1 {
	return (*unix.TpacketHdrV1)(unsafe.Pointer(&r.blockDesc(i).Hdr[0]))
}

func (r *ringV3) userOwns() bool {
	return r.hdrV1(r.idx).Block_status&unix.TP_STATUS_USER != 0
}

func (r *ringV3) process(handle func(frameMeta, []byte) bool) bool {
	blockStart := r.idx * r.blockSize
	h1 := r.hdrV1(r.idx)
	offset := h1.Offset_to_first_pkt

	for i := uint32(0); i < h1.Num_pkts; i++ {
		pos := blockStart + int(offset)
		if pos < 0 || pos >= len(r.data) {
			return false
		}
		hdr := (*unix.Tpacket3Hdr)(unsafe.Pointer(&r.data[pos]))

		start := pos + int(hdr.Mac)
		end := start + int(hdr.Snaplen)
		if start < 0 || end > len(r.data) || start > end {
			return false
		}

		meta := frameMeta{tsSec: hdr.Sec, tsUsec: hdr.Nsec / 1000}
		if !handle(meta, r.data[start:end]) {
			return false
		}

		if hdr.Next_offset == 0 {
			break
		}
		offset += hdr.Next_offset
	}
	return true
}

func (r *ringV3) release() {
	r.hdrV1(r.idx).Block_status = unix.TP_STATUS_KERNEL
	r.idx = (r.idx + 1) % r.nblocks
}

func (r *ringV3) close() error { return unix.Munmap(r.data) }

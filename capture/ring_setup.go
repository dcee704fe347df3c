// Copyright (c) 2026 guidoreina. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.
package capture

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// sockaddrLLSize is used, together with each version's header size,
// to size a V2/legacy frame: kernel writes the packet header followed
// by a sockaddr_ll before the captured bytes.
var sockaddrLLSize = int(unsafe.Sizeof(unix.RawSockaddrLinklayer{}))

// openRing negotiates the highest tpacket ring version the running
// kernel accepts, starting at V3 and falling back to V2 then the
// legacy frame format, builds the matching PACKET_RX_RING request,
// mmaps the ring, and returns it behind the ring interface. This
// probing happens once per Engine, at Setup time, rather than being
// gated at compile time by a build tag.
func openRing(fd int, ringSizeBytes int) (ring, error) {
	if err := unix.SetsockoptInt(fd, unix.SOL_PACKET, unix.PACKET_VERSION, unix.TPACKET_V3); err == nil {
		return openRingV3(fd, ringSizeBytes)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_PACKET, unix.PACKET_VERSION, unix.TPACKET_V2); err == nil {
		return openRingV2(fd, ringSizeBytes)
	}
	return openRingLegacy(fd, ringSizeBytes)
}

func openRingV3(fd int, ringSizeBytes int) (ring, error) {
	layout := computeLayout(ringSizeBytes, int(unix.SizeofTpacket3Hdr))

	req := unix.TpacketReq3{
		Block_size:       uint32(layout.blockSize),
		Block_nr:         uint32(layout.nblocks),
		Frame_size:       uint32(layout.frameSize),
		Frame_nr:         uint32(layout.nframes),
		Retire_blk_tov:   100,
		Feature_req_word: 0,
	}
	if err := unix.SetsockoptTpacketReq3(fd, unix.SOL_PACKET, unix.PACKET_RX_RING, &req); err != nil {
		return nil, fmt.Errorf("setsockopt PACKET_RX_RING (v3): %w", err)
	}

	data, err := unix.Mmap(fd, 0, int(req.Block_size*req.Block_nr), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap ring (v3): %w", err)
	}

	return &ringV3{data: data, blockSize: layout.blockSize, nblocks: layout.nblocks}, nil
}

func openRingV2(fd int, ringSizeBytes int) (ring, error) {
	layout := computeLayout(ringSizeBytes, int(unix.SizeofTpacket2Hdr)+sockaddrLLSize)

	req := unix.TpacketReq{
		Block_size: uint32(layout.blockSize),
		Block_nr:   uint32(layout.nblocks),
		Frame_size: uint32(layout.frameSize),
		Frame_nr:   uint32(layout.nframes),
	}
	if err := unix.SetsockoptTpacketReq(fd, unix.SOL_PACKET, unix.PACKET_RX_RING, &req); err != nil {
		return nil, fmt.Errorf("setsockopt PACKET_RX_RING (v2): %w", err)
	}

	data, err := unix.Mmap(fd, 0, int(req.Block_size*req.Block_nr), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap ring (v2): %w", err)
	}

	return &ringV2{data: data, frameSize: layout.frameSize, nframes: layout.nframes}, nil
}

func openRingLegacy(fd int, ringSizeBytes int) (ring, error) {
	layout := computeLayout(ringSizeBytes, int(unix.SizeofTpacketHdr)+sockaddrLLSize)

	req := unix.TpacketReq{
		Block_size: uint32(layout.blockSize),
		Block_nr:   uint32(layout.nblocks),
		Frame_size: uint32(layout.frameSize),
		Frame_nr:   uint32(layout.nframes),
	}
	if err := unix.SetsockoptTpacketReq(fd, unix.SOL_PACKET, unix.PACKET_RX_RING, &req); err != nil {
		return nil, fmt.Errorf("setsockopt PACKET_RX_RING (legacy): %w", err)
	}

	data, err := unix.Mmap(fd, 0, int(req.Block_size*req.Block_nr), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap ring (legacy): %w", err)
	}

	return &ringLegacy{data: data, frameSize: layout.frameSize, nframes: layout.nframes}, nil
}

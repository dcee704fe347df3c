// Copyright (c) 2026 guidoreina. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.
package capture

import "golang.org/x/sys/unix"

const (
	// MinRingSize is the smallest ring this package will negotiate.
	MinRingSize = 1 * 1024 * 1024 // 1 MiB

	// MaxRingSize is the largest ring this package will negotiate.
	MaxRingSize = 16 * 1024 * 1024 * 1024 // 16 GiB

	// DefaultRingSize is used when a Config leaves RingSizeBytes unset.
	DefaultRingSize = 256 * 1024 * 1024 // 256 MiB

	// blockSize is the fixed per-block size used for every ring
	// version; matches the reference sniffer's kBlockSize.
	blockSize = 4096 << 2 // 16 KiB

	// ethDataLen is the assumed Ethernet MTU used to size a frame;
	// jumbo frames are not supported.
	ethDataLen = 1500
)

func tpacketAlign(n int) int {
	const align = unix.TPACKET_ALIGNMENT
	return (n + align - 1) &^ (align - 1)
}

// ringLayout holds the derived sizes shared by every ring version: a
// frame big enough for one aligned tpacket header plus a full
// Ethernet MTU, rounded up to the next power of two — the same
// "powers of two starting at 8" search the reference sniffer performs
// — and as many 16 KiB blocks as fit in the requested ring size.
//
// Frame size is computed from the selected version's header size
// rather than queried from the kernel via PACKET_HDRLEN, following
// the same sizeof-constant approach used for TPACKET_V3 ring readers
// elsewhere; this sidesteps PACKET_HDRLEN's unusual write-then-read
// getsockopt calling convention, which has no ergonomic equivalent in
// the synchronous getsockopt wrappers used here.
type ringLayout struct {
	frameSize int
	blockSize int
	nblocks   int
	nframes   int
	ringBytes int
}

func computeLayout(ringSizeBytes, hdrLen int) ringLayout {
	frame := tpacketAlign(hdrLen) + tpacketAlign(ethDataLen)
	n := 8
	for n < frame {
		n *= 2
	}
	frame = n

	nblocks := ringSizeBytes / blockSize
	ringBytes := nblocks * blockSize
	nframes := ringBytes / frame

	return ringLayout{
		frameSize: frame,
		blockSize: blockSize,
		nblocks:   nblocks,
		nframes:   nframes,
		ringBytes: ringBytes,
	}
}

// Copyright (c) 2026 guidoreina. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.
package capture

// Stats summarizes one capture run. KernelPackets and KernelDrops are
// read from the socket's PACKET_STATISTICS counters on shutdown;
// Captured/Written/NonIPDropped are accumulated locally as packets are
// processed.
type Stats struct {
	// Captured is every ring entry the engine pulled off the ring,
	// regardless of outcome.
	Captured uint64

	// Written is the number of packets actually appended to the
	// capture file (passed the filter, or no filter installed).
	Written uint64

	// NonIPDropped counts packets that were neither matched against
	// the filter nor written: non-IPv4 EtherTypes while a filter is
	// active, and malformed Ethernet/IP headers too short to inspect.
	NonIPDropped uint64

	// KernelPackets and KernelDrops mirror PACKET_STATISTICS: total
	// packets the kernel delivered to this socket, and how many it
	// dropped before userspace could consume them.
	KernelPackets uint64
	KernelDrops   uint64
}

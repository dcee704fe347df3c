// Copyright (c) 2026 guidoreina. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.
package capture

// frameMeta carries the per-packet capture metadata the kernel
// attaches to a ring entry, independent of which tpacket version
// produced it (legacy expresses the sub-second timestamp in
// microseconds, V2 and V3 in nanoseconds — callers always receive
// microseconds).
type frameMeta struct {
	tsSec  uint32
	tsUsec uint32
}

// ring abstracts over the three on-wire tpacket ring layouts —
// TPACKET_V3 (block-based, many packets per ring unit), TPACKET_V2
// and the legacy V1 format (frame-based, one packet per ring unit) —
// behind a single ownership/processing/release protocol, so Engine's
// main loop never branches on kernel version. The version is chosen
// once, at Setup time, by probing what the running kernel accepts.
type ring interface {
	// userOwns reports whether the ring unit at the current cursor
	// has been handed to userspace by the kernel.
	userOwns() bool

	// process walks every packet in the current ring unit, invoking
	// handle for each with its metadata and its Ethernet frame bytes.
	// It returns false if handle requested the engine stop, mirroring
	// the reference sniffer's convention that a write failure aborts
	// the whole block/frame, not just the one packet.
	process(handle func(meta frameMeta, payload []byte) bool) bool

	// release returns the current ring unit to the kernel and
	// advances the cursor to the next one.
	release()

	// close unmaps the ring's backing memory.
	close() error
}

// Copyright (c) 2026 guidoreina. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.
package capture

import "github.com/sirupsen/logrus"

// Config describes one capture run: which interface to listen on,
// where to write the pcap output, how large the mmap'd ring should
// be, and an optional packet filter expression.
type Config struct {
	// Interface is the network interface to capture on, e.g. "eth0".
	Interface string

	// OutputPath is the capture file's destination path.
	OutputPath string

	// RingSizeBytes is the requested PACKET_RX_RING size. Zero means
	// DefaultRingSize; values outside [MinRingSize, MaxRingSize] are
	// rejected by Setup.
	RingSizeBytes int

	// MaxPcapFileBytes, if greater than zero, switches the writer to
	// the preallocated ByteBuffer backend of that fixed capacity,
	// flushed to OutputPath only once, on shutdown. Zero selects the
	// streaming IncrementalFile backend, which grows OutputPath as
	// packets arrive.
	MaxPcapFileBytes int

	// FilterExpr is an optional packet filter expression. An empty
	// string captures everything.
	FilterExpr string

	// Logger receives structured diagnostics. A nil Logger disables
	// logging.
	Logger *logrus.Logger
}

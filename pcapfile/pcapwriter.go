// Copyright (c) 2026 guidoreina. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.

// Package pcapfile writes classic libpcap capture files, in either a
// streaming (memory-bounded, grows the backing file as needed) or
// preallocated (fixed in-memory capacity, single flush on close) form.
package pcapfile

import (
	"io"
	"os"
)

// sink is the common append surface both IncrementalFile and
// ByteBuffer provide; PcapWriter is written against this interface so
// it does not care which backend is in use.
type sink interface {
	Write(p []byte) (int, error)
	Writev(segments [][]byte) (int64, error)
	Len() int64
	Close() error
}

// PcapWriter frames packets into the pcap record format and appends
// them to an underlying sink. The global header is written exactly
// once, on construction.
type PcapWriter struct {
	s         sink
	recordBuf [RecordHeaderLen]byte
}

// NewIncrementalWriter opens path as a streaming capture file and
// writes the global header immediately.
func NewIncrementalWriter(path string, perm os.FileMode) (*PcapWriter, error) {
	f, err := Create(path, perm)
	if err != nil {
		return nil, err
	}
	return newWriter(f)
}

// NewBufferedWriter wraps a fixed-capacity ByteBuffer as a pcap sink,
// writing the global header immediately. capacityBytes should include
// room for the global header plus every record the caller intends to
// write before Flush.
func NewBufferedWriter(capacityBytes int) (*PcapWriter, error) {
	return newWriter(NewByteBuffer(capacityBytes))
}

func newWriter(s sink) (*PcapWriter, error) {
	w := &PcapWriter{s: s}
	var hdr [GlobalHeaderLen]byte
	putGlobalHeader(hdr[:])
	if _, err := s.Write(hdr[:]); err != nil {
		s.Close()
		return nil, err
	}
	return w, nil
}

// WritePacket appends one captured frame. Both record length fields
// are set to len(data), the number of bytes actually present after
// any ring-side snaplen truncation; the frame's pre-truncation wire
// length is not recorded.
func (w *PcapWriter) WritePacket(tsSec, tsUsec uint32, data []byte) error {
	putRecordHeader(w.recordBuf[:], tsSec, tsUsec, uint32(len(data)))

	if _, err := w.s.Writev([][]byte{w.recordBuf[:], data}); err != nil {
		return err
	}
	return nil
}

// Len reports the total bytes written so far, including the global
// header.
func (w *PcapWriter) Len() int64 { return w.s.Len() }

// Flush writes the buffered content (global header and records) to out
// in a single Write call, for sinks (ByteBuffer) that only become
// durable on an explicit flush. For IncrementalFile, every write is already
// durable in the mapped window, so Flush is a no-op.
func (w *PcapWriter) Flush(out io.Writer) error {
	bb, ok := w.s.(*ByteBuffer)
	if !ok {
		return nil
	}
	if _, err := out.Write(bb.Bytes()); err != nil {
		return &OpError{Code: ErrWrite, Path: "<flush>", Err: err}
	}
	return nil
}

// Close closes the underlying sink. For IncrementalFile this
// truncates the file to its logical length; for ByteBuffer it is a
// no-op.
func (w *PcapWriter) Close() error { return w.s.Close() }

// Copyright (c) 2026 guidoreina. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.
package pcapfile

// ByteBuffer is a fixed-capacity, preallocated append sink: all memory
// is reserved up front and Write fails once that capacity is
// exhausted rather than growing, so a long-running capture has a hard
// memory ceiling instead of an unbounded one.
type ByteBuffer struct {
	buf    []byte
	cursor int
}

// NewByteBuffer allocates a ByteBuffer with the given fixed capacity.
func NewByteBuffer(capacity int) *ByteBuffer {
	return &ByteBuffer{buf: make([]byte, capacity)}
}

// Write appends b, returning ErrBufferFull (wrapped in an *OpError) if
// there is not enough remaining capacity. No partial write occurs on
// failure.
func (b *ByteBuffer) Write(p []byte) (int, error) {
	if len(p) > len(b.buf)-b.cursor {
		return 0, &OpError{Code: ErrBufferFull, Path: "<buffer>"}
	}
	n := copy(b.buf[b.cursor:], p)
	b.cursor += n
	return n, nil
}

// Writev appends each segment in order as a single logical write: if
// the combined length does not fit, nothing is written and
// ErrBufferFull is returned.
func (b *ByteBuffer) Writev(segments [][]byte) (int64, error) {
	total := 0
	for _, s := range segments {
		total += len(s)
	}
	if total > len(b.buf)-b.cursor {
		return 0, &OpError{Code: ErrBufferFull, Path: "<buffer>"}
	}
	for _, s := range segments {
		b.cursor += copy(b.buf[b.cursor:], s)
	}
	return int64(total), nil
}

// Len reports the number of bytes written so far.
func (b *ByteBuffer) Len() int64 { return int64(b.cursor) }

// Cap reports the buffer's fixed capacity.
func (b *ByteBuffer) Cap() int64 { return int64(len(b.buf)) }

// Bytes returns the written prefix of the buffer. The returned slice
// aliases the buffer's storage and is only valid until the next Write.
func (b *ByteBuffer) Bytes() []byte { return b.buf[:b.cursor] }

// Close is a no-op, present so ByteBuffer satisfies the same sink
// interface as IncrementalFile.
func (b *ByteBuffer) Close() error { return nil }

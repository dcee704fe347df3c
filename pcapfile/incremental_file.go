// Copyright (c) 2026 guidoreina. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.
package pcapfile

import (
	"os"

	"golang.org/x/sys/unix"
)

// Increment is the fixed size of the mapping window IncrementalFile
// keeps resident at any one time; matches fs::omemfile::kFileIncrement
// in the original implementation (256 MiB).
const Increment = 256 * 1024 * 1024

// IncrementalFile is an append-only writer for arbitrarily large
// outputs with bounded memory residency: it grows its backing file in
// fixed Increment-sized steps and keeps exactly one Increment-sized
// mmap'd window mapped at a time, so virtual memory use never exceeds
// one increment regardless of total output size.
type IncrementalFile struct {
	path          string
	file          *os.File
	mapping       []byte
	physicalSize  int64
	logicalOffset int64
	closed        bool
}

// Create truncates or creates the file at path and maps the first
// increment, ready for Write.
func Create(path string, perm os.FileMode) (*IncrementalFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return nil, &OpError{Code: ErrOpen, Path: path, Err: err}
	}

	inc := &IncrementalFile{path: path, file: f}
	if err := inc.grow(); err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	return inc, nil
}

// grow unmaps the current window (if any), extends the file by one
// Increment, and maps the new window at the current logical offset —
// the offset is always an Increment-multiple at this point, since
// grow only runs once the previous window is fully consumed.
func (f *IncrementalFile) grow() error {
	if f.mapping != nil {
		if err := unix.Munmap(f.mapping); err != nil {
			return &OpError{Code: ErrMap, Path: f.path, Err: err}
		}
		f.mapping = nil
	}

	newSize := f.physicalSize + Increment
	if err := f.file.Truncate(newSize); err != nil {
		return &OpError{Code: ErrGrow, Path: f.path, Err: err}
	}
	f.physicalSize = newSize

	mapping, err := unix.Mmap(int(f.file.Fd()), f.logicalOffset, Increment, unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return &OpError{Code: ErrMap, Path: f.path, Err: err}
	}
	f.mapping = mapping
	return nil
}

// windowOffset and windowRemaining compute where within the current
// Increment-sized mapping a given logical offset falls, and how many
// bytes are left in that window. Split out from Write so the
// boundary arithmetic can be tested without mapping real memory.
func windowOffset(logicalOffset int64) int { return int(logicalOffset % Increment) }

func windowRemaining(logicalOffset int64) int { return Increment - windowOffset(logicalOffset) }

// Write appends all of b, growing and remapping across as many
// increment boundaries as needed. Either every byte is appended or an
// error is returned — there is no partial-write result to observe.
func (f *IncrementalFile) Write(b []byte) (int, error) {
	total := len(b)
	for len(b) > 0 {
		if f.logicalOffset == f.physicalSize {
			if err := f.grow(); err != nil {
				return 0, err
			}
		}
		winOff := windowOffset(f.logicalOffset)
		remaining := windowRemaining(f.logicalOffset)

		n := len(b)
		if n > remaining {
			n = remaining
		}
		copy(f.mapping[winOff:winOff+n], b[:n])
		f.logicalOffset += int64(n)
		b = b[n:]
	}
	return total, nil
}

// Writev appends each segment in order, equivalent to calling Write on
// each; it returns the total bytes written across all segments on
// full success.
func (f *IncrementalFile) Writev(segments [][]byte) (int64, error) {
	var total int64
	for _, seg := range segments {
		n, err := f.Write(seg)
		if err != nil {
			return total, err
		}
		total += int64(n)
	}
	return total, nil
}

// Len reports the logical (appended) length of the file so far.
func (f *IncrementalFile) Len() int64 { return f.logicalOffset }

// Close unmaps the active window, truncates the file down to its
// logical length, and closes the descriptor. Close is idempotent.
func (f *IncrementalFile) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true

	if f.mapping != nil {
		if err := unix.Munmap(f.mapping); err != nil {
			return &OpError{Code: ErrMap, Path: f.path, Err: err}
		}
		f.mapping = nil
	}

	if err := f.file.Truncate(f.logicalOffset); err != nil {
		return &OpError{Code: ErrTruncate, Path: f.path, Err: err}
	}
	return f.file.Close()
}

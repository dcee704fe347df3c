package pcapfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingWriter always reports an I/O error, for exercising Flush's
// error-wrapping path without needing a real broken file descriptor.
type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestIncrementalWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pcap")
	w, err := NewIncrementalWriter(path, 0o644)
	require.NoError(t, err)

	payload := []byte{0xde, 0xad, 0xbe, 0xef}
	require.NoError(t, w.WritePacket(1000, 2000, payload))
	require.NoError(t, w.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, got, GlobalHeaderLen+RecordHeaderLen+len(payload))

	assert.Equal(t, uint32(magicNumber), binary.LittleEndian.Uint32(got[0:4]))

	rec := got[GlobalHeaderLen:]
	assert.Equal(t, uint32(1000), binary.LittleEndian.Uint32(rec[0:4]))
	assert.Equal(t, uint32(2000), binary.LittleEndian.Uint32(rec[4:8]))
	assert.Equal(t, payload, got[GlobalHeaderLen+RecordHeaderLen:])
}

func TestBufferedWriterFlush(t *testing.T) {
	w, err := NewBufferedWriter(GlobalHeaderLen + RecordHeaderLen + 4)
	require.NoError(t, err)

	payload := []byte{1, 2, 3, 4}
	require.NoError(t, w.WritePacket(1, 2, payload))

	var out bytes.Buffer
	require.NoError(t, w.Flush(&out))
	assert.Equal(t, GlobalHeaderLen+RecordHeaderLen+4, out.Len())
	assert.NoError(t, w.Close())
}

func TestBufferedWriterFlushErrorIsWrapped(t *testing.T) {
	w, err := NewBufferedWriter(GlobalHeaderLen + RecordHeaderLen + 4)
	require.NoError(t, err)
	require.NoError(t, w.WritePacket(1, 2, []byte{1, 2, 3, 4}))

	err = w.Flush(failingWriter{})
	require.Error(t, err)
	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, ErrWrite, opErr.Code)
}

func TestBufferedWriterOverflowReported(t *testing.T) {
	w, err := NewBufferedWriter(GlobalHeaderLen)
	require.NoError(t, err)

	err = w.WritePacket(0, 0, []byte{1, 2, 3})
	require.Error(t, err)
	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, ErrBufferFull, opErr.Code)
}

// TestRecordLengthIsCapturedNotWireLength guards against recording the
// pre-truncation wire length: it writes a record whose captured bytes
// are shorter than what the wire length would have been if the writer
// still accepted one, and asserts both length fields equal the
// captured byte count and that the file re-parses cleanly as a
// sequence of (header, payload) records.
func TestRecordLengthIsCapturedNotWireLength(t *testing.T) {
	path := filepath.Join(t.TempDir(), "truncated.pcap")
	w, err := NewIncrementalWriter(path, 0o644)
	require.NoError(t, err)

	captured := []byte{0x11, 0x22, 0x33} // a snaplen-truncated frame;
	// on the wire this packet was far longer than 3 bytes, but nothing
	// downstream of the ring ever tells WritePacket that.
	require.NoError(t, w.WritePacket(5, 6, captured))
	require.NoError(t, w.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)

	rec := got[GlobalHeaderLen:]
	inclLen := binary.LittleEndian.Uint32(rec[8:12])
	origLen := binary.LittleEndian.Uint32(rec[12:16])
	assert.Equal(t, uint32(len(captured)), inclLen)
	assert.Equal(t, uint32(len(captured)), origLen)

	// Re-parse the file the way a canonical reader would: walk
	// records using incl_len to find the next record boundary. If
	// incl_len ever holds a value bigger than the bytes actually
	// written, this walk reads past the record and either errors or
	// desyncs; here it must land exactly at EOF after one record.
	off := GlobalHeaderLen
	off += RecordHeaderLen
	off += int(inclLen)
	assert.Equal(t, len(got), off)
}

package pcapfile

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGlobalHeaderLayout(t *testing.T) {
	var buf [GlobalHeaderLen]byte
	putGlobalHeader(buf[:])

	assert.Equal(t, uint32(magicNumber), binary.LittleEndian.Uint32(buf[0:4]))
	assert.Equal(t, uint16(versionMajor), binary.LittleEndian.Uint16(buf[4:6]))
	assert.Equal(t, uint16(versionMinor), binary.LittleEndian.Uint16(buf[6:8]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[8:12]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[12:16]))
	assert.Equal(t, uint32(Snaplen), binary.LittleEndian.Uint32(buf[16:20]))
	assert.Equal(t, uint32(linkTypeEther), binary.LittleEndian.Uint32(buf[20:24]))
}

func TestRecordHeaderBothLengthFieldsAreCapturedLength(t *testing.T) {
	var buf [RecordHeaderLen]byte
	putRecordHeader(buf[:], 111, 222, 60)

	assert.Equal(t, uint32(111), binary.LittleEndian.Uint32(buf[0:4]))
	assert.Equal(t, uint32(222), binary.LittleEndian.Uint32(buf[4:8]))
	assert.Equal(t, uint32(60), binary.LittleEndian.Uint32(buf[8:12]))
	assert.Equal(t, uint32(60), binary.LittleEndian.Uint32(buf[12:16]))
}

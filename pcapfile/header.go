// Copyright (c) 2026 guidoreina. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.
package pcapfile

import "encoding/binary"

// Global header and per-record header layout for classic libpcap
// capture files, as read by tcpdump/Wireshark. Field sizes and byte
// order follow the format exactly; there is no varying endianness
// support here since nothing downstream of this writer needs one.

const (
	// GlobalHeaderLen is the fixed size of the pcap global header.
	GlobalHeaderLen = 24

	// RecordHeaderLen is the fixed size of a per-packet record header.
	RecordHeaderLen = 16

	magicNumber   = 0xA1B2C3D4
	versionMajor  = 2
	versionMinor  = 4
	linkTypeEther = 1 // DLT_EN10MB
)

// Snaplen is the maximum per-packet capture length recorded in the
// global header. Record lengths are not checked against it.
const Snaplen = 65535

// putGlobalHeader marshals the 24-byte pcap global header into buf,
// which must be at least GlobalHeaderLen bytes.
func putGlobalHeader(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], magicNumber)
	binary.LittleEndian.PutUint16(buf[4:6], versionMajor)
	binary.LittleEndian.PutUint16(buf[6:8], versionMinor)
	binary.LittleEndian.PutUint32(buf[8:12], 0)  // thiszone
	binary.LittleEndian.PutUint32(buf[12:16], 0) // sigfigs
	binary.LittleEndian.PutUint32(buf[16:20], Snaplen)
	binary.LittleEndian.PutUint32(buf[20:24], linkTypeEther)
}

// putRecordHeader marshals a 16-byte per-packet record header into
// buf, which must be at least RecordHeaderLen bytes.
//
// incl_len and orig_len are both set to capturedLen, the number of
// bytes actually present after the ring's own snaplen truncation: the
// reference writer never records the pre-truncation wire length, so a
// canonical reader never walks past the bytes this writer actually
// appended.
func putRecordHeader(buf []byte, tsSec, tsUsec uint32, capturedLen uint32) {
	binary.LittleEndian.PutUint32(buf[0:4], tsSec)
	binary.LittleEndian.PutUint32(buf[4:8], tsUsec)
	binary.LittleEndian.PutUint32(buf[8:12], capturedLen)
	binary.LittleEndian.PutUint32(buf[12:16], capturedLen)
}

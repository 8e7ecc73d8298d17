package protocol

import (
	"encoding/binary"
	"hash/crc32"
)

// PutUint32 writes v into b[0:4] in network byte order.
func PutUint32(b []byte, v uint32) {
	binary.BigEndian.PutUint32(b, v)
}

// Uint32 reads a network byte order uint32 from b[0:4].
func Uint32(b []byte) uint32 {
	return binary.BigEndian.Uint32(b)
}

// AppendUint32 appends v to b in network byte order.
func AppendUint32(b []byte, v uint32) []byte {
	return binary.BigEndian.AppendUint32(b, v)
}

// Checksum returns the CRC-32 of data using the reflected IEEE polynomial
// (the Ethernet/zlib CRC).
func Checksum(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

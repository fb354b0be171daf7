package wire

import "hash/crc32"

// CRC32 computes the IEEE 802.3 CRC-32 (polynomial 0xEDB88320) of b, the
// checksum domain used by framing. See spec.md §4.1.
func CRC32(b []byte) uint32 {
	return crc32.ChecksumIEEE(b)
}

package utils

import "hash/crc32"

// crcTable uses the IEEE polynomial; pbpack table entries are stamped with
// the ordinary CRC-32, not the legacy defective checksum.
var crcTable = crc32.MakeTable(crc32.IEEE)

// StandardCRC32 computes the standard CRC-32 used for entry integrity.
func StandardCRC32(data []byte) uint32 {
	return crc32.Checksum(data, crcTable)
}

// VerifyStandardCRC32 verifies that the given CRC matches the data.
func VerifyStandardCRC32(data []byte, expected uint32) bool {
	return StandardCRC32(data) == expected
}

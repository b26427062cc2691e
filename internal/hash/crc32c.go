// Package hash provides the checksum kernel used by snapshot persistence.
package hash

import "hash/crc32"

// castagnoli is computed once; every snapshot section shares the table.
var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// CRC32C returns the CRC32-Castagnoli checksum of data. Snapshot sections
// store it next to their payload so loads detect corruption before any
// decoding happens. Hardware accelerated on amd64 and arm64.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, castagnoli)
}

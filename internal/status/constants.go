package status

import "encoding/binary"

// Record layout constants for the direct record device.
// These values define the on-device format and MUST NOT be configurable.

const (
	// WordSize is the size in bytes of an encoded status word.
	WordSize = 2

	// DescriptionSize is the width of each description field, including
	// the terminating NUL.
	DescriptionSize = 80

	// DescriptionMaxChars is the longest description text that fits a field.
	DescriptionMaxChars = DescriptionSize - 1

	// ReservedSize is the unused gap between the descriptions and the word.
	ReservedSize = 14
)

const (
	OffsetBootloader = 0
	OffsetOSA        = OffsetBootloader + DescriptionSize
	OffsetOSB        = OffsetOSA + DescriptionSize
	OffsetReserved   = OffsetOSB + DescriptionSize
	OffsetStatus     = OffsetReserved + ReservedSize

	// RecordSize is the full size of the direct record (256 bytes).
	RecordSize = OffsetStatus + WordSize
)

// ByteOrder is the on-media byte order of a status word.
var ByteOrder = binary.LittleEndian

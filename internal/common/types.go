package common

import "errors"

// On-disk layout constants for the pbpack container (little-endian).
const (
	// CountFieldSize is the size of the leading resource-count field.
	CountFieldSize = 4

	// TableEntrySize is the size of one resource table entry on disk:
	// offset, length and CRC, each uint32.
	TableEntrySize = 12

	// SystemTableCapacity is the number of table slots reserved in a
	// system resource pack. Firmware packs allocate the full table up
	// front; unused slots are zero-filled. The capacity must admit the
	// 526-resource system packs produced after the resource catalog
	// grew past its original 474 entries.
	SystemTableCapacity = 1024

	// MaxResources bounds the resource count accepted from a pack
	// header. Counts above this indicate a corrupt or hostile file.
	MaxResources = 65536
)

// OffsetUnset marks a table entry whose offset has not been computed.
// Offsets are only meaningful once the pack has been finalized.
const OffsetUnset uint32 = 0xFFFFFFFF

// Common errors
var (
	ErrFormat           = errors.New("malformed resource pack")
	ErrCRCMismatch      = errors.New("resource CRC mismatch")
	ErrNotFinalized     = errors.New("resource pack is not finalized")
	ErrTooManyResources = errors.New("resource count exceeds pack capacity")
	ErrContentBounds    = errors.New("resource content outside pack bounds")
)

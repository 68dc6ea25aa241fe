// Package pbpack models the binary resource-pack container used for
// firmware and app resources: a table of per-resource metadata entries in
// front of a store of content blobs. Entries reference blobs by stable
// index, so identical content may be shared by several entries.
package pbpack

import (
	"github.com/Mearman/PebbleOS/internal/common"
)

// TableEntry is the per-resource metadata row of the pack table.
type TableEntry struct {
	// ContentIndex addresses the blob in ResourcePack.Contents. Several
	// entries may share one index; the blobs themselves are immutable.
	ContentIndex int

	// Length is the byte length of the referenced content.
	Length uint32

	// CRC is the standard CRC-32 of the referenced content. It is never
	// the legacy defective checksum.
	CRC uint32

	// Offset is the content position relative to the start of the
	// content region. It is OffsetUnset until the pack is finalized.
	Offset uint32
}

// ResourcePack is the in-memory form of a pack file. It is created by
// Deserialize, mutated in place, and destroyed by Serialize.
type ResourcePack struct {
	Entries  []TableEntry
	Contents [][]byte

	// System marks a firmware pack, which reserves a fixed-capacity
	// table on disk instead of one sized to the resource count.
	System bool

	// Finalized reports whether entry offsets reflect current lengths.
	// Serialization requires a finalized pack.
	Finalized bool
}

// Finalize recomputes every entry offset as the prefix sum of preceding
// entries' lengths in table order. It is the single source of truth for
// the serialized layout and is idempotent.
func (p *ResourcePack) Finalize() {
	var off uint32
	for i := range p.Entries {
		p.Entries[i].Offset = off
		off += p.Entries[i].Length
	}
	p.Finalized = true
}

// Invalidate clears the finalized state and every entry offset. Required
// after any mutation that can change content lengths, before Finalize
// re-establishes the layout.
func (p *ResourcePack) Invalidate() {
	for i := range p.Entries {
		p.Entries[i].Offset = common.OffsetUnset
	}
	p.Finalized = false
}

// Content returns the blob referenced by the entry at index i.
func (p *ResourcePack) Content(i int) []byte {
	return p.Contents[p.Entries[i].ContentIndex]
}

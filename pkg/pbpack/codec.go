package pbpack

import (
	"encoding/binary"
	"fmt"

	"github.com/Mearman/PebbleOS/internal/common"
	"github.com/Mearman/PebbleOS/pkg/pbpack/utils"
)

// On-disk layout (all fields little-endian):
//
//	uint32                resource count
//	count (or capacity)   table entries: offset, length, crc
//	...                   content region, addressed by entry offsets
//
// System packs reserve common.SystemTableCapacity table slots regardless of
// count; unused slots are zero-filled. App packs size the table to count.

// Deserialize parses pack bytes into a ResourcePack. Every entry's stored
// CRC is verified against the standard CRC-32 of its content unless
// skipCRCCheck is set, which is needed to load packs whose checksums are
// already known to be corrupt.
func Deserialize(data []byte, isSystem, skipCRCCheck bool) (*ResourcePack, error) {
	if len(data) < common.CountFieldSize {
		return nil, fmt.Errorf("pack shorter than count field: %w", common.ErrFormat)
	}
	count := binary.LittleEndian.Uint32(data[0:4])
	if count > common.MaxResources {
		return nil, fmt.Errorf("count %d: %w", count, common.ErrTooManyResources)
	}

	slots := int(count)
	if isSystem {
		if count > common.SystemTableCapacity {
			return nil, fmt.Errorf("system pack count %d: %w", count, common.ErrTooManyResources)
		}
		slots = common.SystemTableCapacity
	}

	contentBase := common.CountFieldSize + slots*common.TableEntrySize
	if len(data) < contentBase {
		return nil, fmt.Errorf("pack truncated inside table: %w", common.ErrFormat)
	}
	contentRegion := data[contentBase:]

	pack := &ResourcePack{
		Entries:   make([]TableEntry, 0, count),
		System:    isSystem,
		Finalized: true,
	}

	// Identical (offset, length) windows share one arena slot.
	type window struct{ off, length uint32 }
	seen := make(map[window]int)

	for i := 0; i < int(count); i++ {
		row := data[common.CountFieldSize+i*common.TableEntrySize:]
		off := binary.LittleEndian.Uint32(row[0:4])
		length := binary.LittleEndian.Uint32(row[4:8])
		crc := binary.LittleEndian.Uint32(row[8:12])

		end := uint64(off) + uint64(length)
		if end > uint64(len(contentRegion)) {
			return nil, fmt.Errorf("resource %d: %w", i+1, common.ErrContentBounds)
		}

		idx, ok := seen[window{off, length}]
		if !ok {
			// Copy out of the input buffer; it may be an mmap that is
			// released as soon as parsing finishes.
			blob := make([]byte, length)
			copy(blob, contentRegion[off:end])
			pack.Contents = append(pack.Contents, blob)
			idx = len(pack.Contents) - 1
			seen[window{off, length}] = idx
		}

		if !skipCRCCheck && !utils.VerifyStandardCRC32(pack.Contents[idx], crc) {
			return nil, fmt.Errorf("resource %d: %w", i+1, common.ErrCRCMismatch)
		}

		pack.Entries = append(pack.Entries, TableEntry{
			ContentIndex: idx,
			Length:       length,
			CRC:          crc,
			Offset:       off,
		})
	}

	return pack, nil
}

// Serialize encodes the pack to bytes. The pack must be finalized.
func (p *ResourcePack) Serialize() ([]byte, error) {
	if !p.Finalized {
		return nil, common.ErrNotFinalized
	}

	slots := len(p.Entries)
	if p.System {
		if len(p.Entries) > common.SystemTableCapacity {
			return nil, fmt.Errorf("system pack count %d: %w", len(p.Entries), common.ErrTooManyResources)
		}
		slots = common.SystemTableCapacity
	}

	var contentSize uint32
	for i := range p.Entries {
		e := &p.Entries[i]
		if e.ContentIndex < 0 || e.ContentIndex >= len(p.Contents) {
			return nil, fmt.Errorf("resource %d: content index %d: %w", i+1, e.ContentIndex, common.ErrFormat)
		}
		if int(e.Length) != len(p.Contents[e.ContentIndex]) {
			return nil, fmt.Errorf("resource %d: length %d does not match content: %w", i+1, e.Length, common.ErrFormat)
		}
		contentSize += e.Length
	}

	// Deserialize accepts any offsets whose windows are in bounds, so a
	// loaded pack may carry a layout the prefix-sum region cannot hold.
	for i := range p.Entries {
		e := &p.Entries[i]
		if uint64(e.Offset)+uint64(e.Length) > uint64(contentSize) {
			return nil, fmt.Errorf("resource %d: offset %d outside content region: %w", i+1, e.Offset, common.ErrFormat)
		}
	}

	contentBase := common.CountFieldSize + slots*common.TableEntrySize
	buf := make([]byte, contentBase+int(contentSize))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(p.Entries)))

	for i := range p.Entries {
		e := &p.Entries[i]
		row := buf[common.CountFieldSize+i*common.TableEntrySize:]
		binary.LittleEndian.PutUint32(row[0:4], e.Offset)
		binary.LittleEndian.PutUint32(row[4:8], e.Length)
		binary.LittleEndian.PutUint32(row[8:12], e.CRC)
		copy(buf[contentBase+int(e.Offset):], p.Contents[e.ContentIndex])
	}

	return buf, nil
}

// LoadFile reads and parses a pack file. The file handle and any mapping
// are released before return on every path.
func LoadFile(path string, isSystem, skipCRCCheck bool) (*ResourcePack, error) {
	m, err := utils.OpenMapped(path)
	if err != nil {
		return nil, fmt.Errorf("open pack %s: %w", path, err)
	}
	defer m.Close()

	pack, err := Deserialize(m.Data, isSystem, skipCRCCheck)
	if err != nil {
		return nil, fmt.Errorf("parse pack %s: %w", path, err)
	}
	return pack, nil
}

// WriteFile serializes the pack and writes it atomically to path.
func (p *ResourcePack) WriteFile(path string) error {
	data, err := p.Serialize()
	if err != nil {
		return err
	}

	af, err := utils.NewAtomicFile(path)
	if err != nil {
		return err
	}
	defer af.Close()

	if _, err := af.Write(data); err != nil {
		return fmt.Errorf("write pack %s: %w", path, err)
	}
	return af.Commit()
}

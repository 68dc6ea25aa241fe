package pbpack

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Mearman/PebbleOS/internal/common"
	"github.com/Mearman/PebbleOS/pkg/pbpack/utils"
)

// newPack builds a finalized pack with one entry per blob, stamped with the
// standard CRC-32.
func newPack(system bool, blobs ...[]byte) *ResourcePack {
	p := &ResourcePack{System: system}
	for i, b := range blobs {
		p.Contents = append(p.Contents, b)
		p.Entries = append(p.Entries, TableEntry{
			ContentIndex: i,
			Length:       uint32(len(b)),
			CRC:          utils.StandardCRC32(b),
		})
	}
	p.Finalize()
	return p
}

func blobOf(n int, fill byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = fill
	}
	return b
}

func TestFinalizeOffsets(t *testing.T) {
	p := newPack(false, blobOf(10, 'a'), blobOf(5, 'b'), blobOf(8, 'c'), blobOf(3, 'd'))

	want := []uint32{0, 10, 15, 23}
	for i, e := range p.Entries {
		if e.Offset != want[i] {
			t.Errorf("entry %d: offset = %d, want %d", i, e.Offset, want[i])
		}
	}
	if !p.Finalized {
		t.Fatalf("pack not marked finalized")
	}
}

func TestFinalizeIdempotent(t *testing.T) {
	p := newPack(false, blobOf(10, 'a'), blobOf(5, 'b'), blobOf(8, 'c'))

	first := append([]TableEntry(nil), p.Entries...)
	p.Finalize()
	if diff := cmp.Diff(first, p.Entries); diff != "" {
		t.Fatalf("second Finalize changed entries (-first +second):\n%s", diff)
	}
}

func TestInvalidateClearsOffsets(t *testing.T) {
	p := newPack(false, blobOf(10, 'a'), blobOf(5, 'b'))

	p.Invalidate()
	if p.Finalized {
		t.Fatalf("pack still marked finalized")
	}
	for i, e := range p.Entries {
		if e.Offset != common.OffsetUnset {
			t.Errorf("entry %d: offset = %d, want unset", i, e.Offset)
		}
	}
}

func TestSerializeRequiresFinalized(t *testing.T) {
	p := newPack(false, blobOf(4, 'a'))
	p.Invalidate()

	if _, err := p.Serialize(); err != common.ErrNotFinalized {
		t.Fatalf("Serialize on unfinalized pack: err = %v, want ErrNotFinalized", err)
	}
}

func TestSerializeRejectsStaleLength(t *testing.T) {
	p := newPack(false, blobOf(4, 'a'))
	p.Entries[0].Length = 7 // no longer matches the content

	if _, err := p.Serialize(); err == nil {
		t.Fatalf("Serialize accepted entry length out of sync with content")
	}
}

// A pack whose content region has a gap before the blob parses cleanly,
// but its layout does not fit the prefix-sum region Serialize builds.
// That must surface as an error, not a slice-bounds panic.
func TestSerializeRejectsGapOffset(t *testing.T) {
	content := []byte("gapped")
	region := make([]byte, 16+len(content))
	copy(region[16:], content)

	buf := make([]byte, common.CountFieldSize+common.TableEntrySize+len(region))
	binary.LittleEndian.PutUint32(buf[0:4], 1)
	row := buf[common.CountFieldSize:]
	binary.LittleEndian.PutUint32(row[0:4], 16)
	binary.LittleEndian.PutUint32(row[4:8], uint32(len(content)))
	binary.LittleEndian.PutUint32(row[8:12], utils.StandardCRC32(content))
	copy(buf[common.CountFieldSize+common.TableEntrySize:], region)

	p, err := Deserialize(buf, false, false)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if _, err := p.Serialize(); !errors.Is(err, common.ErrFormat) {
		t.Fatalf("Serialize on gapped pack: err = %v, want ErrFormat", err)
	}

	// Re-finalizing collapses the gap and makes the pack writable again.
	p.Invalidate()
	p.Finalize()
	if _, err := p.Serialize(); err != nil {
		t.Fatalf("serialize after finalize: %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	p := newPack(false, []byte("first resource"), []byte("second"), blobOf(200, 0x5A))

	data, err := p.Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	got, err := Deserialize(data, false, false)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if diff := cmp.Diff(p.Entries, got.Entries); diff != "" {
		t.Fatalf("entries differ (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(p.Contents, got.Contents); diff != "" {
		t.Fatalf("contents differ (-want +got):\n%s", diff)
	}
	if !got.Finalized {
		t.Fatalf("deserialized pack not finalized")
	}
}

func TestSystemPackRoundTrip(t *testing.T) {
	p := newPack(true, []byte("font one"), []byte("font two"))

	data, err := p.Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	wantSize := common.CountFieldSize + common.SystemTableCapacity*common.TableEntrySize + 8 + 8
	if len(data) != wantSize {
		t.Fatalf("serialized size = %d, want %d (fixed-capacity table)", len(data), wantSize)
	}

	got, err := Deserialize(data, true, false)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if diff := cmp.Diff(p.Entries, got.Entries); diff != "" {
		t.Fatalf("entries differ (-want +got):\n%s", diff)
	}
}

// The post-catalog-growth system packs carry 526 resources; the reserved
// table must admit them.
func TestSystemPack526Resources(t *testing.T) {
	blobs := make([][]byte, 526)
	for i := range blobs {
		blobs[i] = blobOf(1+i%5, byte(i))
	}
	p := newPack(true, blobs...)

	data, err := p.Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	got, err := Deserialize(data, true, false)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if len(got.Entries) != 526 {
		t.Fatalf("deserialized %d entries, want 526", len(got.Entries))
	}
	if diff := cmp.Diff(p.Entries, got.Entries); diff != "" {
		t.Fatalf("entries differ (-want +got):\n%s", diff)
	}
}

func TestDeserializeSharedContent(t *testing.T) {
	// Two entries referencing the same (offset, length) window must share
	// one arena slot.
	p := newPack(false, []byte("shared"))
	p.Entries = append(p.Entries, p.Entries[0])
	p.Finalize()
	p.Entries[1].Offset = p.Entries[0].Offset // same window, not appended
	data, err := p.Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	// Trim the duplicated payload the prefix-sum layout allocated.
	data = data[:len(data)-len("shared")]

	got, err := Deserialize(data, false, false)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if len(got.Contents) != 1 {
		t.Fatalf("arena has %d blobs, want 1 (deduplicated)", len(got.Contents))
	}
	if got.Entries[0].ContentIndex != got.Entries[1].ContentIndex {
		t.Fatalf("entries do not share a content index")
	}
}

func TestDeserializeCRCMismatch(t *testing.T) {
	p := newPack(false, []byte("payload"))
	p.Entries[0].CRC ^= 0xFFFFFFFF
	data, err := p.Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	if _, err := Deserialize(data, false, false); !errors.Is(err, common.ErrCRCMismatch) {
		t.Fatalf("err = %v, want ErrCRCMismatch", err)
	}

	// skip_crc_check loads packs with known-corrupt checksums.
	got, err := Deserialize(data, false, true)
	if err != nil {
		t.Fatalf("deserialize with skip: %v", err)
	}
	if string(got.Contents[0]) != "payload" {
		t.Fatalf("content = %q, want %q", got.Contents[0], "payload")
	}
}

func TestDeserializeTruncated(t *testing.T) {
	p := newPack(false, []byte("payload"))
	data, err := p.Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	cases := map[string][]byte{
		"empty":          {},
		"count only":     data[:3],
		"inside table":   data[:common.CountFieldSize+4],
		"inside content": data[:len(data)-2],
	}
	for name, c := range cases {
		if _, err := Deserialize(c, false, false); err == nil {
			t.Errorf("%s: no error for truncated pack", name)
		}
	}
}

func TestFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/system_resources.pbpack"

	p := newPack(true, []byte("alpha"), []byte("beta"))
	if err := p.WriteFile(path); err != nil {
		t.Fatalf("write file: %v", err)
	}

	got, err := LoadFile(path, true, false)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if diff := cmp.Diff(p.Contents, got.Contents); diff != "" {
		t.Fatalf("contents differ (-want +got):\n%s", diff)
	}

	if _, err := LoadFile(dir+"/missing.pbpack", true, false); err == nil {
		t.Fatalf("no error for missing file")
	}
}

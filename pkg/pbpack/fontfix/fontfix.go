// Package fontfix repairs corrupted font resources in a system resource
// pack by copying known-good content from another pack, restamping the
// affected table entries and rebuilding the pack layout.
package fontfix

import (
	"github.com/Mearman/PebbleOS/internal/common"
	"github.com/Mearman/PebbleOS/pkg/pbpack"
	"github.com/Mearman/PebbleOS/pkg/pbpack/utils"
)

// ResourceID is a 1-based resource identifier as used by the firmware
// resource catalog. The pack table is 0-based.
type ResourceID uint32

// Patch copies the content of each identified resource from source into
// target, restamps the target entry's length and standard CRC-32, and
// re-finalizes target. Only target is mutated.
//
// An identifier outside either pack's table is skipped with a diagnostic;
// it does not abort the remaining identifiers. The returned count is the
// number of resources actually replaced; zero is a valid outcome.
func Patch(source, target *pbpack.ResourcePack, ids []ResourceID, logger common.Logger) uint32 {
	if logger == nil {
		logger = common.NewNullLogger()
	}

	var replaced uint32
	for _, id := range ids {
		index := int(id) - 1

		if index < 0 || index >= len(source.Entries) {
			logger.Warn("skipping resource, not in source pack", "id", id)
			continue
		}
		if index >= len(target.Entries) {
			logger.Warn("skipping resource, not in target pack", "id", id)
			continue
		}

		content := source.Content(index)
		entry := &target.Entries[index]

		// Replace the arena slot wholesale. Any other entry sharing the
		// same content index sees the new bytes as well.
		target.Contents[entry.ContentIndex] = content
		entry.Length = uint32(len(content))
		entry.CRC = utils.StandardCRC32(content)

		replaced++
		logger.Info("replaced resource", "id", id, "length", entry.Length)
	}

	// Content lengths may have changed, so every offset is stale.
	target.Invalidate()
	target.Finalize()

	return replaced
}

package catalog

import (
	"media-catalog/core/identity"

	"gorm.io/gorm"
)

// inlineKeyLimit is the largest key set bound directly into a NOT IN clause.
// SQLite rejects statements with more than 32766 bound variables, so larger
// sets are diffed in memory and deleted by ID in chunks of idChunkSize.
var inlineKeyLimit = 10000

const idChunkSize = 500

// keyedRow is the slice of a series or book row needed to diff it against a scan.
type keyedRow struct {
	ID  uint
	URL identity.Key
}

// staleIDs returns the IDs of the rows selected by scope whose URL is not in keys.
func staleIDs(scope *gorm.DB, keys []identity.Key) ([]uint, error) {
	var rows []keyedRow
	if err := scope.Select("id", "url").Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}

	keep := make(map[identity.Key]struct{}, len(keys))
	for _, k := range keys {
		keep[k] = struct{}{}
	}
	var ids []uint
	for _, row := range rows {
		if _, ok := keep[row.URL]; !ok {
			ids = append(ids, row.ID)
		}
	}
	return ids, nil
}

// chunkIDs splits ids into consecutive slices of at most size elements.
func chunkIDs(ids []uint, size int) [][]uint {
	var chunks [][]uint
	for len(ids) > size {
		chunks = append(chunks, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		chunks = append(chunks, ids)
	}
	return chunks
}

package port

import (
	"github.com/MundaneSoftware/e57-Image-Extractor/internal/domain/entity"
)

// MetadataWriter persists the metadata table. Save must replace the
// target file atomically so a failed save never leaves a partial table.
type MetadataWriter interface {
	Save(path string, table *entity.MetadataTable) error
}

package entity

// MetadataColumns is the fixed coords.csv header, in column order.
var MetadataColumns = []string{
	"image_file_name",
	"image_path",
	"translation_x",
	"translation_y",
	"translation_z",
	"rotation_x",
	"rotation_y",
	"rotation_z",
	"rotation_w",
}

// MetadataRow is one line of coords.csv: the written image plus the pose
// of the scan it came from.
type MetadataRow struct {
	ImageFileName string
	ImagePath     string
	Pose          Pose
}

// MetadataTable accumulates rows in memory during a run and is persisted
// exactly once at the end (including the cancellation path). It is never
// read back.
type MetadataTable struct {
	rows []MetadataRow
}

func NewMetadataTable() *MetadataTable {
	return &MetadataTable{}
}

func (t *MetadataTable) Append(row MetadataRow) {
	t.rows = append(t.rows, row)
}

func (t *MetadataTable) Len() int {
	return len(t.rows)
}

// Rows returns the accumulated rows in append order.
func (t *MetadataTable) Rows() []MetadataRow {
	return t.rows
}

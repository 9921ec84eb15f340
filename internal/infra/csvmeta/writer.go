package csvmeta

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/MundaneSoftware/e57-Image-Extractor/internal/domain/entity"
)

// FileName is the fixed name of the metadata table inside the output
// directory.
const FileName = "coords.csv"

// Writer persists the metadata table as CSV. Floats are rendered with
// strconv's 'f' format so the output is fixed-point, locale-independent
// and byte-identical across runs and platforms.
type Writer struct{}

func NewWriter() *Writer {
	return &Writer{}
}

// Save writes the header plus one line per row to a temp file in the
// target directory, then renames it over path. An existing file is
// replaced; a failed save leaves the old file untouched.
func (w *Writer) Save(path string, table *entity.MetadataTable) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, FileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp metadata file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := writeTable(tmp, table); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp metadata file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace metadata file %s: %w", path, err)
	}
	return nil
}

func writeTable(f *os.File, table *entity.MetadataTable) error {
	cw := csv.NewWriter(f)

	if err := cw.Write(entity.MetadataColumns); err != nil {
		return fmt.Errorf("write metadata header: %w", err)
	}

	for _, row := range table.Rows() {
		record := []string{
			row.ImageFileName,
			row.ImagePath,
			formatFloat(row.Pose.Translation.X),
			formatFloat(row.Pose.Translation.Y),
			formatFloat(row.Pose.Translation.Z),
			formatFloat(row.Pose.Rotation.X),
			formatFloat(row.Pose.Rotation.Y),
			formatFloat(row.Pose.Rotation.Z),
			formatFloat(row.Pose.Rotation.W),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write metadata row for %s: %w", row.ImageFileName, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush metadata file: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

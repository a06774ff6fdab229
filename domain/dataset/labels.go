package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/soocke/fin-annotator-go/domain/annotation"
)

// LoadLabels reads and decodes the label file at path. A missing file is an
// image without boxes and yields an empty set.
func LoadLabels(path string, imageW, imageH int) ([]annotation.Annotation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read labels: %w", err)
	}
	items, err := annotation.Decode(string(data), imageW, imageH)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return items, nil
}

// SaveLabels writes the encoded set to path, creating the labels directory.
// An empty set produces an empty file so that the image is recorded as reviewed.
func SaveLabels(path string, items []annotation.Annotation, imageW, imageH int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create labels dir: %w", err)
	}
	text := annotation.Encode(items, imageW, imageH)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write labels: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace labels: %w", err)
	}
	return nil
}

// LoadLabels reads the label file that belongs to imagePath.
func (d *Dataset) LoadLabels(imagePath string, imageW, imageH int) ([]annotation.Annotation, error) {
	return LoadLabels(LabelPath(imagePath), imageW, imageH)
}

// SaveLabels writes the label file that belongs to imagePath.
func (d *Dataset) SaveLabels(imagePath string, items []annotation.Annotation, imageW, imageH int) error {
	return SaveLabels(LabelPath(imagePath), items, imageW, imageH)
}

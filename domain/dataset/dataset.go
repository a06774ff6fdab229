// Package dataset locates images and label files in a YOLO style dataset
// laid out as <root>/<split>/images and <root>/<split>/labels.
package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Split names one of the dataset partitions.
type Split string

const (
	Train Split = "train"
	Valid Split = "valid"
	Test  Split = "test"
)

// Splits lists the partitions in display order.
var Splits = []Split{Train, Valid, Test}

var (
	ErrUnknownSplit  = errors.New("unknown dataset split")
	ErrSplitNotFound = errors.New("split images directory not found")
	ErrNoImages      = errors.New("no images in split")
)

// ParseSplit accepts the lower-case split names.
func ParseSplit(s string) (Split, error) {
	switch Split(strings.ToLower(strings.TrimSpace(s))) {
	case Train:
		return Train, nil
	case Valid:
		return Valid, nil
	case Test:
		return Test, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSplit, s)
}

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".bmp":  true,
}

// Dataset is a root directory holding one sub-directory per split.
type Dataset struct {
	Root string
}

// New returns a Dataset rooted at root.
func New(root string) *Dataset { return &Dataset{Root: root} }

// ImagesDir returns <root>/<split>/images.
func (d *Dataset) ImagesDir(s Split) string { return filepath.Join(d.Root, string(s), "images") }

// LabelsDir returns <root>/<split>/labels.
func (d *Dataset) LabelsDir(s Split) string { return filepath.Join(d.Root, string(s), "labels") }

// ListImages returns the image paths of a split sorted by name. AppleDouble
// companions ("._name.jpg") and other dotfiles are skipped.
func (d *Dataset) ListImages(s Split) ([]string, error) {
	dir := d.ImagesDir(s)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSplitNotFound, dir)
		}
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if !imageExts[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		out = append(out, filepath.Join(dir, name))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoImages, dir)
	}
	sort.Strings(out)
	return out, nil
}

// LabelPath maps <split>/images/<stem>.<ext> to <split>/labels/<stem>.txt.
func LabelPath(imagePath string) string {
	splitDir := filepath.Dir(filepath.Dir(imagePath))
	base := filepath.Base(imagePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(splitDir, "labels", stem+".txt")
}

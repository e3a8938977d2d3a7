package source

import (
	"context"
	"fmt"
	"os"

	"github.com/JonMunkholm/productview/internal/core"
)

// File reads a JSON array document from the local filesystem.
type File struct {
	path     string
	maxBytes int64
}

// NewFile returns a source for the JSON document at path.
func NewFile(path string, maxBytes int64) *File {
	return &File{path: path, maxBytes: maxBytes}
}

func (f *File) Name() string { return "file:" + f.path }

// Fetch reads and decodes the whole document. The context is checked
// before the file is opened.
func (f *File) Fetch(ctx context.Context) ([]core.RecordInput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fh, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open source file: %w", err)
	}
	defer fh.Close()

	return DecodeRecords(fh, f.maxBytes)
}

func (f *File) Close() error { return nil }

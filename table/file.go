package table

import (
	"fmt"
	"os"
)

// FileObject is the minimal addressable-byte-image handle
// requires of the file abstraction the core depends on: synchronous,
// byte-exact reads by (offset, length), a size, and create/open. Durability
// (fsync, memory-mapping, caching) is entirely this type's business and
// invisible to SsTable/SsTableBuilder.
type FileObject struct {
	path string
	file *os.File
	size int64
}

// Create writes data to a new file at path and returns a handle to it.
func Create(path string, data []byte) (*FileObject, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("table: failed to create file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return nil, fmt.Errorf("table: failed to write file: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		return nil, fmt.Errorf("table: failed to sync file: %w", err)
	}

	return &FileObject{path: path, file: f, size: int64(len(data))}, nil
}

// OpenFile opens an existing file at path for reading.
func OpenFile(path string) (*FileObject, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("table: failed to open file: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("table: failed to stat file: %w", err)
	}

	return &FileObject{path: path, file: f, size: stat.Size()}, nil
}

// Read returns the n bytes of the file starting at offset.
func (fo *FileObject) Read(offset int64, n int64) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := fo.file.ReadAt(buf, offset); err != nil {
		return nil, fmt.Errorf("table: failed to read file: %w", err)
	}
	return buf, nil
}

// Size returns the total byte length of the file.
func (fo *FileObject) Size() int64 { return fo.size }

// Path returns the filesystem path this handle was opened or created with.
func (fo *FileObject) Path() string { return fo.path }

// Close releases the underlying OS file handle.
func (fo *FileObject) Close() error {
	return fo.file.Close()
}

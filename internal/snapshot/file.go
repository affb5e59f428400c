package snapshot

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rohankatakam/graphscope/internal/errors"
)

// Default file names inside the local data directory
const (
	DefaultGraphFile  = "input_graph.json"
	DefaultTablesFile = "ppod_table.json"
)

// FileStore keeps blobs as files in one directory
type FileStore struct {
	dir   string
	files map[string]string
}

// NewFileStore maps blob keys to file names under dir.
// Empty names fall back to the defaults.
func NewFileStore(dir, graphFile, tablesFile string) *FileStore {
	if graphFile == "" {
		graphFile = DefaultGraphFile
	}
	if tablesFile == "" {
		tablesFile = DefaultTablesFile
	}
	return &FileStore{
		dir: dir,
		files: map[string]string{
			GraphKey:  graphFile,
			TablesKey: tablesFile,
		},
	}
}

// Path returns the file backing key
func (f *FileStore) Path(key string) string {
	name, ok := f.files[key]
	if !ok {
		name = key + ".json"
	}
	return filepath.Join(f.dir, name)
}

// Read implements Source
func (f *FileStore) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := f.Path(key)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundf("snapshot %q not found at %s", key, path)
		}
		return nil, errors.FileSystemErrorf(err, "failed to read snapshot %q", key)
	}
	return data, nil
}

// Write implements Writer. The file is replaced atomically via rename.
func (f *FileStore) Write(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := f.Path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.FileSystemErrorf(err, "failed to create snapshot directory for %q", key)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return errors.FileSystemErrorf(err, "failed to write snapshot %q", key)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.FileSystemErrorf(err, "failed to write snapshot %q", key)
	}
	if err := tmp.Close(); err != nil {
		return errors.FileSystemErrorf(err, "failed to write snapshot %q", key)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return errors.FileSystemErrorf(err, "failed to write snapshot %q", key)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.FileSystemErrorf(err, "failed to replace snapshot %q", key)
	}
	return nil
}

package blobstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lectern-ai/lectern/internal/core"
)

var _ core.BlobStore = (*FileDir)(nil)

// FileDir reads documents straight from the CMS data directory, which
// buckets files by content hash: <root>/<hash[0:2]>/<hash[2:4]>/<hash>.
type FileDir struct {
	root string
}

func NewFileDir(root string) (*FileDir, error) {
	if root == "" {
		return nil, fmt.Errorf("CORPUS_DATA_PATH is empty")
	}
	return &FileDir{root: root}, nil
}

func (f *FileDir) Fetch(ctx context.Context, contentHash string) ([]byte, error) {
	key, err := BucketKey(contentHash)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(f.root, filepath.FromSlash(key)))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: %w", contentHash, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", contentHash, err)
	}
	return data, nil
}

// BucketKey maps a content hash onto the two-level hash-bucket layout
// shared by the local data directory and any mirrored object store.
func BucketKey(contentHash string) (string, error) {
	if len(contentHash) < 4 {
		return "", fmt.Errorf("content hash %q too short for bucket layout", contentHash)
	}
	return contentHash[0:2] + "/" + contentHash[2:4] + "/" + contentHash, nil
}

package source

import (
	"fmt"
	"os"

	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/blob/memblob"
)

// openLocalBucket serves files from a directory on the local filesystem.
func openLocalBucket(basePath string) (*blob.Bucket, error) {
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, fmt.Errorf("invalid local path %s: %w", basePath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("local path %s is not a directory", basePath)
	}

	bucket, err := fileblob.OpenBucket(basePath, nil)
	if err != nil {
		return nil, fmt.Errorf("open local path %s: %w", basePath, err)
	}
	return bucket, nil
}

// openMemBucket returns an empty in-memory bucket, used for dry runs.
func openMemBucket() *blob.Bucket {
	return memblob.OpenBucket(nil)
}

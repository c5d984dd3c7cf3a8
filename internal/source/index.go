package source

import (
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// FileInfo describes one oracle output file.
type FileInfo struct {
	Key       string    // full object key
	Prefix    string    // file type prefix, e.g. mobile_reward_share
	Timestamp time.Time // from the file name, millisecond precision, UTC
	Size      int64
}

// Oracle file naming pattern: {prefix}.{unix_millis}[.gz|.zst]
// Example: mobile_reward_share.1717200000000.gz
var filePattern = regexp.MustCompile(`^([a-z0-9_]+)\.(\d+)(\.gz|\.zst)?$`)

// ParseFileName extracts the prefix and timestamp from an object key.
func ParseFileName(key string) (FileInfo, bool) {
	matches := filePattern.FindStringSubmatch(path.Base(key))
	if matches == nil {
		return FileInfo{}, false
	}

	millis, err := strconv.ParseInt(matches[2], 10, 64)
	if err != nil {
		return FileInfo{}, false
	}

	return FileInfo{
		Key:       key,
		Prefix:    matches[1],
		Timestamp: time.UnixMilli(millis).UTC(),
	}, true
}

// FileIndex keeps the files of one prefix ordered by timestamp.
type FileIndex struct {
	prefix string
	files  []FileInfo
	sorted bool
}

// NewFileIndex returns an empty index accepting files of prefix.
func NewFileIndex(prefix string) *FileIndex {
	return &FileIndex{prefix: prefix, sorted: true}
}

// AddFile adds key if it is a file of the index prefix.
func (idx *FileIndex) AddFile(key string, size int64) bool {
	info, ok := ParseFileName(key)
	if !ok || info.Prefix != idx.prefix {
		return false
	}
	info.Size = size
	idx.files = append(idx.files, info)
	idx.sorted = false
	return true
}

func (idx *FileIndex) sort() {
	if idx.sorted {
		return
	}
	sort.SliceStable(idx.files, func(i, j int) bool {
		if !idx.files[i].Timestamp.Equal(idx.files[j].Timestamp) {
			return idx.files[i].Timestamp.Before(idx.files[j].Timestamp)
		}
		return idx.files[i].Key < idx.files[j].Key
	})
	idx.sorted = true
}

// Range returns files with after <= timestamp < before, oldest first. A zero
// bound is open.
func (idx *FileIndex) Range(after, before time.Time) []FileInfo {
	idx.sort()

	result := make([]FileInfo, 0, len(idx.files))
	for _, f := range idx.files {
		if !after.IsZero() && f.Timestamp.Before(after) {
			continue
		}
		if !before.IsZero() && !f.Timestamp.Before(before) {
			break
		}
		result = append(result, f)
	}
	return result
}

// Count returns the total number of indexed files.
func (idx *FileIndex) Count() int {
	return len(idx.files)
}

// Compression is the container format of a file.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZstd
)

// CompressionOf infers the compression of a file from its key.
func CompressionOf(key string) Compression {
	lower := strings.ToLower(key)
	switch {
	case strings.HasSuffix(lower, ".gz"):
		return CompressionGzip
	case strings.HasSuffix(lower, ".zst"):
		return CompressionZstd
	default:
		return CompressionNone
	}
}

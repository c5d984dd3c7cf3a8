// Package checkpoint records the last file imported per file type so a later
// run can resume after it.
package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

var (
	// ErrNoCheckpoint is returned when no checkpoint exists.
	ErrNoCheckpoint = errors.New("no checkpoint found")
)

// Checkpoint is the import progress of one file type.
type Checkpoint struct {
	FileType      string    `json:"file_type"`
	LastFileKey   string    `json:"last_file_key"`
	LastFileTime  time.Time `json:"last_file_timestamp"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ResumeAfter returns the inclusive lower bound that skips the checkpointed
// file. File names carry millisecond timestamps.
func (cp *Checkpoint) ResumeAfter() time.Time {
	return cp.LastFileTime.Add(time.Millisecond)
}

// Manager handles checkpoint persistence and retrieval.
type Manager interface {
	// Load reads the checkpoint of fileType.
	Load(ctx context.Context, fileType string) (*Checkpoint, error)

	// Save persists the checkpoint.
	Save(ctx context.Context, cp *Checkpoint) error
}

// Config configures the checkpoint manager.
type Config struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"` // Directory for checkpoint files
}

// NewManager creates a checkpoint manager based on configuration.
func NewManager(cfg Config) (Manager, error) {
	if !cfg.Enabled {
		return &noopManager{}, nil
	}

	// Ensure checkpoint directory exists
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create checkpoint directory %s: %w", cfg.Dir, err)
	}

	return &fileManager{dir: cfg.Dir}, nil
}

// fileManager persists checkpoints to local files, one per file type.
type fileManager struct {
	dir string
}

func (m *fileManager) checkpointPath(fileType string) string {
	return filepath.Join(m.dir, fmt.Sprintf("checkpoint_%s.json", fileType))
}

// Load reads the checkpoint from file.
func (m *fileManager) Load(ctx context.Context, fileType string) (*Checkpoint, error) {
	data, err := os.ReadFile(m.checkpointPath(fileType))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoCheckpoint
		}
		return nil, fmt.Errorf("read checkpoint file: %w", err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("parse checkpoint file: %w", err)
	}
	if cp.FileType != fileType {
		return nil, fmt.Errorf("checkpoint file holds %q, want %q", cp.FileType, fileType)
	}
	return &cp, nil
}

// Save persists the checkpoint to file.
func (m *fileManager) Save(ctx context.Context, cp *Checkpoint) error {
	if cp.FileType == "" {
		return errors.New("checkpoint without file type")
	}
	path := m.checkpointPath(cp.FileType)

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	// Write atomically
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("write checkpoint temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("rename checkpoint file: %w", err)
	}

	return nil
}

// noopManager is a no-op checkpoint manager for when checkpointing is disabled.
type noopManager struct{}

func (m *noopManager) Load(ctx context.Context, fileType string) (*Checkpoint, error) {
	return nil, ErrNoCheckpoint
}

func (m *noopManager) Save(ctx context.Context, cp *Checkpoint) error {
	return nil
}

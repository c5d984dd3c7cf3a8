package checkpoint

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileManagerRoundTrip(t *testing.T) {
	ctx := context.Background()
	m, err := NewManager(Config{Enabled: true, Dir: filepath.Join(t.TempDir(), "cp")})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	if _, err := m.Load(ctx, "mobile_reward_share"); !errors.Is(err, ErrNoCheckpoint) {
		t.Fatalf("Load before save: err = %v, want ErrNoCheckpoint", err)
	}

	at := time.UnixMilli(1717200000123).UTC()
	cp := &Checkpoint{
		FileType:     "mobile_reward_share",
		LastFileKey:  "mobile_reward_share.1717200000123.gz",
		LastFileTime: at,
		UpdatedAt:    time.Now().UTC(),
	}
	if err := m.Save(ctx, cp); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := m.Load(ctx, "mobile_reward_share")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.LastFileKey != cp.LastFileKey || !got.LastFileTime.Equal(at) {
		t.Errorf("Load = %+v, want %+v", got, cp)
	}
	if want := at.Add(time.Millisecond); !got.ResumeAfter().Equal(want) {
		t.Errorf("ResumeAfter = %v, want %v", got.ResumeAfter(), want)
	}

	// Other file types are independent.
	if _, err := m.Load(ctx, "iot_reward_share"); !errors.Is(err, ErrNoCheckpoint) {
		t.Errorf("Load other type: err = %v, want ErrNoCheckpoint", err)
	}
}

func TestFileManagerRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(Config{Enabled: true, Dir: dir})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "checkpoint_iot_reward_share.json"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err = m.Load(context.Background(), "iot_reward_share")
	if err == nil || errors.Is(err, ErrNoCheckpoint) {
		t.Errorf("err = %v, want parse error", err)
	}
}

func TestNoopManager(t *testing.T) {
	m, err := NewManager(Config{})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if err := m.Save(context.Background(), &Checkpoint{FileType: "x"}); err != nil {
		t.Errorf("Save: %v", err)
	}
	if _, err := m.Load(context.Background(), "x"); !errors.Is(err, ErrNoCheckpoint) {
		t.Errorf("Load: err = %v, want ErrNoCheckpoint", err)
	}
}

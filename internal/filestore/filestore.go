// Package filestore implements the repo persistence contracts on top of
// plain JSON files: one file per recipe under <data>/recipes, and a single
// <data>/tags.json holding the whole tag index. It is the default backend
// when no DATABASE_URL is configured.
//
// Durability discipline: every write goes to a temp file in the same
// directory and is then renamed over the target, so a reader (or a fresh
// process after a crash) never observes a partially written file.
package filestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// writeFileAtomic marshals v as indented JSON and atomically replaces path
// with it. The temp file carries a uuid suffix so concurrent writers in the
// same directory can never collide on the temp name.
func writeFileAtomic(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	tmp := path + ".tmp-" + uuid.NewString()
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	if _, err := f.Write(b); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write temp: %w", err)
	}
	// Flush to disk before the rename makes the new content visible, so the
	// rename never publishes a file the kernel has not persisted yet.
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// ensureDir creates dir (and parents) if it does not already exist.
func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Clean(dir), err)
	}
	return nil
}

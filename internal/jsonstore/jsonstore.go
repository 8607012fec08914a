// Package jsonstore persists named JSON documents on disk.
//
// Writes are atomic: the document is marshaled to a temp file in the target
// directory and renamed over the previous copy, so a crash mid-write can
// never truncate the live file. The previous good copy is kept alongside as
// a ".bak" file and is used as a fallback when the live file turns out to be
// unparseable.
package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

const backupSuffix = ".bak"

// ErrCorrupt marks a document that exists but cannot be recovered, from
// neither the live file nor the backup. Callers must not confuse it with a
// missing file: seeding an empty default over it would destroy data.
var ErrCorrupt = errors.New("document corrupt")

// Load reads the document at path into out.
//
// A missing file is reported as an error wrapping os.ErrNotExist so callers
// can seed a default document. A corrupt file is logged and the last good
// backup is tried before giving up; corruption is never silently replaced
// with an empty document.
func Load(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", path, err)
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := json.Unmarshal(data, out); err == nil {
		return nil
	} else {
		log.Printf("jsonstore: %s is corrupt (%v), trying backup", path, err)
	}

	backup, bakErr := os.ReadFile(path + backupSuffix)
	if bakErr != nil {
		return fmt.Errorf("load %s: file corrupt and no usable backup (%v): %w", path, bakErr, ErrCorrupt)
	}
	if err := json.Unmarshal(backup, out); err != nil {
		return fmt.Errorf("load %s: file and backup both corrupt (%v): %w", path, err, ErrCorrupt)
	}

	log.Printf("jsonstore: recovered %s from backup", path)
	return nil
}

// Save writes v to path, creating parent directories as needed. The previous
// contents, if any, are preserved as path+".bak" before the atomic rename.
func Save(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	if prev, err := os.ReadFile(path); err == nil {
		if err := os.WriteFile(path+backupSuffix, prev, 0o644); err != nil {
			return fmt.Errorf("write backup for %s: %w", path, err)
		}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

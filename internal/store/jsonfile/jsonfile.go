// Package jsonfile backs the stores with keyed JSON documents: each
// store is one file, read fully at startup and rewritten fully on every
// mutation, preserving the historical pagos.json on-disk layout.
package jsonfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// loadDoc reads path into out (a *map[string]T). A missing file is an
// empty document.
func loadDoc(path string, out any) error {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("leer %s: %w", path, err)
	}
	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("parsear %s: %w", path, err)
	}
	return nil
}

// saveDoc rewrites the whole document atomically (tmp + rename), so a
// crash mid-write never leaves a truncated file behind.
func saveDoc(path string, doc any) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("escribir %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("renombrar %s: %w", path, err)
	}
	return nil
}

// Package workingctx persists the "current working profile" across tool
// invocations. The MCP transport is stateless request/response, so this
// single-slot record is what lets a user say "my campaigns" without naming
// a profile every time.
package workingctx

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/adpilothq/adpilot-cli/internal/models"
)

const contextFileName = "context.json"

// Store is the single-slot persistence port for the working context. The
// in-memory implementation backs tests; production binds a FileStore.
type Store interface {
	// Read returns the stored context, or ok=false when unset. It never
	// fails: a missing or corrupt record degrades to unset.
	Read() (*models.WorkingContext, bool)
	// Write persists the full record, overwriting any previous value.
	Write(wc *models.WorkingContext) error
	// Clear removes the stored context. Idempotent.
	Clear() error
}

// FileStore keeps the working context as a JSON file under the per-user
// state directory. Writes are atomic (temp file + rename) so a reader never
// observes a partial record. Unknown keys in the file are tolerated for
// forward compatibility.
type FileStore struct {
	path string
}

// NewFileStore returns a store at ~/.adpilot/context.json.
func NewFileStore() (*FileStore, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to locate home directory: %w", err)
	}
	return &FileStore{path: filepath.Join(home, ".adpilot", contextFileName)}, nil
}

// NewFileStoreAt returns a store at an explicit path.
func NewFileStoreAt(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Read() (*models.WorkingContext, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("working context unreadable, treating as unset: %v", err)
		}
		return nil, false
	}

	var wc models.WorkingContext
	if err := json.Unmarshal(data, &wc); err != nil {
		log.Printf("working context corrupt, treating as unset: %v", err)
		return nil, false
	}
	if wc.ProfileID == "" {
		return nil, false
	}
	return &wc, true
}

func (s *FileStore) Write(wc *models.WorkingContext) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(wc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal working context: %w", err)
	}

	tmp, err := os.CreateTemp(dir, contextFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write working context: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace working context: %w", err)
	}

	log.Printf("working profile set to %s (#%d %s)", wc.ProfileID, wc.ProfileNumber, wc.ProfileName)
	return nil
}

func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear working context: %w", err)
	}
	return nil
}

// MemStore is an in-memory Store for tests.
type MemStore struct {
	wc *models.WorkingContext
}

func (s *MemStore) Read() (*models.WorkingContext, bool) {
	if s.wc == nil {
		return nil, false
	}
	cp := *s.wc
	return &cp, true
}

func (s *MemStore) Write(wc *models.WorkingContext) error {
	cp := *wc
	s.wc = &cp
	return nil
}

func (s *MemStore) Clear() error {
	s.wc = nil
	return nil
}

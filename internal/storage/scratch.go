package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Artifact names written during a search.
const (
	UserInputFile   = "user_input.json"
	ScrapedJobsFile = "scraped_jobs.json"
)

// Scratch hands out one workspace directory per search under Root.
type Scratch struct {
	Root string
}

func NewScratch(root string) (*Scratch, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create scratch root: %w", err)
	}
	return &Scratch{Root: root}, nil
}

// Workspace creates the directory for one search. Close removes it.
func (s *Scratch) Workspace(searchID string) (*Workspace, error) {
	if searchID == "" || filepath.Base(searchID) != searchID {
		return nil, fmt.Errorf("storage: invalid workspace name %q", searchID)
	}
	dir := filepath.Join(s.Root, searchID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create workspace: %w", err)
	}
	return &Workspace{Dir: dir}, nil
}

type Workspace struct {
	Dir string
}

// Artifact is one JSON file. Whoever writes it owns its removal.
type Artifact struct {
	Path string
}

// WriteJSON writes v as indented JSON to name inside the workspace.
func (w *Workspace) WriteJSON(name string, v any) (*Artifact, error) {
	b, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("storage: encode %s: %w", name, err)
	}
	path := filepath.Join(w.Dir, name)
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return nil, fmt.Errorf("storage: write %s: %w", name, err)
	}
	return &Artifact{Path: path}, nil
}

// ReadJSON decodes the artifact into v.
func (a *Artifact) ReadJSON(v any) error {
	b, err := os.ReadFile(a.Path)
	if err != nil {
		return fmt.Errorf("storage: read %s: %w", filepath.Base(a.Path), err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("storage: decode %s: %w", filepath.Base(a.Path), err)
	}
	return nil
}

// Remove deletes the artifact. Removing a missing artifact is not an error.
func (a *Artifact) Remove() error {
	if a == nil {
		return nil
	}
	if err := os.Remove(a.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: remove %s: %w", filepath.Base(a.Path), err)
	}
	return nil
}

// Close removes the workspace and anything left in it.
func (w *Workspace) Close() error {
	if err := os.RemoveAll(w.Dir); err != nil {
		return fmt.Errorf("storage: remove workspace: %w", err)
	}
	return nil
}

// Package checkpoint persists the result buffer of a run.
package checkpoint

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/artcrawl/internal/utils/output"
	"github.com/law-makers/artcrawl/pkg/models"
)

// Writer rewrites the whole record sequence on every Save. A reader of the
// destination sees either the previous or the new document, never a prefix.
type Writer struct {
	path string

	mu     sync.Mutex
	writes int
}

// NewWriter creates a writer for path. The directory is created on first
// save.
func NewWriter(path string) (*Writer, error) {
	if path == "" {
		return nil, errors.New("checkpoint path is empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve checkpoint path: %w", err)
	}
	return &Writer{path: abs}, nil
}

// Path returns the destination file
func (w *Writer) Path() string {
	return w.path
}

// Writes returns the number of successful saves
func (w *Writer) Writes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writes
}

// Save writes records to a temporary file next to the destination and
// renames it into place.
func (w *Writer) Save(records []models.ArtworkRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create checkpoint directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(w.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create checkpoint: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	buf := bufio.NewWriter(tmp)
	if err := output.WriteJSON(buf, records); err != nil {
		cleanup()
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	if err := buf.Flush(); err != nil {
		cleanup()
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close checkpoint: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod checkpoint: %w", err)
	}
	if err := os.Rename(tmpName, w.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace checkpoint: %w", err)
	}

	w.writes++
	log.Debug().Str("path", w.path).Int("records", len(records)).Msg("Checkpoint written")
	return nil
}

// Load reads a checkpoint file
func Load(path string) ([]models.ArtworkRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := output.ReadJSON(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return records, nil
}

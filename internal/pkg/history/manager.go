// Package history records generated commit messages and pull requests in a local JSON file.
package history

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/gait/gait/internal/pkg/errors"
)

const (
	// DefaultMaxEntries is the default maximum number of history entries.
	DefaultMaxEntries = 1000
)

// Kind says what was generated.
type Kind string

const (
	KindCommit      Kind = "commit"
	KindPullRequest Kind = "pr"
)

// Entry represents a single history entry.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Kind      Kind      `json:"kind"`
	// Generated is the text the provider returned.
	Generated string `json:"generated"`
	// Final is the text after the operator's decision; empty when rejected.
	Final     string `json:"final,omitempty"`
	Decision  string `json:"decision"`
	Model     string `json:"model"`
	Committed bool   `json:"committed"`
}

// Manager defines the interface for history management.
type Manager interface {
	Save(entry *Entry) error
	List(limit int) ([]*Entry, error)
	Clear() error
}

// FileManager implements Manager using a JSON file for storage.
type FileManager struct {
	filePath   string
	maxEntries int
	mu         sync.Mutex
}

// NewFileManager creates a new FileManager with the specified file path and max entries.
func NewFileManager(filePath string, maxEntries int) *FileManager {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &FileManager{
		filePath:   filePath,
		maxEntries: maxEntries,
	}
}

// Save appends a new entry to the history file.
// If the entry has no ID, a new UUID is generated.
// If the entry has no timestamp, the current time is used.
// The oldest entries are dropped once there are more than maxEntries.
func (m *FileManager) Save(entry *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	entries, err := m.loadEntries()
	if err != nil {
		return err
	}

	entries = append(entries, entry)
	if len(entries) > m.maxEntries {
		entries = entries[len(entries)-m.maxEntries:]
	}

	return m.saveEntries(entries)
}

// List returns the most recent entries up to the specified limit, oldest first.
// If limit is 0 or negative, returns all entries.
func (m *FileManager) List(limit int) ([]*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := m.loadEntries()
	if err != nil {
		return nil, err
	}

	if limit <= 0 || len(entries) <= limit {
		return entries, nil
	}

	return entries[len(entries)-limit:], nil
}

// Clear removes all entries from the history file.
func (m *FileManager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.saveEntries([]*Entry{})
}

// loadEntries reads all entries from the history file. A missing file is an empty history.
func (m *FileManager) loadEntries() ([]*Entry, error) {
	data, err := os.ReadFile(m.filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []*Entry{}, nil
		}
		return nil, apperrors.Wrap(err, apperrors.ErrFileSystemError, "failed to read history file").
			WithContext("path", m.filePath)
	}

	entries := []*Entry{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrFileSystemError, "failed to parse history file").
			WithContext("path", m.filePath).
			WithSuggestion("Run 'gait ai history clear' to reset the history file")
	}

	return entries, nil
}

// saveEntries replaces the history file via a temporary file in the same directory.
func (m *FileManager) saveEntries(entries []*Entry) error {
	dir := filepath.Dir(m.filePath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return apperrors.Wrap(err, apperrors.ErrFileSystemError, "failed to create history directory")
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrFileSystemError, "failed to marshal history")
	}

	tmp, err := os.CreateTemp(dir, ".history-*.json")
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrFileSystemError, "failed to create history file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	// CreateTemp already uses 0600 (user read/write only).
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return apperrors.Wrap(err, apperrors.ErrFileSystemError, "failed to write history file")
	}
	if err := tmp.Close(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrFileSystemError, "failed to write history file")
	}
	if err := os.Rename(tmpName, m.filePath); err != nil {
		return apperrors.Wrap(err, apperrors.ErrFileSystemError, "failed to replace history file")
	}

	return nil
}

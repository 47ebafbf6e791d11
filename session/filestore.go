package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var ErrNoSession = errors.New("no saved session")

// Saved is what the CLI remembers between runs.
type Saved struct {
	WalletAddress string `json:"walletAddress"`
	UserID        string `json:"userId,omitempty"`
	Token         string `json:"token"`
}

// FileStore keeps the CLI session in a JSON file.
type FileStore struct {
	path string
}

// DefaultDir is $CERTCTL_HOME, falling back to ~/.certvault.
func DefaultDir() (string, error) {
	if dir := os.Getenv("CERTCTL_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".certvault"), nil
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, "session.json")}
}

func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Load() (*Saved, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}

	var saved Saved
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, fmt.Errorf("corrupt session file %s: %w", f.path, err)
	}
	if saved.Token == "" {
		return nil, ErrNoSession
	}
	return &saved, nil
}

func (f *FileStore) Save(saved Saved) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(saved, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0600)
}

func (f *FileStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Package keystore stores API keys encrypted at rest.
package keystore

import (
	"os"
	"path/filepath"
	"runtime"
)

// Keystore is a named secret store.
type Keystore interface {
	// Set stores value under name, replacing any existing entry.
	Set(name, value string) error
	// Get returns the value stored under name, or *ErrKeyNotFound.
	Get(name string) (string, error)
	// Delete removes the entry for name.
	Delete(name string) error
	// List returns the stored entry names in sorted order.
	List() ([]string, error)
}

// ErrKeyNotFound reports a Get or Delete for a name with no entry.
type ErrKeyNotFound struct {
	Name string
}

func (e *ErrKeyNotFound) Error() string {
	return "key not found: " + e.Name
}

// DefaultKeystorePath is ~/.kafeido/keys.enc, with %USERPROFILE% taking
// the place of $HOME on Windows.
func DefaultKeystorePath() string {
	home := os.Getenv("HOME")
	if runtime.GOOS == "windows" {
		home = os.Getenv("USERPROFILE")
	}
	if home == "" {
		return "keys.enc"
	}
	return filepath.Join(home, ".kafeido", "keys.enc")
}

// NewKeystore opens the encrypted file keystore at the default path.
func NewKeystore() (Keystore, error) {
	return NewFileKeystore(DefaultKeystorePath())
}

package workdir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mmr-tortoise/matrixctl/internal/model"
)

// provisionHashFile is the marker file inside an environment directory
// recording the hash of the provisioning that produced it.
const provisionHashFile = ".provision-hash"

// Manager provides environment directory operations rooted at one work
// directory. It is stateless beyond the root path — all knowledge about
// an environment's provisioning state lives in the directory itself.
type Manager struct {
	// root is the absolute work directory (e.g. /repo/.matrix).
	root string
}

// NewManager creates a Manager rooted at the given work directory.
// The directory itself is created lazily by Prepare.
func NewManager(root string) *Manager {
	return &Manager{root: root}
}

// Root returns the work directory path.
func (m *Manager) Root() string {
	return m.root
}

// EnvDir returns the directory path for the named environment.
func (m *Manager) EnvDir(name string) string {
	return filepath.Join(m.root, name)
}

// Prepare ensures the named environment's directory exists and returns
// its path. When recreate is true any existing directory is removed
// first, which also discards the provision hash and forces provisioning
// to re-run.
func (m *Manager) Prepare(name string, recreate bool) (string, error) {
	if err := model.ValidateName(name); err != nil {
		return "", err
	}

	dir := m.EnvDir(name)
	if recreate {
		if err := os.RemoveAll(dir); err != nil {
			return "", fmt.Errorf("failed to recreate environment directory %s: %w", dir, err)
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create environment directory %s: %w", dir, err)
	}
	return dir, nil
}

// ProvisionHash computes the content hash of a provisioning command list.
// The hash covers the exact lines in order, so reordering or editing any
// provisioning command invalidates the environment.
func ProvisionHash(lines []string) string {
	sum := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(sum[:])
}

// ProvisionStale reports whether the named environment needs provisioning:
// either it has never been provisioned or its recorded hash differs from
// the hash of the given command list. Environments with no provisioning
// commands are never stale.
func (m *Manager) ProvisionStale(name string, lines []string) (bool, error) {
	if len(lines) == 0 {
		return false, nil
	}

	recorded, err := os.ReadFile(filepath.Join(m.EnvDir(name), provisionHashFile))
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("failed to read provision hash for %s: %w", name, err)
	}

	return strings.TrimSpace(string(recorded)) != ProvisionHash(lines), nil
}

// RecordProvision stores the provision hash after a successful
// provisioning run. Until this is called, ProvisionStale keeps returning
// true so a failed provisioning is retried on the next invocation.
func (m *Manager) RecordProvision(name string, lines []string) error {
	path := filepath.Join(m.EnvDir(name), provisionHashFile)
	if err := os.WriteFile(path, []byte(ProvisionHash(lines)+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to record provision hash for %s: %w", name, err)
	}
	return nil
}

// Clean removes the named environment's directory. Removing a directory
// that does not exist is not an error.
func (m *Manager) Clean(name string) error {
	if err := model.ValidateName(name); err != nil {
		return err
	}
	if err := os.RemoveAll(m.EnvDir(name)); err != nil {
		return fmt.Errorf("failed to remove environment directory for %s: %w", name, err)
	}
	return nil
}

// CleanAll removes the whole work directory, including journals.
func (m *Manager) CleanAll() error {
	if err := os.RemoveAll(m.root); err != nil {
		return fmt.Errorf("failed to remove work directory %s: %w", m.root, err)
	}
	return nil
}

// List returns the names of environments that currently have a directory,
// sorted. Journal files in the work directory root are skipped.
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read work directory %s: %w", m.root, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

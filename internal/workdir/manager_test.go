package workdir

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestManager_Prepare verifies directory creation, idempotency, and the
// recreate wipe.
func TestManager_Prepare(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), ".matrix"))

	dir, err := m.Prepare("py3", false)
	require.NoError(t, err)
	assert.DirExists(t, dir)
	assert.Equal(t, m.EnvDir("py3"), dir)

	// A marker file survives a plain Prepare...
	marker := filepath.Join(dir, "marker")
	require.NoError(t, os.WriteFile(marker, []byte("x"), 0o644))
	_, err = m.Prepare("py3", false)
	require.NoError(t, err)
	assert.FileExists(t, marker)

	// ...but not a recreate.
	_, err = m.Prepare("py3", true)
	require.NoError(t, err)
	assert.NoFileExists(t, marker)
}

// TestManager_Prepare_InvalidName rejects names that would escape the
// work directory.
func TestManager_Prepare_InvalidName(t *testing.T) {
	m := NewManager(t.TempDir())
	_, err := m.Prepare("../escape", false)
	assert.Error(t, err)
	_, err = m.Prepare("", false)
	assert.Error(t, err)
}

// TestManager_ProvisionLifecycle walks the full staleness cycle: fresh →
// recorded → unchanged → edited → recreated.
func TestManager_ProvisionLifecycle(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), ".matrix"))
	lines := []string{"./bootstrap.sh", "pip install -r requirements.txt"}

	_, err := m.Prepare("py3", false)
	require.NoError(t, err)

	// Never provisioned: stale.
	stale, err := m.ProvisionStale("py3", lines)
	require.NoError(t, err)
	assert.True(t, stale)

	require.NoError(t, m.RecordProvision("py3", lines))

	// Same lines: fresh.
	stale, err = m.ProvisionStale("py3", lines)
	require.NoError(t, err)
	assert.False(t, stale)

	// Edited provisioning: stale again.
	stale, err = m.ProvisionStale("py3", append(lines, "extra-step"))
	require.NoError(t, err)
	assert.True(t, stale)

	// Recreate discards the hash.
	_, err = m.Prepare("py3", true)
	require.NoError(t, err)
	stale, err = m.ProvisionStale("py3", lines)
	require.NoError(t, err)
	assert.True(t, stale)
}

// TestManager_ProvisionStale_NoCommands confirms environments without
// provisioning never report stale.
func TestManager_ProvisionStale_NoCommands(t *testing.T) {
	m := NewManager(t.TempDir())
	stale, err := m.ProvisionStale("py3", nil)
	require.NoError(t, err)
	assert.False(t, stale)
}

// TestProvisionHash confirms order sensitivity.
func TestProvisionHash(t *testing.T) {
	a := ProvisionHash([]string{"one", "two"})
	b := ProvisionHash([]string{"two", "one"})
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, ProvisionHash([]string{"one", "two"}))
}

// TestManager_CleanAndList covers listing and removal.
func TestManager_CleanAndList(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), ".matrix"))

	// Empty work directory lists as nothing, not an error.
	names, err := m.List()
	require.NoError(t, err)
	assert.Empty(t, names)

	_, err = m.Prepare("py3", false)
	require.NoError(t, err)
	_, err = m.Prepare("pep8", false)
	require.NoError(t, err)

	// A journal file in the root must not show up as an environment.
	require.NoError(t, os.WriteFile(filepath.Join(m.Root(), "results.json"), []byte("{}"), 0o644))

	names, err = m.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"pep8", "py3"}, names)

	require.NoError(t, m.Clean("py3"))
	names, err = m.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"pep8"}, names)

	// Cleaning a non-existent environment is a no-op.
	require.NoError(t, m.Clean("ghost"))

	require.NoError(t, m.CleanAll())
	assert.NoDirExists(t, m.Root())
}

package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/matrixctl/internal/config"
)

func testVars(root string) config.Vars {
	return config.Vars{
		EnvName: "py3",
		EnvDir:  root + "/.matrix/py3",
		RootDir: root,
		WorkDir: root + "/.matrix",
	}
}

// TestBuildEnviron_Scrubbed: host variables outside the allowlist do not
// leak through.
func TestBuildEnviron_Scrubbed(t *testing.T) {
	t.Setenv("SECRET_TOKEN", "hunter2")

	environ, err := BuildEnviron(config.Env{Name: "py3"}, testVars(t.TempDir()))
	require.NoError(t, err)

	assert.NotContains(t, environ, "SECRET_TOKEN")
	// PATH is always passed; commands cannot run without it.
	assert.Contains(t, environ, "PATH")
}

// TestBuildEnviron_PassEnv covers exact names and glob patterns.
func TestBuildEnviron_PassEnv(t *testing.T) {
	t.Setenv("BRANCH_NAME", "main")
	t.Setenv("PYTHONWARNINGS", "ignore")
	t.Setenv("PYTHONPATH", "/opt/lib")
	t.Setenv("CLIENT_NAME", "acme")

	env := config.Env{Name: "py3", PassEnv: []string{"BRANCH_NAME", "PYTHON*"}}
	environ, err := BuildEnviron(env, testVars(t.TempDir()))
	require.NoError(t, err)

	assert.Equal(t, "main", environ["BRANCH_NAME"])
	assert.Equal(t, "ignore", environ["PYTHONWARNINGS"])
	assert.Equal(t, "/opt/lib", environ["PYTHONPATH"])
	assert.NotContains(t, environ, "CLIENT_NAME")
}

// TestBuildEnviron_SetEnv expands placeholders and wins over passenv.
func TestBuildEnviron_SetEnv(t *testing.T) {
	t.Setenv("CLIENT_NAME", "from-host")

	root := t.TempDir()
	env := config.Env{
		Name:    "py3",
		PassEnv: []string{"CLIENT_NAME"},
		SetEnv: map[string]string{
			"CLIENT_NAME": "pinned",
			"CACHE_DIR":   "{envdir}/cache",
		},
	}
	environ, err := BuildEnviron(env, testVars(root))
	require.NoError(t, err)

	assert.Equal(t, "pinned", environ["CLIENT_NAME"])
	assert.Equal(t, root+"/.matrix/py3/cache", environ["CACHE_DIR"])
}

// TestBuildEnviron_SetEnvHostDefault resolves {env:VAR:default} against
// the host.
func TestBuildEnviron_SetEnvHostDefault(t *testing.T) {
	env := config.Env{
		Name:   "py3",
		SetEnv: map[string]string{"CLIENT_NAME": "{env:MATRIX_TEST_ABSENT_VAR:local}"},
	}
	environ, err := BuildEnviron(env, testVars(t.TempDir()))
	require.NoError(t, err)
	assert.Equal(t, "local", environ["CLIENT_NAME"])
}

// TestBuildEnviron_Injected pins the standard variable contract.
func TestBuildEnviron_Injected(t *testing.T) {
	root := t.TempDir()
	vars := testVars(root)

	environ, err := BuildEnviron(config.Env{Name: "py3"}, vars)
	require.NoError(t, err)

	assert.Equal(t, "py3", environ["MATRIX_ENV_NAME"])
	assert.Equal(t, vars.EnvDir, environ["MATRIX_ENV_DIR"])
	assert.Equal(t, vars.WorkDir, environ["MATRIX_WORK_DIR"])
	assert.Equal(t, vars.EnvDir, environ["VIRTUAL_ENV"])
}

// TestBuildEnviron_InjectedNotOverridable: setenv cannot shadow the
// injected variables.
func TestBuildEnviron_InjectedNotOverridable(t *testing.T) {
	env := config.Env{
		Name:   "py3",
		SetEnv: map[string]string{"MATRIX_ENV_NAME": "spoofed"},
	}
	environ, err := BuildEnviron(env, testVars(t.TempDir()))
	require.NoError(t, err)
	assert.Equal(t, "py3", environ["MATRIX_ENV_NAME"])
}

// TestFlattenEnviron is sorted KEY=VALUE form.
func TestFlattenEnviron(t *testing.T) {
	flat := flattenEnviron(map[string]string{"B": "2", "A": "1", "C": "3"})
	assert.Equal(t, []string{"A=1", "B=2", "C=3"}, flat)
}

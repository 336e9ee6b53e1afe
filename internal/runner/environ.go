package runner

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/mmr-tortoise/matrixctl/internal/config"
)

// alwaysPassed are host variables every environment receives regardless
// of its passenv allowlist. Commands cannot run meaningfully without a
// search path and most toolchains expect HOME and a temp directory.
var alwaysPassed = []string{"PATH", "HOME", "TMPDIR", "TMP", "TEMP", "LANG", "LC_ALL"}

// BuildEnviron computes the variable set for one environment run.
//
// The host environment is not inherited wholesale: only alwaysPassed
// variables, passenv matches (names or shell globs like PYTHON*), and
// expanded setenv entries are included, plus the injected standard
// variables:
//
//	MATRIX_ENV_NAME  environment name
//	MATRIX_ENV_DIR   the isolated directory
//	MATRIX_WORK_DIR  the work directory root
//	VIRTUAL_ENV      alias of MATRIX_ENV_DIR for tools that key off it
//
// setenv wins over passenv for the same name, and nothing overrides the
// injected MATRIX_* variables.
func BuildEnviron(env config.Env, vars config.Vars) (map[string]string, error) {
	environ := make(map[string]string)

	for _, name := range alwaysPassed {
		if value, ok := os.LookupEnv(name); ok {
			environ[name] = value
		}
	}

	if len(env.PassEnv) > 0 {
		for _, kv := range os.Environ() {
			name, value, ok := strings.Cut(kv, "=")
			if !ok {
				continue
			}
			if matchesAny(name, env.PassEnv) {
				environ[name] = value
			}
		}
	}

	setenv, err := vars.ExpandSetEnv(env.SetEnv)
	if err != nil {
		return nil, fmt.Errorf("environment %s: %w", env.Name, err)
	}
	for k, v := range setenv {
		environ[k] = v
	}

	environ["MATRIX_ENV_NAME"] = vars.EnvName
	environ["MATRIX_ENV_DIR"] = vars.EnvDir
	environ["MATRIX_WORK_DIR"] = vars.WorkDir
	environ["VIRTUAL_ENV"] = vars.EnvDir

	return environ, nil
}

// matchesAny reports whether the variable name matches any passenv
// pattern. Patterns without glob metacharacters compare exactly;
// path.Match covers the glob case (variable names never contain '/',
// so path semantics are safe).
func matchesAny(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if !strings.ContainsAny(pattern, "*?[") {
			if name == pattern {
				return true
			}
			continue
		}
		if ok, err := path.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

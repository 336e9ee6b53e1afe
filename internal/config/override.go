package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"

	"github.com/mmr-tortoise/matrixctl/internal/model"
)

// localOverride is the matrix.local.json overlay schema. It deliberately
// exposes only run-shape knobs — a developer can change how environments
// execute on their machine, but not what the environments do. Policy
// values (coverage threshold, lint ignore set) stay in the committed file.
//
// The file is JSONC: // and /* */ comments plus trailing commas are
// stripped before decoding, matching how editor-adjacent config files
// are usually written by hand.
type localOverride struct {
	// EnvList replaces the default environment selection.
	EnvList []string `json:"envlist,omitempty"`

	// Parallel replaces the concurrency bound.
	Parallel *int `json:"parallel,omitempty"`

	// Isolation replaces the isolation mode.
	Isolation string `json:"isolation,omitempty"`

	// WorkDir relocates the journal/environment directory.
	WorkDir string `json:"workdir,omitempty"`

	// SetEnv entries are merged into every environment's variable set,
	// overriding same-named keys.
	SetEnv map[string]string `json:"setenv,omitempty"`

	// PassEnv entries are appended to every environment's pass-through
	// allowlist.
	PassEnv []string `json:"passenv,omitempty"`
}

// applyLocalOverride loads <rootDir>/matrix.local.json if present and
// layers it over the configuration. A missing file is not an error.
func applyLocalOverride(cfg *Config, rootDir string) error {
	path := filepath.Join(rootDir, LocalOverrideName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return model.WrapCLIError(model.ExitConfigError, "failed to read local override", err)
	}

	var override localOverride
	if err := json.Unmarshal(jsonc.ToJSON(data), &override); err != nil {
		return model.WrapCLIError(model.ExitConfigError,
			"failed to parse "+LocalOverrideName, err)
	}

	if len(override.EnvList) > 0 {
		cfg.Matrix.EnvList = override.EnvList
	}
	if override.Parallel != nil {
		cfg.Matrix.Parallel = *override.Parallel
	}
	if override.Isolation != "" {
		mode, err := model.ParseIsolationMode(override.Isolation)
		if err != nil {
			return model.WrapCLIError(model.ExitConfigError,
				"invalid isolation in "+LocalOverrideName, err)
		}
		cfg.Matrix.Isolation = mode
	}
	if override.WorkDir != "" {
		cfg.Matrix.WorkDir = override.WorkDir
	}

	if len(override.SetEnv) > 0 || len(override.PassEnv) > 0 {
		for name, env := range cfg.Envs {
			if len(override.SetEnv) > 0 {
				merged := make(map[string]string, len(env.SetEnv)+len(override.SetEnv))
				for k, v := range env.SetEnv {
					merged[k] = v
				}
				for k, v := range override.SetEnv {
					merged[k] = v
				}
				env.SetEnv = merged
			}
			env.PassEnv = append(append([]string(nil), env.PassEnv...), override.PassEnv...)
			cfg.Envs[name] = env
		}
	}

	return nil
}

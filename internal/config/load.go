package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mmr-tortoise/matrixctl/internal/model"
)

// Load discovers and parses the matrix configuration.
//
// When explicitPath is non-empty it is used as-is and its extension picks
// the parser (.toml → TOML, anything else → INI). Otherwise matrix.ini
// and then matrix.toml are probed in dir. After parsing, the optional
// matrix.local.json overlay is applied and the result validated.
//
// Returns a CLIError with ExitConfigError when no file is found or the
// content is invalid.
func Load(dir, explicitPath string) (*Config, error) {
	path, err := resolvePath(dir, explicitPath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("failed to read configuration %s", path), err)
	}

	var cfg *Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		cfg, err = parseTOML(data)
	} else {
		cfg, err = parseINI(data)
	}
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError, "failed to resolve configuration path", err)
	}
	cfg.Path = abs
	cfg.RootDir = filepath.Dir(abs)

	if err := applyLocalOverride(cfg, cfg.RootDir); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WorkDirPath returns the absolute journal/environment directory.
func (c *Config) WorkDirPath() string {
	if filepath.IsAbs(c.Matrix.WorkDir) {
		return c.Matrix.WorkDir
	}
	return filepath.Join(c.RootDir, c.Matrix.WorkDir)
}

// CoverageOutputPath returns the absolute coverage report directory.
func (c *Config) CoverageOutputPath() string {
	if filepath.IsAbs(c.Coverage.Output) {
		return c.Coverage.Output
	}
	return filepath.Join(c.RootDir, c.Coverage.Output)
}

// resolvePath picks the configuration file to load.
func resolvePath(dir, explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", model.WrapCLIError(model.ExitConfigError,
				fmt.Sprintf("configuration %s not found", explicitPath), err)
		}
		return explicitPath, nil
	}

	for _, name := range []string{DefaultININame, DefaultTOMLName} {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", model.NewCLIError(model.ExitConfigError,
		fmt.Sprintf("no %s or %s found in %s", DefaultININame, DefaultTOMLName, dir))
}

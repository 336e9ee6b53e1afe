package config

import (
	"github.com/BurntSushi/toml"

	"github.com/mmr-tortoise/matrixctl/internal/model"
)

// tomlFile mirrors the INI schema in TOML syntax. Environments live under
// [envs.NAME] tables (rather than [env:NAME]) because colons are not legal
// in TOML table names.
type tomlFile struct {
	Matrix   tomlMatrix         `toml:"matrix"`
	Env      tomlEnv            `toml:"env"`
	Envs     map[string]tomlEnv `toml:"envs"`
	Coverage tomlCoverage       `toml:"coverage"`
	Lint     tomlLint           `toml:"lint"`
}

type tomlMatrix struct {
	EnvList   []string `toml:"envlist"`
	Parallel  *int     `toml:"parallel"`
	Isolation string   `toml:"isolation"`
	WorkDir   string   `toml:"workdir"`
}

type tomlEnv struct {
	Description    string            `toml:"description"`
	PassEnv        []string          `toml:"passenv"`
	SetEnv         map[string]string `toml:"setenv"`
	Provision      []string          `toml:"provision"`
	Commands       []string          `toml:"commands"`
	Image          string            `toml:"image"`
	CoverageReport string            `toml:"coverage_report"`
}

type tomlCoverage struct {
	Threshold *float64 `toml:"threshold"`
	Reports   []string `toml:"reports"`
	Output    string   `toml:"output"`
}

type tomlLint struct {
	Ignore        []string `toml:"ignore"`
	Exclude       []string `toml:"exclude"`
	MaxLineLength *int     `toml:"max_line_length"`
	Command       string   `toml:"command"`
}

// parseTOML reads a matrix.toml document into an unvalidated Config,
// applying the same defaults and base-merging rules as parseINI.
func parseTOML(data []byte) (*Config, error) {
	var raw tomlFile
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError, "failed to parse TOML configuration", err)
	}

	cfg := newDefaultConfig()

	cfg.Matrix.EnvList = raw.Matrix.EnvList
	if raw.Matrix.Parallel != nil {
		cfg.Matrix.Parallel = *raw.Matrix.Parallel
	}
	if raw.Matrix.Isolation != "" {
		mode, err := model.ParseIsolationMode(raw.Matrix.Isolation)
		if err != nil {
			return nil, model.WrapCLIError(model.ExitConfigError, "invalid [matrix] table", err)
		}
		cfg.Matrix.Isolation = mode
	}
	if raw.Matrix.WorkDir != "" {
		cfg.Matrix.WorkDir = raw.Matrix.WorkDir
	}

	cfg.Base = raw.Env.toEnv("")
	for name, t := range raw.Envs {
		env := t.toEnv(name)
		cfg.Envs[name] = mergeEnv(cfg.Base, env)
	}

	if raw.Coverage.Threshold != nil {
		cfg.Coverage.Threshold = *raw.Coverage.Threshold
	}
	if len(raw.Coverage.Reports) > 0 {
		cfg.Coverage.Reports = raw.Coverage.Reports
	}
	if raw.Coverage.Output != "" {
		cfg.Coverage.Output = raw.Coverage.Output
	}

	if len(raw.Lint.Ignore) > 0 {
		cfg.Lint.Ignore = raw.Lint.Ignore
	}
	if len(raw.Lint.Exclude) > 0 {
		cfg.Lint.Exclude = raw.Lint.Exclude
	}
	if raw.Lint.MaxLineLength != nil {
		cfg.Lint.MaxLineLength = *raw.Lint.MaxLineLength
	}
	if raw.Lint.Command != "" {
		cfg.Lint.Command = raw.Lint.Command
	}

	return cfg, nil
}

// toEnv converts the TOML representation to the domain Env.
func (t tomlEnv) toEnv(name string) Env {
	return Env{
		Name:           name,
		Description:    t.Description,
		PassEnv:        t.PassEnv,
		SetEnv:         t.SetEnv,
		Provision:      t.Provision,
		Commands:       t.Commands,
		Image:          t.Image,
		CoverageReport: t.CoverageReport,
	}
}

package config

import (
	"fmt"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/mmr-tortoise/matrixctl/internal/model"
)

// envSectionPrefix marks per-environment sections: [env:py3], [env:pep8].
const envSectionPrefix = "env:"

// parseINI reads a matrix.ini document into an unvalidated Config.
// The caller (Load) fills in Path/RootDir, applies the local overlay,
// and validates.
//
// ini.v1 is loaded in python-multiline mode: a value continues across
// lines as long as continuation lines are indented deeper than the key.
// That is what makes tox-style blocks work:
//
//	commands =
//	    go vet ./...
//	    go test ./...
func parseINI(data []byte) (*Config, error) {
	file, err := ini.LoadSources(ini.LoadOptions{
		AllowPythonMultilineValues: true,
		SpaceBeforeInlineComment:   true,
	}, data)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError, "failed to parse INI configuration", err)
	}

	cfg := newDefaultConfig()

	if sec, err := file.GetSection("matrix"); err == nil {
		if err := applyMatrixSection(&cfg.Matrix, sec); err != nil {
			return nil, err
		}
	}

	if sec, err := file.GetSection("env"); err == nil {
		cfg.Base = parseEnvSection(sec)
	}

	for _, sec := range file.Sections() {
		name, ok := strings.CutPrefix(sec.Name(), envSectionPrefix)
		if !ok {
			continue
		}
		env := parseEnvSection(sec)
		env.Name = name
		cfg.Envs[name] = mergeEnv(cfg.Base, env)
	}

	if sec, err := file.GetSection("coverage"); err == nil {
		if err := applyCoverageSection(&cfg.Coverage, sec); err != nil {
			return nil, err
		}
	}

	if sec, err := file.GetSection("lint"); err == nil {
		applyLintSection(&cfg.Lint, sec)
	}

	return cfg, nil
}

// newDefaultConfig returns a Config carrying every policy default.
// Parsing only overrides what the file actually sets.
func newDefaultConfig() *Config {
	return &Config{
		Matrix: MatrixSettings{
			Isolation: model.IsolationProcess,
			WorkDir:   DefaultWorkDir,
		},
		Envs: make(map[string]Env),
		Coverage: CoveragePolicy{
			Threshold: DefaultCoverageThreshold,
			Reports:   append([]string(nil), DefaultCoverageReports...),
			Output:    DefaultCoverageOutput,
		},
		Lint: LintPolicy{
			Ignore:        append([]string(nil), DefaultLintIgnore...),
			MaxLineLength: DefaultMaxLineLength,
		},
	}
}

// applyMatrixSection decodes the [matrix] section.
func applyMatrixSection(m *MatrixSettings, sec *ini.Section) error {
	if key := sec.Key("envlist"); key.String() != "" {
		m.EnvList = splitList(key.String())
	}
	if key := sec.Key("parallel"); key.String() != "" {
		n, err := key.Int()
		if err != nil {
			return model.WrapCLIError(model.ExitConfigError,
				fmt.Sprintf("invalid parallel value %q", key.String()), err)
		}
		m.Parallel = n
	}
	if key := sec.Key("isolation"); key.String() != "" {
		mode, err := model.ParseIsolationMode(key.String())
		if err != nil {
			return model.WrapCLIError(model.ExitConfigError, "invalid [matrix] section", err)
		}
		m.Isolation = mode
	}
	if key := sec.Key("workdir"); key.String() != "" {
		m.WorkDir = key.String()
	}
	return nil
}

// parseEnvSection decodes an [env] or [env:NAME] section.
func parseEnvSection(sec *ini.Section) Env {
	env := Env{
		Description:    sec.Key("description").String(),
		Image:          sec.Key("image").String(),
		CoverageReport: sec.Key("coverage_report").String(),
	}

	if v := sec.Key("passenv").String(); v != "" {
		env.PassEnv = splitList(v)
	}
	if v := sec.Key("setenv").String(); v != "" {
		env.SetEnv = parseSetEnv(v)
	}
	if v := sec.Key("provision").String(); v != "" {
		env.Provision = splitLines(v)
	}
	if v := sec.Key("commands").String(); v != "" {
		env.Commands = splitLines(v)
	}

	return env
}

// applyCoverageSection decodes the [coverage] section.
func applyCoverageSection(p *CoveragePolicy, sec *ini.Section) error {
	if key := sec.Key("threshold"); key.String() != "" {
		v, err := key.Float64()
		if err != nil {
			return model.WrapCLIError(model.ExitConfigError,
				fmt.Sprintf("invalid coverage threshold %q", key.String()), err)
		}
		p.Threshold = v
	}
	if key := sec.Key("reports"); key.String() != "" {
		p.Reports = splitList(key.String())
	}
	if key := sec.Key("output"); key.String() != "" {
		p.Output = key.String()
	}
	return nil
}

// applyLintSection decodes the [lint] section.
func applyLintSection(p *LintPolicy, sec *ini.Section) {
	if key := sec.Key("ignore"); key.String() != "" {
		p.Ignore = splitList(key.String())
	}
	if key := sec.Key("exclude"); key.String() != "" {
		p.Exclude = splitList(key.String())
	}
	if key := sec.Key("max_line_length"); key.String() != "" {
		if n, err := key.Int(); err == nil {
			p.MaxLineLength = n
		}
	}
	if key := sec.Key("command"); key.String() != "" {
		p.Command = key.String()
	}
}

// splitList splits a comma- or newline-separated value into trimmed,
// non-empty entries. Both separators occur in the wild:
//
//	envlist = py3,pep8,cover
//	exclude =
//	    .matrix/*
//	    build/*
func splitList(value string) []string {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// splitLines splits a multiline value into trimmed, non-empty lines.
// Unlike splitList it keeps commas, since command lines may contain them.
func splitLines(value string) []string {
	var out []string
	for _, line := range strings.Split(value, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// parseSetEnv decodes a multiline KEY = VALUE block into a map.
// Lines without '=' are silently dropped; an empty value is legal and
// results in the variable being set to the empty string.
func parseSetEnv(value string) map[string]string {
	setenv := make(map[string]string)
	for _, line := range splitLines(value) {
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		setenv[k] = strings.TrimSpace(v)
	}
	return setenv
}

package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/google/shlex"

	"github.com/mmr-tortoise/matrixctl/internal/model"
)

// Vars carries the substitution context for one environment invocation.
// Command lines and setenv values stay raw in the Config; the runner
// builds a Vars and expands at execution time because {posargs} and
// {envdir} are only known then.
type Vars struct {
	// EnvName replaces {envname}.
	EnvName string

	// EnvDir replaces {envdir} — the environment's isolated directory.
	EnvDir string

	// RootDir replaces {rootdir} — the directory of the configuration file.
	RootDir string

	// WorkDir replaces {workdir}.
	WorkDir string

	// PosArgs replaces {posargs} — the CLI pass-through arguments given
	// after "--". Expands to nothing when empty.
	PosArgs []string

	// LookupEnv resolves {env:VAR} references. Defaults to os.LookupEnv;
	// tests inject a map-backed lookup.
	LookupEnv func(string) (string, bool)
}

// placeholderRe matches a single {token} occurrence. Nested braces are
// not part of the grammar.
var placeholderRe = regexp.MustCompile(`\{([^{}]*)\}`)

// Expand substitutes every {placeholder} in s. Inside a plain string,
// {posargs} joins the arguments with spaces; use ExpandCommand for
// argument-preserving expansion in command lines.
//
// Unknown placeholders are an error rather than being passed through:
// a typo in a command line should fail loudly, not reach the shell.
func (v Vars) Expand(s string) (string, error) {
	var expandErr error
	out := placeholderRe.ReplaceAllStringFunc(s, func(match string) string {
		token := match[1 : len(match)-1]
		value, err := v.resolve(token)
		if err != nil && expandErr == nil {
			expandErr = err
		}
		return value
	})
	if expandErr != nil {
		return "", expandErr
	}
	return out, nil
}

// ExpandCommand splits a raw command line into words (POSIX quoting rules
// via shlex) and expands placeholders per word. A word that is exactly
// {posargs} splices the pass-through arguments as individual words, so
//
//	stestr run {posargs}
//
// with posargs ["-t", "./unit"] becomes ["stestr", "run", "-t", "./unit"]
// and with no posargs becomes ["stestr", "run"].
func (v Vars) ExpandCommand(line string) ([]string, error) {
	words, err := shlex.Split(line)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("failed to tokenize command %q", line), err)
	}
	if len(words) == 0 {
		return nil, model.NewCLIError(model.ExitConfigError, "empty command line")
	}

	argv := make([]string, 0, len(words)+len(v.PosArgs))
	for _, word := range words {
		if word == "{posargs}" {
			argv = append(argv, v.PosArgs...)
			continue
		}
		expanded, err := v.Expand(word)
		if err != nil {
			return nil, err
		}
		argv = append(argv, expanded)
	}

	if len(argv) == 0 {
		return nil, model.NewCLIError(model.ExitConfigError,
			fmt.Sprintf("command %q expanded to nothing", line))
	}
	return argv, nil
}

// ExpandSetEnv expands every value of a setenv map.
func (v Vars) ExpandSetEnv(setenv map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(setenv))
	for key, raw := range setenv {
		value, err := v.Expand(raw)
		if err != nil {
			return nil, fmt.Errorf("setenv %s: %w", key, err)
		}
		out[key] = value
	}
	return out, nil
}

// resolve maps a placeholder token to its value.
func (v Vars) resolve(token string) (string, error) {
	switch token {
	case "envname":
		return v.EnvName, nil
	case "envdir":
		return v.EnvDir, nil
	case "rootdir":
		return v.RootDir, nil
	case "workdir":
		return v.WorkDir, nil
	case "posargs":
		return strings.Join(v.PosArgs, " "), nil
	}

	if name, ok := strings.CutPrefix(token, "env:"); ok {
		name, fallback, hasFallback := strings.Cut(name, ":")
		if name == "" {
			return "", model.NewCLIError(model.ExitConfigError, "empty variable name in {env:} placeholder")
		}
		lookup := v.LookupEnv
		if lookup == nil {
			lookup = os.LookupEnv
		}
		if value, ok := lookup(name); ok {
			return value, nil
		}
		if hasFallback {
			return fallback, nil
		}
		return "", model.NewCLIError(model.ExitConfigError,
			fmt.Sprintf("environment variable %q referenced by {env:%s} is not set and has no default", name, name))
	}

	return "", model.NewCLIError(model.ExitConfigError,
		fmt.Sprintf("unknown placeholder {%s}", token))
}

package lint

import (
	"bufio"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/mmr-tortoise/matrixctl/internal/config"
	"github.com/mmr-tortoise/matrixctl/internal/model"
)

// Violation is one style finding from a checker report.
type Violation struct {
	// Path is the file path as reported by the checker.
	Path string `json:"path"`

	// Line is the 1-based line number.
	Line int `json:"line"`

	// Col is the 1-based column number; 0 when the checker omits it.
	Col int `json:"col,omitempty"`

	// Code is the rule code (e.g. "E125", "W503").
	Code string `json:"code"`

	// Message is the human-readable description.
	Message string `json:"message"`
}

// String renders the violation back in report form.
func (v Violation) String() string {
	if v.Col > 0 {
		return fmt.Sprintf("%s:%d:%d: %s %s", v.Path, v.Line, v.Col, v.Code, v.Message)
	}
	return fmt.Sprintf("%s:%d: %s %s", v.Path, v.Line, v.Code, v.Message)
}

// reportLineRe matches "path:line:col: CODE message" with an optional
// column. The code is one or more letters followed by digits, which
// covers pycodestyle (E/W), pyflakes (F) and checker-plugin style codes.
var reportLineRe = regexp.MustCompile(`^(.+?):(\d+)(?::(\d+))?:\s*([A-Z]+\d+)\s*(.*)$`)

// longLineRe extracts the measured length from long-line messages of the
// form "line too long (105 > 79 characters)".
var longLineRe = regexp.MustCompile(`\((\d+)\s*>\s*\d+`)

// longLineCode is the rule code whose violations are re-evaluated
// against the configured max line length instead of the checker's own.
const longLineCode = "E501"

// ParseReport reads checker output line by line. Lines that do not match
// the report form (headers, summaries, blank lines) are skipped silently.
func ParseReport(r io.Reader) ([]Violation, error) {
	var violations []Violation

	scanner := bufio.NewScanner(r)
	// Checker lines can exceed the default token size when the offending
	// source line is echoed in the message.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		m := reportLineRe.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}

		line, _ := strconv.Atoi(m[2])
		col := 0
		if m[3] != "" {
			col, _ = strconv.Atoi(m[3])
		}

		violations = append(violations, Violation{
			Path:    m[1],
			Line:    line,
			Col:     col,
			Code:    m[4],
			Message: strings.TrimSpace(m[5]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lint report: %w", err)
	}
	return violations, nil
}

// Filter applies the policy: ignored codes, excluded paths, and the
// line-length allowance. The returned slice holds only violations that
// count against the gate.
func Filter(violations []Violation, policy config.LintPolicy) []Violation {
	ignored := make(map[string]bool, len(policy.Ignore))
	for _, code := range policy.Ignore {
		ignored[strings.ToUpper(code)] = true
	}

	var kept []Violation
	for _, v := range violations {
		if ignored[strings.ToUpper(v.Code)] {
			continue
		}
		if pathExcluded(v.Path, policy.Exclude) {
			continue
		}
		if v.Code == longLineCode && withinLineLength(v.Message, policy.MaxLineLength) {
			continue
		}
		kept = append(kept, v)
	}
	return kept
}

// Gate turns remaining violations into the gate error. Returns nil when
// the slice is empty.
func Gate(violations []Violation) error {
	if len(violations) == 0 {
		return nil
	}
	return model.NewCLIError(model.ExitLintViolations,
		fmt.Sprintf("%d style violation(s) remain after filtering", len(violations)))
}

// pathExcluded reports whether the path matches any exclusion glob.
// A pattern ending in "/*" also excludes everything below the prefix,
// matching how exclusion globs are written in practice (".matrix/*"
// means the whole tree, not just the first level).
func pathExcluded(p string, patterns []string) bool {
	normalized := filepath.ToSlash(p)
	// Checker paths are frequently "./relative"; strip the prefix so
	// globs match either spelling.
	normalized = strings.TrimPrefix(normalized, "./")

	for _, pattern := range patterns {
		if ok, err := path.Match(pattern, normalized); err == nil && ok {
			return true
		}
		if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
			if normalized == prefix || strings.HasPrefix(normalized, prefix+"/") {
				return true
			}
		}
	}
	return false
}

// withinLineLength reports whether a long-line violation's measured
// length is within the configured allowance. Unparseable messages are
// kept (counted), since dropping them would hide real findings.
func withinLineLength(message string, maxLen int) bool {
	m := longLineRe.FindStringSubmatch(message)
	if m == nil {
		return false
	}
	measured, err := strconv.Atoi(m[1])
	if err != nil {
		return false
	}
	return measured <= maxLen
}

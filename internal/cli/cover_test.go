package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mmr-tortoise/matrixctl/internal/config"
)

// TestReportFiles maps the coverage policy's enabled formats to the
// files WriteReports produces, case-insensitively.
func TestReportFiles(t *testing.T) {
	outDir := filepath.Join("repo", "cover")

	tests := []struct {
		name    string
		reports []string
		want    []string
	}{
		{
			"both formats",
			[]string{"html", "xml"},
			[]string{filepath.Join(outDir, "index.html"), filepath.Join(outDir, "summary.xml")},
		},
		{
			"xml only",
			[]string{"xml"},
			[]string{filepath.Join(outDir, "summary.xml")},
		},
		{
			"case-insensitive",
			[]string{"HTML"},
			[]string{filepath.Join(outDir, "index.html")},
		},
		{"none", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := config.CoveragePolicy{Reports: tt.reports}
			assert.Equal(t, tt.want, reportFiles(policy, outDir))
		})
	}
}

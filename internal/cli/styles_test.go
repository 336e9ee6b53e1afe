package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mmr-tortoise/matrixctl/internal/ci"
	"github.com/mmr-tortoise/matrixctl/internal/model"
)

// TestFormatDuration covers the sub-minute and minute forms.
func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"sub-second", 400 * time.Millisecond, "0.4s"},
		{"seconds", 42100 * time.Millisecond, "42.1s"},
		{"exactly a minute", time.Minute, "1m00.0s"},
		{"minutes and seconds", 3*time.Minute + 12*time.Second, "3m12.0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDuration(tt.d))
		})
	}
}

// TestRenderSummaryTable spot-checks the visible content; styling
// escape sequences may or may not be present depending on the terminal
// profile, so only plain substrings are asserted.
func TestRenderSummaryTable(t *testing.T) {
	summary := &model.RunSummary{
		Results: []model.EnvResult{
			{Name: "py3", Status: model.StatusPassed, Duration: 42100 * time.Millisecond},
			{
				Name:     "cover",
				Status:   model.StatusFailed,
				Duration: 51 * time.Second,
				Reason:   "coverage 79.10% below threshold 82.00%",
			},
		},
	}

	out := renderSummaryTable(summary)

	assert.Contains(t, out, "py3")
	assert.Contains(t, out, "passed")
	assert.Contains(t, out, "42.1s")
	assert.Contains(t, out, "cover")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "below threshold 82.00%")
}

// TestCellNames renders the executed matrix points.
func TestCellNames(t *testing.T) {
	cells := []ci.CellResult{
		{Cell: ci.Cell{Interpreter: "3.8", Arch: "x64"}},
		{Cell: ci.Cell{Interpreter: "3.9", Arch: "arm64"}},
	}
	assert.Equal(t, []string{"3.8/x64", "3.9/arm64"}, cellNames(cells))
}

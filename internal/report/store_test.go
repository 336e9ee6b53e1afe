package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/matrixctl/internal/model"
)

// TestStore_FreshCheckout verifies that missing journals read as empty
// history rather than errors.
func TestStore_FreshCheckout(t *testing.T) {
	s := NewStore(t.TempDir())

	results, err := s.LastResults()
	require.NoError(t, err)
	assert.Nil(t, results)

	timings, err := s.Timings()
	require.NoError(t, err)
	assert.Nil(t, timings)
}

// TestStore_RecordSummary_RoundTrip writes a summary and reads both
// journals back.
func TestStore_RecordSummary_RoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())

	summary := &model.RunSummary{
		Results: []model.EnvResult{
			{Name: "py3", Status: model.StatusPassed, Duration: 90 * time.Second},
			{Name: "pep8", Status: model.StatusFailed, Duration: 5 * time.Second, Reason: "command exited with code 1"},
		},
	}
	require.NoError(t, s.RecordSummary(summary))

	results, err := s.LastResults()
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, model.StatusPassed, results["py3"].Status)
	assert.Equal(t, "command exited with code 1", results["pep8"].Reason)

	timings, err := s.Timings()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, timings["py3"])
	assert.Equal(t, 5*time.Second, timings["pep8"])
}

// TestStore_RecordSummary_MergesHistory confirms a later run only
// replaces the environments it actually ran.
func TestStore_RecordSummary_MergesHistory(t *testing.T) {
	s := NewStore(t.TempDir())

	require.NoError(t, s.RecordSummary(&model.RunSummary{
		Results: []model.EnvResult{
			{Name: "py3", Status: model.StatusPassed, Duration: time.Minute},
			{Name: "pep8", Status: model.StatusPassed, Duration: time.Second},
		},
	}))
	require.NoError(t, s.RecordSummary(&model.RunSummary{
		Results: []model.EnvResult{
			{Name: "pep8", Status: model.StatusFailed, Duration: 2 * time.Second},
		},
	}))

	results, err := s.LastResults()
	require.NoError(t, err)
	assert.Equal(t, model.StatusPassed, results["py3"].Status)
	assert.Equal(t, model.StatusFailed, results["pep8"].Status)

	timings, err := s.Timings()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, timings["py3"])
	assert.Equal(t, 2*time.Second, timings["pep8"])
}

// TestStore_RecordSummary_SkippedNotJournaled confirms skipped
// environments neither overwrite outcomes nor pollute timings.
func TestStore_RecordSummary_SkippedNotJournaled(t *testing.T) {
	s := NewStore(t.TempDir())

	require.NoError(t, s.RecordSummary(&model.RunSummary{
		Results: []model.EnvResult{
			{Name: "py3", Status: model.StatusPassed, Duration: time.Minute},
		},
	}))
	require.NoError(t, s.RecordSummary(&model.RunSummary{
		Results: []model.EnvResult{
			{Name: "py3", Status: model.StatusSkipped},
		},
	}))

	results, err := s.LastResults()
	require.NoError(t, err)
	assert.Equal(t, model.StatusPassed, results["py3"].Status)
}

// TestStore_RecordSummary_NonTerminalNotJournaled confirms pending and
// running entries never reach the journal — they would be stale the
// moment they were written.
func TestStore_RecordSummary_NonTerminalNotJournaled(t *testing.T) {
	s := NewStore(t.TempDir())

	require.NoError(t, s.RecordSummary(&model.RunSummary{
		Results: []model.EnvResult{
			{Name: "py3", Status: model.StatusRunning, Duration: time.Minute},
			{Name: "pep8", Status: model.StatusPending},
			{Name: "cover", Status: model.StatusPassed, Duration: time.Second},
		},
	}))

	results, err := s.LastResults()
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results, "cover")

	timings, err := s.Timings()
	require.NoError(t, err)
	assert.NotContains(t, timings, "py3")
	assert.Equal(t, time.Second, timings["cover"])
}

// TestOrderSlowestFirst verifies the scheduling order: slow history
// first, unknown environments after, stable otherwise.
func TestOrderSlowestFirst(t *testing.T) {
	timings := map[string]time.Duration{
		"py3":   90 * time.Second,
		"cover": 120 * time.Second,
		"pep8":  5 * time.Second,
	}

	ordered := OrderSlowestFirst([]string{"py3", "pep8", "cover", "newenv"}, timings)
	assert.Equal(t, []string{"cover", "py3", "pep8", "newenv"}, ordered)

	// No history at all keeps configuration order.
	ordered = OrderSlowestFirst([]string{"a", "b"}, nil)
	assert.Equal(t, []string{"a", "b"}, ordered)
}

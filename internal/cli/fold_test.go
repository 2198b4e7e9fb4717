package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoldText(t *testing.T) {
	out, err := execute(t, "fold", unformattedModule)
	require.NoError(t, err)
	assert.Equal(t, "%0 = complex.create %a, %b : complex<f32>\n", out)
}

func TestFoldConstantsJSON(t *testing.T) {
	out, err := execute(t, "fold", "--format", "json", constantsModule)
	require.NoError(t, err)

	data := dataMap(t, decode(t, out))
	assert.Equal(t, `%c = complex.constant [1.0, 2.0] : complex<f64>
%d = complex.constant [3.0, 4.0] : complex<f64>
%m = complex.constant [-5.0, 10.0] : complex<f64>
`, data["output"])
	assert.Equal(t, []any{"%m -> %m (constant)"}, data["rewrites"])
	assert.NotContains(t, data, "run_id")
}

func TestFoldNothingToDo(t *testing.T) {
	out, err := execute(t, "fold", "--format", "json", negModule)
	require.NoError(t, err)

	data := dataMap(t, decode(t, out))
	assert.Equal(t, []any{}, data["rewrites"])
	assert.Equal(t, readFile(t, negModule), data["output"])
}

func TestFoldJournal(t *testing.T) {
	journal := filepath.Join(t.TempDir(), "fold.db")

	out, err := execute(t, "fold", "--format", "json", "--journal", journal, constantsModule)
	require.NoError(t, err)
	runID, ok := dataMap(t, decode(t, out))["run_id"].(string)
	require.True(t, ok)
	assert.NotEmpty(t, runID)

	out, err = execute(t, "history", "--journal", journal)
	require.NoError(t, err)
	assert.Contains(t, out, "#1 "+runID+" "+constantsModule+" (1 rewrite(s))")
	assert.Contains(t, out, "%m -> %m (constant)")
}

func TestFoldJournalFromConfig(t *testing.T) {
	journal := filepath.Join(t.TempDir(), "fold.db")
	cfg := writeConfig(t, "fold:\n  journal: "+journal+"\n")

	_, err := execute(t, "--config", cfg, "fold", unformattedModule)
	require.NoError(t, err)

	out, err := execute(t, "--config", cfg, "history", "--format", "json")
	require.NoError(t, err)
	runs := decode(t, out).Data.([]any)
	require.Len(t, runs, 1)
}

func TestFoldRejected(t *testing.T) {
	out, err := execute(t, "fold", mismatchModule)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "TYPE_MISMATCH")
}

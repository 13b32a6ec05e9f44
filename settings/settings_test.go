package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mstgnz/pspp/format"
)

func TestDefault(t *testing.T) {
	s := Default()
	assert.Equal(t, byte('.'), s.DecimalChar)
	assert.Equal(t, byte(','), s.GroupingChar)
	assert.Equal(t, int64(4*1024*1024), s.WorkspaceBudget)
}

func TestLoadOverridesOnlyMentionedFields(t *testing.T) {
	s, err := Load([]byte("decimal_char: 44\ngrouping_char: 46\n"))
	require.NoError(t, err)
	assert.Equal(t, byte(','), s.DecimalChar)
	assert.Equal(t, byte('.'), s.GroupingChar)
}

func TestLoadRejectsSameDecimalAndGroupingChar(t *testing.T) {
	_, err := Load([]byte("decimal_char: 46\ngrouping_char: 46\n"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workspace_budget: 0\n"), 0o644))

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(0), s.WorkspaceBudget)
}

func TestFormatValueUsesConfiguredChars(t *testing.T) {
	s := Default()
	s.DecimalChar = ','
	spec := format.Spec{Type: format.F, Width: 6, Decimals: 2}
	out := s.FormatValue(format.Result{Num: 3.5}, spec)
	assert.Contains(t, string(out), ",")
}

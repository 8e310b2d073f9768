package munin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustFilter(t *testing.T, include, exclude []string, pattern string) *AttrFilter {
	t.Helper()

	f, err := NewAttrFilter(include, exclude, pattern)
	require.NoError(t, err)

	return f
}

func TestAttrFilter_EmptyListsEnableEverything(t *testing.T) {
	f := mustFilter(t, nil, nil, "")

	assert.True(t, f.Enabled("cpu"))
	assert.True(t, f.Enabled("anything-at-all"))
}

func TestAttrFilter_IncludeListDisablesDefault(t *testing.T) {
	f := mustFilter(t, []string{"eth0"}, nil, "")

	assert.True(t, f.Enabled("eth0"))
	assert.False(t, f.Enabled("eth1"))
	assert.False(t, f.Enabled("lo"))
}

func TestAttrFilter_ExcludeWins(t *testing.T) {
	f := mustFilter(t, []string{"eth0", "eth1"}, []string{"eth0"}, "")

	assert.False(t, f.Enabled("eth0"), "name on both lists must resolve to excluded")
	assert.True(t, f.Enabled("eth1"))
}

func TestAttrFilter_ExcludeOnly(t *testing.T) {
	f := mustFilter(t, nil, []string{"lo"}, "")

	assert.False(t, f.Enabled("lo"))
	assert.True(t, f.Enabled("eth0"))
}

func TestAttrFilter_PatternDropsInvalidEntries(t *testing.T) {
	f := mustFilter(t, nil, []string{"not valid!", "lo"}, `[\w\-]+$`)

	// The invalid exclude entry has no effect, the valid one does.
	assert.True(t, f.Enabled("not valid!"))
	assert.False(t, f.Enabled("lo"))
}

func TestAttrFilter_PatternMatchesFromStart(t *testing.T) {
	// re-style match: the pattern must match at the start of the name.
	f := mustFilter(t, nil, []string{"0bad", "good0"}, `[a-z]\w*$`)

	assert.False(t, f.Enabled("good0"))
	assert.True(t, f.Enabled("0bad"), "entry failing the anchored pattern is ignored")
}

func TestAttrFilter_AllIncludesInvalidStillFlipsDefault(t *testing.T) {
	f := mustFilter(t, []string{"###"}, nil, `\w+$`)

	// The include list was non-empty, so nothing is enabled by default,
	// and the invalid entry never made it into the overrides.
	assert.False(t, f.Enabled("###"))
	assert.False(t, f.Enabled("cpu"))
}

func TestAttrFilter_BadPattern(t *testing.T) {
	_, err := NewAttrFilter(nil, nil, `(`)
	require.Error(t, err)
}

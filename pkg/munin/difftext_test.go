package munin

import (
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/require"
)

// requireText compares multi-line protocol output and fails with a unified
// diff instead of two unreadable blobs.
func requireText(t *testing.T, want, got string) {
	t.Helper()

	if want == got {
		return
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	}

	unified, err := difflib.GetUnifiedDiffString(diff)
	require.NoError(t, err)

	t.Fatalf("rendered output mismatch:\n%s", unified)
}

package net

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/gomunin/pkg/munin"
)

var testIfaces = []IfaceIO{
	{Name: "eth0", BytesRecv: 5000, BytesSent: 1500},
	{Name: "lo", BytesRecv: 100, BytesSent: 100},
}

func newTestPlugin(t *testing.T, env map[string]string) (*munin.Plugin, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer

	p, err := NewWithSampler(func() ([]IfaceIO, error) { return testIfaces, nil },
		munin.WithEnv(env),
		munin.WithOutput(&buf),
		munin.WithArgv([]string{"netstats"}),
	)
	require.NoError(t, err)

	return p, &buf
}

func TestConfig(t *testing.T) {
	p, buf := newTestPlugin(t, nil)

	require.NoError(t, p.Config())

	out := buf.String()
	assert.Contains(t, out, "multigraph net_eth0\n")
	assert.Contains(t, out, "multigraph net_lo\n")
	assert.Contains(t, out, "graph_title Network Traffic - eth0 (bytes/sec)\n")
	assert.Contains(t, out, "rx.graph no\n")
	assert.Contains(t, out, "tx.negative rx\n")
}

func TestConfig_IfaceFilter(t *testing.T) {
	p, buf := newTestPlugin(t, map[string]string{"exclude_ifaces": "lo"})

	require.NoError(t, p.Config())

	out := buf.String()
	assert.Contains(t, out, "multigraph net_eth0\n")
	assert.NotContains(t, out, "multigraph net_lo\n")
}

func TestFetch(t *testing.T) {
	p, buf := newTestPlugin(t, nil)

	require.NoError(t, p.Fetch())

	assert.Contains(t, buf.String(), "multigraph net_eth0\nrx.value 5000\ntx.value 1500\n")
	assert.Contains(t, buf.String(), "multigraph net_lo\nrx.value 100\ntx.value 100\n")
}

func TestSuggest(t *testing.T) {
	p, _ := newTestPlugin(t, nil)

	names, err := p.Suggest()
	require.NoError(t, err)
	assert.Equal(t, []string{"eth0", "lo"}, names)
}

func TestAutoconf(t *testing.T) {
	p, _ := newTestPlugin(t, nil)

	ok, err := p.Autoconf()
	require.NoError(t, err)
	assert.True(t, ok)
}

package mem

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/gomunin/pkg/munin"
)

func newTestPlugin(t *testing.T, u Usage) (*munin.Plugin, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer

	p, err := NewWithSampler(func() (Usage, error) { return u, nil },
		munin.WithEnv(nil),
		munin.WithOutput(&buf),
		munin.WithArgv([]string{"memstats"}),
	)
	require.NoError(t, err)

	return p, &buf
}

func TestConfig(t *testing.T) {
	p, buf := newTestPlugin(t, Usage{})

	require.NoError(t, p.Config())

	assert.Equal(t, `graph_title Memory Usage (bytes)
graph_category system
graph_vlabel bytes
graph_info Usage of physical memory.
graph_args --base 1024 -r --lower-limit 0
used.label used
used.type GAUGE
used.draw AREASTACK
used.min 0
buffers.label buffers
buffers.type GAUGE
buffers.draw AREASTACK
buffers.min 0
cached.label cached
cached.type GAUGE
cached.draw AREASTACK
cached.min 0
free.label free
free.type GAUGE
free.draw AREASTACK
free.min 0

`, buf.String())
}

func TestFetch(t *testing.T) {
	p, buf := newTestPlugin(t, Usage{
		Total:   16e9,
		Used:    4_000_000_000,
		Buffers: 250_000_000,
		Cached:  1_500_000_000,
		Free:    10_250_000_000,
	})

	require.NoError(t, p.Fetch())

	assert.Equal(t, `used.value 4000000000
buffers.value 250000000
cached.value 1500000000
free.value 10250000000

`, buf.String())
}

func TestAutoconf(t *testing.T) {
	p, _ := newTestPlugin(t, Usage{})

	ok, err := p.Autoconf()
	require.NoError(t, err)
	assert.True(t, ok)
}

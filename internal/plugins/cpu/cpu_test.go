package cpu

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/gomunin/pkg/munin"
)

func fakeSampler(samples ...Times) Sampler {
	i := 0

	return func() (Times, error) {
		s := samples[i]
		if i < len(samples)-1 {
			i++
		}

		return s, nil
	}
}

func newTestPlugin(t *testing.T, sample Sampler) (*munin.Plugin, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer

	p, err := NewWithSampler(sample,
		munin.WithEnv(map[string]string{
			"MUNIN_STATEFILE": filepath.Join(t.TempDir(), "state"),
		}),
		munin.WithOutput(&buf),
		munin.WithArgv([]string{"cpustats"}),
	)
	require.NoError(t, err)

	return p, &buf
}

func TestUtilization(t *testing.T) {
	prev := Times{User: 100, System: 40, IOWait: 10, Idle: 850}
	cur := Times{User: 125, System: 50, IOWait: 15, Idle: 910}

	pct := Utilization(prev, cur)

	require.NotNil(t, pct)
	assert.InDelta(t, 25.0, pct["user"], 1e-9)
	assert.InDelta(t, 10.0, pct["system"], 1e-9)
	assert.InDelta(t, 5.0, pct["iowait"], 1e-9)
	assert.InDelta(t, 60.0, pct["idle"], 1e-9)
}

func TestUtilization_NoDelta(t *testing.T) {
	s := Times{User: 100, System: 40, IOWait: 10, Idle: 850}

	assert.Nil(t, Utilization(s, s))
	assert.Nil(t, Utilization(s, Times{}), "counter reset yields no values")
}

func TestConfig(t *testing.T) {
	p, buf := newTestPlugin(t, fakeSampler(Times{}))

	require.NoError(t, p.Config())

	out := buf.String()
	assert.Contains(t, out, "graph_title CPU Utilization (%)\n")
	assert.Contains(t, out, "graph_category system\n")
	assert.Contains(t, out, "graph_scale no\n")
	assert.Contains(t, out, "system.draw AREASTACK\n")
	assert.Contains(t, out, "idle.type GAUGE\n")
}

func TestFetch_FirstRunHasNoValues(t *testing.T) {
	p, buf := newTestPlugin(t, fakeSampler(Times{User: 1, Idle: 9}))

	require.NoError(t, p.Fetch())

	assert.Equal(t, "\n", buf.String())
}

func TestFetch_SecondRunReportsPercentages(t *testing.T) {
	sample := fakeSampler(
		Times{},
		Times{User: 25, System: 10, IOWait: 5, Idle: 60},
	)

	p, buf := newTestPlugin(t, sample)
	require.NoError(t, p.Fetch())

	buf.Reset()
	require.NoError(t, p.Fetch())

	assert.Equal(t, `system.value 10.000000
user.value 25.000000
iowait.value 5.000000
idle.value 60.000000

`, buf.String())
}

func TestAutoconf(t *testing.T) {
	p, _ := newTestPlugin(t, fakeSampler(Times{}))

	ok, err := p.Autoconf()
	require.NoError(t, err)
	assert.True(t, ok)
}

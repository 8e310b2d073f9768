// Package cpu implements the cpustats munin plugin: CPU utilization
// percentages derived from successive cumulative CPU time samples. The
// previous sample is persisted through the plugin state file so that each
// invocation can compute the delta since the last poll.
package cpu

import (
	"errors"

	gcpu "github.com/shirou/gopsutil/v3/cpu"

	"github.com/hupe1980/gomunin/pkg/munin"
)

// GraphName is the root graph registered by the plugin.
const GraphName = "cpu_util"

// Times is one cumulative CPU time reading in seconds since boot.
type Times struct {
	User   float64 `yaml:"user"`
	System float64 `yaml:"system"`
	IOWait float64 `yaml:"iowait"`
	Idle   float64 `yaml:"idle"`
}

// Sampler reads the current cumulative CPU times.
type Sampler func() (Times, error)

// SystemSampler reads CPU times from the host.
func SystemSampler() (Times, error) {
	ts, err := gcpu.Times(false)
	if err != nil {
		return Times{}, err
	}

	if len(ts) == 0 {
		return Times{}, errors.New("no cpu times reported")
	}

	t := ts[0]

	return Times{User: t.User, System: t.System, IOWait: t.Iowait, Idle: t.Idle}, nil
}

// New builds the cpustats plugin against the host CPU counters.
func New(opts ...munin.Option) (*munin.Plugin, error) {
	return NewWithSampler(SystemSampler, opts...)
}

// NewWithSampler builds the cpustats plugin with a custom sampler.
func NewWithSampler(sample Sampler, opts ...munin.Option) (*munin.Plugin, error) {
	p := munin.New("cpustats", opts...)

	g := munin.NewGraph("CPU Utilization (%)",
		munin.WithCategory("system"),
		munin.WithVLabel("%"),
		munin.WithArgs("--base 1000 -r --lower-limit 0 --upper-limit 100"),
		munin.WithScale(false),
	)

	fields := []struct {
		name  string
		label string
	}{
		{"system", "system"},
		{"user", "user"},
		{"iowait", "iowait"},
		{"idle", "idle"},
	}

	for _, f := range fields {
		err := g.AddField(f.name, f.label,
			munin.FieldType(munin.Gauge),
			munin.FieldDraw(munin.AreaStack),
			munin.FieldMin(0),
		)
		if err != nil {
			return nil, err
		}
	}

	if err := p.AddGraph(GraphName, g); err != nil {
		return nil, err
	}

	p.RetrieveVals = func() error {
		cur, err := sample()
		if err != nil {
			return err
		}

		var prev Times

		havePrev, err := p.RestoreState(&prev)
		if err != nil {
			return err
		}

		if err := p.SaveState(cur); err != nil {
			return err
		}

		// No delta on the first run; munin tolerates missing values.
		if !havePrev {
			return nil
		}

		for name, pct := range Utilization(prev, cur) {
			if err := p.SetGraphValue(GraphName, name, pct); err != nil {
				return err
			}
		}

		return nil
	}

	p.Autoconf = func() (bool, error) {
		_, err := sample()

		return err == nil, nil
	}

	return p, nil
}

// Utilization converts two cumulative samples into percentages per mode.
// Returns nil when the total delta is not positive (counter reset or
// duplicate sample).
func Utilization(prev, cur Times) map[string]float64 {
	dUser := cur.User - prev.User
	dSystem := cur.System - prev.System
	dIOWait := cur.IOWait - prev.IOWait
	dIdle := cur.Idle - prev.Idle

	total := dUser + dSystem + dIOWait + dIdle
	if total <= 0 {
		return nil
	}

	return map[string]float64{
		"user":   100 * dUser / total,
		"system": 100 * dSystem / total,
		"iowait": 100 * dIOWait / total,
		"idle":   100 * dIdle / total,
	}
}

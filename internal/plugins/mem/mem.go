// Package mem implements the memstats munin plugin: virtual memory usage
// gauges in bytes.
package mem

import (
	gmem "github.com/shirou/gopsutil/v3/mem"

	"github.com/hupe1980/gomunin/pkg/munin"
)

// GraphName is the root graph registered by the plugin.
const GraphName = "memory_usage"

// Usage is one virtual memory reading in bytes.
type Usage struct {
	Total   uint64
	Used    uint64
	Buffers uint64
	Cached  uint64
	Free    uint64
}

// Sampler reads the current memory usage.
type Sampler func() (Usage, error)

// SystemSampler reads memory usage from the host.
func SystemSampler() (Usage, error) {
	vm, err := gmem.VirtualMemory()
	if err != nil {
		return Usage{}, err
	}

	return Usage{
		Total:   vm.Total,
		Used:    vm.Used,
		Buffers: vm.Buffers,
		Cached:  vm.Cached,
		Free:    vm.Free,
	}, nil
}

// New builds the memstats plugin against the host memory counters.
func New(opts ...munin.Option) (*munin.Plugin, error) {
	return NewWithSampler(SystemSampler, opts...)
}

// NewWithSampler builds the memstats plugin with a custom sampler.
func NewWithSampler(sample Sampler, opts ...munin.Option) (*munin.Plugin, error) {
	p := munin.New("memstats", opts...)

	g := munin.NewGraph("Memory Usage (bytes)",
		munin.WithCategory("system"),
		munin.WithVLabel("bytes"),
		munin.WithArgs("--base 1024 -r --lower-limit 0"),
		munin.WithInfo("Usage of physical memory."),
	)

	fields := []struct {
		name  string
		label string
	}{
		{"used", "used"},
		{"buffers", "buffers"},
		{"cached", "cached"},
		{"free", "free"},
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
		u, err := sample()
		if err != nil {
			return err
		}

		vals := map[string]uint64{
			"used":    u.Used,
			"buffers": u.Buffers,
			"cached":  u.Cached,
			"free":    u.Free,
		}

		for name, v := range vals {
			if err := p.SetGraphValue(GraphName, name, v); err != nil {
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

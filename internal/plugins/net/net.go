// Package net implements the netstats munin plugin: a multigraph plugin
// with one root traffic graph per network interface, gated by the "ifaces"
// filter.
package net

import (
	"sort"

	gnet "github.com/shirou/gopsutil/v3/net"

	"github.com/hupe1980/gomunin/pkg/munin"
)

// FilterIfaces gates which interfaces get a graph.
const FilterIfaces = "ifaces"

// IfaceIO is the cumulative traffic of one network interface in bytes.
type IfaceIO struct {
	Name      string
	BytesRecv uint64
	BytesSent uint64
}

// Sampler reads cumulative traffic counters for all interfaces.
type Sampler func() ([]IfaceIO, error)

// SystemSampler reads interface counters from the host.
func SystemSampler() ([]IfaceIO, error) {
	counters, err := gnet.IOCounters(true)
	if err != nil {
		return nil, err
	}

	ios := make([]IfaceIO, 0, len(counters))
	for _, c := range counters {
		ios = append(ios, IfaceIO{Name: c.Name, BytesRecv: c.BytesRecv, BytesSent: c.BytesSent})
	}

	sort.Slice(ios, func(i, j int) bool { return ios[i].Name < ios[j].Name })

	return ios, nil
}

// GraphName returns the root graph name for an interface.
func GraphName(iface string) string {
	return "net_" + iface
}

// New builds the netstats plugin against the host interface counters.
func New(opts ...munin.Option) (*munin.Plugin, error) {
	return NewWithSampler(SystemSampler, opts...)
}

// NewWithSampler builds the netstats plugin with a custom sampler. The
// sampler is consulted once at construction time to discover interfaces.
func NewWithSampler(sample Sampler, opts ...munin.Option) (*munin.Plugin, error) {
	p := munin.New("netstats", append([]munin.Option{munin.Multigraph()}, opts...)...)

	if err := p.RegisterFilter(FilterIfaces, `[\w\-\.]+$`); err != nil {
		return nil, err
	}

	ios, err := sample()
	if err != nil {
		return nil, err
	}

	registered := make(map[string]bool)

	for _, io := range ios {
		if ok, _ := p.CheckFilter(FilterIfaces, io.Name); !ok {
			continue
		}

		g := munin.NewGraph("Network Traffic - "+io.Name+" (bytes/sec)",
			munin.WithCategory("network"),
			munin.WithVLabel("bytes/sec in (-) / out (+)"),
		)

		err = g.AddField("rx", "rx",
			munin.FieldType(munin.Derive),
			munin.FieldMin(0),
			munin.FieldGraphed(false),
		)
		if err != nil {
			return nil, err
		}

		err = g.AddField("tx", "tx",
			munin.FieldType(munin.Derive),
			munin.FieldDraw(munin.Line2),
			munin.FieldMin(0),
			munin.FieldNegative("rx"),
			munin.FieldInfo("Outbound traffic, with inbound traffic mirrored below the axis."),
		)
		if err != nil {
			return nil, err
		}

		if err := p.AddGraph(GraphName(io.Name), g); err != nil {
			return nil, err
		}

		registered[io.Name] = true
	}

	p.RetrieveVals = func() error {
		ios, err := sample()
		if err != nil {
			return err
		}

		for _, io := range ios {
			if !registered[io.Name] {
				continue
			}

			if err := p.SetGraphValue(GraphName(io.Name), "rx", io.BytesRecv); err != nil {
				return err
			}

			if err := p.SetGraphValue(GraphName(io.Name), "tx", io.BytesSent); err != nil {
				return err
			}
		}

		return nil
	}

	p.Autoconf = func() (bool, error) {
		_, err := sample()

		return err == nil, nil
	}

	p.Suggest = func() ([]string, error) {
		ios, err := sample()
		if err != nil {
			return nil, err
		}

		names := make([]string, 0, len(ios))
		for _, io := range ios {
			names = append(names, io.Name)
		}

		return names, nil
	}

	return p, nil
}

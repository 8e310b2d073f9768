// Package disk implements the diskstats munin plugin: a multigraph plugin
// with one root graph of filesystem usage and a disk I/O root graph with
// one subgraph per block device. Filesystems are gated by the "fspaths"
// filter and devices by the "disks" filter.
package disk

import (
	"regexp"
	"sort"
	"strings"

	gdisk "github.com/shirou/gopsutil/v3/disk"

	"github.com/hupe1980/gomunin/pkg/munin"
)

// Root graphs registered by the plugin.
const (
	GraphUsage = "disk_usage"
	GraphIO    = "disk_io"
)

// Filters registered by the plugin.
const (
	FilterFSPaths = "fspaths"
	FilterDisks   = "disks"
)

// FSUsage is the usage of one mounted filesystem.
type FSUsage struct {
	Path        string
	UsedPercent float64
}

// DevIO is the cumulative I/O of one block device in bytes.
type DevIO struct {
	Device     string
	ReadBytes  uint64
	WriteBytes uint64
}

// UsageSampler reads filesystem usage for all mounted filesystems.
type UsageSampler func() ([]FSUsage, error)

// IOSampler reads cumulative I/O counters for all block devices.
type IOSampler func() ([]DevIO, error)

// SystemUsageSampler reads filesystem usage from the host.
func SystemUsageSampler() ([]FSUsage, error) {
	parts, err := gdisk.Partitions(false)
	if err != nil {
		return nil, err
	}

	var usages []FSUsage

	for _, part := range parts {
		u, err := gdisk.Usage(part.Mountpoint)
		if err != nil {
			// Unreadable mounts (e.g. access denied) are skipped,
			// not fatal.
			continue
		}

		usages = append(usages, FSUsage{Path: part.Mountpoint, UsedPercent: u.UsedPercent})
	}

	return usages, nil
}

// SystemIOSampler reads I/O counters from the host.
func SystemIOSampler() ([]DevIO, error) {
	counters, err := gdisk.IOCounters()
	if err != nil {
		return nil, err
	}

	ios := make([]DevIO, 0, len(counters))
	for dev, c := range counters {
		ios = append(ios, DevIO{Device: dev, ReadBytes: c.ReadBytes, WriteBytes: c.WriteBytes})
	}

	sort.Slice(ios, func(i, j int) bool { return ios[i].Device < ios[j].Device })

	return ios, nil
}

// New builds the diskstats plugin against the host disk counters.
func New(opts ...munin.Option) (*munin.Plugin, error) {
	return NewWithSamplers(SystemUsageSampler, SystemIOSampler, opts...)
}

// NewWithSamplers builds the diskstats plugin with custom samplers. Both
// config and fetch need the mount and device inventory, so the samplers are
// consulted once at construction time to register fields and subgraphs.
func NewWithSamplers(usageSample UsageSampler, ioSample IOSampler, opts ...munin.Option) (*munin.Plugin, error) {
	p := munin.New("diskstats", append([]munin.Option{munin.Multigraph()}, opts...)...)

	if err := p.RegisterFilter(FilterFSPaths, `[\w\-/]+$`); err != nil {
		return nil, err
	}

	if err := p.RegisterFilter(FilterDisks, `[\w\-]+$`); err != nil {
		return nil, err
	}

	usages, err := usageSample()
	if err != nil {
		return nil, err
	}

	sort.Slice(usages, func(i, j int) bool { return usages[i].Path < usages[j].Path })

	usageGraph := munin.NewGraph("Filesystem Usage (%)",
		munin.WithCategory("disk"),
		munin.WithVLabel("%"),
		munin.WithArgs("--base 1000 -r --lower-limit 0 --upper-limit 100"),
		munin.WithScale(false),
	)

	// field name -> mount path, for value lookup during fetch
	fsFields := make(map[string]string)

	for _, u := range usages {
		if ok, _ := p.CheckFilter(FilterFSPaths, u.Path); !ok {
			continue
		}

		name := SafeName(u.Path)
		if err := usageGraph.AddField(name, u.Path,
			munin.FieldType(munin.Gauge),
			munin.FieldDraw(munin.Line2),
			munin.FieldMin(0),
			munin.FieldWarning("85"),
			munin.FieldCritical("95"),
		); err != nil {
			return nil, err
		}

		fsFields[name] = u.Path
	}

	if err := p.AddGraph(GraphUsage, usageGraph); err != nil {
		return nil, err
	}

	ioGraph := munin.NewGraph("Disk I/O (bytes/sec)",
		munin.WithCategory("disk"),
		munin.WithVLabel("bytes/sec read (-) / write (+)"),
	)

	err = ioGraph.AddField("read", "read",
		munin.FieldType(munin.Derive),
		munin.FieldMin(0),
		munin.FieldGraphed(false),
	)
	if err != nil {
		return nil, err
	}

	err = ioGraph.AddField("write", "write",
		munin.FieldType(munin.Derive),
		munin.FieldDraw(munin.Line2),
		munin.FieldMin(0),
		munin.FieldNegative("read"),
	)
	if err != nil {
		return nil, err
	}

	if err := p.AddGraph(GraphIO, ioGraph); err != nil {
		return nil, err
	}

	ios, err := ioSample()
	if err != nil {
		return nil, err
	}

	// subgraph name -> device, for value lookup during fetch
	devSubgraphs := make(map[string]string)

	for _, io := range ios {
		if ok, _ := p.CheckFilter(FilterDisks, io.Device); !ok {
			continue
		}

		sub := munin.NewGraph("Disk I/O - "+io.Device+" (bytes/sec)",
			munin.WithCategory("disk"),
			munin.WithVLabel("bytes/sec read (-) / write (+)"),
		)

		err = sub.AddField("read", "read",
			munin.FieldType(munin.Derive),
			munin.FieldMin(0),
			munin.FieldGraphed(false),
		)
		if err != nil {
			return nil, err
		}

		err = sub.AddField("write", "write",
			munin.FieldType(munin.Derive),
			munin.FieldDraw(munin.Line2),
			munin.FieldMin(0),
			munin.FieldNegative("read"),
		)
		if err != nil {
			return nil, err
		}

		name := SafeName(io.Device)
		if err := p.AddSubgraph(GraphIO, name, sub); err != nil {
			return nil, err
		}

		devSubgraphs[name] = io.Device
	}

	p.RetrieveVals = func() error {
		usages, err := usageSample()
		if err != nil {
			return err
		}

		for _, u := range usages {
			name := SafeName(u.Path)
			if _, ok := fsFields[name]; !ok {
				continue
			}

			if err := p.SetGraphValue(GraphUsage, name, u.UsedPercent); err != nil {
				return err
			}
		}

		ios, err := ioSample()
		if err != nil {
			return err
		}

		var totalRead, totalWrite uint64

		for _, io := range ios {
			name := SafeName(io.Device)
			if _, ok := devSubgraphs[name]; !ok {
				continue
			}

			totalRead += io.ReadBytes
			totalWrite += io.WriteBytes

			if err := p.SetSubgraphValue(GraphIO, name, "read", io.ReadBytes); err != nil {
				return err
			}

			if err := p.SetSubgraphValue(GraphIO, name, "write", io.WriteBytes); err != nil {
				return err
			}
		}

		if err := p.SetGraphValue(GraphIO, "read", totalRead); err != nil {
			return err
		}

		return p.SetGraphValue(GraphIO, "write", totalWrite)
	}

	p.Autoconf = func() (bool, error) {
		_, err := usageSample()

		return err == nil, nil
	}

	return p, nil
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9_]`)

// SafeName converts a mount path or device name into a valid munin field
// or graph name. The root filesystem maps to "rootfs".
func SafeName(s string) string {
	if s == "/" {
		return "rootfs"
	}

	s = strings.Trim(s, "/")
	s = unsafeNameChars.ReplaceAllString(s, "_")

	if s != "" && s[0] >= '0' && s[0] <= '9' {
		s = "_" + s
	}

	return s
}

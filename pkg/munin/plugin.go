package munin

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hupe1980/gomunin/internal/config"
)

// Subcommand names accepted by Run.
const (
	CmdFetch    = "fetch"
	CmdConfig   = "config"
	CmdAutoconf = "autoconf"
	CmdSuggest  = "suggest"
)

// FilterGraphs is the name of the built-in filter gating root graphs via
// the include_graphs and exclude_graphs environment variables.
const FilterGraphs = "graphs"

// graphNamePattern validates root graph names: word characters and hyphens.
const graphNamePattern = `[\w\-]+$`

var nestedGraphsOff = regexp.MustCompile(`(?i)^\s*(no|off)\s*$`)

// Plugin is the base for a munin plugin: a named collection of graphs,
// optionally nested as root/subgraph pairs, plus the attribute filters
// gating their output. Exactly one subcommand runs per process invocation.
//
// Concrete plugins populate the hook fields to supply behavior:
//
//	p := munin.New("cpustats")
//	p.RetrieveVals = func() error { ... }
type Plugin struct {
	name         string
	multigraph   bool
	nestedGraphs bool
	env          *config.Env
	args         []string
	out          io.Writer
	stateFile    string
	instanceArg  string

	graphOrder    []string
	graphs        map[string]*Graph
	subgraphOrder map[string][]string
	subgraphs     map[string]map[string]*Graph
	filters       map[string]*AttrFilter

	// RetrieveVals populates field values for the current invocation.
	// Called exactly once by Fetch. nil means no values are collected.
	RetrieveVals func() error

	// Autoconf reports whether the plugin can monitor this host. nil
	// means auto-configuration is unsupported.
	Autoconf func() (bool, error)

	// Suggest returns instance name suggestions for wildcard plugins.
	// nil means no suggestions.
	Suggest func() ([]string, error)
}

// Option configures a Plugin at construction time.
type Option func(*Plugin)

// Multigraph marks the plugin as capable of emitting multiple graphs and
// subgraphs, each preceded by a multigraph marker.
func Multigraph() Option {
	return func(p *Plugin) { p.multigraph = true }
}

// WithEnv overrides the process environment with an explicit variable map.
func WithEnv(env map[string]string) Option {
	return func(p *Plugin) { p.env = config.FromMap(env) }
}

// WithArgv overrides os.Args.
func WithArgv(argv []string) Option {
	return func(p *Plugin) { p.args = argv }
}

// WithOutput overrides the protocol output destination (default os.Stdout).
func WithOutput(w io.Writer) Option {
	return func(p *Plugin) { p.out = w }
}

// New constructs a plugin with the given fixed name. The environment is
// parsed for MUNIN_STATEFILE and nested_graphs, and the built-in "graphs"
// filter is registered from include_graphs / exclude_graphs.
func New(name string, opts ...Option) *Plugin {
	p := &Plugin{
		name:          name,
		nestedGraphs:  true,
		env:           config.System(),
		args:          os.Args,
		out:           os.Stdout,
		graphs:        make(map[string]*Graph),
		subgraphOrder: make(map[string][]string),
		subgraphs:     make(map[string]map[string]*Graph),
		filters:       make(map[string]*AttrFilter),
	}

	for _, opt := range opts {
		opt(p)
	}

	p.stateFile = p.env.Get(config.EnvStateFile)
	if p.stateFile == "" {
		p.stateFile = filepath.Join(os.TempDir(), "munin-state-"+name)
	}

	if nestedGraphsOff.MatchString(p.env.Get(config.EnvNestedGraphs)) {
		p.nestedGraphs = false
	}

	p.parseInstanceArg()

	// The pattern is a compile-checked constant.
	_ = p.RegisterFilter(FilterGraphs, graphNamePattern)

	return p
}

// parseInstanceArg extracts the instance argument of a wildcard plugin from
// the executable name. A plugin named "diskstats_" invoked as
// "diskstats_sda" has instance argument "sda".
func (p *Plugin) parseInstanceArg() {
	if !strings.HasSuffix(p.name, "_") || len(p.args) == 0 {
		return
	}

	base := filepath.Base(p.args[0])
	if strings.HasPrefix(base, p.name) && len(base) > len(p.name) {
		p.instanceArg = base[len(p.name):]
	}
}

// Name returns the fixed plugin name.
func (p *Plugin) Name() string { return p.name }

// IsMultigraph reports whether the plugin is multigraph-typed.
func (p *Plugin) IsMultigraph() bool { return p.multigraph }

// NestedGraphs reports whether nested-graph rendering is enabled.
func (p *Plugin) NestedGraphs() bool { return p.nestedGraphs }

// InstanceArg returns the instance argument of a wildcard plugin, or ""
// for plugins with a fixed name.
func (p *Plugin) InstanceArg() string { return p.instanceArg }

// RegisterFilter builds an attribute filter from the include_<name> and
// exclude_<name> environment variables (comma-separated lists) and stores
// it under the given name. pattern validates list entries; entries that do
// not match are ignored.
func (p *Plugin) RegisterFilter(name, pattern string) error {
	include := p.env.List("include_" + name)
	exclude := p.env.List("exclude_" + name)

	f, err := NewAttrFilter(include, exclude, pattern)
	if err != nil {
		return fmt.Errorf("registering filter %q: %w", name, err)
	}

	p.filters[name] = f

	return nil
}

// CheckFilter reports whether the named attribute passes the named filter.
// Returns an *UnknownFilterError when the filter was never registered.
func (p *Plugin) CheckFilter(filterName, attr string) (bool, error) {
	f, ok := p.filters[filterName]
	if !ok {
		return false, &UnknownFilterError{Name: filterName}
	}

	return f.Enabled(attr), nil
}

// GraphEnabled reports whether the named root graph passes the built-in
// graphs filter.
func (p *Plugin) GraphEnabled(name string) bool {
	enabled, err := p.CheckFilter(FilterGraphs, name)
	if err != nil {
		return false
	}

	return enabled
}

// AddGraph registers a root graph. Simple (non-multigraph) plugins own at
// most one graph; a second registration returns a
// *MultipleGraphsNotAllowedError.
func (p *Plugin) AddGraph(name string, g *Graph) error {
	if !p.multigraph && len(p.graphOrder) > 0 {
		return &MultipleGraphsNotAllowedError{Plugin: p.name}
	}

	g.name = name
	p.graphOrder = append(p.graphOrder, name)
	p.graphs[name] = g

	return nil
}

// AddSubgraph registers a graph nested under a previously registered root
// graph. Only multigraph plugins may own subgraphs. The plugin state is not
// mutated when registration fails.
func (p *Plugin) AddSubgraph(parent, name string, g *Graph) error {
	if !p.multigraph {
		return &MultipleGraphsNotAllowedError{Plugin: p.name}
	}

	if _, ok := p.graphs[parent]; !ok {
		return &UnknownParentGraphError{Parent: parent, Subgraph: name}
	}

	if p.subgraphs[parent] == nil {
		p.subgraphs[parent] = make(map[string]*Graph)
	}

	g.name = parent + "." + name
	p.subgraphOrder[parent] = append(p.subgraphOrder[parent], name)
	p.subgraphs[parent][name] = g

	return nil
}

// HasGraph reports whether a root graph with the given name is registered.
func (p *Plugin) HasGraph(name string) bool {
	_, ok := p.graphs[name]

	return ok
}

// GraphNames returns the root graph names in registration order.
func (p *Plugin) GraphNames() []string {
	names := make([]string, len(p.graphOrder))
	copy(names, p.graphOrder)

	return names
}

// GraphHasField reports whether the named root graph has the named field.
func (p *Plugin) GraphHasField(graphName, fieldName string) (bool, error) {
	g, ok := p.graphs[graphName]
	if !ok {
		return false, &UnknownGraphError{Name: graphName}
	}

	return g.HasField(fieldName), nil
}

// GraphFieldNames returns the field names of the named root graph in
// registration order.
func (p *Plugin) GraphFieldNames(graphName string) ([]string, error) {
	g, ok := p.graphs[graphName]
	if !ok {
		return nil, &UnknownGraphError{Name: graphName}
	}

	return g.FieldNames(), nil
}

// SetGraphValue sets the current value of a field on a root graph. For use
// inside RetrieveVals.
func (p *Plugin) SetGraphValue(graphName, fieldName string, value any) error {
	g, ok := p.graphs[graphName]
	if !ok {
		return &UnknownGraphError{Name: graphName}
	}

	return g.SetValue(fieldName, value)
}

// SetSubgraphValue sets the current value of a field on a subgraph. For use
// inside RetrieveVals.
func (p *Plugin) SetSubgraphValue(parent, name, fieldName string, value any) error {
	if _, ok := p.graphs[parent]; !ok {
		return &UnknownParentGraphError{Parent: parent, Subgraph: name}
	}

	g, ok := p.subgraphs[parent][name]
	if !ok {
		return &UnknownGraphError{Name: parent + "." + name}
	}

	return g.SetValue(fieldName, value)
}

// render walks enabled root graphs in registration order, then subgraphs in
// registration order per root when nesting is enabled, writing one block
// per graph separated by blank lines. The whole output is buffered so that
// a rendering error never leaves partial output behind.
func (p *Plugin) render(w io.Writer, writeGraph func(*Graph, io.Writer) error) error {
	var buf bytes.Buffer

	for _, name := range p.graphOrder {
		if !p.GraphEnabled(name) {
			continue
		}

		if p.multigraph {
			fmt.Fprintf(&buf, "multigraph %s\n", name)
		}

		if err := writeGraph(p.graphs[name], &buf); err != nil {
			return err
		}

		buf.WriteByte('\n')
	}

	if p.nestedGraphs {
		for _, parent := range p.graphOrder {
			for _, sub := range p.subgraphOrder[parent] {
				fmt.Fprintf(&buf, "multigraph %s.%s\n", parent, sub)

				if err := writeGraph(p.subgraphs[parent][sub], &buf); err != nil {
					return err
				}

				buf.WriteByte('\n')
			}
		}
	}

	_, err := w.Write(buf.Bytes())

	return err
}

// WriteConfig renders the config subcommand output to w.
func (p *Plugin) WriteConfig(w io.Writer) error {
	return p.render(w, (*Graph).WriteConfig)
}

// WriteValues renders the fetch subcommand output to w, calling the
// RetrieveVals hook first.
func (p *Plugin) WriteValues(w io.Writer) error {
	if p.RetrieveVals != nil {
		if err := p.RetrieveVals(); err != nil {
			return err
		}
	}

	return p.render(w, (*Graph).WriteValues)
}

// Config renders the config subcommand output to the plugin output.
func (p *Plugin) Config() error {
	return p.WriteConfig(p.out)
}

// Fetch renders the fetch subcommand output to the plugin output.
func (p *Plugin) Fetch() error {
	return p.WriteValues(p.out)
}

// Run dispatches one subcommand. The empty string defaults to fetch; any
// unrecognized literal returns an *UnknownCommandError. The bool result is
// the plugin's answer (false only for an unsupported autoconf) and maps to
// the process exit code at the entry point.
func (p *Plugin) Run(subcommand string) (bool, error) {
	switch subcommand {
	case "", CmdFetch:
		return true, p.Fetch()

	case CmdConfig:
		return true, p.Config()

	case CmdAutoconf:
		ok := false

		if p.Autoconf != nil {
			var err error

			ok, err = p.Autoconf()
			if err != nil {
				return false, err
			}
		}

		answer := "no"
		if ok {
			answer = "yes"
		}

		_, err := fmt.Fprintln(p.out, answer)

		return true, err

	case CmdSuggest:
		if p.Suggest == nil {
			return true, nil
		}

		suggestions, err := p.Suggest()
		if err != nil {
			return false, err
		}

		var buf bytes.Buffer
		for _, s := range suggestions {
			buf.WriteString(s)
			buf.WriteByte('\n')
		}

		_, err = p.out.Write(buf.Bytes())

		return true, err

	default:
		return false, &UnknownCommandError{Command: subcommand}
	}
}

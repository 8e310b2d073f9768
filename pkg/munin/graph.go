package munin

import (
	"fmt"
	"io"
	"strconv"
)

// StatType is the munin datasource statistic type.
type StatType string

// Supported statistic types.
const (
	Counter  StatType = "COUNTER"
	Absolute StatType = "ABSOLUTE"
	Derive   StatType = "DERIVE"
	Gauge    StatType = "GAUGE"
)

// DrawStyle controls how a field is drawn on the graph.
type DrawStyle string

// Supported draw styles.
const (
	Area       DrawStyle = "AREA"
	Line1      DrawStyle = "LINE1"
	Line2      DrawStyle = "LINE2"
	Line3      DrawStyle = "LINE3"
	Stack      DrawStyle = "STACK"
	LineStack1 DrawStyle = "LINESTACK1"
	LineStack2 DrawStyle = "LINESTACK2"
	LineStack3 DrawStyle = "LINESTACK3"
	AreaStack  DrawStyle = "AREASTACK"
)

// graphAttrs holds the display attributes of a graph. Unset members emit no
// config line.
type graphAttrs struct {
	title        string
	category     string
	vlabel       string
	info         string
	args         string
	period       string
	scale        *bool
	total        string
	order        string
	printfFormat string
	width        *int
	height       *int
}

// fieldAttrs holds the display attributes of a single field.
type fieldAttrs struct {
	label    string
	statType StatType
	draw     DrawStyle
	info     string
	extInfo  string
	colour   string
	negative string
	graphed  *bool
	min      *float64
	max      *float64
	cdef     string
	line     string
	warning  string
	critical string
}

// attrPair is one (attribute name, rendered value) entry of the fixed
// rendering order.
type attrPair struct {
	name  string
	value string
	set   bool
}

// Graph is one munin chart: an ordered set of field definitions and their
// current values. Fields are rendered in registration order; display
// attributes are rendered in the fixed order defined by configPairs and
// fieldPairs.
type Graph struct {
	name       string // set when the graph is attached to a plugin
	attrs      graphAttrs
	fieldOrder []string
	fields     map[string]*fieldAttrs
	values     map[string]any
}

// GraphOption configures a display attribute of a Graph.
type GraphOption func(*Graph)

// WithCategory sets the graph category.
func WithCategory(category string) GraphOption {
	return func(g *Graph) { g.attrs.category = category }
}

// WithVLabel sets the label of the vertical axis.
func WithVLabel(vlabel string) GraphOption {
	return func(g *Graph) { g.attrs.vlabel = vlabel }
}

// WithInfo sets the graph description.
func WithInfo(info string) GraphOption {
	return func(g *Graph) { g.attrs.info = info }
}

// WithArgs sets the arguments passed through to the grapher.
func WithArgs(args string) GraphOption {
	return func(g *Graph) { g.attrs.args = args }
}

// WithPeriod sets the time unit, "second" or "minute".
func WithPeriod(period string) GraphOption {
	return func(g *Graph) { g.attrs.period = period }
}

// WithScale enables or disables graph scaling.
func WithScale(scale bool) GraphOption {
	return func(g *Graph) { g.attrs.scale = &scale }
}

// WithTotal adds a total field summing all datasources, labeled with label.
func WithTotal(label string) GraphOption {
	return func(g *Graph) { g.attrs.total = label }
}

// WithOrder sets an explicit comma-separated field drawing order.
func WithOrder(order string) GraphOption {
	return func(g *Graph) { g.attrs.order = order }
}

// WithPrintfFormat overrides the number format used on the graph.
func WithPrintfFormat(format string) GraphOption {
	return func(g *Graph) { g.attrs.printfFormat = format }
}

// WithWidth sets the graph width in pixels.
func WithWidth(width int) GraphOption {
	return func(g *Graph) { g.attrs.width = &width }
}

// WithHeight sets the graph height in pixels.
func WithHeight(height int) GraphOption {
	return func(g *Graph) { g.attrs.height = &height }
}

// NewGraph creates a graph with the given title and display attributes.
func NewGraph(title string, opts ...GraphOption) *Graph {
	g := &Graph{
		attrs:  graphAttrs{title: title},
		fields: make(map[string]*fieldAttrs),
		values: make(map[string]any),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Title returns the graph title.
func (g *Graph) Title() string { return g.attrs.title }

// FieldOption configures a display attribute of a field.
type FieldOption func(*fieldAttrs)

// FieldType sets the statistic type of the field.
func FieldType(t StatType) FieldOption {
	return func(f *fieldAttrs) { f.statType = t }
}

// FieldDraw sets the draw style of the field.
func FieldDraw(d DrawStyle) FieldOption {
	return func(f *fieldAttrs) { f.draw = d }
}

// FieldInfo sets the field description.
func FieldInfo(info string) FieldOption {
	return func(f *fieldAttrs) { f.info = info }
}

// FieldExtInfo sets the extended field description.
func FieldExtInfo(extinfo string) FieldOption {
	return func(f *fieldAttrs) { f.extInfo = extinfo }
}

// FieldColour sets the field colour.
func FieldColour(colour string) FieldOption {
	return func(f *fieldAttrs) { f.colour = colour }
}

// FieldNegative names the field whose values are drawn mirrored below the
// axis against this field.
func FieldNegative(name string) FieldOption {
	return func(f *fieldAttrs) { f.negative = name }
}

// FieldGraphed controls whether the field is drawn on the graph. Fields are
// drawn unless this is set to false.
func FieldGraphed(graphed bool) FieldOption {
	return func(f *fieldAttrs) { f.graphed = &graphed }
}

// FieldMin sets the minimum valid value.
func FieldMin(min float64) FieldOption {
	return func(f *fieldAttrs) { f.min = &min }
}

// FieldMax sets the maximum valid value.
func FieldMax(max float64) FieldOption {
	return func(f *fieldAttrs) { f.max = &max }
}

// FieldCDef sets a derived-value expression for the field.
func FieldCDef(cdef string) FieldOption {
	return func(f *fieldAttrs) { f.cdef = cdef }
}

// FieldLine adds a horizontal reference line at the given value.
func FieldLine(line string) FieldOption {
	return func(f *fieldAttrs) { f.line = line }
}

// FieldWarning sets the warning threshold or range.
func FieldWarning(warning string) FieldOption {
	return func(f *fieldAttrs) { f.warning = warning }
}

// FieldCritical sets the critical threshold or range.
func FieldCritical(critical string) FieldOption {
	return func(f *fieldAttrs) { f.critical = critical }
}

// AddField registers a field on the graph. The registration order is the
// rendering order. Returns a *DuplicateFieldError when the name is already
// taken.
func (g *Graph) AddField(name, label string, opts ...FieldOption) error {
	if _, ok := g.fields[name]; ok {
		return &DuplicateFieldError{Graph: g.name, Field: name}
	}

	f := &fieldAttrs{label: label}
	for _, opt := range opts {
		opt(f)
	}

	g.fieldOrder = append(g.fieldOrder, name)
	g.fields[name] = f

	return nil
}

// HasField reports whether a field with the given name is registered.
func (g *Graph) HasField(name string) bool {
	_, ok := g.fields[name]

	return ok
}

// FieldNames returns the field names in registration order.
func (g *Graph) FieldNames() []string {
	names := make([]string, len(g.fieldOrder))
	copy(names, g.fieldOrder)

	return names
}

// SetValue sets the current value for a registered field. Returns an
// *UnknownFieldError when the field was never added.
func (g *Graph) SetValue(name string, value any) error {
	if _, ok := g.fields[name]; !ok {
		return &UnknownFieldError{Graph: g.name, Field: name}
	}

	g.values[name] = value

	return nil
}

// configPairs returns the graph attribute lines in their fixed rendering
// order. The order is part of the protocol contract.
func (g *Graph) configPairs() []attrPair {
	a := g.attrs

	return []attrPair{
		{"title", a.title, a.title != ""},
		{"category", a.category, a.category != ""},
		{"vlabel", a.vlabel, a.vlabel != ""},
		{"info", a.info, a.info != ""},
		{"args", a.args, a.args != ""},
		{"period", a.period, a.period != ""},
		{"scale", formatBool(a.scale), a.scale != nil},
		{"total", a.total, a.total != ""},
		{"order", a.order, a.order != ""},
		{"printfformat", a.printfFormat, a.printfFormat != ""},
		{"width", formatInt(a.width), a.width != nil},
		{"height", formatInt(a.height), a.height != nil},
	}
}

// fieldPairs returns the attribute lines of one field in their fixed
// rendering order.
func (f *fieldAttrs) fieldPairs() []attrPair {
	return []attrPair{
		{"label", f.label, f.label != ""},
		{"type", string(f.statType), f.statType != ""},
		{"draw", string(f.draw), f.draw != ""},
		{"info", f.info, f.info != ""},
		{"extinfo", f.extInfo, f.extInfo != ""},
		{"colour", f.colour, f.colour != ""},
		{"negative", f.negative, f.negative != ""},
		{"graph", formatBool(f.graphed), f.graphed != nil},
		{"min", formatFloat(f.min), f.min != nil},
		{"max", formatFloat(f.max), f.max != nil},
		{"cdef", f.cdef, f.cdef != ""},
		{"line", f.line, f.line != ""},
		{"warning", f.warning, f.warning != ""},
		{"critical", f.critical, f.critical != ""},
	}
}

// WriteConfig writes the config subcommand block for this graph:
// one "graph_<attr> <value>" line per set display attribute, followed by one
// "<field>.<attr> <value>" line per set field attribute, fields in
// registration order.
func (g *Graph) WriteConfig(w io.Writer) error {
	for _, p := range g.configPairs() {
		if !p.set {
			continue
		}

		if _, err := fmt.Fprintf(w, "graph_%s %s\n", p.name, p.value); err != nil {
			return err
		}
	}

	for _, name := range g.fieldOrder {
		for _, p := range g.fields[name].fieldPairs() {
			if !p.set {
				continue
			}

			if _, err := fmt.Fprintf(w, "%s.%s %s\n", name, p.name, p.value); err != nil {
				return err
			}
		}
	}

	return nil
}

// WriteValues writes the fetch subcommand block for this graph: one
// "<field>.value <value>" line per field with a set value, in registration
// order. Fields without a value are skipped entirely.
func (g *Graph) WriteValues(w io.Writer) error {
	for _, name := range g.fieldOrder {
		v, ok := g.values[name]
		if !ok {
			continue
		}

		if _, err := fmt.Fprintf(w, "%s.value %s\n", name, formatValue(v)); err != nil {
			return err
		}
	}

	return nil
}

// formatValue renders a field value. Floats use six-decimal fixed-point
// notation; everything else renders via its natural string form.
func formatValue(v any) string {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', 6, 64)
	case float32:
		return strconv.FormatFloat(float64(n), 'f', 6, 32)
	default:
		return fmt.Sprint(v)
	}
}

func formatBool(b *bool) string {
	if b == nil {
		return ""
	}

	if *b {
		return "yes"
	}

	return "no"
}

func formatInt(n *int) string {
	if n == nil {
		return ""
	}

	return strconv.Itoa(*n)
}

func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}

	return strconv.FormatFloat(*f, 'f', -1, 64)
}

package munin

import "fmt"

// DuplicateFieldError reports an attempt to register a field name that the
// graph already owns.
type DuplicateFieldError struct {
	Graph string
	Field string
}

func (e *DuplicateFieldError) Error() string {
	if e.Graph != "" {
		return fmt.Sprintf("field %q already registered on graph %q", e.Field, e.Graph)
	}

	return fmt.Sprintf("field %q already registered", e.Field)
}

// UnknownFieldError reports a value set for a field name that was never
// registered on the graph.
type UnknownFieldError struct {
	Graph string
	Field string
}

func (e *UnknownFieldError) Error() string {
	if e.Graph != "" {
		return fmt.Sprintf("unknown field %q on graph %q", e.Field, e.Graph)
	}

	return fmt.Sprintf("unknown field %q", e.Field)
}

// UnknownGraphError reports a lookup of a graph name that was never
// registered on the plugin.
type UnknownGraphError struct {
	Name string
}

func (e *UnknownGraphError) Error() string {
	return fmt.Sprintf("unknown graph %q", e.Name)
}

// UnknownFilterError reports a query against a filter name that was never
// registered.
type UnknownFilterError struct {
	Name string
}

func (e *UnknownFilterError) Error() string {
	return fmt.Sprintf("unknown filter %q", e.Name)
}

// MultipleGraphsNotAllowedError reports a graph or subgraph registration
// that would give a simple (non-multigraph) plugin more than one graph.
type MultipleGraphsNotAllowedError struct {
	Plugin string
}

func (e *MultipleGraphsNotAllowedError) Error() string {
	return fmt.Sprintf("simple plugin %q cannot have more than one graph", e.Plugin)
}

// UnknownParentGraphError reports a subgraph registration under a root graph
// name that does not exist.
type UnknownParentGraphError struct {
	Parent   string
	Subgraph string
}

func (e *UnknownParentGraphError) Error() string {
	return fmt.Sprintf("unknown parent graph %q for subgraph %q", e.Parent, e.Subgraph)
}

// UnknownCommandError reports a subcommand outside of
// fetch/config/autoconf/suggest.
type UnknownCommandError struct {
	Command string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command %q", e.Command)
}

// StatePersistenceError reports a failure reading or writing the plugin
// state file.
type StatePersistenceError struct {
	Path string
	Op   string // "save" or "restore"
	Err  error
}

func (e *StatePersistenceError) Error() string {
	return fmt.Sprintf("%s plugin state %s: %v", e.Op, e.Path, e.Err)
}

func (e *StatePersistenceError) Unwrap() error { return e.Err }

// Package munin is a framework for authoring munin monitoring plugins:
// standalone executables the munin node daemon invokes with one of the
// subcommands config, fetch, autoconf or suggest and reads back over a
// line-oriented text protocol on stdout.
//
// The package is organized around four concerns:
//
//   - Graphs (graph.go): [Graph] owns an ordered set of field definitions
//     and their current values and renders the config and value blocks of
//     the protocol.
//
//   - Plugins (plugin.go): [Plugin] owns root graphs, nested subgraphs, and
//     attribute filters, and implements the four subcommands. Concrete
//     plugins supply behavior through the RetrieveVals, Autoconf, and
//     Suggest hook fields.
//
//   - Filtering (filter.go): [AttrFilter] gates graphs and other named
//     attributes through include_<name> / exclude_<name> environment
//     variables.
//
//   - State (state.go): save/restore of plugin state between invocations
//     via the MUNIN_STATEFILE path.
//
// Plugin executables wire everything together with [Execute] (cobra command
// tree with flags and a version subcommand) or the minimal [Main].
package munin

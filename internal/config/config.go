// Package config provides access to the environment variables a munin node
// passes to its plugins.
//
// Munin environment variables are lower-case (nested_graphs,
// include_<filter>, exclude_<filter>), so keys are bound to their literal
// names instead of going through viper's AutomaticEnv uppercasing. A fresh
// viper instance is used per Env so that tests stay independent.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Well-known environment variable names.
const (
	// EnvStateFile overrides the plugin state file path.
	EnvStateFile = "MUNIN_STATEFILE"

	// EnvNestedGraphs disables nested-graph rendering when set to
	// "no" or "off".
	EnvNestedGraphs = "nested_graphs"
)

// Env reads munin plugin configuration from the process environment, or
// from an explicit map when constructed with FromMap.
type Env struct {
	v *viper.Viper
}

// System returns an Env backed by the process environment.
func System() *Env {
	return &Env{v: viper.New()}
}

// FromMap returns an Env backed by the given values instead of the process
// environment. Intended for tests and for callers embedding a plugin.
func FromMap(values map[string]string) *Env {
	v := viper.New()
	for key, val := range values {
		v.Set(key, val)
	}

	return &Env{v: v}
}

// Get returns the value for the given variable, or "" when unset.
func (e *Env) Get(key string) string {
	// BindEnv with an explicit name keeps the literal (lower-case) key.
	_ = e.v.BindEnv(key, key)

	return e.v.GetString(key)
}

// List returns the value for the given variable split on commas. Entries
// are not trimmed; a missing or empty variable yields a nil slice.
func (e *Env) List(key string) []string {
	val := e.Get(key)
	if val == "" {
		return nil
	}

	return strings.Split(val, ",")
}

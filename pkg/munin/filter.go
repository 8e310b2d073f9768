package munin

import (
	"fmt"
	"regexp"
)

// AttrFilter decides whether a named attribute (a graph name, a device, an
// interface) is enabled, based on an include list and an exclude list.
//
// With an empty include list every attribute is enabled unless it appears on
// the exclude list. With a non-empty include list only the listed attributes
// are enabled. Exclude entries always win over include entries. An optional
// validation pattern drops list entries that do not match it; the pattern is
// anchored at the start of the attribute name.
//
// Filters are immutable after construction.
type AttrFilter struct {
	overrides      map[string]bool
	defaultEnabled bool
}

// NewAttrFilter builds a filter from ordered include and exclude lists.
// pattern may be empty, in which case every list entry is accepted.
func NewAttrFilter(include, exclude []string, pattern string) (*AttrFilter, error) {
	f := &AttrFilter{
		overrides:      make(map[string]bool),
		defaultEnabled: true,
	}

	var re *regexp.Regexp

	if pattern != "" {
		var err error

		re, err = regexp.Compile("^(?:" + pattern + ")")
		if err != nil {
			return nil, fmt.Errorf("compiling filter pattern %q: %w", pattern, err)
		}
	}

	// A non-empty include list flips the default even when every entry
	// fails validation.
	if len(include) > 0 {
		f.defaultEnabled = false
	}

	for _, attr := range include {
		if re == nil || re.MatchString(attr) {
			f.overrides[attr] = true
		}
	}

	for _, attr := range exclude {
		if re == nil || re.MatchString(attr) {
			f.overrides[attr] = false
		}
	}

	return f, nil
}

// Enabled reports whether the named attribute passes the filter.
func (f *AttrFilter) Enabled(attr string) bool {
	if v, ok := f.overrides[attr]; ok {
		return v
	}

	return f.defaultEnabled
}

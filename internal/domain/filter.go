package domain

import "strings"

// FilterName enumerates the query filters accepted by influencer listings.
type FilterName string

const (
	FilterID                 FilterName = "id"
	FilterUsername           FilterName = "username"
	FilterSearch             FilterName = "search"
	FilterCategory           FilterName = "category"
	FilterCategoriesCombined FilterName = "categories_combined"
	FilterLocation           FilterName = "location"
	FilterLocationsCombined  FilterName = "locations_combined"
)

// FilterNames lists every filter in the order clauses are emitted.
var FilterNames = []FilterName{
	FilterID,
	FilterUsername,
	FilterSearch,
	FilterCategory,
	FilterCategoriesCombined,
	FilterLocation,
	FilterLocationsCombined,
}

// IsIdentifier reports whether the filter addresses a single profile.
func (n FilterName) IsIdentifier() bool {
	return n == FilterID || n == FilterUsername
}

// IsSubstring reports whether the filter matches case-insensitively on a substring.
func (n FilterName) IsSubstring() bool {
	switch n {
	case FilterSearch, FilterCategoriesCombined, FilterLocationsCombined:
		return true
	}
	return false
}

// Valid reports whether n is one of the known filters.
func (n FilterName) Valid() bool {
	for _, known := range FilterNames {
		if n == known {
			return true
		}
	}
	return false
}

// FilterSpec maps filter names to raw values. Blank values count as absent.
type FilterSpec map[FilterName]string

// Get returns the trimmed value of a filter and whether it is present.
func (f FilterSpec) Get(name FilterName) (string, bool) {
	if f == nil {
		return "", false
	}
	value := strings.TrimSpace(f[name])
	if value == "" {
		return "", false
	}
	return value, true
}

// Active returns the present filters in FilterNames order.
func (f FilterSpec) Active() []FilterName {
	active := make([]FilterName, 0, len(f))
	for _, name := range FilterNames {
		if _, ok := f.Get(name); ok {
			active = append(active, name)
		}
	}
	return active
}

// Empty reports whether no filter is present.
func (f FilterSpec) Empty() bool {
	return len(f.Active()) == 0
}

// Identifier returns the single identifier filter honored for a request.
// id wins over username when both are supplied.
func (f FilterSpec) Identifier() (FilterName, string, bool) {
	if value, ok := f.Get(FilterID); ok {
		return FilterID, value, true
	}
	if value, ok := f.Get(FilterUsername); ok {
		return FilterUsername, value, true
	}
	return "", "", false
}

// WithoutIdentifiers returns a copy of the spec with id and username removed.
func (f FilterSpec) WithoutIdentifiers() FilterSpec {
	out := make(FilterSpec, len(f))
	for name, value := range f {
		if name.IsIdentifier() {
			continue
		}
		out[name] = value
	}
	return out
}

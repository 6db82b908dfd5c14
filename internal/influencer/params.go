package influencer

import (
	"net/url"
	"strings"

	"github.com/rpattn/influencer-api/internal/domain"
)

// Query is a parsed influencer request.
type Query struct {
	Filters domain.FilterSpec
	Page    domain.PageRequest
	// Paged is set when the caller sent limit, offset or page.
	Paged bool
}

// Shape selects the response body for a Query.
type Shape int

const (
	// ShapeList is the bare array of {id, username} summaries.
	ShapeList Shape = iota
	// ShapeSingle is one full profile addressed by id or username.
	ShapeSingle
	// ShapePage is the paginated envelope of filtered listing rows.
	ShapePage
)

func (s Shape) String() string {
	switch s {
	case ShapeSingle:
		return "single"
	case ShapePage:
		return "page"
	default:
		return "list"
	}
}

// ResolveShape picks the response shape. An identifier wins over every other
// filter; any other filter or pagination parameter selects the page envelope.
func ResolveShape(q Query) Shape {
	if _, _, ok := q.Filters.Identifier(); ok {
		return ShapeSingle
	}
	if !q.Filters.Empty() || q.Paged {
		return ShapePage
	}
	return ShapeList
}

var pageParams = []string{"limit", "offset", "page"}

// ParseQuery reads filters and pagination from URL query values. Unknown
// parameters are ignored and malformed numbers fall back to defaults.
func ParseQuery(values url.Values, limits domain.PageLimits) Query {
	filters := domain.FilterSpec{}
	for _, name := range domain.FilterNames {
		if raw := strings.TrimSpace(values.Get(string(name))); raw != "" {
			filters[name] = raw
		}
	}

	paged := false
	for _, param := range pageParams {
		if strings.TrimSpace(values.Get(param)) != "" {
			paged = true
		}
	}

	return Query{
		Filters: filters,
		Page:    domain.ParsePageRequest(values.Get("limit"), values.Get("offset"), values.Get("page"), limits),
		Paged:   paged,
	}
}

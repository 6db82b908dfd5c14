package repository

import (
	"strings"

	"github.com/lib/pq"

	"github.com/rpattn/influencer-api/internal/domain"
)

// Column names shared by the profile table and the listing view.
const (
	columnCategory           = "category"
	columnLocation           = "location"
	columnCategoriesCombined = "categories_combined"
	columnLocationsCombined  = "locations_combined"
)

// Dataset names the relations and projections the repositories read from.
// Every name is quoted before it reaches SQL text.
type Dataset struct {
	Schema string
	// ProfileTable holds one row per influencer including the analysis text.
	ProfileTable string
	// ListingView fans out one row per influencer and category/location.
	ListingView string

	SummaryColumns []string
	ListingColumns []string
	SearchColumns  []string
}

// DefaultDataset mirrors the scraped influencer schema.
func DefaultDataset() Dataset {
	return Dataset{
		Schema:         "scrapped",
		ProfileTable:   "instagram_profile_analysis",
		ListingView:    "influencer_ui",
		SummaryColumns: []string{domain.ColumnID, domain.ColumnUsername},
		ListingColumns: []string{
			domain.ColumnID,
			domain.ColumnUsername,
			"full_name",
			columnCategory,
			columnLocation,
			columnCategoriesCombined,
			columnLocationsCombined,
		},
		SearchColumns: []string{domain.ColumnUsername, "full_name"},
	}
}

func (d Dataset) withDefaults() Dataset {
	def := DefaultDataset()
	if strings.TrimSpace(d.Schema) == "" {
		d.Schema = def.Schema
	}
	if strings.TrimSpace(d.ProfileTable) == "" {
		d.ProfileTable = def.ProfileTable
	}
	if strings.TrimSpace(d.ListingView) == "" {
		d.ListingView = def.ListingView
	}
	if len(d.SummaryColumns) == 0 {
		d.SummaryColumns = def.SummaryColumns
	}
	if len(d.ListingColumns) == 0 {
		d.ListingColumns = def.ListingColumns
	}
	if len(d.SearchColumns) == 0 {
		d.SearchColumns = def.SearchColumns
	}
	return d
}

func (d Dataset) profileRelation() string {
	return qualify(d.Schema, d.ProfileTable)
}

func (d Dataset) listingRelation() string {
	return qualify(d.Schema, d.ListingView)
}

func qualify(schema, name string) string {
	if strings.TrimSpace(schema) == "" {
		return pq.QuoteIdentifier(name)
	}
	return pq.QuoteIdentifier(schema) + "." + pq.QuoteIdentifier(name)
}

func quote(column string) string {
	return pq.QuoteIdentifier(column)
}

func quoteColumns(columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = pq.QuoteIdentifier(c)
	}
	return strings.Join(quoted, ", ")
}

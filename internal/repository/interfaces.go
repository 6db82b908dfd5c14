package repository

import (
	"context"

	"github.com/rpattn/influencer-api/internal/domain"
)

// InfluencerRepository defines the read operations over influencer profiles
type InfluencerRepository interface {
	ListSummaries(ctx context.Context) ([]domain.Record, error)
	ListPage(ctx context.Context, filters domain.FilterSpec, page domain.PageRequest) (domain.PageResult, error)

	// Identifier lookups; name is domain.FilterID or domain.FilterUsername
	GetByIdentifier(ctx context.Context, name domain.FilterName, value string) (domain.Record, error)
	FindByIdentifiers(ctx context.Context, name domain.FilterName, values []string) ([]domain.Record, error)
}

// CatalogRepository defines the facet aggregates shown next to listings
type CatalogRepository interface {
	CategoryCounts(ctx context.Context) ([]domain.CategoryCount, error)
	LocationCounts(ctx context.Context) ([]domain.LocationCount, error)
}

package repository

import (
	"context"
	"fmt"

	"github.com/rpattn/influencer-api/internal/db"
	"github.com/rpattn/influencer-api/internal/domain"
)

type catalogRepository struct {
	queryRunner
	dataset Dataset
}

// NewCatalogRepository creates a repository for category and location facets.
func NewCatalogRepository(exec db.DBTX, dataset Dataset, opts ...Option) CatalogRepository {
	return &catalogRepository{
		queryRunner: newQueryRunner(exec, opts),
		dataset:     dataset.withDefaults(),
	}
}

// CategoryCounts counts distinct usernames per non-empty category.
func (r *catalogRepository) CategoryCounts(ctx context.Context) ([]domain.CategoryCount, error) {
	category := quote(columnCategory)
	sql := fmt.Sprintf(`WITH unique_category_influencers AS (
		SELECT DISTINCT %[1]s, %[2]s
		FROM %[3]s
		WHERE %[1]s IS NOT NULL AND %[1]s <> ''
	)
	SELECT %[1]s, COUNT(%[2]s) AS influencer_count
	FROM unique_category_influencers
	GROUP BY %[1]s
	ORDER BY influencer_count DESC, %[1]s ASC`,
		category, quote(domain.ColumnUsername), r.dataset.listingRelation())

	counts := []domain.CategoryCount{}
	err := r.scanCounts(ctx, "category_counts", sql, func(name string, count int64) {
		counts = append(counts, domain.CategoryCount{Name: name, InfluencerCount: count})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return counts, nil
}

// LocationCounts counts distinct ids per non-empty location.
func (r *catalogRepository) LocationCounts(ctx context.Context) ([]domain.LocationCount, error) {
	location := quote(columnLocation)
	sql := fmt.Sprintf(`SELECT %[1]s, COUNT(DISTINCT %[2]s) AS influencer_count
	FROM %[3]s
	WHERE %[1]s IS NOT NULL AND %[1]s <> ''
	GROUP BY %[1]s
	ORDER BY influencer_count DESC, %[1]s ASC`,
		location, quote(domain.ColumnID), r.dataset.listingRelation())

	counts := []domain.LocationCount{}
	err := r.scanCounts(ctx, "location_counts", sql, func(name string, count int64) {
		counts = append(counts, domain.LocationCount{Name: name, InfluencerCount: count})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return counts, nil
}

func (r *catalogRepository) scanCounts(ctx context.Context, operation, sql string, emit func(string, int64)) (err error) {
	if r.db == nil {
		return fmt.Errorf("catalog repository not initialized")
	}
	start := r.now()
	defer func() { r.record(operation, start, err) }()

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			name  string
			count int64
		)
		if scanErr := rows.Scan(&name, &count); scanErr != nil {
			return fmt.Errorf("scan %s: %w", operation, scanErr)
		}
		emit(name, count)
	}
	return rows.Err()
}

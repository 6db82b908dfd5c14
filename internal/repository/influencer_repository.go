package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/rpattn/influencer-api/internal/db"
	"github.com/rpattn/influencer-api/internal/domain"
)

type influencerRepository struct {
	queryRunner
	dataset    Dataset
	predicates *PredicateBuilder
}

// NewInfluencerRepository creates a repository reading influencer profiles.
func NewInfluencerRepository(exec db.DBTX, dataset Dataset, opts ...Option) InfluencerRepository {
	dataset = dataset.withDefaults()
	return &influencerRepository{
		queryRunner: newQueryRunner(exec, opts),
		dataset:     dataset,
		predicates:  NewPredicateBuilder(dataset),
	}
}

// orderBy is the stable total order shared by every listing query. It must
// lead with the DISTINCT ON expressions.
func orderBy() string {
	return fmt.Sprintf("ORDER BY %s ASC, %s ASC", quote(domain.ColumnUsername), quote(domain.ColumnID))
}

// ListSummaries returns the summary projection of every profile.
func (r *influencerRepository) ListSummaries(ctx context.Context) ([]domain.Record, error) {
	sql := fmt.Sprintf("SELECT %s FROM %s %s",
		quoteColumns(r.dataset.SummaryColumns), r.dataset.profileRelation(), orderBy())

	records, err := r.records(ctx, "list_summaries", sql)
	if err != nil {
		return nil, fmt.Errorf("failed to list influencers: %w", err)
	}
	return records, nil
}

// ListPage counts the influencers matching filters and fetches one window of them.
// The count and the page are separate statements; concurrent writes between
// them can make the two disagree.
func (r *influencerRepository) ListPage(ctx context.Context, filters domain.FilterSpec, page domain.PageRequest) (domain.PageResult, error) {
	if page.Limit <= 0 {
		page = domain.NewPageRequest(page.Limit, page.Offset, domain.DefaultPageLimits())
	}
	predicate := r.predicates.Build(filters)
	return r.executePage(ctx, predicate, page)
}

func (r *influencerRepository) executePage(ctx context.Context, predicate Predicate, page domain.PageRequest) (domain.PageResult, error) {
	relation := r.dataset.listingRelation()
	key := fmt.Sprintf("(%s, %s)", quote(domain.ColumnID), quote(domain.ColumnUsername))

	countSQL := joinSQL(
		fmt.Sprintf("SELECT COUNT(DISTINCT %s) FROM %s", key, relation),
		predicate.Where(),
	)

	var total int64
	if err := r.scalar(ctx, "count_page", countSQL, predicate.Args, &total); err != nil {
		return domain.PageResult{}, fmt.Errorf("failed to count influencers: %w", err)
	}
	if total == 0 {
		return domain.NewPageResult(nil, 0, page), nil
	}

	builder := predicate.extend()
	limitPlaceholder := builder.bind(page.Limit)
	offsetPlaceholder := builder.bind(page.Offset)

	dataSQL := joinSQL(
		fmt.Sprintf("SELECT DISTINCT ON (%s, %s) %s FROM %s",
			quote(domain.ColumnUsername), quote(domain.ColumnID),
			quoteColumns(r.dataset.ListingColumns), relation),
		predicate.Where(),
		orderBy(),
		fmt.Sprintf("LIMIT %s OFFSET %s", limitPlaceholder, offsetPlaceholder),
	)

	rows, err := r.records(ctx, "list_page", dataSQL, builder.args...)
	if err != nil {
		return domain.PageResult{}, fmt.Errorf("failed to list influencer page: %w", err)
	}

	return domain.NewPageResult(rows, total, page), nil
}

// GetByIdentifier fetches the full profile addressed by id or username.
func (r *influencerRepository) GetByIdentifier(ctx context.Context, name domain.FilterName, value string) (domain.Record, error) {
	column, err := identifierColumn(name)
	if err != nil {
		return nil, err
	}

	sql := fmt.Sprintf("SELECT * FROM %s WHERE %s = $1 LIMIT 1", r.dataset.profileRelation(), quote(column))
	records, err := r.records(ctx, "get_by_"+column, sql, value)
	if err != nil {
		return nil, fmt.Errorf("failed to get influencer: %w", err)
	}
	if len(records) == 0 {
		return nil, domain.ErrNotFound
	}
	return records[0], nil
}

// FindByIdentifiers fetches the profiles matching any of values in one statement.
// Missing values are simply absent from the result.
func (r *influencerRepository) FindByIdentifiers(ctx context.Context, name domain.FilterName, values []string) ([]domain.Record, error) {
	if len(values) == 0 {
		return []domain.Record{}, nil
	}
	column, err := identifierColumn(name)
	if err != nil {
		return nil, err
	}

	sql := joinSQL(
		fmt.Sprintf("SELECT * FROM %s WHERE %s::text = ANY($1::text[])", r.dataset.profileRelation(), quote(column)),
		orderBy(),
	)
	records, err := r.records(ctx, "find_by_"+column, sql, values)
	if err != nil {
		return nil, fmt.Errorf("failed to get influencers: %w", err)
	}
	return domain.Deduplicate(records), nil
}

func identifierColumn(name domain.FilterName) (string, error) {
	switch name {
	case domain.FilterID:
		return domain.ColumnID, nil
	case domain.FilterUsername:
		return domain.ColumnUsername, nil
	default:
		return "", fmt.Errorf("unsupported identifier filter %q", name)
	}
}

func joinSQL(parts ...string) string {
	nonEmpty := parts[:0:0]
	for _, part := range parts {
		if part != "" {
			nonEmpty = append(nonEmpty, part)
		}
	}
	return strings.Join(nonEmpty, " ")
}

package influencer

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/rpattn/influencer-api/internal/analysis"
	"github.com/rpattn/influencer-api/internal/domain"
	"github.com/rpattn/influencer-api/internal/middleware"
	"github.com/rpattn/influencer-api/internal/repository"
)

const defaultExportMaxRows = 1000

// Response carries the body for one resolved Query. Only the field matching
// Shape is populated.
type Response struct {
	Shape  Shape
	Single domain.Record
	Page   domain.PageResult
	List   []domain.Record
}

// Body returns the value to encode for the response shape.
func (r Response) Body() any {
	switch r.Shape {
	case ShapeSingle:
		return r.Single
	case ShapePage:
		return r.Page
	default:
		if r.List == nil {
			return []domain.Record{}
		}
		return r.List
	}
}

// Service answers influencer queries: repository fetch, dedup, then analysis normalization.
type Service struct {
	repo       repository.InfluencerRepository
	normalizer *analysis.Normalizer
	detail     analysis.Options
	list       analysis.Options
	limits     domain.PageLimits
	exportMax  int
	logger     *log.Logger
}

type Option func(*Service)

func WithNormalizer(n *analysis.Normalizer) Option {
	return func(s *Service) {
		if n != nil {
			s.normalizer = n
		}
	}
}

// WithDetailAnalysis sets the normalization policy for single profile lookups.
func WithDetailAnalysis(opts analysis.Options) Option {
	return func(s *Service) {
		s.detail = opts
	}
}

// WithListAnalysis sets the normalization policy for page and export rows.
func WithListAnalysis(opts analysis.Options) Option {
	return func(s *Service) {
		s.list = opts
	}
}

func WithPageLimits(limits domain.PageLimits) Option {
	return func(s *Service) {
		s.limits = limits
	}
}

func WithExportMaxRows(rows int) Option {
	return func(s *Service) {
		if rows > 0 {
			s.exportMax = rows
		}
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewService(repo repository.InfluencerRepository, opts ...Option) *Service {
	service := &Service{
		repo:      repo,
		detail:    analysis.Options{ParseRaw: false},
		list:      analysis.Options{ParseRaw: true},
		limits:    domain.DefaultPageLimits(),
		exportMax: defaultExportMaxRows,
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(service)
	}
	if service.normalizer == nil {
		service.normalizer = analysis.NewNormalizer(analysis.WithLogger(service.logger))
	}
	return service
}

// Limits returns the pagination limits requests are parsed with.
func (s *Service) Limits() domain.PageLimits {
	return s.limits
}

// Get resolves q into the response shape picked by ResolveShape.
func (s *Service) Get(ctx context.Context, q Query) (Response, error) {
	switch shape := ResolveShape(q); shape {
	case ShapeSingle:
		name, value, _ := q.Filters.Identifier()
		record, err := s.GetProfile(ctx, name, value)
		if err != nil {
			return Response{}, err
		}
		return Response{Shape: shape, Single: record}, nil
	case ShapePage:
		page, err := s.ListPage(ctx, q.Filters, q.Page)
		if err != nil {
			return Response{}, err
		}
		return Response{Shape: shape, Page: page}, nil
	default:
		list, err := s.ListSummaries(ctx)
		if err != nil {
			return Response{}, err
		}
		return Response{Shape: shape, List: list}, nil
	}
}

// GetProfile fetches one full profile by id or username, batching through the
// request's profile loader when one is attached.
func (s *Service) GetProfile(ctx context.Context, name domain.FilterName, value string) (domain.Record, error) {
	var (
		record domain.Record
		err    error
	)
	if loader := middleware.ProfileLoaderFromContext(ctx); loader != nil {
		record, err = loader.Load(ctx, name, value)
	} else {
		record, err = s.repo.GetByIdentifier(ctx, name, value)
	}
	if err != nil {
		return nil, err
	}

	// Loader results are shared within a request; normalize a copy.
	out := make(domain.Record, len(record))
	for k, v := range record {
		out[k] = v
	}
	s.normalizer.Apply(out, s.detail)
	return out, nil
}

// ListPage returns one deduplicated, normalized window of filtered listings.
func (s *Service) ListPage(ctx context.Context, filters domain.FilterSpec, page domain.PageRequest) (domain.PageResult, error) {
	page = domain.NewPageRequest(page.Limit, page.Offset, s.limits)

	result, err := s.repo.ListPage(ctx, filters, page)
	if err != nil {
		return domain.PageResult{}, err
	}
	result.Rows = domain.Deduplicate(result.Rows)
	if result.Rows == nil {
		result.Rows = []domain.Record{}
	}
	if failed := s.normalizer.ApplyAll(result.Rows, s.list); failed > 0 {
		s.logger.Debug("page rows with unparseable analysis", "failed", failed, "rows", len(result.Rows))
	}
	return result, nil
}

// ListSummaries returns the {id, username} projection of every profile.
func (s *Service) ListSummaries(ctx context.Context) ([]domain.Record, error) {
	records, err := s.repo.ListSummaries(ctx)
	if err != nil {
		return nil, err
	}
	records = domain.Deduplicate(records)
	if records == nil {
		records = []domain.Record{}
	}
	return records, nil
}

// ExportRows fetches up to the export row cap of filtered listings starting at
// the query's offset. Identifier filters narrow the export like any other filter.
func (s *Service) ExportRows(ctx context.Context, q Query) ([]domain.Record, error) {
	page := domain.PageRequest{Limit: s.exportMax, Offset: q.Page.Offset}
	result, err := s.repo.ListPage(ctx, q.Filters, page)
	if err != nil {
		return nil, fmt.Errorf("failed to load export rows: %w", err)
	}
	rows := domain.Deduplicate(result.Rows)
	s.normalizer.ApplyAll(rows, s.list)
	return rows, nil
}

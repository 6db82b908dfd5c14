package catalog

import (
	"context"
	"strings"

	"github.com/rpattn/influencer-api/internal/domain"
	"github.com/rpattn/influencer-api/internal/repository"
)

// OtherState groups locations without a state segment.
const OtherState = "Other"

// Categories is the /api/categories payload.
type Categories struct {
	TotalCategories int                    `json:"total_categories"`
	Categories      []domain.CategoryCount `json:"categories"`
}

// Locations is the /api/locations payload.
type Locations struct {
	TotalLocations int                               `json:"total_locations"`
	Locations      []domain.LocationCount            `json:"locations"`
	GroupedByState map[string][]domain.LocationCount `json:"grouped_by_state"`
}

type Service struct {
	repo repository.CatalogRepository
}

func NewService(repo repository.CatalogRepository) *Service {
	return &Service{repo: repo}
}

// Categories lists categories by descending influencer count.
func (s *Service) Categories(ctx context.Context) (Categories, error) {
	counts, err := s.repo.CategoryCounts(ctx)
	if err != nil {
		return Categories{}, err
	}
	if counts == nil {
		counts = []domain.CategoryCount{}
	}
	return Categories{TotalCategories: len(counts), Categories: counts}, nil
}

// Locations lists locations with their city and state parts, also grouped by state.
func (s *Service) Locations(ctx context.Context) (Locations, error) {
	counts, err := s.repo.LocationCounts(ctx)
	if err != nil {
		return Locations{}, err
	}

	locations := make([]domain.LocationCount, len(counts))
	grouped := make(map[string][]domain.LocationCount)
	for i, count := range counts {
		count.City, count.State = SplitLocation(count.Name)
		locations[i] = count

		state := count.State
		if state == "" {
			state = OtherState
		}
		grouped[state] = append(grouped[state], count)
	}

	return Locations{
		TotalLocations: len(locations),
		Locations:      locations,
		GroupedByState: grouped,
	}, nil
}

// SplitLocation reads "city, state[, ...]" into its first two trimmed segments.
func SplitLocation(location string) (city, state string) {
	parts := strings.Split(location, ",")
	city = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		state = strings.TrimSpace(parts[1])
	}
	return city, state
}

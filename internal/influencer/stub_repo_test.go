package influencer

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/rpattn/influencer-api/internal/domain"
)

type stubInfluencerRepo struct {
	mu sync.Mutex

	summaries []domain.Record
	page      domain.PageResult
	profiles  map[string]domain.Record
	err       error

	listPageCalls []listPageCall
	getCalls      int
	findCalls     int
}

type listPageCall struct {
	filters domain.FilterSpec
	page    domain.PageRequest
}

func (s *stubInfluencerRepo) ListSummaries(ctx context.Context) ([]domain.Record, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.summaries, nil
}

func (s *stubInfluencerRepo) ListPage(ctx context.Context, filters domain.FilterSpec, page domain.PageRequest) (domain.PageResult, error) {
	s.mu.Lock()
	s.listPageCalls = append(s.listPageCalls, listPageCall{filters: filters, page: page})
	s.mu.Unlock()
	if s.err != nil {
		return domain.PageResult{}, s.err
	}
	result := s.page
	result.Limit = page.Limit
	result.Offset = page.Offset
	return result, nil
}

func (s *stubInfluencerRepo) GetByIdentifier(ctx context.Context, name domain.FilterName, value string) (domain.Record, error) {
	s.mu.Lock()
	s.getCalls++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	record, ok := s.profiles[string(name)+":"+value]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return record, nil
}

func (s *stubInfluencerRepo) FindByIdentifiers(ctx context.Context, name domain.FilterName, values []string) ([]domain.Record, error) {
	s.mu.Lock()
	s.findCalls++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []domain.Record
	for _, v := range values {
		if record, ok := s.profiles[string(name)+":"+v]; ok {
			out = append(out, record)
		}
	}
	return out, nil
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func fencedProfile(id, username string) domain.Record {
	return domain.Record{
		"id":          id,
		"username":    username,
		"ai_analysis": "```json\n{\"niche\": \"fitness\"}\n```",
	}
}

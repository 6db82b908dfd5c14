package profileloader

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rpattn/influencer-api/internal/domain"
)

type stubInfluencerRepo struct {
	mu      sync.Mutex
	records []domain.Record
	err     error
	calls   map[domain.FilterName][][]string
}

func (s *stubInfluencerRepo) ListSummaries(ctx context.Context) ([]domain.Record, error) {
	return nil, nil
}

func (s *stubInfluencerRepo) ListPage(ctx context.Context, filters domain.FilterSpec, page domain.PageRequest) (domain.PageResult, error) {
	return domain.PageResult{}, nil
}

func (s *stubInfluencerRepo) GetByIdentifier(ctx context.Context, name domain.FilterName, value string) (domain.Record, error) {
	return nil, errors.New("not expected")
}

func (s *stubInfluencerRepo) FindByIdentifiers(ctx context.Context, name domain.FilterName, values []string) ([]domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = make(map[domain.FilterName][][]string)
	}
	s.calls[name] = append(s.calls[name], values)
	if s.err != nil {
		return nil, s.err
	}
	var out []domain.Record
	for _, record := range s.records {
		for _, v := range values {
			if (name == domain.FilterID && record.ID() == v) || (name == domain.FilterUsername && record.Key().Username == v) {
				out = append(out, record)
			}
		}
	}
	return out, nil
}

func TestProfileLoaderBatchesQueuedLoads(t *testing.T) {
	repo := &stubInfluencerRepo{records: []domain.Record{
		{"id": "1", "username": "ana"},
		{"id": "2", "username": "bo"},
	}}
	loader := NewProfileLoader(repo)

	lookups := []struct {
		name  domain.FilterName
		value string
	}{
		{domain.FilterID, "1"},
		{domain.FilterID, "2"},
		{domain.FilterUsername, "bo"},
		{domain.FilterID, "404"},
	}

	thunks := make([]func() (domain.Record, error), len(lookups))
	for i, lookup := range lookups {
		thunks[i] = loader.LoadThunk(context.Background(), lookup.name, lookup.value)
	}

	type result struct {
		record domain.Record
		err    error
	}
	results := make([]result, len(thunks))
	for i, thunk := range thunks {
		record, err := thunk()
		results[i] = result{record: record, err: err}
	}

	if results[0].err != nil || results[0].record["username"] != "ana" {
		t.Fatalf("unexpected first result %+v", results[0])
	}
	if results[1].err != nil || results[1].record["username"] != "bo" {
		t.Fatalf("unexpected second result %+v", results[1])
	}
	if results[2].err != nil || results[2].record.ID() != "2" {
		t.Fatalf("unexpected username result %+v", results[2])
	}
	if !errors.Is(results[3].err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing id, got %v", results[3].err)
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if len(repo.calls[domain.FilterID]) != 1 {
		t.Fatalf("expected id lookups batched into one call, got %v", repo.calls[domain.FilterID])
	}
	if len(repo.calls[domain.FilterID][0]) != 3 {
		t.Fatalf("expected three ids in the batch, got %v", repo.calls[domain.FilterID][0])
	}
}

func TestProfileLoaderPropagatesRepositoryErrors(t *testing.T) {
	repoErr := errors.New("database unavailable")
	loader := NewProfileLoader(&stubInfluencerRepo{err: repoErr})

	_, err := loader.Load(context.Background(), domain.FilterUsername, "ana")
	if !errors.Is(err, repoErr) {
		t.Fatalf("expected repository error, got %v", err)
	}
}

func TestSplitKeyRejectsUnknownFilters(t *testing.T) {
	if _, _, err := splitKey(keyFor(domain.FilterCategory, "food")); err == nil {
		t.Fatalf("expected error for non identifier key")
	}
	name, value, err := splitKey(keyFor(domain.FilterUsername, "a:b"))
	if err != nil || name != domain.FilterUsername || value != "a:b" {
		t.Fatalf("unexpected split %q %q %v", name, value, err)
	}
}

func TestProfileLoaderCanonicalizesIDs(t *testing.T) {
	repo := &stubInfluencerRepo{records: []domain.Record{
		{"id": "42", "username": "ana"},
		{"id": "6f1c2d3e-4b5a-4c6d-8e7f-901a2b3c4d5e", "username": "bo"},
	}}
	loader := NewProfileLoader(repo)

	padded := loader.LoadThunk(context.Background(), domain.FilterID, "00042")
	upper := loader.LoadThunk(context.Background(), domain.FilterID, "6F1C2D3E-4B5A-4C6D-8E7F-901A2B3C4D5E")

	record, err := padded()
	if err != nil || record["username"] != "ana" {
		t.Fatalf("expected padded id to resolve ana, got %v %v", record, err)
	}
	record, err = upper()
	if err != nil || record["username"] != "bo" {
		t.Fatalf("expected upper-case uuid to resolve bo, got %v %v", record, err)
	}
}

func TestCanonicalID(t *testing.T) {
	cases := map[string]string{
		"00042":                                "42",
		"-7":                                   "-7",
		"6F1C2D3E-4B5A-4C6D-8E7F-901A2B3C4D5E": "6f1c2d3e-4b5a-4c6d-8e7f-901a2b3c4d5e",
		"not-an-id":                            "not-an-id",
	}
	for in, want := range cases {
		if got := canonicalID(in); got != want {
			t.Fatalf("canonicalID(%q): expected %q, got %q", in, want, got)
		}
	}
}

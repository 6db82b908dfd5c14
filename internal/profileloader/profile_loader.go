package profileloader

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/graph-gophers/dataloader"

	"github.com/rpattn/influencer-api/internal/domain"
	"github.com/rpattn/influencer-api/internal/repository"
)

// ProfileLoader batches identifier lookups made while serving one request.
type ProfileLoader struct {
	Loader *dataloader.Loader
}

func keyFor(name domain.FilterName, value string) dataloader.Key {
	if name == domain.FilterID {
		value = canonicalID(value)
	}
	return dataloader.StringKey(string(name) + ":" + value)
}

// canonicalID renders uuid and integer ids the way the store prints them, so
// "00042" and an upper-case uuid match their stored rows.
func canonicalID(value string) string {
	trimmed := strings.TrimSpace(value)
	if id, err := uuid.Parse(trimmed); err == nil {
		return id.String()
	}
	if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return strconv.FormatInt(n, 10)
	}
	return value
}

func splitKey(key dataloader.Key) (domain.FilterName, string, error) {
	name, value, ok := strings.Cut(key.String(), ":")
	if !ok {
		return "", "", fmt.Errorf("invalid profile key %q", key.String())
	}
	filter := domain.FilterName(name)
	if !filter.IsIdentifier() {
		return "", "", fmt.Errorf("invalid profile key %q", key.String())
	}
	return filter, value, nil
}

// NewProfileLoader creates a loader that resolves id and username keys against repo.
func NewProfileLoader(repo repository.InfluencerRepository) *ProfileLoader {
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		results := make([]*dataloader.Result, len(keys))

		// Group key positions by identifier column
		positions := make(map[domain.FilterName]map[string][]int)
		for i, k := range keys {
			name, value, err := splitKey(k)
			if err != nil {
				results[i] = &dataloader.Result{Error: err}
				continue
			}
			if positions[name] == nil {
				positions[name] = make(map[string][]int)
			}
			positions[name][value] = append(positions[name][value], i)
		}

		for name, byValue := range positions {
			values := make([]string, 0, len(byValue))
			for v := range byValue {
				values = append(values, v)
			}

			records, err := repo.FindByIdentifiers(ctx, name, values)
			if err != nil {
				for _, idxs := range byValue {
					for _, i := range idxs {
						results[i] = &dataloader.Result{Error: err}
					}
				}
				continue
			}

			found := make(map[string]domain.Record, len(records))
			for _, record := range records {
				var key string
				if name == domain.FilterID {
					key = record.ID()
				} else {
					key = record.Key().Username
				}
				if _, seen := found[key]; !seen {
					found[key] = record
				}
			}

			for value, idxs := range byValue {
				record, ok := found[value]
				for _, i := range idxs {
					if ok {
						results[i] = &dataloader.Result{Data: record}
					} else {
						results[i] = &dataloader.Result{Data: nil}
					}
				}
			}
		}

		return results
	}

	loader := dataloader.NewBatchedLoader(batchFn, dataloader.WithWait(5*time.Millisecond))

	return &ProfileLoader{Loader: loader}
}

// Load resolves a single profile, returning domain.ErrNotFound when none matches.
func (l *ProfileLoader) Load(ctx context.Context, name domain.FilterName, value string) (domain.Record, error) {
	return l.LoadThunk(ctx, name, value)()
}

// LoadThunk queues a lookup and returns a function that blocks until its batch completes.
func (l *ProfileLoader) LoadThunk(ctx context.Context, name domain.FilterName, value string) func() (domain.Record, error) {
	thunk := l.Loader.Load(ctx, keyFor(name, value))
	return func() (domain.Record, error) {
		data, err := thunk()
		if err != nil {
			return nil, err
		}
		record, ok := data.(domain.Record)
		if !ok || record == nil {
			return nil, domain.ErrNotFound
		}
		return record, nil
	}
}

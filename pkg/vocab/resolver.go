package vocab

import (
	"context"
	"fmt"

	"github.com/japaniel/lingoreader/pkg/segment"
)

// Store is the read side of the vocabulary the resolver needs. FindWords
// returns the entries whose key is in keys, indexed by key; missing keys are
// simply absent from the map.
type Store interface {
	FindWords(ctx context.Context, languageID int64, keys []string) (map[string]Entry, error)
}

// Resolver annotates word tokens with their stored learning status.
type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns a copy of tokens where every word token carries the status
// stored for its key in languageID, or New when none is stored. Non-word tokens
// are left without a status. The store is queried once per call. Resolve only
// reads, so running it again over its own output yields the same result.
func (r *Resolver) Resolve(ctx context.Context, languageID int64, tokens []segment.Token) ([]segment.Token, error) {
	keys := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if t.Type != segment.Word {
			continue
		}
		k := Key(t.Content)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}

	var found map[string]Entry
	if len(keys) > 0 {
		var err error
		found, err = r.store.FindWords(ctx, languageID, keys)
		if err != nil {
			return nil, fmt.Errorf("resolve statuses: %w", err)
		}
	}

	out := make([]segment.Token, len(tokens))
	for i, t := range tokens {
		out[i] = t
		if t.Type != segment.Word {
			continue
		}
		status := int(New)
		if e, ok := found[Key(t.Content)]; ok {
			status = int(e.Status)
		}
		out[i].Status = &status
	}
	return out, nil
}

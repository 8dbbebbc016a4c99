package client

import (
	"context"
	"sync"

	"github.com/pmorken/kinsource/internal/resolve"
)

// FetchMany fetches and resolves every URL concurrently and returns the
// views keyed by the original URL strings. The join is all-or-nothing: if
// any fetch fails, the first failure (in input order) is returned and the
// sibling results are discarded. In-flight siblings are not cancelled; they
// run to completion on their own goroutines.
//
// Each goroutine writes only its own slot, so no result state is shared
// between in-flight fetches.
func (c *Client) FetchMany(ctx context.Context, urls []string) (map[string]*resolve.View, error) {
	if len(urls) == 0 {
		return map[string]*resolve.View{}, nil
	}

	views := make([]*resolve.View, len(urls))
	errs := make([]error, len(urls))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, c.workers)

	for i, rawURL := range urls {
		wg.Add(1)
		go func(idx int, u string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			env, err := c.getEnvelope(ctx, c.apiURL(u), nil)
			if err != nil {
				errs[idx] = err
				return
			}
			views[idx] = resolve.Resolve(env, resolve.Options{IncludeDescriptions: true})
		}(i, rawURL)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	results := make(map[string]*resolve.View, len(urls))
	for i, u := range urls {
		results[u] = views[i]
	}
	return results, nil
}

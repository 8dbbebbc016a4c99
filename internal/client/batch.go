package client

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pmorken/kinsource/internal/resolve"
	"github.com/pmorken/kinsource/internal/worker"
)

// SourcesFetcher fetches source references for one entity URL
type SourcesFetcher interface {
	SourceRefs(ctx context.Context, entityURL string) (*resolve.View, error)
}

// SourcesJob fetches one entity's source references on the pool
type SourcesJob struct {
	URL     string
	Fetcher SourcesFetcher
}

// Execute runs the fetch
func (j *SourcesJob) Execute(ctx context.Context) worker.Result {
	view, err := j.Fetcher.SourceRefs(ctx, j.URL)
	return &SourcesResult{
		URL:   j.URL,
		View:  view,
		Error: err,
	}
}

// SourcesResult is the outcome of one batch entry. Unlike FetchMany, batch
// processing keeps per-URL failures alongside successes instead of failing
// the whole run.
type SourcesResult struct {
	URL   string
	View  *resolve.View
	Error error
}

// GetError returns the fetch error, if any
func (r *SourcesResult) GetError() error {
	return r.Error
}

// BatchProcessor fetches source references for many entities concurrently
type BatchProcessor struct {
	fetcher     SourcesFetcher
	concurrency int
}

// NewBatchProcessor creates a batch processor
func NewBatchProcessor(fetcher SourcesFetcher, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		fetcher:     fetcher,
		concurrency: concurrency,
	}
}

// ProcessURLs fetches source references for every URL on a bounded pool
func (b *BatchProcessor) ProcessURLs(ctx context.Context, urls []string) []*SourcesResult {
	if len(urls) == 0 {
		return []*SourcesResult{}
	}

	pool := worker.NewPool(b.concurrency)
	pool.Start()

	for _, u := range urls {
		pool.Submit(&SourcesJob{URL: u, Fetcher: b.fetcher})
	}

	results := pool.Wait()

	sourcesResults := make([]*SourcesResult, len(results))
	for i, result := range results {
		sourcesResults[i] = result.(*SourcesResult)
	}
	return sourcesResults
}

// ProcessFile reads entity URLs from a file (one per line, # comments
// allowed) and processes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*SourcesResult, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open url list: %w", err)
	}
	defer func() { _ = f.Close() }()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read url list: %w", err)
	}

	return b.ProcessURLs(ctx, urls), nil
}

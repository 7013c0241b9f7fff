// Package batch fans preview work out over a list of URLs, isolating
// per-item failure and aggregating results for the caller.
package batch

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/linkpeek/linkpeek/extractor"
	"github.com/linkpeek/linkpeek/fetcher"
	"github.com/linkpeek/linkpeek/normalizer"
	"github.com/linkpeek/linkpeek/types"
	"go.uber.org/zap"
)

// Config - Processing policy for one processor instance
type Config struct {
	MaxWorkers int // Concurrent fetches per request
	PageSize   int // URLs per paged-mode call
}

// Processor runs the normalize -> fetch -> extract pipeline over batches.
// It holds no per-request state; every call is independent.
type Processor struct {
	fetcher    fetcher.Fetcher
	extractor  extractor.Extractor
	maxWorkers int
	pageSize   int
}

// NewProcessor creates a Processor over the given fetcher and extractor.
func NewProcessor(f fetcher.Fetcher, e extractor.Extractor, cfg *Config) *Processor {
	maxWorkers := cfg.MaxWorkers
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	pageSize := cfg.PageSize
	if pageSize < 1 {
		pageSize = 5
	}
	return &Processor{
		fetcher:    f,
		extractor:  e,
		maxWorkers: maxWorkers,
		pageSize:   pageSize,
	}
}

// ProcessAll previews every URL concurrently and returns one record per
// input, index-aligned, plus summary counts.
func (p *Processor) ProcessAll(ctx context.Context, urls []string) *types.BatchResponse {
	zap.S().Debugw("processing whole batch", "count", len(urls), "workers", p.maxWorkers)

	results := p.run(ctx, urls)

	summary := types.Summary{Total: len(results)}
	for _, r := range results {
		if r.Success {
			summary.Successful++
		} else {
			summary.Failed++
		}
		if r.Image != nil {
			summary.WithImages++
		}
	}

	zap.S().Infow("completed batch",
		"total", summary.Total,
		"successful", summary.Successful,
		"failed", summary.Failed,
		"with_images", summary.WithImages)

	return &types.BatchResponse{Results: results, Summary: summary}
}

// PageBounds returns the [start, end) bounds of the pageIndex'th
// fixed-size page over total items. Any index past the last page,
// however large, yields the empty bounds [total, total).
func PageBounds(total int, pageIndex int, pageSize int) (int, int) {
	if pageSize < 1 {
		pageSize = 5
	}
	if pageIndex < 0 {
		pageIndex = 0
	}
	// checked by division so pageIndex*pageSize cannot overflow
	if pageIndex > total/pageSize {
		return total, total
	}
	start := pageIndex * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}
	return start, end
}

// ProcessPage previews only the pageIndex'th fixed-size slice of urls.
// The server keeps no state between calls; the caller advances pageIndex
// until IsComplete.
func (p *Processor) ProcessPage(ctx context.Context, urls []string, pageIndex int) *types.PageResponse {
	if pageIndex < 0 {
		pageIndex = 0
	}

	start, end := PageBounds(len(urls), pageIndex, p.pageSize)

	zap.S().Debugw("processing batch page",
		"page_index", pageIndex,
		"start", start,
		"end", end,
		"total", len(urls))

	results := p.run(ctx, urls[start:end])

	return &types.PageResponse{
		Results:        results,
		BatchIndex:     pageIndex,
		IsComplete:     end >= len(urls),
		TotalProcessed: end,
		TotalUrls:      len(urls),
	}
}

// run fetches and extracts the given URLs over a bounded worker pool.
// Results are collected by index so output order always matches input
// order regardless of completion order. A slow or failing item never
// cancels its siblings.
func (p *Processor) run(ctx context.Context, urls []string) []types.MetadataRecord {
	results := make([]types.MetadataRecord, len(urls))
	if len(urls) == 0 {
		return results
	}

	jobs := make(chan int, len(urls))

	nWorkers := p.maxWorkers
	if nWorkers > len(urls) {
		nWorkers = len(urls)
	}

	wg := &sync.WaitGroup{}
	for w := 0; w < nWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = p.processOne(ctx, urls[i])
			}
		}()
	}

	for i := range urls {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// processOne runs the full pipeline for a single URL. Classified fetch
// failures become failed records; anything unexpected (a panic inside
// extraction, say) is recovered into a PROCESSING_FAILED record so one
// item can never take down the batch.
func (p *Processor) processOne(ctx context.Context, rawURL string) (rec types.MetadataRecord) {
	defer func() {
		if r := recover(); r != nil {
			zap.S().Errorw("item processing panicked", "url", rawURL, "panic", r)
			rec = processingFailedRecord(rawURL)
		}
	}()

	target := normalizer.Normalize(rawURL)
	if target == "" {
		return failureRecord(rawURL, target, types.FailUnknown)
	}

	res := p.fetcher.Fetch(ctx, target)
	if !res.OK() {
		return failureRecord(rawURL, target, res.Failure)
	}

	rec = p.extractor.Extract(target, res.Body)
	rec.URL = rawURL // echo the caller's input
	return rec
}

// failureRecord builds the record for a classified fetch failure. The
// description carries the human-readable reason, the error field the
// machine-readable kind.
func failureRecord(rawURL string, target string, kind types.FailureKind) types.MetadataRecord {
	errTag := string(kind)
	return types.MetadataRecord{
		URL:         rawURL,
		Title:       "Failed to load",
		Description: "Error: " + kind.Reason(),
		Image:       nil,
		SiteName:    hostName(target),
		Favicon:     nil,
		Type:        "error",
		Success:     false,
		Error:       &errTag,
	}
}

func processingFailedRecord(rawURL string) types.MetadataRecord {
	errTag := string(types.FailProcessing)
	return types.MetadataRecord{
		URL:         rawURL,
		Title:       "Processing failed",
		Description: types.FailProcessing.Reason(),
		Image:       nil,
		Success:     false,
		Error:       &errTag,
	}
}

func hostName(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

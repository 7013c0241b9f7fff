package batch

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/linkpeek/linkpeek/extractor"
	"github.com/linkpeek/linkpeek/fetcher"
	"github.com/linkpeek/linkpeek/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher serves canned results keyed by URL and records concurrency.
type fakeFetcher struct {
	mu         sync.Mutex
	results    map[string]fetcher.Result
	delay      time.Duration
	inFlight   int32
	maxSeen    int32
	panicOn    string
	fetchOrder []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, urlStr string) fetcher.Result {
	cur := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		max := atomic.LoadInt32(&f.maxSeen)
		if cur <= max || atomic.CompareAndSwapInt32(&f.maxSeen, max, cur) {
			break
		}
	}

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.fetchOrder = append(f.fetchOrder, urlStr)
	f.mu.Unlock()

	if f.panicOn != "" && strings.Contains(urlStr, f.panicOn) {
		panic("boom")
	}

	if res, ok := f.results[urlStr]; ok {
		return res
	}
	return fetcher.Result{StatusCode: 200, Body: "<html><head><title>" + urlStr + "</title></head></html>"}
}

func newTestProcessor(f fetcher.Fetcher, maxWorkers int) *Processor {
	return NewProcessor(f, extractor.New(), &Config{MaxWorkers: maxWorkers, PageSize: 5})
}

func TestProcessAll_OneRecordPerURLInOrder(t *testing.T) {
	urls := []string{"https://a.com", "https://b.com", "https://c.com", "https://d.com"}
	p := newTestProcessor(&fakeFetcher{}, 8)

	resp := p.ProcessAll(context.Background(), urls)

	require.Len(t, resp.Results, len(urls))
	for i, u := range urls {
		assert.Equal(t, u, resp.Results[i].URL, "index %d", i)
		assert.True(t, resp.Results[i].Success)
	}
	assert.Equal(t, types.Summary{Total: 4, Successful: 4, Failed: 0, WithImages: 0}, resp.Summary)
}

func TestProcessAll_FailureIsolation(t *testing.T) {
	urls := []string{"https://ok1.com", "https://down.com", "https://ok2.com"}
	f := &fakeFetcher{results: map[string]fetcher.Result{
		"https://down.com": {Failure: types.FailTimeout},
	}}
	p := newTestProcessor(f, 4)

	resp := p.ProcessAll(context.Background(), urls)

	require.Len(t, resp.Results, 3)

	failed := resp.Results[1]
	assert.False(t, failed.Success)
	assert.Equal(t, "Failed to load", failed.Title)
	require.NotNil(t, failed.Error)
	assert.Equal(t, "TIMEOUT", *failed.Error)
	assert.Contains(t, strings.ToLower(failed.Description), "timeout")
	assert.Equal(t, "down.com", failed.SiteName)
	assert.Equal(t, "error", failed.Type)
	assert.Nil(t, failed.Image)
	assert.Nil(t, failed.Favicon)

	assert.True(t, resp.Results[0].Success)
	assert.True(t, resp.Results[2].Success)
	assert.Equal(t, 2, resp.Summary.Successful)
	assert.Equal(t, 1, resp.Summary.Failed)
}

func TestProcessAll_PanicBecomesProcessingFailed(t *testing.T) {
	urls := []string{"https://fine.com", "https://explodes.com"}
	p := newTestProcessor(&fakeFetcher{panicOn: "explodes"}, 2)

	resp := p.ProcessAll(context.Background(), urls)

	require.Len(t, resp.Results, 2)
	assert.True(t, resp.Results[0].Success)

	rec := resp.Results[1]
	assert.False(t, rec.Success)
	assert.Equal(t, "Processing failed", rec.Title)
	require.NotNil(t, rec.Error)
	assert.Equal(t, "PROCESSING_FAILED", *rec.Error)
	assert.Equal(t, "An unexpected error occurred", rec.Description)
}

func TestProcessAll_NormalizesRawInput(t *testing.T) {
	f := &fakeFetcher{}
	p := newTestProcessor(f, 1)

	resp := p.ProcessAll(context.Background(), []string{"example.com"})

	require.Len(t, resp.Results, 1)
	// record echoes the raw input while the fetch used the normalized URL
	assert.Equal(t, "example.com", resp.Results[0].URL)
	require.Len(t, f.fetchOrder, 1)
	assert.Equal(t, "https://www.example.com", f.fetchOrder[0])
}

func TestProcessAll_SummaryCountsImages(t *testing.T) {
	f := &fakeFetcher{results: map[string]fetcher.Result{
		"https://img.com": {StatusCode: 200, Body: `<html><head><meta property="og:image" content="https://img.com/pic.jpg"><title>x</title></head></html>`},
	}}
	p := newTestProcessor(f, 2)

	resp := p.ProcessAll(context.Background(), []string{"https://img.com", "https://plain.com"})

	assert.Equal(t, 1, resp.Summary.WithImages)
	assert.Equal(t, 2, resp.Summary.Successful)
}

func TestProcessAll_BoundedConcurrency(t *testing.T) {
	urls := make([]string, 20)
	for i := range urls {
		urls[i] = "https://site" + string(rune('a'+i)) + ".com"
	}
	f := &fakeFetcher{delay: 20 * time.Millisecond}
	p := newTestProcessor(f, 4)

	resp := p.ProcessAll(context.Background(), urls)

	require.Len(t, resp.Results, 20)
	assert.LessOrEqual(t, atomic.LoadInt32(&f.maxSeen), int32(4))
	assert.Greater(t, atomic.LoadInt32(&f.maxSeen), int32(1))
}

func TestProcessPage_FirstPage(t *testing.T) {
	urls := make([]string, 12)
	for i := range urls {
		urls[i] = "https://page" + string(rune('a'+i)) + ".com"
	}
	p := newTestProcessor(&fakeFetcher{}, 8)

	resp := p.ProcessPage(context.Background(), urls, 0)

	require.Len(t, resp.Results, 5)
	assert.Equal(t, 0, resp.BatchIndex)
	assert.False(t, resp.IsComplete)
	assert.Equal(t, 5, resp.TotalProcessed)
	assert.Equal(t, 12, resp.TotalUrls)
	assert.Equal(t, urls[0], resp.Results[0].URL)
	assert.Equal(t, urls[4], resp.Results[4].URL)
}

func TestProcessPage_LastPartialPage(t *testing.T) {
	urls := make([]string, 12)
	for i := range urls {
		urls[i] = "https://page" + string(rune('a'+i)) + ".com"
	}
	p := newTestProcessor(&fakeFetcher{}, 8)

	resp := p.ProcessPage(context.Background(), urls, 2)

	require.Len(t, resp.Results, 2)
	assert.True(t, resp.IsComplete)
	assert.Equal(t, 12, resp.TotalProcessed)
	assert.Equal(t, urls[10], resp.Results[0].URL)
	assert.Equal(t, urls[11], resp.Results[1].URL)
}

func TestPageBounds(t *testing.T) {
	tests := []struct {
		name          string
		total         int
		pageIndex     int
		pageSize      int
		expectedStart int
		expectedEnd   int
	}{
		{"first page", 12, 0, 5, 0, 5},
		{"middle page", 12, 1, 5, 5, 10},
		{"last partial page", 12, 2, 5, 10, 12},
		{"exact last page", 10, 1, 5, 5, 10},
		{"index one past end", 10, 2, 5, 10, 10},
		{"index far past end", 1, 5, 5, 1, 1},
		{"negative index clamps to first page", 12, -3, 5, 0, 5},
		{"empty list", 0, 0, 5, 0, 0},
		{"huge index does not overflow", 1, 1844674407370955162, 5, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := PageBounds(tt.total, tt.pageIndex, tt.pageSize)
			assert.Equal(t, tt.expectedStart, start)
			assert.Equal(t, tt.expectedEnd, end)
		})
	}
}

func TestProcessPage_HugeIndex(t *testing.T) {
	p := newTestProcessor(&fakeFetcher{}, 8)

	resp := p.ProcessPage(context.Background(), []string{"https://a.com"}, 1844674407370955162)

	assert.Empty(t, resp.Results)
	assert.True(t, resp.IsComplete)
	assert.Equal(t, 1, resp.TotalProcessed)
	assert.Equal(t, 1, resp.TotalUrls)
}

func TestProcessPage_IndexPastEnd(t *testing.T) {
	p := newTestProcessor(&fakeFetcher{}, 8)

	resp := p.ProcessPage(context.Background(), []string{"https://a.com"}, 5)

	assert.Empty(t, resp.Results)
	assert.True(t, resp.IsComplete)
	assert.Equal(t, 1, resp.TotalProcessed)
	assert.Equal(t, 1, resp.TotalUrls)
}

func TestProcessAll_EmptyInput(t *testing.T) {
	p := newTestProcessor(&fakeFetcher{}, 8)
	resp := p.ProcessAll(context.Background(), nil)

	assert.Empty(t, resp.Results)
	assert.Equal(t, 0, resp.Summary.Total)
}

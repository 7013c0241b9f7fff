package fetcher

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/linkpeek/linkpeek/types"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
)

// Config - Fetch policy. Timeout is in seconds; interactive callers use 10,
// lower-latency variants may set 5. Policy lives here, never at call sites.
type Config struct {
	Timeout         int
	UserAgent       string
	FollowRedirects bool
	MaxBodyBytes    int64
}

// Result - The outcome of one fetch attempt. Either a success carrying the
// decoded HTML body, or a tagged failure. Fetch never returns a Go error
// past its boundary; every outcome is a Result value.
type Result struct {
	StatusCode int
	Body       string
	Failure    types.FailureKind // empty on success
}

// OK reports whether the fetch succeeded.
func (r Result) OK() bool {
	return r.Failure == ""
}

// Fetcher performs a single networked page fetch with timeout, spoofed
// identity headers and redirect following, classifying every failure.
type Fetcher interface {
	Fetch(ctx context.Context, urlStr string) Result
}

// httpFetcher implements Fetcher over a shared http.Client.
type httpFetcher struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
}

// NewHTTPFetcher creates a new httpFetcher. The client is constructed once
// and reused for every fetch.
func NewHTTPFetcher(cfg *Config) Fetcher {
	zap.S().Infow("creating new HTTP fetcher",
		"timeout", cfg.Timeout,
		"user_agent", cfg.UserAgent,
		"follow_redirects", cfg.FollowRedirects,
		"max_body_bytes", cfg.MaxBodyBytes)

	client := &http.Client{
		Timeout: time.Duration(cfg.Timeout) * time.Second,
	}
	if !cfg.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 2 << 20
	}

	return &httpFetcher{
		client:       client,
		userAgent:    cfg.UserAgent,
		maxBodyBytes: maxBody,
	}
}

// Fetch performs one GET against urlStr and classifies the outcome.
func (f *httpFetcher) Fetch(ctx context.Context, urlStr string) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		zap.S().Warnw("failed to build request", "url", urlStr, "error", err)
		return Result{Failure: types.FailNetwork}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		kind := classifyTransportError(err)
		zap.S().Warnw("fetch failed", "url", urlStr, "kind", kind, "error", err)
		return Result{Failure: kind}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		kind := classifyStatus(resp.StatusCode)
		zap.S().Warnw("fetch returned non-2xx status",
			"url", urlStr,
			"status", resp.StatusCode,
			"kind", kind)
		return Result{StatusCode: resp.StatusCode, Failure: kind}
	}

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		kind := classifyTransportError(err)
		zap.S().Warnw("failed to read response body", "url", urlStr, "kind", kind, "error", err)
		return Result{StatusCode: resp.StatusCode, Failure: kind}
	}

	zap.S().Debugw("response received",
		"url", urlStr,
		"status", resp.StatusCode,
		"bytes", len(bodyBytes),
		"content_type", resp.Header.Get("Content-Type"))

	return Result{
		StatusCode: resp.StatusCode,
		Body:       decodeBody(bodyBytes, resp.Header.Get("Content-Type")),
	}
}

// classifyTransportError maps transport-level failures to a kind:
// a timeout or cancelled deadline becomes TIMEOUT, everything else
// without an HTTP response is NETWORK_ERROR.
func classifyTransportError(err error) types.FailureKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return types.FailTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return types.FailTimeout
	}
	return types.FailNetwork
}

// classifyStatus maps a non-2xx HTTP status to a failure kind.
func classifyStatus(status int) types.FailureKind {
	switch status {
	case http.StatusNotFound:
		return types.FailNotFound
	case http.StatusForbidden:
		return types.FailForbidden
	case http.StatusInternalServerError:
		return types.FailServer
	default:
		return types.FailUnknown
	}
}

// decodeBody converts the raw bytes to UTF-8 using the response charset.
// Falls back to the raw bytes when the payload is already valid UTF-8.
func decodeBody(data []byte, contentType string) string {
	enc, _, _ := charset.DetermineEncoding(data, contentType)
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		if utf8.Valid(data) {
			return string(data)
		}
		return strings.ToValidUTF8(string(data), "")
	}
	return string(decoded)
}

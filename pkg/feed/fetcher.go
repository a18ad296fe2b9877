package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/umputun/feedrank/pkg/domain"
)

// defaultMaxSize limits the feed body if no explicit limit set
const defaultMaxSize = 5 * 1024 * 1024

var (
	// ErrNetwork returned when the feed can't be retrieved
	ErrNetwork = errors.New("feed network error")
	// ErrParse returned when the retrieved bytes are not a feed document
	ErrParse = errors.New("feed parse error")

	errTooLarge = errors.New("feed body too large")
)

// Fetcher retrieves and parses RSS/Atom feeds. It never retries and never caches.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	maxSize   int64
}

// Option func type for Fetcher
type Option func(f *Fetcher)

// WithUserAgent sets User-Agent header for feed requests
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) { f.userAgent = ua }
}

// WithMaxSize limits the size of the feed body
func WithMaxSize(size int64) Option {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxSize = size
		}
	}
}

// WithClient sets custom http client
func WithClient(client *http.Client) Option {
	return func(f *Fetcher) { f.client = client }
}

// NewFetcher creates a feed fetcher with the given request timeout
func NewFetcher(timeout time.Duration, opts ...Option) *Fetcher {
	res := &Fetcher{
		timeout:   timeout,
		userAgent: "feedrank/1.0",
		maxSize:   defaultMaxSize,
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// Fetch retrieves the feed from url and parses it into a channel.
// Errors match ErrNetwork or ErrParse with errors.Is.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*domain.Channel, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	body, err := f.fetch(ctx, url)
	if errors.Is(err, errTooLarge) {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	res := &domain.Channel{
		Title: feed.Title,
		Link:  feed.Link,
		Items: make([]domain.Item, 0, len(feed.Items)),
	}
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		res.Items = append(res.Items, domain.Item{
			Title:       item.Title,
			Link:        item.Link,
			Description: item.Description,
		})
	}
	return res, nil
}

// fetch reads the whole body, the feed has to be complete before parsing
func (f *Fetcher) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	addFeedHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxSize {
		return nil, fmt.Errorf("%w, limit %d bytes", errTooLarge, f.maxSize)
	}
	return body, nil
}

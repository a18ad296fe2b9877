// Package pipeline runs the per-request feed flow: fetch, extract, rank and render.
// Nothing is shared between runs, each call re-fetches the feed.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/feedrank/pkg/domain"
	"github.com/umputun/feedrank/pkg/extract"
	"github.com/umputun/feedrank/pkg/feed"
	"github.com/umputun/feedrank/pkg/rank"
	"github.com/umputun/feedrank/pkg/stream"
)

//go:generate moq -out mocks/fetcher.go -pkg mocks -skip-ensure -fmt goimports . Fetcher

// Fetcher retrieves and parses the feed
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*domain.Channel, error)
}

// Renderer makes markup chunks for the streamed page
type Renderer interface {
	Loading() (string, error)
	Failure(msg string) (string, error)
	Stream(ctx context.Context, title string, items []domain.RankedItem, emit func(chunk string) error) error
}

// Pipeline turns a feed url into a ranked list of items
type Pipeline struct {
	fetcher Fetcher
	feedURL string
	workers int
}

// Config for pipeline
type Config struct {
	Fetcher Fetcher
	FeedURL string
	Workers int // max concurrent description extractions, 1 if not set
}

// Result is the ranked feed
type Result struct {
	Title string
	Link  string
	Items []domain.RankedItem
}

// New makes a pipeline
func New(cfg Config) *Pipeline {
	res := &Pipeline{fetcher: cfg.Fetcher, feedURL: cfg.FeedURL, workers: cfg.Workers}
	if res.workers < 1 {
		res.workers = 1
	}
	return res
}

// Run fetches the feed, extracts every item description exactly once and ranks items by score.
// Extraction starts after the whole feed is fetched and ranking after all extractions are done.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	ch, err := p.fetcher.Fetch(ctx, p.feedURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", p.feedURL, err)
	}
	if ch == nil {
		return nil, fmt.Errorf("fetch %s: %w: no channel", p.feedURL, feed.ErrParse)
	}

	annotated := make([]domain.RankedItem, len(ch.Items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, item := range ch.Items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			annotated[i] = rank.Annotate(item, extract.Description(item.Description))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("extract descriptions: %w", err)
	}

	lgr.Printf("[DEBUG] feed %q fetched, %d items", ch.Title, len(annotated))
	return &Result{Title: ch.Title, Link: ch.Link, Items: rank.Rank(annotated)}, nil
}

// Source returns the page body source: the loading placeholder first, then the ranked view.
// Fetch and parse failures are rendered as an error block, they never break the stream.
func (p *Pipeline) Source(r Renderer) stream.Source {
	return func(ctx context.Context, emit func(chunk string) error) error {
		loading, err := r.Loading()
		if err != nil {
			return fmt.Errorf("render loading: %w", err)
		}
		if err = emit(loading); err != nil {
			return err
		}

		res, err := p.Run(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr // consumer is gone, nothing to render
			}
			lgr.Printf("[WARN] failed to load feed: %v", err)
			failure, ferr := r.Failure(FailureMessage(err))
			if ferr != nil {
				return fmt.Errorf("render failure: %w", ferr)
			}
			return emit(failure)
		}

		return r.Stream(ctx, res.Title, res.Items, emit)
	}
}

// FailureMessage converts pipeline error to a short user facing message
func FailureMessage(err error) string {
	switch {
	case errors.Is(err, feed.ErrNetwork):
		return "The feed source could not be reached. Please try again later."
	case errors.Is(err, feed.ErrParse):
		return "The feed source returned an invalid document."
	default:
		return "The feed could not be loaded."
	}
}

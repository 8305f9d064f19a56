package web_fetch

import (
	"context"
	"time"

	"github.com/scourbot/scour/tools/web_fetch/chromedp"
	"github.com/scourbot/scour/tools/web_fetch/httpclient"
	"github.com/scourbot/scour/tools/web_fetch/models"
)

const (
	DefaultAttempts        = 3
	DefaultTimeout         = 20 * time.Second
	DefaultBackoff         = time.Second
	DefaultMinArticleChars = 200
	DefaultMaxChars        = 20000
)

type WebFetcher interface {
	Exec(ctx context.Context, url string) (models.Result, error)
}

type FetcherType string

const (
	HTTPFetcherType     FetcherType = "http"
	ChromedpFetcherType FetcherType = "chromedp"
)

type Error struct{ Msg string }

func (e *Error) Error() string { return e.Msg }

// Options bound the retry budget and content thresholds of a fetcher.
type Options struct {
	Attempts        int
	Timeout         time.Duration
	Backoff         time.Duration
	MinArticleChars int
	MaxChars        int
}

func (o Options) withDefaults() Options {
	if o.Attempts <= 0 {
		o.Attempts = DefaultAttempts
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Backoff <= 0 {
		o.Backoff = DefaultBackoff
	}
	if o.MinArticleChars <= 0 {
		o.MinArticleChars = DefaultMinArticleChars
	}
	if o.MaxChars <= 0 {
		o.MaxChars = DefaultMaxChars
	}
	return o
}

func NewWebFetcher(fetcherType FetcherType, opts Options) (WebFetcher, error) {
	opts = opts.withDefaults()
	switch fetcherType {
	case HTTPFetcherType:
		return &httpclient.Fetch{
			Attempts:        opts.Attempts,
			Timeout:         opts.Timeout,
			Backoff:         opts.Backoff,
			MinArticleChars: opts.MinArticleChars,
			MaxChars:        opts.MaxChars,
		}, nil
	case ChromedpFetcherType:
		return &chromedp.Fetch{
			Timeout:         opts.Timeout,
			MinArticleChars: opts.MinArticleChars,
			MaxChars:        opts.MaxChars,
		}, nil
	default:
		return nil, &Error{"unsupported fetcher type"}
	}
}

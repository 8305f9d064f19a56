package web_search

import (
	"context"
	"time"

	"github.com/scourbot/scour/tools/web_search/duck"
	"github.com/scourbot/scour/tools/web_search/models"
)

type WebSearcher interface {
	Discover(ctx context.Context, q string, k int) ([]models.Result, error)
}

type Provider string

const (
	DuckProvider Provider = "duck"
)

type Error struct{ Msg string }

func (e *Error) Error() string { return e.Msg }

var ErrUnsupportedProvider = &Error{"unsupported provider"}

func NewWebSearcher(provider Provider, endpoint string, timeout time.Duration) (WebSearcher, error) {
	switch provider {
	case DuckProvider:
		return duck.Search{Endpoint: endpoint, Timeout: timeout}, nil
	default:
		return nil, ErrUnsupportedProvider
	}
}

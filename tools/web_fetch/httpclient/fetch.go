package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/scourbot/scour/internal/extract"
	"github.com/scourbot/scour/internal/identity"
	"github.com/scourbot/scour/tools/web_fetch/models"
)

// Fetch retrieves a page over plain HTTP, rotating identity profiles across
// attempts. A total failure yields an empty-text Result with a synthetic
// 599 status, never a hard error.
type Fetch struct {
	Attempts        int
	Timeout         time.Duration
	Backoff         time.Duration
	MinArticleChars int
	MaxChars        int

	// Client overrides the HTTP client, mainly for tests.
	Client *http.Client
}

func (f *Fetch) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return http.DefaultClient
}

// Exec tries up to Attempts timed GETs. Attempt i sends the identity
// profile i mod rotation size. On a body it prefers the readability
// extraction when it clears MinArticleChars, otherwise falls back to
// stripping all markup.
func (f *Fetch) Exec(ctx context.Context, link string) (models.Result, error) {
	if strings.TrimSpace(link) == "" {
		return models.Result{}, errors.New("invalid url")
	}
	attempts := f.Attempts
	if attempts <= 0 {
		attempts = 3
	}
	t0 := time.Now()
	lastStatus := 599
	for i := 0; i < attempts; i++ {
		if i > 0 && f.Backoff > 0 {
			time.Sleep(f.Backoff)
		}
		status, raw, err := f.attempt(ctx, link, i)
		if err != nil {
			lastStatus = 599
			continue
		}
		if status < 200 || status >= 300 {
			lastStatus = status
			continue
		}
		text, ok := extract.Article(raw, link)
		if !ok || len(text) <= f.MinArticleChars {
			text = extract.StripMarkup(raw)
		}
		if f.MaxChars > 0 && len(text) > f.MaxChars {
			text = text[:f.MaxChars]
		}
		return models.Result{
			URL:      link,
			Text:     strings.TrimSpace(text),
			Status:   status,
			Attempts: i + 1,
			FetchMS:  int(time.Since(t0) / time.Millisecond),
		}, nil
	}
	return models.Result{
		URL:      link,
		Status:   lastStatus,
		Attempts: attempts,
		FetchMS:  int(time.Since(t0) / time.Millisecond),
	}, nil
}

func (f *Fetch) attempt(ctx context.Context, link string, i int) (int, string, error) {
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(actx, http.MethodGet, link, nil)
	if err != nil {
		return 0, "", err
	}
	profile := identity.ForAttempt(i)
	req.Header.Set("User-Agent", profile.UserAgent)
	req.Header.Set("Accept-Language", profile.AcceptLanguage)

	resp, err := f.client().Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, "", err
	}
	return resp.StatusCode, string(body), nil
}

package chromedp

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/scourbot/scour/internal/extract"
	"github.com/scourbot/scour/internal/identity"
	"github.com/scourbot/scour/tools/web_fetch/models"
)

// Fetch renders a page in headless Chrome before extraction. Used for
// JS-heavy pages where a plain GET returns an empty shell. No identity
// rotation; the browser fingerprint dominates anyway.
type Fetch struct {
	Timeout         time.Duration
	MinArticleChars int
	MaxChars        int
}

func (f *Fetch) Exec(ctx context.Context, link string) (models.Result, error) {
	if strings.TrimSpace(link) == "" {
		return models.Result{}, errors.New("invalid url")
	}
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	t0 := time.Now()

	raw, err := outerHTML(ctx, link)
	if err != nil {
		return models.Result{
			URL: link, Status: 599, Attempts: 1,
			FetchMS: int(time.Since(t0) / time.Millisecond),
		}, nil
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
		Status:   200,
		Attempts: 1,
		FetchMS:  int(time.Since(t0) / time.Millisecond),
	}, nil
}

func outerHTML(ctx context.Context, link string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.UserAgent(identity.ForAttempt(0).UserAgent),
	)
	actx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	bctx, cancelBrowser := chromedp.NewContext(actx)
	defer cancelBrowser()

	var raw string
	err := chromedp.Run(bctx,
		chromedp.Navigate(link),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &raw, chromedp.ByQuery),
	)
	return raw, err
}

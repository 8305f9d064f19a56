package duck

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"

	"github.com/scourbot/scour/internal/extract"
	"github.com/scourbot/scour/internal/identity"
	"github.com/scourbot/scour/tools/web_search/models"
)

const DefaultEndpoint = "https://html.duckduckgo.com/html/"

// Search scrapes the DuckDuckGo HTML frontend. There is no official API
// contract; the markup is parsed defensively and any failure yields zero
// results rather than an error the loop would have to handle.
type Search struct {
	Endpoint string
	Timeout  time.Duration
}

// Discover issues one form POST with the query and collects up to k anchors
// whose target is an absolute http(s) URL. Title falls back to the URL
// itself; the snippet is the visible text of the enclosing block.
func (s Search) Discover(ctx context.Context, q string, k int) ([]models.Result, error) {
	endpoint := s.Endpoint
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultEndpoint
	}
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	form := url.Values{"q": []string{q}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	profile := identity.ForAttempt(0)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", profile.UserAgent)
	req.Header.Set("Accept-Language", profile.AcceptLanguage)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("search endpoint returned status %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, err
	}

	var out []models.Result
	for _, a := range dom.GetElementsByTagName(doc, "a") {
		if k > 0 && len(out) >= k {
			break
		}
		href := strings.TrimSpace(dom.GetAttribute(a, "href"))
		if !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://") {
			continue
		}
		title := extract.BlockText(a)
		if title == "" {
			title = href
		}
		out = append(out, models.Result{
			Title:   title,
			URL:     href,
			Snippet: extract.BlockText(a.Parent),
		})
	}
	return out, nil
}

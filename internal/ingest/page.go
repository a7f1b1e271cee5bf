package ingest

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

// pageFetcher pulls readable text out of a linked alert page, for
// feed items that carry only a link.
type pageFetcher struct {
	client *http.Client
}

func newPageFetcher(timeout time.Duration) *pageFetcher {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &pageFetcher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// textFor returns extracted page text, or "" on any failure. Callers
// treat a miss as "no extra text", never as an error.
func (pf *pageFetcher) textFor(pageURL string) string {
	req, err := http.NewRequest(http.MethodGet, pageURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", "firstwatch/1.0 (public-safety monitor)")

	resp, err := pf.client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return ""
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ""
	}

	parsed, _ := url.Parse(pageURL)
	article, err := readability.FromReader(strings.NewReader(string(body)), parsed)
	if err != nil {
		return ""
	}

	return truncateRunes(strings.TrimSpace(article.TextContent), 280)
}

// Package linkfetch downloads a learner-supplied page and reduces it to a
// short text summary for the prompt.
package linkfetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"regexp"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/dyatlov/go-opengraph/opengraph"

	"github.com/heartmarshall/learnflow-backend/internal/domain"
	"github.com/heartmarshall/learnflow-backend/internal/sanitize"
)

const (
	// MaxSummaryRunes bounds the returned summary.
	MaxSummaryRunes = 2000
	maxRedirects    = 5
	userAgent       = "LearnFlowBot/1.0 (+https://learnflow.app)"
)

var whitespace = regexp.MustCompile(`\s+`)

var errBlockedAddress = errors.New("address is not allowed")

// Fetcher retrieves HTML pages with a bounded body size and timeout.
type Fetcher struct {
	httpClient *http.Client
	maxBytes   int64
	log        *slog.Logger
}

// NewFetcher creates a Fetcher. Connections to loopback, private and
// link-local addresses are refused at dial time, which also covers redirects
// and DNS names resolving to internal hosts.
func NewFetcher(timeout time.Duration, maxBytes int64, logger *slog.Logger) *Fetcher {
	return newFetcher(timeout, maxBytes, logger, false)
}

func newFetcher(timeout time.Duration, maxBytes int64, logger *slog.Logger, allowPrivate bool) *Fetcher {
	dialer := &net.Dialer{Timeout: timeout}
	if !allowPrivate {
		dialer.Control = func(_, address string, _ syscall.RawConn) error {
			host, _, err := net.SplitHostPort(address)
			if err != nil {
				return err
			}
			if sanitize.BlockedHost(host) {
				return fmt.Errorf("%w: %s", errBlockedAddress, host)
			}
			return nil
		}
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = dialer.DialContext
	transport.Proxy = nil

	return &Fetcher{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return errors.New("too many redirects")
				}
				if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
					return fmt.Errorf("redirect to %s scheme", req.URL.Scheme)
				}
				if !allowPrivate && sanitize.BlockedHost(req.URL.Hostname()) {
					return fmt.Errorf("%w: redirect to %s", errBlockedAddress, req.URL.Hostname())
				}
				return nil
			},
		},
		maxBytes: maxBytes,
		log:      logger.With("adapter", "linkfetch"),
	}
}

// Fetch returns a summary of the page at rawURL. All failures wrap
// domain.ErrLinkFetch.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: create request: %v", domain.ErrLinkFetch, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrLinkFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: unexpected status %d", domain.ErrLinkFetch, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "text/html") && !strings.Contains(contentType, "application/xhtml") {
		return "", fmt.Errorf("%w: unsupported content type %q", domain.ErrLinkFetch, contentType)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %w", domain.ErrLinkFetch, err)
	}

	summary, err := summarize(body)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrLinkFetch, err)
	}

	f.log.DebugContext(ctx, "link fetched",
		slog.String("url", rawURL),
		slog.Int("bytes", len(body)),
		slog.Duration("took", time.Since(start)),
	)
	return summary, nil
}

// summarize prefers OpenGraph metadata and falls back to the document title,
// meta description and paragraph text.
func summarize(body []byte) (string, error) {
	og := opengraph.NewOpenGraph()
	if err := og.ProcessHTML(bytes.NewReader(body)); err != nil {
		return "", fmt.Errorf("parse opengraph: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, noscript, nav, footer").Remove()

	title := clean(og.Title)
	if title == "" {
		title = clean(doc.Find("title").First().Text())
	}
	if title == "" {
		title = clean(doc.Find("h1").First().Text())
	}

	description := clean(og.Description)
	if description == "" {
		if d, ok := doc.Find("meta[name='description']").First().Attr("content"); ok {
			description = clean(d)
		}
	}

	var paragraphs []string
	doc.Find("article p, main p, p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if t := clean(s.Text()); t != "" && !contains(paragraphs, t) {
			paragraphs = append(paragraphs, t)
		}
		return utf8.RuneCountInString(strings.Join(paragraphs, "\n")) < MaxSummaryRunes
	})

	var b strings.Builder
	if title != "" {
		b.WriteString("Title: " + title + "\n")
	}
	if description != "" {
		b.WriteString("Description: " + description + "\n")
	}
	if len(paragraphs) > 0 {
		b.WriteString("\n" + strings.Join(paragraphs, "\n"))
	}

	summary := strings.TrimSpace(b.String())
	if summary == "" {
		return "", errors.New("page has no readable text")
	}
	if utf8.RuneCountInString(summary) > MaxSummaryRunes {
		summary = string([]rune(summary)[:MaxSummaryRunes])
	}
	return summary, nil
}

func clean(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

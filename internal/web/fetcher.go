package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/leonardcser/docs-mcp/internal/kvcache"
)

const (
	RequestTimeout  = 20 * time.Second
	MaxResponseSize = 1 * 1024 * 1024 // 1MB
)

// Elements that never carry documentation content.
const chromeSelector = "script, style, noscript, iframe, object, embed, img, video, picture, svg, canvas, audio, form, input, button, select, textarea, nav, header, footer, aside"

// DocPage is a fetched documentation page reduced to Markdown.
type DocPage struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Markdown string `json:"markdown"`
}

// Fetcher downloads documentation pages and converts them to Markdown.
// Responses are kept in a short-lived KV cache so retried tool calls do not
// hammer the same docs site; pass a nil cache to fetch uncached.
type Fetcher struct {
	c     *colly.Collector
	cache kvcache.KV
	ttl   time.Duration
}

func NewFetcher(cache kvcache.KV, ttl time.Duration) *Fetcher {
	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.Async(false),
	)
	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       1 * time.Second,
	})
	c.SetRequestTimeout(RequestTimeout)
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", NextUserAgent())
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,text/markdown;q=0.9,text/plain;q=0.8,*/*;q=0.5")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.9")
	})
	return &Fetcher{c: c, cache: cache, ttl: ttl}
}

func fetchKey(rawURL string) string { return "docs_fetch|" + rawURL }

// Fetch downloads rawURL and returns it as a DocPage. HTML is scrubbed of
// page chrome and converted to Markdown; other text content types pass
// through verbatim. Binary responses are rejected.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*DocPage, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return nil, errors.New("url must start with http:// or https://")
	}

	if f.cache != nil {
		if v, err := f.cache.Get(fetchKey(rawURL)); err == nil {
			var page DocPage
			if json.Unmarshal(v, &page) == nil {
				return &page, nil
			}
		}
	}

	var body []byte
	var finalURL, contentType string

	originalCtx := f.c.Context
	f.c.Context = ctx
	defer func() { f.c.Context = originalCtx }()

	f.c.OnResponse(func(r *colly.Response) {
		if ctx.Err() != nil {
			return
		}
		finalURL = r.Request.URL.String()
		body = append([]byte(nil), r.Body...)
		contentType = r.Headers.Get("Content-Type")
	})

	if err := f.c.Visit(rawURL); err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if len(body) == 0 {
		return nil, errors.New("empty response body")
	}
	if len(body) > MaxResponseSize {
		body = append(body[:MaxResponseSize], []byte("\n\n... [response trimmed due to size]")...)
	}

	ct := strings.ToLower(contentType)
	if !strings.HasPrefix(ct, "text/") && !strings.Contains(ct, "xml") && !strings.Contains(ct, "json") {
		return nil, errors.New("unsupported content type: " + contentType)
	}

	page := &DocPage{URL: finalURL}
	if strings.Contains(ct, "text/html") {
		title, markdown, err := htmlToDocMarkdown(body)
		if err != nil {
			return nil, err
		}
		page.Title = title
		page.Markdown = markdown
	} else {
		page.Markdown = string(body)
	}

	if f.cache != nil {
		if b, err := json.Marshal(page); err == nil {
			_ = f.cache.Set(fetchKey(rawURL), b, f.ttl)
		}
	}
	return page, nil
}

// htmlToDocMarkdown strips page chrome from an HTML document and converts the
// remainder to Markdown. Falls back to whitespace-collapsed plain text when
// the conversion fails.
func htmlToDocMarkdown(body []byte) (title, markdown string, err error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}

	title = strings.TrimSpace(doc.Find("head > title").First().Text())
	doc.Find(chromeSelector).Remove()

	// Prefer the page's own main-content container when it declares one.
	content := doc.Find("main, article, [role=main]").First()
	var htmlStr string
	if content.Length() > 0 {
		htmlStr, err = content.Html()
	} else {
		htmlStr, err = doc.Find("body").Html()
	}
	if err != nil {
		return "", "", err
	}

	markdown, err = htmltomarkdown.ConvertString(htmlStr)
	if err != nil || strings.TrimSpace(markdown) == "" {
		text := strings.TrimSpace(doc.Find("body").Text())
		markdown = strings.Join(strings.Fields(text), " ")
	}
	return title, strings.TrimSpace(markdown), nil
}

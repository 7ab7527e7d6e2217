// Package blubrry scrapes podcast archive and episode pages from blubrry.com.
//
// The parser depends entirely on the site's current markup. Any redesign breaks it, and
// it surfaces as a *podcast.ParseError rather than being worked around.
package blubrry

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/bbdl-cli/bbdl/constant"
	"github.com/bbdl-cli/bbdl/podcast"
	"github.com/bbdl-cli/bbdl/util"
)

// Client fetches and parses pages from one Blubrry host.
type Client struct {
	http    *http.Client
	baseURL string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another host, e.g. a test server.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = base }
}

// WithHTTPClient sets the client used for page requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) { c.http = client }
}

// New returns a client for https://blubrry.com unless overridden.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		http:    http.DefaultClient,
		baseURL: constant.BlubrryBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}

	u, err := url.Parse(c.baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", c.baseURL)
	}

	return c, nil
}

// fetch retrieves rawURL and parses the body as HTML.
func (c *Client) fetch(ctx context.Context, rawURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &podcast.FetchError{URL: rawURL, Err: err}
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &podcast.FetchError{URL: rawURL, Err: err}
	}
	defer util.Ignore(resp.Body.Close)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &podcast.FetchError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status code: %d", resp.StatusCode),
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &podcast.FetchError{URL: rawURL, Err: fmt.Errorf("read body: %w", err)}
	}

	// Relative links resolve against the final URL after redirects.
	doc.Url = resp.Request.URL
	return doc, nil
}

// resolve turns href into an absolute URL relative to doc.
func resolve(doc *goquery.Document, href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	if doc.Url == nil {
		return ref.String(), nil
	}
	return doc.Url.ResolveReference(ref).String(), nil
}

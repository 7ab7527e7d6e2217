package blubrry

import (
	"context"
	"fmt"
	"iter"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/bbdl-cli/bbdl/constant"
	"github.com/bbdl-cli/bbdl/log"
	"github.com/bbdl-cli/bbdl/podcast"
)

// Episodes lists the archive of slug page by page.
//
// The sequence is lazy and single-use: each archive page is requested only when the previous
// page's entries have been consumed, and ranging again starts a fresh set of requests.
// A page is parsed completely before any of its entries is yielded. The first error ends the sequence.
func (c *Client) Episodes(ctx context.Context, slug string) iter.Seq2[*podcast.Ref, error] {
	return func(yield func(*podcast.Ref, error) bool) {
		archive, err := (&podcast.Podcast{Slug: slug}).ArchiveURL(c.baseURL)
		if err != nil {
			yield(nil, err)
			return
		}

		seen := make(map[string]struct{})

		for page := 0; ; page++ {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			pageURL, err := archivePageURL(archive, page)
			if err != nil {
				yield(nil, err)
				return
			}

			log.WithField("page", page).Infof("retrieving archive page %s", pageURL)
			doc, err := c.fetch(ctx, pageURL)
			if err != nil {
				yield(nil, err)
				return
			}

			refs, err := parseArchive(doc, pageURL, page)
			if err != nil {
				yield(nil, err)
				return
			}

			if len(refs) == 0 {
				if page == 0 {
					yield(nil, &podcast.ParseError{URL: pageURL, Reason: "no episode entries found"})
					return
				}
				log.Debugf("archive page %d is empty, listing complete", page)
				return
			}

			fresh := refs[:0]
			for _, ref := range refs {
				if _, ok := seen[ref.PageURL]; ok {
					continue
				}
				seen[ref.PageURL] = struct{}{}
				fresh = append(fresh, ref)
			}

			// The host serves the last page again for out-of-range indices.
			if len(fresh) == 0 {
				log.Debugf("archive page %d repeats earlier entries, listing complete", page)
				return
			}

			for _, ref := range fresh {
				if !yield(ref, nil) {
					return
				}
			}
		}
	}
}

func archivePageURL(archive string, page int) (string, error) {
	u, err := url.Parse(archive)
	if err != nil {
		return "", fmt.Errorf("parse archive url: %w", err)
	}

	q := u.Query()
	q.Set(constant.ArchivePageParam, strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// parseArchive extracts the episode entries of one archive page.
func parseArchive(doc *goquery.Document, pageURL string, page int) ([]*podcast.Ref, error) {
	var (
		refs     []*podcast.Ref
		parseErr error
	)

	doc.Find(constant.EpisodeTitleSelector).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" {
			parseErr = &podcast.ParseError{URL: pageURL, Reason: "episode entry without a link"}
			return false
		}

		abs, err := resolve(doc, href)
		if err != nil {
			parseErr = &podcast.ParseError{URL: pageURL, Reason: fmt.Sprintf("episode link %q: %v", href, err)}
			return false
		}

		refs = append(refs, &podcast.Ref{
			Title:   strings.Join(strings.Fields(a.Text()), " "),
			PageURL: abs,
			Page:    page,
		})
		return true
	})

	if parseErr != nil {
		return nil, parseErr
	}
	return refs, nil
}

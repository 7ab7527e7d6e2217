package blubrry

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/bbdl-cli/bbdl/constant"
	"github.com/bbdl-cli/bbdl/log"
	"github.com/bbdl-cli/bbdl/podcast"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Resolve fetches the episode page of ref and extracts the audio link and metadata.
func (c *Client) Resolve(ctx context.Context, ref *podcast.Ref) (*podcast.Episode, error) {
	log.WithField("page", ref.PageURL).Info("checking episode page")

	doc, err := c.fetch(ctx, ref.PageURL)
	if err != nil {
		return nil, err
	}

	return parseEpisode(doc, ref)
}

func parseEpisode(doc *goquery.Document, ref *podcast.Ref) (*podcast.Episode, error) {
	hrefs := doc.Find(constant.DownloadAnchorSelector).Map(func(_ int, a *goquery.Selection) string {
		return strings.TrimSpace(a.AttrOr("href", ""))
	})
	links := lo.Uniq(lo.Compact(hrefs))

	switch len(links) {
	case 0:
		return nil, &podcast.ParseError{URL: ref.PageURL, Reason: "no audio download link found"}
	case 1:
	default:
		log.Warnf("found %d audio links on %s, using the first", len(links), ref.PageURL)
	}

	audioURL, err := resolve(doc, links[0])
	if err != nil {
		return nil, &podcast.ParseError{URL: ref.PageURL, Reason: fmt.Sprintf("audio link %q: %v", links[0], err)}
	}

	og := openGraph(doc, ref.PageURL)

	ep := &podcast.Episode{
		Title:       og["title"].OrElse(ref.Title),
		AudioURL:    audioURL,
		PageURL:     og["url"].OrElse(ref.PageURL),
		Date:        publishDate(doc, ref.PageURL),
		Description: og["description"],
		Image:       og["image"],
	}

	if ep.Title == "" {
		ep.Title = ref.PageURL
	}

	return ep, nil
}

var openGraphProperties = []string{"title", "description", "url", "image"}

// openGraph reads the og:* meta properties the metadata sidecar needs.
func openGraph(doc *goquery.Document, pageURL string) map[string]mo.Option[string] {
	props := make(map[string]mo.Option[string], len(openGraphProperties))

	for _, name := range openGraphProperties {
		props[name] = mo.None[string]()

		meta := doc.Find(fmt.Sprintf(`meta[property="og:%s"]`, name)).First()
		if meta.Length() == 0 {
			log.Debugf("missing metadata field %s on %s", name, pageURL)
			continue
		}

		content, ok := meta.Attr("content")
		content = strings.TrimSpace(content)
		if !ok || content == "" {
			log.Warnf("metadata field %s has no content on %s", name, pageURL)
			continue
		}

		props[name] = mo.Some(content)
	}

	return props
}

// publishDate prefers the <i> child of the date block and falls back to the block's own text.
func publishDate(doc *goquery.Document, pageURL string) mo.Option[string] {
	block := doc.Find(constant.EpisodeDateSelector).First()
	if block.Length() == 0 {
		log.Warnf("no date element on %s", pageURL)
		return mo.None[string]()
	}

	if i := block.Find("i").First(); i.Length() > 0 {
		if text := strings.TrimSpace(i.Text()); text != "" {
			return mo.Some(text)
		}
	}

	if text := strings.Join(strings.Fields(block.Text()), " "); text != "" {
		log.Debugf("falling back to date element text on %s", pageURL)
		return mo.Some(text)
	}

	log.Warnf("date element on %s is empty", pageURL)
	return mo.None[string]()
}

package blubrry

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

// fakeSite serves archive pages keyed by the pi parameter and episode pages keyed by path.
type fakeSite struct {
	archive  map[string]string
	episodes map[string]string
	// sticky makes every out-of-range archive index return the last page.
	sticky bool
	// status, when set, is returned for every archive request.
	status   int
	requests atomic.Int32
}

func newFakeSite(t *testing.T, site *fakeSite) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		site.requests.Add(1)

		if strings.HasSuffix(r.URL.Path, "/archive") {
			if site.status != 0 {
				w.WriteHeader(site.status)
				return
			}
			page, ok := site.archive[r.URL.Query().Get("pi")]
			if !ok && site.sticky {
				page, ok = site.archive[fmt.Sprint(len(site.archive)-1)]
			}
			if !ok {
				page = archiveHTML()
			}
			_, _ = fmt.Fprint(w, page)
			return
		}

		if page, ok := site.episodes[r.URL.Path]; ok {
			_, _ = fmt.Fprint(w, page)
			return
		}

		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func archiveHTML(anchors ...string) string {
	return `<html><body><div class="archive">` + strings.Join(anchors, "\n") + `</div></body></html>`
}

func entry(href, title string) string {
	return fmt.Sprintf(`<div class="pr-item"><a class="pr-title" href="%s">%s</a></div>`, href, title)
}

func episodeHTML(head, body string) string {
	return `<html><head>` + head + `</head><body>` + body + `</body></html>`
}

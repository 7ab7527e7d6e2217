package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bbdl-cli/bbdl/download"
	"github.com/bbdl-cli/bbdl/filesystem"
	"github.com/bbdl-cli/bbdl/history"
	"github.com/bbdl-cli/bbdl/podcast"
	"github.com/bbdl-cli/bbdl/provider/blubrry"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeLister struct {
	refs []*podcast.Ref
	// listErr is yielded after all refs.
	listErr  error
	failing  map[string]error
	resolved []string
}

func (f *fakeLister) Episodes(_ context.Context, _ string) iter.Seq2[*podcast.Ref, error] {
	return func(yield func(*podcast.Ref, error) bool) {
		for _, ref := range f.refs {
			if !yield(ref, nil) {
				return
			}
		}
		if f.listErr != nil {
			yield(nil, f.listErr)
		}
	}
}

func (f *fakeLister) Resolve(_ context.Context, ref *podcast.Ref) (*podcast.Episode, error) {
	f.resolved = append(f.resolved, ref.Title)
	if err, ok := f.failing[ref.Title]; ok {
		return nil, err
	}
	return &podcast.Episode{Title: ref.Title, AudioURL: "https://media.example.com/" + ref.Title + ".mp3"}, nil
}

type fakeSaver struct {
	skip    map[string]bool
	failing map[string]error
	saved   []string
}

func (f *fakeSaver) Save(_ context.Context, _ string, ep *podcast.Episode, dir string) (*download.Result, error) {
	if err, ok := f.failing[ep.Title]; ok {
		return nil, err
	}
	f.saved = append(f.saved, ep.Title)
	skipped := f.skip[ep.Title]
	return &download.Result{
		AudioPath:       filepath.Join(dir, ep.Filename()),
		MetadataPath:    filepath.Join(dir, ep.MetadataFilename()),
		Bytes:           2048,
		AudioSkipped:    skipped,
		MetadataSkipped: skipped,
	}, nil
}

func refs(titles ...string) []*podcast.Ref {
	return lo.Map(titles, func(t string, _ int) *podcast.Ref {
		return &podcast.Ref{Title: t, PageURL: "https://blubrry.com/show/" + t + "/"}
	})
}

func TestRun(t *testing.T) {
	Convey("Given a listing of episodes", t, func() {
		var out, errOut bytes.Buffer
		lister := &fakeLister{refs: refs("a", "b", "c")}
		saver := &fakeSaver{}
		options := &Options{
			Podcast: &podcast.Podcast{Slug: "show", OutputDir: "/out"},
			Lister:  lister,
			Saver:   saver,
			Out:     &out,
			Err:     &errOut,
		}
		ctx := context.Background()

		Convey("Every episode is processed in listing order", func() {
			summary, err := Run(ctx, options)
			So(err, ShouldBeNil)
			So(summary.Listed, ShouldEqual, 3)
			So(summary.Downloaded, ShouldEqual, 3)
			So(saver.saved, ShouldResemble, []string{"a", "b", "c"})
			So(strings.Count(out.String(), "\n"), ShouldEqual, 3)
			So(out.String(), ShouldContainSubstring, "2.0 kB")
		})

		Convey("A failing episode is reported and the others complete", func() {
			lister.failing = map[string]error{"a": &podcast.ParseError{URL: "u", Reason: "no audio download link found"}}
			saver.failing = map[string]error{"b": &podcast.DownloadError{Episode: "b", Err: errors.New("status 404")}}

			summary, err := Run(ctx, options)
			So(err, ShouldBeNil)
			So(summary.Failed, ShouldEqual, 2)
			So(summary.Downloaded, ShouldEqual, 1)
			So(saver.saved, ShouldResemble, []string{"c"})
			So(summary.Failures, ShouldHaveLength, 2)

			var dlErr *podcast.DownloadError
			So(errors.As(summary.Failures[1], &dlErr), ShouldBeTrue)
			So(errOut.String(), ShouldContainSubstring, "status 404")
		})

		Convey("Existing episodes count as skipped", func() {
			saver.skip = map[string]bool{"b": true}
			summary, err := Run(ctx, options)
			So(err, ShouldBeNil)
			So(summary.Skipped, ShouldEqual, 1)
			So(summary.Downloaded, ShouldEqual, 2)
			So(out.String(), ShouldContainSubstring, "already downloaded")
		})

		Convey("A listing error aborts the run", func() {
			lister.listErr = &podcast.ParseError{URL: "u", Reason: "episode entry without a link"}
			summary, err := Run(ctx, options)

			var parseErr *podcast.ParseError
			So(errors.As(err, &parseErr), ShouldBeTrue)
			So(summary.Downloaded, ShouldEqual, 3)
		})

		Convey("A cancelled context stops before the next episode", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := Run(cctx, options)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			So(lister.resolved, ShouldBeEmpty)
		})

		Convey("Pause spaces out episodes", func() {
			options.Pause = 20 * time.Millisecond
			start := time.Now()
			_, err := Run(ctx, options)
			So(err, ShouldBeNil)
			So(time.Since(start), ShouldBeGreaterThanOrEqualTo, 40*time.Millisecond)
		})

		Convey("Missing collaborators are rejected", func() {
			_, err := Run(ctx, &Options{})
			So(err, ShouldNotBeNil)
		})
	})
}

// blubrrySite serves an archive of n episodes split over pages of two, plus their audio files.
func blubrrySite(t *testing.T, slug string, n int, brokenAudio int) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/"+slug+"/archive", func(w http.ResponseWriter, r *http.Request) {
		var page int
		_, _ = fmt.Sscan(r.URL.Query().Get("pi"), &page)

		var b strings.Builder
		b.WriteString("<html><body>")
		for i := page * 2; i < min(page*2+2, n); i++ {
			fmt.Fprintf(&b, `<a class="pr-title" href="/%s/%d/">Episode %d</a>`, slug, i, i)
		}
		b.WriteString("</body></html>")
		_, _ = fmt.Fprint(w, b.String())
	})
	for i := 0; i < n; i++ {
		mux.HandleFunc(fmt.Sprintf("/%s/%d/", slug, i), func(w http.ResponseWriter, r *http.Request) {
			_, _ = fmt.Fprintf(w, `<html><head><meta property="og:title" content="Episode %d"></head><body>
				<div class="ep-date"><i>May %d, 2024</i></div>
				<a title="Download Episode" href="/media/episode-%d.mp3">Download</a></body></html>`, i, i+1, i)
		})
		mux.HandleFunc(fmt.Sprintf("/media/episode-%d.mp3", i), func(w http.ResponseWriter, r *http.Request) {
			if i == brokenAudio {
				http.Error(w, "gone", http.StatusGone)
				return
			}
			_, _ = fmt.Fprintf(w, "audio %d", i)
		})
	}

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRunAgainstSite(t *testing.T) {
	Convey("Given a podcast with five episodes on the host", t, func() {
		filesystem.SetMemMapFs()
		t.Setenv("BBDL_CONFIG_PATH", "/config")
		history.Invalidate()

		slug := "my-favorite-podcast"
		p := lo.Must(podcast.New(slug, "./output/my-favorite-podcast"))

		Convey("Every episode lands as an audio and metadata pair", func() {
			srv := blubrrySite(t, slug, 5, -1)
			client := lo.Must(blubrry.New(blubrry.WithBaseURL(srv.URL), blubrry.WithHTTPClient(srv.Client())))

			summary, err := Run(context.Background(), &Options{
				Podcast: p,
				Lister:  client,
				Saver:   download.New(srv.Client(), download.Options{}),
				History: true,
			})
			So(err, ShouldBeNil)
			So(summary.Downloaded, ShouldEqual, 5)

			names := lo.Map(lo.Must(filesystem.API().ReadDir(p.OutputDir)), func(fi os.FileInfo, _ int) string { return fi.Name() })
			So(names, ShouldHaveLength, 10)
			So(names, ShouldContain, "episode-0.mp3")
			So(names, ShouldContain, "episode-4-metadata.json")

			records := lo.Must(history.Of(slug))
			So(records, ShouldHaveLength, 5)

			Convey("A second run skips everything", func() {
				again, err := Run(context.Background(), &Options{
					Podcast: p,
					Lister:  client,
					Saver:   download.New(srv.Client(), download.Options{}),
				})
				So(err, ShouldBeNil)
				So(again.Skipped, ShouldEqual, 5)
				So(again.Downloaded, ShouldEqual, 0)
			})
		})

		Convey("One unreachable audio file does not stop the rest", func() {
			srv := blubrrySite(t, slug, 4, 2)
			client := lo.Must(blubrry.New(blubrry.WithBaseURL(srv.URL), blubrry.WithHTTPClient(srv.Client())))

			summary, err := Run(context.Background(), &Options{
				Podcast: p,
				Lister:  client,
				Saver:   download.New(srv.Client(), download.Options{}),
			})
			So(err, ShouldBeNil)
			So(summary.Downloaded, ShouldEqual, 3)
			So(summary.Failed, ShouldEqual, 1)

			exists := lo.Must(filesystem.API().Exists(filepath.Join(p.OutputDir, "episode-2.mp3")))
			So(exists, ShouldBeFalse)
			So(lo.Must(filesystem.API().ReadDir(p.OutputDir)), ShouldHaveLength, 6)
		})

		Convey("Episodes whose audio URLs share a file name are all kept", func() {
			mux := http.NewServeMux()
			mux.HandleFunc("/"+slug+"/archive", func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Query().Get("pi") != "0" {
					_, _ = fmt.Fprint(w, "<html><body></body></html>")
					return
				}
				_, _ = fmt.Fprintf(w, `<html><body>
					<a class="pr-title" href="/%[1]s/1/">Part one</a>
					<a class="pr-title" href="/%[1]s/2/">Part two</a></body></html>`, slug)
			})
			for i := 1; i <= 2; i++ {
				mux.HandleFunc(fmt.Sprintf("/%s/%d/", slug, i), func(w http.ResponseWriter, r *http.Request) {
					_, _ = fmt.Fprintf(w, `<html><body><a title="Download Episode" href="/media/%d/episode.mp3">Download</a></body></html>`, i)
				})
				mux.HandleFunc(fmt.Sprintf("/media/%d/episode.mp3", i), func(w http.ResponseWriter, r *http.Request) {
					_, _ = fmt.Fprintf(w, "audio %d", i)
				})
			}
			srv := httptest.NewServer(mux)
			defer srv.Close()
			client := lo.Must(blubrry.New(blubrry.WithBaseURL(srv.URL), blubrry.WithHTTPClient(srv.Client())))

			summary, err := Run(context.Background(), &Options{
				Podcast: p,
				Lister:  client,
				Saver:   download.New(srv.Client(), download.Options{}),
				History: true,
			})
			So(err, ShouldBeNil)
			So(summary.Listed, ShouldEqual, 2)
			So(summary.Downloaded, ShouldEqual, 2)
			So(summary.Skipped, ShouldEqual, 0)

			names := lo.Map(lo.Must(filesystem.API().ReadDir(p.OutputDir)), func(fi os.FileInfo, _ int) string { return fi.Name() })
			So(names, ShouldHaveLength, 4)
			So(names, ShouldContain, "episode.mp3")
			So(names, ShouldContain, "episode-metadata.json")
			So(names, ShouldContain, "episode-2.mp3")
			So(names, ShouldContain, "episode-2-metadata.json")

			second := lo.Must(filesystem.API().ReadFile(filepath.Join(p.OutputDir, "episode-2.mp3")))
			So(string(second), ShouldEqual, "audio 2")
			So(lo.Must(history.Of(slug)), ShouldHaveLength, 2)
		})

		Convey("An unknown podcast fails without writing files", func() {
			srv := blubrrySite(t, slug, 0, -1)
			client := lo.Must(blubrry.New(blubrry.WithBaseURL(srv.URL), blubrry.WithHTTPClient(srv.Client())))

			_, err := Run(context.Background(), &Options{
				Podcast: p,
				Lister:  client,
				Saver:   download.New(srv.Client(), download.Options{}),
			})
			var parseErr *podcast.ParseError
			So(errors.As(err, &parseErr), ShouldBeTrue)
			So(lo.Must(filesystem.API().ReadDir(p.OutputDir)), ShouldBeEmpty)
		})
	})
}

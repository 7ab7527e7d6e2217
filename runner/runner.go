// Package runner drives one download run: list the archive, then resolve and save every episode in order.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"time"

	"github.com/bbdl-cli/bbdl/download"
	"github.com/bbdl-cli/bbdl/history"
	"github.com/bbdl-cli/bbdl/log"
	"github.com/bbdl-cli/bbdl/podcast"
	"golang.org/x/time/rate"
)

// Lister produces the episode listing of a podcast and resolves single entries.
type Lister interface {
	Episodes(ctx context.Context, slug string) iter.Seq2[*podcast.Ref, error]
	Resolve(ctx context.Context, ref *podcast.Ref) (*podcast.Episode, error)
}

// Saver writes one episode into a directory.
type Saver interface {
	Save(ctx context.Context, slug string, ep *podcast.Episode, dir string) (*download.Result, error)
}

// Options configures Run.
type Options struct {
	Podcast *podcast.Podcast
	Lister  Lister
	Saver   Saver

	// Pause is the minimum interval between two episodes. Zero disables pacing.
	Pause time.Duration
	// History records successful downloads in the history file.
	History bool

	// Out receives one progress line per episode, Err the per-episode failures.
	Out io.Writer
	Err io.Writer
}

// Summary counts the outcome of a run.
type Summary struct {
	Listed     int
	Downloaded int
	Skipped    int
	Failed     int
	Failures   []error
}

// Run processes every listed episode sequentially.
//
// Listing errors (fetch or parse) and context cancellation abort the run and are returned.
// Errors of a single episode are reported to Err and counted; processing continues with the next episode.
func Run(ctx context.Context, options *Options) (*Summary, error) {
	if options.Podcast == nil || options.Lister == nil || options.Saver == nil {
		return nil, errors.New("runner: podcast, lister and saver are required")
	}
	if options.Out == nil {
		options.Out = io.Discard
	}
	if options.Err == nil {
		options.Err = io.Discard
	}

	pacer := rate.NewLimiter(rate.Inf, 1)
	if options.Pause > 0 {
		pacer = rate.NewLimiter(rate.Every(options.Pause), 1)
	}

	p := newPrinter(options.Out, options.Err)
	summary := &Summary{}
	slug := options.Podcast.Slug

	log.WithField("podcast", slug).Info("listing episodes")

	for ref, err := range options.Lister.Episodes(ctx, slug) {
		if err != nil {
			return summary, fmt.Errorf("list %s: %w", slug, err)
		}
		summary.Listed++

		if err := pacer.Wait(ctx); err != nil {
			return summary, err
		}

		res, err := process(ctx, options, ref)
		switch {
		case err != nil && ctx.Err() != nil:
			return summary, ctx.Err()
		case err != nil:
			summary.Failed++
			summary.Failures = append(summary.Failures, err)
			log.WithField("episode", ref.PageURL).Error(err)
			p.failed(summary.Listed, ref, err)
		case res.Skipped():
			summary.Skipped++
			p.skipped(summary.Listed, ref, res)
		default:
			summary.Downloaded++
			p.saved(summary.Listed, ref, res)
		}
	}

	log.WithField("podcast", slug).Infof("complete, downloaded %d episodes", summary.Downloaded)
	return summary, nil
}

func process(ctx context.Context, options *Options, ref *podcast.Ref) (*download.Result, error) {
	ep, err := options.Lister.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	res, err := options.Saver.Save(ctx, options.Podcast.Slug, ep, options.Podcast.OutputDir)
	if err != nil {
		return nil, err
	}

	if options.History && !res.Skipped() {
		if err := history.Save(options.Podcast.Slug, ep, res.AudioPath); err != nil {
			log.Warnf("record history for %s: %v", ep.Title, err)
		}
	}

	return res, nil
}

package runner

import (
	"fmt"
	"io"

	"github.com/bbdl-cli/bbdl/color"
	"github.com/bbdl-cli/bbdl/download"
	"github.com/bbdl-cli/bbdl/icon"
	"github.com/bbdl-cli/bbdl/podcast"
	"github.com/bbdl-cli/bbdl/style"
	"github.com/bbdl-cli/bbdl/util"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/truncate"
)

// printer renders per-episode progress lines.
type printer struct {
	out, err io.Writer
	width    uint
}

func newPrinter(out, err io.Writer) *printer {
	// leave room for the icon, index and size columns
	return &printer{out: out, err: err, width: uint(util.Max(util.TerminalWidth(100)-30, 20))}
}

func (p *printer) title(ref *podcast.Ref) string {
	return truncate.StringWithTail(ref.String(), p.width, "…")
}

func (p *printer) saved(n int, ref *podcast.Ref, res *download.Result) {
	size := "metadata only"
	if !res.AudioSkipped {
		size = humanize.Bytes(uint64(res.Bytes))
	}

	fmt.Fprintf(p.out, "%s %s %s %s\n",
		style.Fg(color.Green)(icon.Get(icon.Download)),
		style.Faint(fmt.Sprintf("#%d", n)),
		p.title(ref),
		style.Faint(size),
	)
}

func (p *printer) skipped(n int, ref *podcast.Ref, _ *download.Result) {
	fmt.Fprintf(p.out, "%s %s %s %s\n",
		style.Fg(color.Yellow)(icon.Get(icon.Skip)),
		style.Faint(fmt.Sprintf("#%d", n)),
		p.title(ref),
		style.Faint("already downloaded"),
	)
}

func (p *printer) failed(n int, ref *podcast.Ref, err error) {
	fmt.Fprintf(p.err, "%s %s %s: %s\n",
		style.Fg(color.Red)(icon.Get(icon.Fail)),
		style.Faint(fmt.Sprintf("#%d", n)),
		p.title(ref),
		err,
	)
}

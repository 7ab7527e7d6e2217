// Package download writes an episode's audio file and metadata sidecar into the output directory.
package download

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bbdl-cli/bbdl/filesystem"
	"github.com/bbdl-cli/bbdl/log"
	"github.com/bbdl-cli/bbdl/podcast"
	"github.com/bbdl-cli/bbdl/util"
	"github.com/sirupsen/logrus"
)

// Options configures a Downloader.
type Options struct {
	// Overwrite replaces files that already exist instead of skipping them.
	Overwrite bool
}

// Result describes what Save did for one episode.
type Result struct {
	AudioPath    string
	MetadataPath string
	// Bytes is the audio size written in this call, zero when skipped.
	Bytes int64

	AudioSkipped    bool
	MetadataSkipped bool
}

// Skipped reports whether both files already existed.
func (r *Result) Skipped() bool {
	return r.AudioSkipped && r.MetadataSkipped
}

// Downloader fetches audio payloads over HTTP. It never retries.
//
// A Downloader serves one run: it remembers the file stems it handed out, so two episodes
// whose audio URLs share a base name are saved under distinct names.
type Downloader struct {
	client  *http.Client
	options Options

	mu sync.Mutex
	// claimed maps a lower-cased file stem to the audio URL that owns it.
	claimed map[string]string
}

// New returns a Downloader using client for audio requests.
func New(client *http.Client, options Options) *Downloader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Downloader{client: client, options: options, claimed: make(map[string]string)}
}

// filename returns the audio file name of ep for this run.
// When an earlier episode claimed the same stem for another audio URL, -2, -3, ... is appended
// until the stem is free. Listing order is stable, so repeated runs produce the same names.
func (d *Downloader) filename(ep *podcast.Episode) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	base := ep.Filename()
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	name := base
	for n := 2; ; n++ {
		claim := strings.ToLower(util.FileStem(name))
		owner, taken := d.claimed[claim]
		if !taken || owner == ep.AudioURL {
			d.claimed[claim] = ep.AudioURL
			if name != base {
				log.Warnf("file name %s is taken by another episode, saving %q as %s", base, ep.Title, name)
			}
			return name
		}
		name = fmt.Sprintf("%s-%d%s", stem, n, ext)
	}
}

// Save downloads the audio of ep into dir and writes its metadata sidecar next to it.
// Either both files end up present or a *podcast.DownloadError is returned.
func (d *Downloader) Save(ctx context.Context, slug string, ep *podcast.Episode, dir string) (*Result, error) {
	name := d.filename(ep)
	res := &Result{
		AudioPath:    filepath.Join(dir, name),
		MetadataPath: filepath.Join(dir, podcast.SidecarName(name)),
	}
	logger := log.WithFields(logrus.Fields{"episode": ep.Title, "path": res.AudioPath})

	audioExists, err := d.exists(res.AudioPath)
	if err != nil {
		return nil, &podcast.DownloadError{Episode: ep.Title, Path: res.AudioPath, Err: err}
	}

	wroteAudio := false
	if audioExists && !d.options.Overwrite {
		logger.Debug("audio file exists, skipping")
		res.AudioSkipped = true
	} else {
		logger.Infof("downloading %s", ep.AudioURL)
		n, err := d.fetchAudio(ctx, ep.AudioURL, res.AudioPath)
		if err != nil {
			return nil, &podcast.DownloadError{Episode: ep.Title, Path: res.AudioPath, Err: err}
		}
		res.Bytes = n
		wroteAudio = true
	}

	metaExists, err := d.exists(res.MetadataPath)
	if err != nil {
		return nil, d.rollback(ep, res, wroteAudio, err)
	}

	if metaExists && !d.options.Overwrite {
		logger.Debug("metadata file exists, skipping")
		res.MetadataSkipped = true
		return res, nil
	}

	logger.Infof("writing metadata to %s", res.MetadataPath)
	if err := writeMetadata(res.MetadataPath, ep.Metadata(slug)); err != nil {
		return nil, d.rollback(ep, res, wroteAudio, err)
	}

	return res, nil
}

// rollback removes audio written by the failing call so no unpaired file remains.
func (d *Downloader) rollback(ep *podcast.Episode, res *Result, wroteAudio bool, cause error) error {
	if wroteAudio {
		if err := filesystem.API().Remove(res.AudioPath); err != nil {
			log.Warnf("remove unpaired audio %s: %v", res.AudioPath, err)
		}
	}
	return &podcast.DownloadError{Episode: ep.Title, Path: res.MetadataPath, Err: cause}
}

func (d *Downloader) exists(path string) (bool, error) {
	ok, err := filesystem.API().Exists(path)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return ok, nil
}

// fetchAudio streams rawURL into a .part file and renames it to path once complete.
func (d *Downloader) fetchAudio(ctx context.Context, rawURL, path string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "audio/*,*/*")

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer util.Ignore(resp.Body.Close)

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	fs := filesystem.API()
	tmp := path + ".part"

	f, err := fs.Create(tmp)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", tmp, err)
	}

	n, copyErr := io.Copy(f, resp.Body)
	closeErr := f.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = fs.Remove(tmp)
		return 0, fmt.Errorf("write %s: %w", tmp, err)
	}

	if resp.ContentLength > 0 && n != resp.ContentLength {
		_ = fs.Remove(tmp)
		return 0, fmt.Errorf("short body: got %d of %d bytes", n, resp.ContentLength)
	}

	if err := fs.Rename(tmp, path); err != nil {
		_ = fs.Remove(tmp)
		return 0, fmt.Errorf("rename %s: %w", tmp, err)
	}

	return n, nil
}

func writeMetadata(path string, md *podcast.Metadata) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(md); err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	return filesystem.WriteAtomic(path, buf.Bytes())
}

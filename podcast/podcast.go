// Package podcast defines the podcast reference, episode records, and the error taxonomy shared by the scraper.
package podcast

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/bbdl-cli/bbdl/filesystem"
)

// Podcast is the immutable input of one run.
type Podcast struct {
	Slug      string
	OutputDir string
}

// New validates the slug and prepares the output directory.
// The directory is created when missing and probed for write access.
func New(slug, outputDir string) (*Podcast, error) {
	slug, err := ValidateSlug(slug)
	if err != nil {
		return nil, err
	}

	outputDir = strings.TrimSpace(outputDir)
	if outputDir == "" {
		return nil, &ConfigurationError{Field: "output", Err: errors.New("output directory is empty")}
	}

	if err := prepareDir(outputDir); err != nil {
		return nil, &ConfigurationError{Field: "output", Err: err}
	}

	return &Podcast{Slug: slug, OutputDir: filepath.Clean(outputDir)}, nil
}

// ValidateSlug trims slug and checks that it can be used as one URL path segment.
func ValidateSlug(slug string) (string, error) {
	slug = strings.TrimSpace(slug)

	if slug == "" {
		return "", &ConfigurationError{Field: "podcast", Err: errors.New("slug is empty")}
	}
	if strings.ContainsAny(slug, "/?#\\ \t\n") {
		return "", &ConfigurationError{Field: "podcast", Err: fmt.Errorf("slug %q is not a single path segment", slug)}
	}

	return slug, nil
}

func prepareDir(dir string) error {
	fs := filesystem.API()

	if err := fs.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	isDir, err := fs.IsDir(dir)
	if err != nil {
		return fmt.Errorf("stat %s: %w", dir, err)
	}
	if !isDir {
		return fmt.Errorf("%s is not a directory", dir)
	}

	probe, err := fs.TempFile(dir, ".bbdl-probe-")
	if err != nil {
		return fmt.Errorf("%s is not writable: %w", dir, err)
	}
	name := probe.Name()
	_ = probe.Close()
	return fs.Remove(name)
}

// ArchiveURL returns the first archive listing page of the podcast under base.
func (p *Podcast) ArchiveURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("base url %q is not absolute", base)
	}

	return u.JoinPath(p.Slug, "archive").String(), nil
}

func (p *Podcast) String() string {
	return p.Slug
}

// Package history records completed episode downloads per podcast.
package history

import (
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bbdl-cli/bbdl/filesystem"
	"github.com/bbdl-cli/bbdl/podcast"
	"github.com/bbdl-cli/bbdl/where"
	"github.com/metafates/gache"
)

// Record is one downloaded episode.
type Record struct {
	Podcast      string    `json:"podcast"`
	Title        string    `json:"title"`
	AudioURL     string    `json:"audio_url"`
	PageURL      string    `json:"page_url"`
	Path         string    `json:"path"`
	DownloadedAt time.Time `json:"downloaded_at"`
}

// registry maps podcast slug to audio file name to record.
type registry = map[string]map[string]*Record

var (
	mu     sync.Mutex
	cacher *gache.Cache[registry]
)

func store() *gache.Cache[registry] {
	if cacher == nil {
		cacher = gache.New[registry](&gache.Options{
			Path:       where.History(),
			FileSystem: &filesystem.GacheFs{},
		})
	}
	return cacher
}

func load() (registry, error) {
	cached, expired, err := store().Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(registry), nil
	}
	return cached, nil
}

// Get returns every recorded download.
func Get() (registry, error) {
	mu.Lock()
	defer mu.Unlock()
	return load()
}

// Of returns the downloads of one podcast ordered by download time.
func Of(slug string) ([]*Record, error) {
	all, err := Get()
	if err != nil {
		return nil, err
	}

	records := make([]*Record, 0, len(all[slug]))
	for _, r := range all[slug] {
		records = append(records, r)
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].DownloadedAt.Equal(records[j].DownloadedAt) {
			return records[i].Path < records[j].Path
		}
		return records[i].DownloadedAt.Before(records[j].DownloadedAt)
	})
	return records, nil
}

// Save records that ep of slug was written to path.
// Records are keyed by the file name of path, so a repeated save replaces the earlier record.
func Save(slug string, ep *podcast.Episode, path string) error {
	mu.Lock()
	defer mu.Unlock()

	saved, err := load()
	if err != nil {
		return err
	}

	if saved[slug] == nil {
		saved[slug] = make(map[string]*Record)
	}
	saved[slug][filepath.Base(path)] = &Record{
		Podcast:      slug,
		Title:        ep.Title,
		AudioURL:     ep.AudioURL,
		PageURL:      ep.PageURL,
		Path:         path,
		DownloadedAt: time.Now().UTC(),
	}

	return store().Set(saved)
}

// Invalidate drops the cached handle so the next call re-resolves the history path.
func Invalidate() {
	mu.Lock()
	defer mu.Unlock()
	cacher = nil
}

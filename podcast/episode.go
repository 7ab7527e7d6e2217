package podcast

import (
	"net/url"
	"path"
	"strings"

	"github.com/bbdl-cli/bbdl/constant"
	"github.com/bbdl-cli/bbdl/util"
	"github.com/samber/mo"
)

// Ref is one entry of an archive listing page.
type Ref struct {
	// Title is the anchor text on the listing page.
	Title string `json:"title"`
	// PageURL is the absolute URL of the episode page.
	PageURL string `json:"page_url"`
	// Page is the zero-based archive page index the entry was found on.
	Page int `json:"page"`
}

func (r *Ref) String() string {
	if r.Title != "" {
		return r.Title
	}
	return r.PageURL
}

// Episode is the resolved record of one episode page.
type Episode struct {
	Title    string
	AudioURL string
	PageURL  string

	Date        mo.Option[string]
	Description mo.Option[string]
	Image       mo.Option[string]
}

func (e *Episode) String() string {
	return e.Title
}

// Filename returns the deterministic audio file name.
// It is the base name of the audio URL path; when that is unusable the title is used instead,
// keeping the URL extension or falling back to .mp3.
func (e *Episode) Filename() string {
	var base, ext string
	if u, err := url.Parse(e.AudioURL); err == nil {
		// path.Base of "" or "/" yields "." or "/"
		if b := path.Base(u.Path); b != "." && b != "/" {
			base = b
		}
	}
	ext = path.Ext(base)

	if name := util.SanitizeFilename(base); name != "" && util.FileStem(name) != "" {
		return name
	}

	if ext == "" {
		ext = constant.DefaultAudioExtension
	}

	stem := util.SanitizeFilename(strings.TrimSuffix(e.Title, ext))
	if stem == "" {
		stem = "episode"
	}
	return stem + ext
}

// MetadataFilename returns the sidecar file name paired with Filename.
func (e *Episode) MetadataFilename() string {
	return SidecarName(e.Filename())
}

// SidecarName returns the metadata file name paired with the audio file name.
func SidecarName(audio string) string {
	return util.FileStem(audio) + constant.MetadataSuffix
}

// Metadata builds the sidecar record for the episode.
func (e *Episode) Metadata(slug string) *Metadata {
	return &Metadata{
		Podcast:     slug,
		Title:       e.Title,
		Date:        e.Date.OrEmpty(),
		Description: e.Description.OrEmpty(),
		URL:         e.PageURL,
		AudioURL:    e.AudioURL,
		Image:       e.Image.OrEmpty(),
	}
}

// Metadata is the JSON sidecar written next to every audio file.
type Metadata struct {
	Podcast     string `json:"podcast" jsonschema:"description=Slug of the podcast on the host."`
	Title       string `json:"title" jsonschema:"description=Episode title."`
	Date        string `json:"date,omitempty" jsonschema:"description=Publish date exactly as shown on the episode page."`
	Description string `json:"description,omitempty" jsonschema:"description=Episode description."`
	URL         string `json:"url" jsonschema:"description=URL of the episode page the record was scraped from."`
	AudioURL    string `json:"audio_url" jsonschema:"description=URL the audio file was downloaded from."`
	Image       string `json:"image,omitempty" jsonschema:"description=Episode artwork URL."`
}

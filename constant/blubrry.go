package constant

// Blubrry site layout. Any redesign of the archive or episode pages invalidates these.
const (
	BlubrryBaseURL = "https://blubrry.com"

	// ArchivePageParam is the zero-based page index query parameter of the archive listing.
	ArchivePageParam = "pi"

	EpisodeTitleSelector   = "a.pr-title"
	DownloadAnchorSelector = `a[title="Download Episode"]`
	EpisodeDateSelector    = "div.ep-date"
)

// MetadataSuffix is appended to the audio file stem to form the sidecar name.
const MetadataSuffix = "-metadata.json"

// DefaultAudioExtension is used when neither the audio URL nor its title yields an extension.
const DefaultAudioExtension = ".mp3"

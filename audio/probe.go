package audio

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// supportedContainers lists the accepted upload containers in fixed default
// priority order.
var supportedContainers = []string{"wav", "mp3", "m4a", "ogg", "flac", "webm"}

// hintAliases maps declared MIME types and extensions to container names.
var hintAliases = map[string]string{
	"wav":             "wav",
	"wave":            "wav",
	"audio/wav":       "wav",
	"audio/x-wav":     "wav",
	"audio/wave":      "wav",
	"mp3":             "mp3",
	"audio/mpeg":      "mp3",
	"audio/mp3":       "mp3",
	"m4a":             "m4a",
	"mp4":             "m4a",
	"audio/mp4":       "m4a",
	"audio/x-m4a":     "m4a",
	"audio/aac":       "m4a",
	"ogg":             "ogg",
	"oga":             "ogg",
	"audio/ogg":       "ogg",
	"application/ogg": "ogg",
	"flac":            "flac",
	"audio/flac":      "flac",
	"audio/x-flac":    "flac",
	"webm":            "webm",
	"audio/webm":      "webm",
	"video/webm":      "webm",
}

// SupportedContainers returns the supported container names in default
// priority order.
func SupportedContainers() []string {
	out := make([]string, len(supportedContainers))
	copy(out, supportedContainers)
	return out
}

// IsSupportedContainer reports whether name is an accepted container.
func IsSupportedContainer(name string) bool {
	for _, s := range supportedContainers {
		if s == name {
			return true
		}
	}
	return false
}

// NormalizeHint maps a declared MIME type or extension to a container name.
// Returns "" when the hint does not name a supported container.
func NormalizeHint(hint string) string {
	h := strings.ToLower(strings.TrimSpace(hint))
	h = strings.TrimPrefix(h, ".")
	if i := strings.IndexByte(h, ';'); i >= 0 {
		h = strings.TrimSpace(h[:i])
	}
	return hintAliases[h]
}

// SniffContainer detects the container from content magic bytes. Returns ""
// when the content does not look like any supported container.
func SniffContainer(b []byte) string {
	mt := mimetype.Detect(b)
	for m := mt; m != nil; m = m.Parent() {
		if c := hintAliases[strings.ToLower(m.String())]; c != "" {
			return c
		}
	}
	return ""
}

// probeOrder builds the decode attempt order for a blob: declared container
// first, then the sniffed container, then the rest of the configured chain.
func probeOrder(blob Blob, chain []string) []string {
	order := make([]string, 0, len(chain)+2)
	seen := make(map[string]bool, len(chain)+2)
	add := func(name string) {
		if name != "" && !seen[name] {
			order = append(order, name)
			seen[name] = true
		}
	}

	add(NormalizeHint(blob.Hint))
	if blob.Filename != "" {
		if i := strings.LastIndexByte(blob.Filename, '.'); i >= 0 {
			add(NormalizeHint(blob.Filename[i+1:]))
		}
	}
	add(SniffContainer(blob.Bytes))
	for _, name := range chain {
		add(name)
	}
	return order
}

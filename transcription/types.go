package transcription

import (
	"context"

	"github.com/skillsenselab/callscribe/audio"
	"github.com/skillsenselab/callscribe/provider"
)

// Request holds parameters for a transcription call.
type Request struct {
	// Audio is the canonical PCM to transcribe.
	Audio *audio.CanonicalAudio
	// Model is the transcription model tier to use.
	Model string
	// Language is the expected language of the audio (e.g. "en").
	Language string
}

// Result holds the outcome of a successful transcription call.
type Result struct {
	// Text is the full transcription text.
	Text string `json:"text"`
	// Segments contains time-aligned transcript segments, if available.
	Segments []Segment `json:"segments,omitempty"`
	// Duration is the audio duration in seconds.
	Duration float64 `json:"duration,omitempty"`
	// Language is the detected or specified language.
	Language string `json:"language,omitempty"`
	// Provider is the backend that produced the transcript.
	Provider string `json:"provider"`
	// Fingerprint is the content digest of the canonical audio.
	Fingerprint string `json:"fingerprint"`
}

// Segment represents a time-aligned portion of a transcript.
type Segment struct {
	// Start is the segment start time in seconds.
	Start float64 `json:"start"`
	// End is the segment end time in seconds.
	End float64 `json:"end"`
	// Text is the transcribed text for this segment.
	Text string `json:"text"`
}

// Provider is the interface that transcription backends must implement.
type Provider interface {
	provider.Provider // embeds Name() and IsAvailable()

	// Transcribe sends canonical audio for transcription and returns the result.
	Transcribe(ctx context.Context, req Request) (*Result, error)
}

// NewRegistry creates a new provider registry for transcription providers.
func NewRegistry() *provider.Registry[Provider] {
	return provider.NewRegistry[Provider]()
}

// --- Model and language catalogs ---

// ModelInfo describes one entry of the fixed model catalog.
type ModelInfo struct {
	// Name is the model identifier passed to backends.
	Name string `json:"name"`
	// Label is the human-readable label with approximate download size.
	Label string `json:"label"`
}

// Models is the fixed catalog of model size/accuracy tiers.
var Models = []ModelInfo{
	{Name: "tiny", Label: "Tiny (~39MB)"},
	{Name: "base", Label: "Base (~74MB)"},
	{Name: "small", Label: "Small (~244MB)"},
	{Name: "medium", Label: "Medium (~769MB)"},
	{Name: "large", Label: "Large (~1.55GB)"},
}

// DefaultModel is used when a request does not select a model.
const DefaultModel = "base"

// LanguageInfo describes one entry of the fixed language catalog.
type LanguageInfo struct {
	// Code is the ISO 639-1 language hint passed to backends.
	Code string `json:"code"`
	// Label is the human-readable language name.
	Label string `json:"label"`
}

// Languages is the fixed catalog of supported language hints.
var Languages = []LanguageInfo{
	{Code: "en", Label: "English"},
	{Code: "es", Label: "Spanish"},
	{Code: "fr", Label: "French"},
}

// DefaultLanguage is used when a request does not select a language.
const DefaultLanguage = "en"

// IsValidModel reports whether name is in the model catalog.
func IsValidModel(name string) bool {
	for _, m := range Models {
		if m.Name == name {
			return true
		}
	}
	return false
}

// IsValidLanguage reports whether code is in the language catalog.
func IsValidLanguage(code string) bool {
	for _, l := range Languages {
		if l.Code == code {
			return true
		}
	}
	return false
}

// ModelNames returns the catalog model identifiers in order.
func ModelNames() []string {
	names := make([]string, len(Models))
	for i, m := range Models {
		names[i] = m.Name
	}
	return names
}

// LanguageCodes returns the catalog language codes in order.
func LanguageCodes() []string {
	codes := make([]string, len(Languages))
	for i, l := range Languages {
		codes[i] = l.Code
	}
	return codes
}

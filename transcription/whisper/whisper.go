// Package whisper implements transcription.Provider against a local
// faster-whisper HTTP sidecar.
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	apperrors "github.com/skillsenselab/callscribe/errors"
	"github.com/skillsenselab/callscribe/provider"
	"github.com/skillsenselab/callscribe/transcription"
)

const (
	// ProviderName is the registered name for the Whisper provider.
	ProviderName = "whisper"

	defaultWhisperURL     = "http://localhost:8387"
	defaultWhisperTimeout = 120 * time.Second
)

// Config holds configuration for the Whisper transcription provider.
type Config struct {
	URL     string        `json:"url" yaml:"url"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// Provider implements transcription.Provider using a faster-whisper HTTP sidecar.
type Provider struct {
	cfg    Config
	client *http.Client
}

// NewProvider creates a new Whisper transcription provider.
func NewProvider(cfg Config) *Provider {
	if cfg.URL == "" {
		cfg.URL = defaultWhisperURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultWhisperTimeout
	}
	return &Provider{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Factory returns a provider.Factory that creates Whisper Provider
// instances from a generic config map.
func Factory() provider.Factory[transcription.Provider] {
	return func(cfg map[string]any) (transcription.Provider, error) {
		wc := Config{}
		if v, ok := cfg["url"].(string); ok {
			wc.URL = v
		}
		switch v := cfg["timeout"].(type) {
		case time.Duration:
			wc.Timeout = v
		case string:
			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, fmt.Errorf("whisper timeout: %w", err)
			}
			wc.Timeout = d
		case int:
			wc.Timeout = time.Duration(v) * time.Second
		}
		return NewProvider(wc), nil
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the Whisper sidecar is reachable.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.URL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Transcribe sends canonical audio to the Whisper sidecar and returns the transcription.
func (p *Provider) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Result, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("audio", "audio.wav")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(req.Audio.WAV); err != nil {
		return nil, fmt.Errorf("write audio data: %w", err)
	}

	_ = writer.WriteField("model", req.Model)
	if req.Language != "" {
		_ = writer.WriteField("language", req.Language)
	}
	writer.Close()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL+"/transcribe", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, apperrors.BackendUnavailable(ProviderName, "sidecar request failed").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		detail := fmt.Sprintf("status %d: %s", resp.StatusCode, string(body))
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, apperrors.BackendUnavailable(ProviderName, detail)
		}
		return nil, apperrors.BackendUnknown(ProviderName, detail)
	}

	var result whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, apperrors.BackendUnknown(ProviderName, "undecodable sidecar response").WithCause(err)
	}

	return toResult(&result), nil
}

// --- internal Whisper API response types ---

type whisperResponse struct {
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
	Language string           `json:"language"`
}

type whisperSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func toResult(resp *whisperResponse) *transcription.Result {
	segments := make([]transcription.Segment, len(resp.Segments))
	for i, seg := range resp.Segments {
		segments[i] = transcription.Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		}
	}

	var duration float64
	if len(resp.Segments) > 0 {
		duration = resp.Segments[len(resp.Segments)-1].End
	}

	return &transcription.Result{
		Text:     resp.Text,
		Segments: segments,
		Duration: duration,
		Language: resp.Language,
	}
}

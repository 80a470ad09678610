// Package openai implements transcription.Provider against the OpenAI
// Whisper cloud API.
package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	goopenai "github.com/sashabaranov/go-openai"

	apperrors "github.com/skillsenselab/callscribe/errors"
	"github.com/skillsenselab/callscribe/provider"
	"github.com/skillsenselab/callscribe/transcription"
)

// ProviderName is the registered name for the OpenAI provider.
const ProviderName = "openai"

// Config holds configuration for the OpenAI transcription provider.
type Config struct {
	APIKey  string `json:"api_key" yaml:"api_key"`
	BaseURL string `json:"base_url,omitempty" yaml:"base_url"`
}

// Provider implements transcription.Provider using the OpenAI audio API.
// The cloud API exposes a single model (whisper-1); the catalog model tier
// selected by the caller is accepted but does not change the backend model.
type Provider struct {
	client *goopenai.Client
}

// NewProvider creates a new OpenAI transcription provider.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api_key is required")
	}
	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Provider{client: goopenai.NewClientWithConfig(clientCfg)}, nil
}

// Factory returns a provider.Factory that creates OpenAI Provider instances
// from a generic config map.
func Factory() provider.Factory[transcription.Provider] {
	return func(cfg map[string]any) (transcription.Provider, error) {
		oc := Config{}
		if v, ok := cfg["api_key"].(string); ok {
			oc.APIKey = v
		}
		if v, ok := cfg["base_url"].(string); ok {
			oc.BaseURL = v
		}
		return NewProvider(oc)
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the OpenAI API is reachable with the configured key.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	return err == nil
}

// Transcribe sends canonical audio to the OpenAI Whisper API.
func (p *Provider) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Result, error) {
	resp, err := p.client.CreateTranscription(ctx, goopenai.AudioRequest{
		Model:    goopenai.Whisper1,
		Reader:   bytes.NewReader(req.Audio.WAV),
		FilePath: "audio.wav",
		Language: req.Language,
		Format:   goopenai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, mapAPIError(err)
	}

	segments := make([]transcription.Segment, len(resp.Segments))
	for i, seg := range resp.Segments {
		segments[i] = transcription.Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		}
	}

	return &transcription.Result{
		Text:     resp.Text,
		Segments: segments,
		Duration: resp.Duration,
		Language: resp.Language,
	}, nil
}

// mapAPIError classifies go-openai failures into the transcription taxonomy.
func mapAPIError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		detail := fmt.Sprintf("status %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
		if apiErr.HTTPStatusCode >= http.StatusInternalServerError ||
			apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return apperrors.BackendUnavailable(ProviderName, detail).WithCause(err)
		}
		return apperrors.BackendUnknown(ProviderName, detail).WithCause(err)
	}
	// Anything else is a transport-level failure.
	return apperrors.BackendUnavailable(ProviderName, err.Error()).WithCause(err)
}

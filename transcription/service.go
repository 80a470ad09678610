package transcription

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/skillsenselab/callscribe/audio"
	apperrors "github.com/skillsenselab/callscribe/errors"
	"github.com/skillsenselab/callscribe/logger"
	"github.com/skillsenselab/callscribe/provider"
)

// Options selects the model tier and language hint for one request.
// Zero values fall back to the configured defaults.
type Options struct {
	Model    string
	Language string
}

// Service runs the transcription pipeline: normalize, fingerprint, cache,
// backend call.
type Service struct {
	cfg        Config
	normalizer *audio.Normalizer
	providers  *provider.Registry[Provider]
	cache      *Cache
	log        *logger.Logger
}

// NewService creates a Service around the given normalizer, provider
// registry, and cache.
func NewService(cfg Config, normalizer *audio.Normalizer, providers *provider.Registry[Provider], cache *Cache, log *logger.Logger) *Service {
	cfg.ApplyDefaults()
	return &Service{
		cfg:        cfg,
		normalizer: normalizer,
		providers:  providers,
		cache:      cache,
		log:        log.WithComponent("transcription"),
	}
}

// Transcribe normalizes the blob, then returns the cached or freshly computed
// transcript. Every failure is a typed *errors.AppError.
func (s *Service) Transcribe(ctx context.Context, blob audio.Blob, opts Options) (*Result, error) {
	model := opts.Model
	if model == "" {
		model = s.cfg.Model
	}
	if !IsValidModel(model) {
		return nil, apperrors.InvalidInput("model", "unknown model "+model).
			WithDetail("available", ModelNames())
	}
	language := opts.Language
	if language == "" {
		language = s.cfg.Language
	}
	if !IsValidLanguage(language) {
		return nil, apperrors.InvalidInput("language", "unknown language "+language).
			WithDetail("available", LanguageCodes())
	}

	ca, err := s.normalizer.Normalize(ctx, blob)
	if err != nil {
		return nil, err
	}

	fingerprint := Fingerprint(ca.WAV)
	key := CacheKey(fingerprint, model, language)

	start := time.Now()
	res, err := s.cache.GetOrCompute(ctx, key, func(ctx context.Context) (*Result, error) {
		return s.invoke(ctx, ca, fingerprint, model, language)
	})
	if err != nil {
		s.log.Warn("Transcription failed", logger.Fields(
			logger.FieldFingerprint, fingerprint,
			logger.FieldError, err.Error(),
		))
		return nil, err
	}

	s.log.Info("Transcription completed", logger.Fields(
		logger.FieldFingerprint, fingerprint,
		logger.FieldProvider, res.Provider,
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))
	return res, nil
}

// ProviderName returns the name of the active backend.
func (s *Service) ProviderName() string {
	return s.cfg.Provider
}

// ProviderAvailable reports whether the active backend is reachable.
func (s *Service) ProviderAvailable(ctx context.Context) bool {
	p, ok := s.providers.Get(s.cfg.Provider)
	if !ok {
		return false
	}
	return p.IsAvailable(ctx)
}

// CacheLen returns the number of memoized outcomes.
func (s *Service) CacheLen() int {
	return s.cache.Len()
}

// invoke runs the backend call under the configured timeout and maps
// failures to the transcription taxonomy.
func (s *Service) invoke(ctx context.Context, ca *audio.CanonicalAudio, fingerprint, model, language string) (*Result, error) {
	p, ok := s.providers.Get(s.cfg.Provider)
	if !ok {
		return nil, apperrors.BackendUnavailable(s.cfg.Provider, "provider is not configured")
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	res, err := p.Transcribe(ctx, Request{Audio: ca, Model: model, Language: language})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.BackendUnavailable(p.Name(), "request timed out").WithCause(err)
		}
		if appErr, ok := apperrors.AsAppError(err); ok {
			return nil, appErr
		}
		return nil, apperrors.BackendUnknown(p.Name(), err.Error()).WithCause(err)
	}

	if strings.TrimSpace(res.Text) == "" {
		return nil, apperrors.Unintelligible(p.Name())
	}

	res.Provider = p.Name()
	res.Fingerprint = fingerprint
	return res, nil
}

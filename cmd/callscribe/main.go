// Command callscribe runs the audio transcription and annotation service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skillsenselab/callscribe/audio"
	"github.com/skillsenselab/callscribe/config"
	"github.com/skillsenselab/callscribe/logger"
	"github.com/skillsenselab/callscribe/server"
	"github.com/skillsenselab/callscribe/session"
	"github.com/skillsenselab/callscribe/transcription"
	"github.com/skillsenselab/callscribe/transcription/openai"
	"github.com/skillsenselab/callscribe/transcription/whisper"
	"github.com/skillsenselab/callscribe/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "callscribe: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Init(cfg.Logging)
	log := logger.GetGlobalLogger()

	v := version.GetVersionInfo()
	log.Info("Starting callscribe", map[string]interface{}{
		"version":     v.Version,
		"environment": cfg.Environment,
		"provider":    cfg.Transcription.Provider,
	})

	normalizer := audio.NewNormalizer(cfg.Audio, nil, log)

	registry := transcription.NewRegistry()
	registry.RegisterFactory(whisper.ProviderName, whisper.Factory())
	registry.RegisterFactory(openai.ProviderName, openai.Factory())

	providerCfg := cfg.Transcription.Providers[cfg.Transcription.Provider]
	if _, err := registry.Create(cfg.Transcription.Provider, providerCfg); err != nil {
		return fmt.Errorf("configure provider: %w", err)
	}

	cache := transcription.NewCache(cfg.Transcription.CacheMaxEntries, log)
	svc := transcription.NewService(cfg.Transcription, normalizer, registry, cache, log)

	sessions := session.NewManager(cfg.Session, log)
	defer sessions.Stop()

	srv := server.New(cfg.Server, log)
	api := server.NewAPI(svc, sessions, cfg.Server, log)
	defer api.Close()
	srv.ApplyDefaults(cfg.Name, api.HealthChecker())
	api.Register(srv.GinEngine())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		return err
	}

	log.Info("Service stopped")
	return nil
}

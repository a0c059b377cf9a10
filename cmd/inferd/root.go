package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"inferd/internal/config"
	"inferd/internal/engine"
	"inferd/internal/httpapi"
	"inferd/internal/modelfile"
)

const version = "0.1.0"

// envOr returns the environment value for key, or def when unset.
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// splitCSV splits a comma-separated list, trimming spaces and dropping
// empty items.
func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		cfg        config.Config
		corsList   string
	)

	root := &cobra.Command{
		Use:           "inferd",
		Short:         "Single-model HTTP inference daemon",
		Long:          "inferd loads one causal-language-model checkpoint at startup and serves synchronous inference over HTTP.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fileCfg := config.Config{}
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				fileCfg = loaded
			}
			merged := mergeConfig(fileCfg, cfg, cmd)
			if corsList != "" {
				merged.CORSEnabled = true
				merged.CORSAllowedOrigins = splitCSV(corsList)
			}
			return runServe(merged)
		},
	}

	fl := root.Flags()
	fl.StringVar(&configPath, "config", "", "Path to config file (.yaml/.json/.toml)")
	fl.StringVar(&cfg.Addr, "addr", envOr("INFERD_ADDR", ":7860"), "HTTP listen address")
	fl.StringVar(&cfg.Model, "model", envOr("INFERD_MODEL", modelfile.DefaultModelID), "Model id or path to a .gguf file")
	fl.StringVar(&cfg.CacheDir, "cache-dir", envOr("INFERD_CACHE_DIR", modelfile.DefaultCacheDir), "Directory for downloaded model artifacts")
	fl.IntVar(&cfg.LlamaCtx, "llama-ctx", 0, "llama.cpp context size (0=default)")
	fl.IntVar(&cfg.LlamaThreads, "llama-threads", 0, "llama.cpp thread count (0=default)")
	fl.IntVar(&cfg.MaxQueueDepth, "max-queue-depth", 0, "Maximum queued requests before 429 (0=default)")
	fl.IntVar(&cfg.MaxWaitSec, "max-wait-sec", 0, "Maximum seconds to wait for admission (0=default)")
	fl.IntVar(&cfg.CacheTTLSec, "cache-ttl-sec", 0, "Prompt response cache TTL in seconds (0=disabled)")
	fl.IntVar(&cfg.RateLimitRPS, "rate-limit-rps", 0, "Requests per second limit on POST endpoints (0=unlimited)")
	fl.StringVar(&cfg.LogLevel, "log-level", envOr("INFERD_LOG_LEVEL", "info"), "Log level: debug|info|warn|error")
	fl.StringVar(&corsList, "cors-origins", "", "Comma-separated allowed CORS origins (empty=CORS disabled)")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("inferd %s\n", version)
		},
	})
	root.AddCommand(newModelsCmd())

	return root
}

// mergeConfig overlays flag values onto the file config. A flag wins when it
// was set explicitly or when the file left the field empty.
func mergeConfig(file, flags config.Config, cmd *cobra.Command) config.Config {
	out := file
	if cmd.Flags().Changed("addr") || out.Addr == "" {
		out.Addr = flags.Addr
	}
	if cmd.Flags().Changed("model") || out.Model == "" {
		out.Model = flags.Model
	}
	if cmd.Flags().Changed("cache-dir") || out.CacheDir == "" {
		out.CacheDir = flags.CacheDir
	}
	if cmd.Flags().Changed("llama-ctx") || out.LlamaCtx == 0 {
		out.LlamaCtx = flags.LlamaCtx
	}
	if cmd.Flags().Changed("llama-threads") || out.LlamaThreads == 0 {
		out.LlamaThreads = flags.LlamaThreads
	}
	if cmd.Flags().Changed("max-queue-depth") || out.MaxQueueDepth == 0 {
		out.MaxQueueDepth = flags.MaxQueueDepth
	}
	if cmd.Flags().Changed("max-wait-sec") || out.MaxWaitSec == 0 {
		out.MaxWaitSec = flags.MaxWaitSec
	}
	if cmd.Flags().Changed("cache-ttl-sec") || out.CacheTTLSec == 0 {
		out.CacheTTLSec = flags.CacheTTLSec
	}
	if cmd.Flags().Changed("rate-limit-rps") || out.RateLimitRPS == 0 {
		out.RateLimitRPS = flags.RateLimitRPS
	}
	if cmd.Flags().Changed("log-level") || out.LogLevel == "" {
		out.LogLevel = flags.LogLevel
	}
	return out
}

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List builtin model ids",
		Run: func(cmd *cobra.Command, args []string) {
			for _, id := range modelfile.KnownIDs() {
				cmd.Println(id)
			}
		},
	}
}

func runServe(cfg config.Config) error {
	logger := newLogger(cfg.LogLevel)

	// Base context cancels on Ctrl+C / SIGTERM and propagates into in-flight
	// generations via the HTTP layer.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Resolve and load the model before accepting connections.
	mdl, err := modelfile.Resolve(ctx, cfg.Model, cfg.CacheDir)
	if err != nil {
		return err
	}
	logger.Info().Str("model", mdl.ID).Str("path", mdl.Path).Msg("model resolved")

	eng, err := engine.NewWithConfig(engine.EngineConfig{
		Model:         mdl,
		Logger:        &logger,
		MaxQueueDepth: cfg.MaxQueueDepth,
		MaxWait:       time.Duration(cfg.MaxWaitSec) * time.Second,
		CacheTTL:      time.Duration(cfg.CacheTTLSec) * time.Second,
		LlamaCtx:      cfg.LlamaCtx,
		LlamaThreads:  cfg.LlamaThreads,
	})
	if err != nil {
		return err
	}
	defer eng.Close()

	httpapi.SetLogger(logger)
	httpapi.SetBaseContext(ctx)
	httpapi.SetRateLimit(cfg.RateLimitRPS)
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSAllowedOrigins, cfg.CORSAllowedMethods, cfg.CORSAllowedHeaders)

	srv := &http.Server{Addr: cfg.Addr, Handler: httpapi.NewMux(eng)}
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Str("model", mdl.ID).Msg("inferd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// Graceful shutdown with a bounded drain.
	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown error")
	}
	return nil
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}

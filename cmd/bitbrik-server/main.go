// Command bitbrik-server serves stored bitbrik documents over HTTP.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/bitbriks/bitbrik"
	"github.com/bitbriks/bitbrik/server"
	"github.com/bitbriks/bitbrik/store"
)

type config struct {
	Addr     string `yaml:"addr"`
	Store    string `yaml:"store"`
	Sanitize bool   `yaml:"sanitize"`
	LogText  bool   `yaml:"log_text"`
	LogLevel string `yaml:"log_level"`
}

func loadConfig(path string) (config, error) {
	cfg := config{Addr: ":8080", Store: "bitbrik.db", Sanitize: true, LogLevel: "info"}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file")
		addr       = flag.String("addr", "", "listen address (overrides config)")
		storePath  = flag.String("store", "", "SQLite database path (overrides config)")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *storePath != "" {
		cfg.Store = *storePath
	}
	configLogging(cfg)
	log.Info().Str("version", bitbrik.Version()).Str("store", cfg.Store).Msg("starting bitbrik-server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.Store, store.WithLogger(log.Logger))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer st.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: server.New(server.Config{
			Documents: st,
			Registry:  reg,
			Sanitize:  cfg.Sanitize,
			Logger:    log.Logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed")
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}
}

func configLogging(cfg config) {
	if cfg.LogText {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("loglevel", cfg.LogLevel).Err(err).Msg("defaulting to info")
		level = zerolog.InfoLevel
	}
	log.Info().Str("loglevel", level.String()).Msg("setting log level")
	zerolog.SetGlobalLevel(level)
}

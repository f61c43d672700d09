package main

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/bitbriks/bitbrik"
	"github.com/bitbriks/bitbrik/products"
)

// config is the demo's YAML configuration. Flags override file values.
type config struct {
	Namespace    string            `yaml:"namespace"`
	EmptyEditor  bool              `yaml:"empty_editor"`
	MaxLength    int               `yaml:"max_length"`
	HistoryLimit int               `yaml:"history_limit"`
	Sanitize     bool              `yaml:"sanitize"`
	InitialHTML  string            `yaml:"initial_html"`
	Store        string            `yaml:"store"`
	Document     string            `yaml:"document"`
	LogFile      string            `yaml:"log_file"`
	LogLevel     string            `yaml:"log_level"`
	Products     products.Products `yaml:"products"`
}

func defaultConfig() config {
	return config{
		Namespace: "Playground",
		Sanitize:  true,
		LogLevel:  "info",
		Products: products.Products{
			{ID: "1", Name: "Desk Lamp", Image: "https://example.com/lamp.png", URL: "https://example.com/lamp"},
			{ID: "2", Name: "Notebook", Image: "https://example.com/notebook.png", URL: "https://example.com/notebook"},
		},
	}
}

// loadConfig reads path over the defaults. An empty path keeps the defaults.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
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
	if err := products.Validate(cfg.Products); err != nil {
		return cfg, errors.Wrap(err, "config products")
	}
	return cfg, nil
}

func (c config) settings() bitbrik.Settings {
	return bitbrik.Settings{
		MaxLength:    c.MaxLength,
		HistoryLimit: c.HistoryLimit,
		EmptyEditor:  c.EmptyEditor,
	}
}

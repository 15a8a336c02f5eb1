package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

const (
	ProviderOpenAI = "openai"
	ProviderRemote = "remote"
)

type Config struct {
	Generator GeneratorConfig `yaml:"generator"`
	UI        UIConfig        `yaml:"ui"`
	Log       LogConfig       `yaml:"log"`
	Server    ServerConfig    `yaml:"server"`
}

func (c *Config) Validate() error {
	if err := c.Generator.Validate(); err != nil {
		return fmt.Errorf("generator: %w", err)
	}
	if err := c.UI.Validate(); err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	return c.Server.Validate()
}

type GeneratorConfig struct {
	Provider  string        `yaml:"provider" json:"provider"`
	APIKey    string        `yaml:"api_key" json:"api_key"`
	Model     string        `yaml:"model" json:"model"`
	BaseURL   string        `yaml:"base_url" json:"base_url"`
	RemoteURL string        `yaml:"remote_url" json:"remote_url"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
	Retries   int           `yaml:"retries" json:"retries"`
}

func (c *GeneratorConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Provider, validation.Required, validation.In(ProviderOpenAI, ProviderRemote)),
		validation.Field(&c.RemoteURL, validation.When(c.Provider == ProviderRemote, validation.Required)),
		validation.Field(&c.Timeout, validation.Min(time.Second)),
		validation.Field(&c.Retries, validation.Min(0), validation.Max(10)),
	)
}

type UIConfig struct {
	EditOn        string `yaml:"edit_on" json:"edit_on"`
	Confirmations bool   `yaml:"confirmations" json:"confirmations"`
	SaveDirectory string `yaml:"save_directory" json:"save_directory"`
}

func (c *UIConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.EditOn, validation.In("click", "double_click")),
	)
}

func (c *UIConfig) EditTrigger() EditTrigger {
	if c.EditOn == "double_click" {
		return EditOnDoubleClick
	}
	return EditOnClick
}

type LogConfig struct {
	Level slog.Level `yaml:"level" json:"level"`
	File  string     `yaml:"file" json:"file"`
}

type ServerConfig struct {
	Port int `yaml:"port" json:"port"`
}

func (c *ServerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

func newDefaultConfig() *Config {
	return &Config{
		Generator: GeneratorConfig{
			Provider: ProviderOpenAI,
			APIKey:   os.Getenv("OPENAI_API_KEY"),
			Model:    defaultOpenAIModel,
			BaseURL:  defaultOpenAIBaseURL,
			Timeout:  2 * time.Minute,
			Retries:  2,
		},
		UI: UIConfig{
			EditOn:        "click",
			Confirmations: true,
		},
		Log: LogConfig{
			Level: slog.LevelInfo,
			File:  "pathboard.log",
		},
		Server: ServerConfig{Port: 8080},
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "pathboard.yaml"
	}
	return filepath.Join(home, ".config", "pathboard", "config.yaml")
}

// loadConfig reads YAML with environment expansion over the defaults. A
// missing file leaves the defaults in place.
func loadConfig(filename string) (*Config, error) {
	cfg := newDefaultConfig()
	data, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, cfg.Validate()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}
	cfg.UI.SaveDirectory = expandHome(cfg.UI.SaveDirectory)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func expandHome(path string) string {
	if path == "" {
		return path
	}
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}
	return path
}

func (c *Config) GetSavePath(filename string) string {
	if c.UI.SaveDirectory == "" {
		return filename
	}
	os.MkdirAll(c.UI.SaveDirectory, 0o755)
	return filepath.Join(c.UI.SaveDirectory, filename)
}

// newGenerator picks the generator client named by the provider.
func newGenerator(cfg GeneratorConfig, log *slog.Logger) PathGenerator {
	if cfg.Provider == ProviderRemote {
		return NewRemoteGenerator(cfg, log)
	}
	return NewOpenAIGenerator(cfg, log)
}

// openLogger writes to the configured file, or stderr when it is empty.
func openLogger(cfg LogConfig) (*slog.Logger, io.Closer, error) {
	opts := &slog.HandlerOptions{Level: cfg.Level}
	if cfg.File == "" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return slog.New(slog.NewJSONHandler(f, opts)), f, nil
}

// watchConfig reloads the file after writes settle and hands each valid
// result to onChange. The parent directory is watched so editors that
// replace the file are seen too. It returns when ctx is cancelled.
func watchConfig(ctx context.Context, filename string, log *slog.Logger, onChange func(*Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(filename)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	target := filepath.Clean(filename)

	var debounce *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil
		case <-fire:
			fire = nil
			cfg, err := loadConfig(filename)
			if err != nil {
				log.Warn("config reload failed", slog.String("error", err.Error()))
				continue
			}
			log.Info("config reloaded", slog.String("path", filename))
			onChange(cfg)
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(200 * time.Millisecond)
			} else {
				debounce.Reset(200 * time.Millisecond)
			}
			fire = debounce.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("config watcher error", slog.String("error", err.Error()))
		}
	}
}

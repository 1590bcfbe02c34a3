package commands

import (
	"errors"
	"log/slog"
	"os"
	"time"
	"trending-etl/lib/configutil"
	"trending-etl/lib/restyutil"
	"trending-etl/lib/scrapers/ghtrending"
	"trending-etl/lib/serviceutil"
	"trending-etl/lib/trendstore"
	"trending-etl/services/trending"
)

type SourceConfig struct {
	Url    string `json:"url"`
	Origin string `json:"origin"`
	// "current" or "classic"
	Layout           string `json:"layout"`
	TimeoutSeconds   int    `json:"timeout_seconds"`
	UserAgent        string `json:"user_agent"`
	CloudflareBypass bool   `json:"cloudflare_bypass"`
	// raw HTTP exchanges are written here when debug logging is on
	DumpDir string `json:"dump_dir"`
}

type Config struct {
	Source  SourceConfig      `json:"source"`
	Storage trendstore.Config `json:"storage"`
}

// loadConfig falls back to the defaults when no config file exists.
func loadConfig(path string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("no config file found, using defaults", "path", path)
		return Config{}, nil
	}
	return cfg, err
}

func (c SourceConfig) ClientOptions() (ghtrending.ClientOptions, error) {
	opts := ghtrending.ClientOptions{
		Timeout:          time.Duration(c.TimeoutSeconds) * time.Second,
		UserAgent:        c.UserAgent,
		CloudflareBypass: c.CloudflareBypass,
	}
	if c.DumpDir != "" {
		output, err := restyutil.NewFilesystemOutput(c.DumpDir)
		if err != nil {
			return ghtrending.ClientOptions{}, err
		}
		opts.Output = output
	}
	return opts, nil
}

func (c SourceConfig) ServiceOptions() (trending.Options, error) {
	layout, err := ghtrending.LayoutByName(c.Layout)
	if err != nil {
		return trending.Options{}, err
	}
	return trending.Options{
		Url: c.Url,
		Extract: ghtrending.ExtractOptions{
			Origin: c.Origin,
			Layout: layout,
		},
	}, nil
}

func mustConfig() Config {
	cfg, err := loadConfig(*configPath)
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	return cfg
}

func mustStore(cfg Config) trendstore.Store {
	store, err := trendstore.Open(cfg.Storage)
	if err != nil {
		serviceutil.Fatal("failed to open store", err)
	}
	slog.Debug("opened store", "driver", store.Dialect().Name)
	return store
}

func mustService(cfg Config, store trendstore.Store) trending.Service {
	clientOpts, err := cfg.Source.ClientOptions()
	if err != nil {
		serviceutil.Fatal("failed to setup http output", err)
	}
	serviceOpts, err := cfg.Source.ServiceOptions()
	if err != nil {
		serviceutil.Fatal("invalid source config", err)
	}
	return trending.NewService(ghtrending.NewClient(clientOpts), store, serviceOpts)
}

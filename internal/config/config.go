package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. DEVFOLIO_OUTPUTDIR.
const EnvPrefix = "DEVFOLIO"

// DefaultName is the config file looked up in the working directory when
// --config is not given.
const DefaultName = "devfolio"

// FlagKeys maps CLI flag names to the config keys they override.
var FlagKeys = map[string]string{
	"site":       "siteFile",
	"output":     "outputDir",
	"base-url":   "baseURL",
	"log-level":  "logLevel",
	"log-format": "logFormat",
	"strict":     "strict",
	"workers":    "workers",
}

type Config struct {
	SiteFile   string `mapstructure:"siteFile"`
	OutputDir  string `mapstructure:"outputDir"`
	ContentDir string `mapstructure:"contentDir"`
	LayoutsDir string `mapstructure:"layoutsDir"`
	StaticDir  string `mapstructure:"staticDir"`
	// BaseURL overrides siteMetadata.siteUrl when set.
	BaseURL  string `mapstructure:"baseURL"`
	LogLevel string `mapstructure:"logLevel"`
	// LogFormat is "console" or "json".
	LogFormat string `mapstructure:"logFormat"`
	Strict    bool   `mapstructure:"strict"`
	Workers   int    `mapstructure:"workers"`

	// Source is the config file used, empty when only defaults and env applied.
	Source string `mapstructure:"-"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("siteFile", "site.yaml")
	v.SetDefault("outputDir", "public")
	v.SetDefault("contentDir", "content")
	v.SetDefault("layoutsDir", "layouts")
	v.SetDefault("staticDir", "static")
	v.SetDefault("baseURL", "")
	v.SetDefault("logLevel", "info")
	v.SetDefault("logFormat", "console")
	v.SetDefault("strict", false)
	v.SetDefault("workers", 4)
}

// Load resolves settings from flags, DEVFOLIO_* env vars, the config file and
// defaults, in that order of precedence. A missing default config file is
// fine; a missing explicit cfgFile is not.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(DefaultName)
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range FlagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return Config{}, fmt.Errorf("failed to bind flag --%s: %w", name, err)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || cfgFile != "" {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	cfg.Source = v.ConfigFileUsed()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings that would make a build destructive or impossible.
func (c Config) Validate() error {
	out := filepath.Clean(strings.TrimSpace(c.OutputDir))
	switch {
	case strings.TrimSpace(c.OutputDir) == "":
		return errors.New("outputDir must not be empty")
	case out == "." || out == "/":
		return fmt.Errorf("outputDir %q would be wiped on every build", c.OutputDir)
	case strings.TrimSpace(c.SiteFile) == "":
		return errors.New("siteFile must not be empty")
	case c.LogFormat != "" && c.LogFormat != "console" && c.LogFormat != "json":
		return fmt.Errorf("logFormat must be console or json, got %q", c.LogFormat)
	case c.Workers < 1:
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

// SiteDir is the directory plugin paths in the site file are relative to.
func (c Config) SiteDir() string {
	return filepath.Dir(c.SiteFile)
}

package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cascade/pkg/errors"
	"github.com/matzehuels/cascade/pkg/pipeline"
)

// Config holds defaults read from the TOML config file. Flags given on the
// command line always win over these values.
//
//	[render]
//	width = 1024
//	colors = ["#1f77b4", "#ff7f0e"]
//	axes = true
//
//	[render.margin]
//	top = 20
//	right = 20
//	bottom = 40
//	left = 60
//
//	[serve]
//	addr = ":8080"
//	redis = "redis://localhost:6379/0"
type Config struct {
	Render pipeline.Options `toml:"render"`
	Serve  ServeConfig      `toml:"serve"`
}

// ServeConfig holds defaults for the serve command.
type ServeConfig struct {
	Addr   string `toml:"addr"`
	Redis  string `toml:"redis"`
	Prefix string `toml:"prefix"`
}

// loadConfig reads the config file at path. An empty path falls back to the
// XDG location, where a missing file is not an error.
func loadConfig(path string) (*Config, error) {
	var cfg Config
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return &cfg, nil
		}
		path = filepath.Join(dir, configFileName)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return &cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidInput, "config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return &cfg, nil
}

// config loads the config file selected by --config.
func (c *CLI) config() (*Config, error) {
	cfg, err := loadConfig(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.configPath != "" {
		c.Logger.Debug("loaded config", "path", c.configPath)
	}
	return cfg, nil
}

// applyRenderConfig copies config values into opts for every flag the user
// did not set explicitly.
func applyRenderConfig(cmd *cobra.Command, cfg pipeline.Options, opts *pipeline.Options) {
	unset := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && !f.Changed
	}

	if unset("width") && cfg.Width != 0 {
		opts.Width = cfg.Width
	}
	if unset("height") && cfg.Height != 0 {
		opts.Height = cfg.Height
	}
	if unset("margin") && cfg.Margin != nil {
		m := *cfg.Margin
		opts.Margin = &m
	}
	if unset("colors") && len(cfg.Colors) > 0 {
		opts.Colors = append([]string(nil), cfg.Colors...)
	}
	if unset("format") && len(cfg.Formats) > 0 {
		opts.Formats = append([]string(nil), cfg.Formats...)
	}
	if unset("strict") && cfg.Policy != "" {
		opts.Policy = cfg.Policy
	}
	if unset("axes") && cfg.Axes {
		opts.Axes = true
	}
	if unset("ticks") && cfg.Ticks != 0 {
		opts.Ticks = cfg.Ticks
	}
	if unset("grow") && cfg.Grow {
		opts.Grow = true
	}
	if unset("scale") && cfg.Scale != 0 {
		opts.Scale = cfg.Scale
	}
}

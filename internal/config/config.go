// Package config loads rulebook CLI settings.
//
// Settings are layered, later layers winning:
//
//  1. built-in defaults
//  2. rulebook.toml (or the file given with --config)
//  3. a .env file next to it
//  4. RULEBOOK_* environment variables
//  5. command-line flags, applied by the CLI
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/rulebook/pkg/errors"
	"github.com/matzehuels/rulebook/pkg/pipeline"
	"github.com/matzehuels/rulebook/pkg/render/nodelink"
)

const (
	// FileName is the config file looked up in the working directory.
	FileName = "rulebook.toml"

	// EnvFile is the dotenv file looked up in the working directory.
	EnvFile = ".env"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "RULEBOOK_"

	// DefaultAddr is the preview server listen address.
	DefaultAddr = "127.0.0.1:8080"
)

// Config holds all CLI settings.
type Config struct {
	// Template is the LaTeX template path. Empty selects the embedded one.
	Template string   `toml:"template"`
	Output   string   `toml:"output"`
	Formats  []string `toml:"formats"`

	Cache   CacheConfig   `toml:"cache"`
	Serve   ServeConfig   `toml:"serve"`
	Diagram DiagramConfig `toml:"diagram"`
}

// CacheConfig selects the artifact cache backend.
type CacheConfig struct {
	Disable  bool   `toml:"disable"`
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	Prefix   string `toml:"prefix"`
}

// ServeConfig configures the preview server.
type ServeConfig struct {
	Addr string `toml:"addr"`
}

// DiagramConfig configures the hierarchy diagram.
type DiagramConfig struct {
	Depth     int  `toml:"depth"`
	Detailed  bool `toml:"detailed"`
	CrossRefs bool `toml:"cross_refs"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Formats: append([]string(nil), pipeline.DefaultFormats...),
		Serve:   ServeConfig{Addr: DefaultAddr},
	}
}

// Load reads the config file at path and the dotenv file at envFile, then
// applies RULEBOOK_* overrides from the process environment. Empty paths
// fall back to FileName and EnvFile in the working directory, which may be
// absent; an explicit path that does not exist is an error.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = FileName
	}
	if _, err := os.Stat(path); err == nil {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown key %q in %s", undecoded[0].String(), path)
		}
	} else if explicit {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}

	env, err := environ(envFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(env); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// environ merges the dotenv file with the process environment. As with
// godotenv.Load, variables already set in the process take precedence.
func environ(envFile string) (map[string]string, error) {
	if envFile == "" {
		envFile = EnvFile
	}
	env := map[string]string{}
	if _, err := os.Stat(envFile); err == nil {
		vars, err := godotenv.Read(envFile)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", envFile)
		}
		env = vars
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(k, EnvPrefix) {
			env[k] = v
		}
	}
	return env, nil
}

func (c *Config) applyEnv(env map[string]string) error {
	str := func(key string, dst *string) {
		if v, ok := env[EnvPrefix+key]; ok && v != "" {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) error {
		v, ok := env[EnvPrefix+key]
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s%s", EnvPrefix, key)
		}
		*dst = b
		return nil
	}

	str("TEMPLATE", &c.Template)
	str("OUTPUT", &c.Output)
	str("CACHE_DIR", &c.Cache.Dir)
	str("REDIS_URL", &c.Cache.RedisURL)
	str("CACHE_PREFIX", &c.Cache.Prefix)
	str("ADDR", &c.Serve.Addr)
	if v := env[EnvPrefix+"FORMATS"]; v != "" {
		c.Formats = pipeline.ParseFormats(v)
	}
	if v := env[EnvPrefix+"DIAGRAM_DEPTH"]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%sDIAGRAM_DEPTH", EnvPrefix)
		}
		c.Diagram.Depth = n
	}
	if err := boolean("NO_CACHE", &c.Cache.Disable); err != nil {
		return err
	}
	if err := boolean("CROSS_REFS", &c.Diagram.CrossRefs); err != nil {
		return err
	}
	return boolean("DIAGRAM_DETAILED", &c.Diagram.Detailed)
}

// Validate checks the settings.
func (c *Config) Validate() error {
	if err := pipeline.ValidateFormats(c.Formats); err != nil {
		return err
	}
	if c.Cache.RedisURL != "" {
		if err := errors.ValidateRedisURL(c.Cache.RedisURL); err != nil {
			return err
		}
	}
	if err := errors.ValidateListenAddr(c.Serve.Addr); err != nil {
		return err
	}
	if c.Diagram.Depth < 0 || c.Diagram.Depth > nodelink.DepthRules {
		return errors.New(errors.ErrCodeInvalidConfig, "diagram depth must be between 0 and %d", nodelink.DepthRules)
	}
	return nil
}

// DiagramOptions converts the diagram settings for the renderer.
func (c *Config) DiagramOptions() nodelink.Options {
	return nodelink.Options{
		Depth:     c.Diagram.Depth,
		Detailed:  c.Diagram.Detailed,
		CrossRefs: c.Diagram.CrossRefs,
	}
}

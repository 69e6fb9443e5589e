// Package config loads macperms settings from an optional YAML file and the
// environment. Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tmc/macperms/internal/logging"
	"github.com/tmc/macperms/internal/system"
)

// Codec names accepted by Config.Codec.
const (
	CodecJSON = "json"
	CodecCBOR = "cbor"
)

// Config is the resolved configuration.
type Config struct {
	CacheTTL     Duration `yaml:"cache_ttl"`
	EventTarget  string   `yaml:"event_target"`
	PollInterval Duration `yaml:"poll_interval"`
	Codec        string   `yaml:"codec"`
	Log          Log      `yaml:"log"`
}

// Log is the log block of the config file.
type Log struct {
	Debug bool   `yaml:"debug"`
	JSON  bool   `yaml:"json"`
	Dest  string `yaml:"dest"`
}

// Duration accepts "30s"-style strings or a bare number of seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", node.Line)
	}
	v := strings.TrimSpace(node.Value)
	if secs, err := strconv.Atoi(v); err == nil {
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML writes the duration in time.Duration notation.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		CacheTTL:     Duration(30 * time.Second),
		EventTarget:  "main",
		PollInterval: Duration(2 * time.Second),
		Codec:        CodecJSON,
		Log:          Log{Dest: "stderr"},
	}
}

// Load reads path (or $MACPERMS_CONFIG when path is empty) over the
// defaults, applies environment overrides and validates the result. A
// missing file is only an error when it was named explicitly.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = system.GetString(system.EnvConfig, "")
	}
	if path != "" {
		f, err := os.Open(path)
		switch {
		case err == nil:
			defer f.Close()
			if err := cfg.decode(f); err != nil {
				return nil, fmt.Errorf("config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults without consulting the environment.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(r); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv() {
	c.CacheTTL = Duration(system.GetDuration(system.EnvCacheTTL, c.CacheTTL.Std()))
	c.PollInterval = Duration(system.GetDuration(system.EnvPollInterval, c.PollInterval.Std()))
	c.EventTarget = system.GetString(system.EnvEventTarget, c.EventTarget)
	c.Codec = strings.ToLower(system.GetString(system.EnvCodec, c.Codec))
	c.Log.Dest = system.GetString(system.EnvLogDest, c.Log.Dest)
	if v, ok := system.LookupBool(system.EnvDebug); ok {
		c.Log.Debug = v
	}
	if v, ok := system.LookupBool(system.EnvLogJSON); ok {
		c.Log.JSON = v
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.CacheTTL <= 0 {
		return fmt.Errorf("config: cache_ttl must be positive, got %s", c.CacheTTL.Std())
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("config: poll_interval must be positive, got %s", c.PollInterval.Std())
	}
	if c.EventTarget == "" {
		return errors.New("config: event_target must not be empty")
	}
	switch c.Codec {
	case CodecJSON, CodecCBOR:
	default:
		return fmt.Errorf("config: unknown codec %q (want json or cbor)", c.Codec)
	}
	return nil
}

// LogOptions converts the log block for logging.New.
func (c *Config) LogOptions() logging.Options {
	return logging.Options{
		Debug: c.Log.Debug,
		JSON:  c.Log.JSON,
		Dest:  c.Log.Dest,
		Time:  system.GetBool(system.EnvLogTime),
	}
}

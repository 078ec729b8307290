package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
	_ "time/tzdata"

	"github.com/banshee-data/asha.report/internal/indicators"
	"github.com/banshee-data/asha.report/internal/security"
)

// DefaultConfigPath is the path to the canonical indicator defaults file.
const DefaultConfigPath = "config/indicators.defaults.json"

const (
	defaultListen        = ":8080"
	defaultTimeZone      = "Asia/Kolkata"
	defaultRemoteTimeout = 15 * time.Second
	maxFileSize          = 1 * 1024 * 1024
)

// IndicatorConfig is the service configuration file. Every field is
// optional; the Get* methods supply defaults for anything omitted.
type IndicatorConfig struct {
	Listen        *string `json:"listen,omitempty"`
	DefaultRegion *string `json:"default_region,omitempty"`
	TimeZone      *string `json:"time_zone,omitempty"`      // IANA name like "Asia/Kolkata"
	RemoteTimeout *string `json:"remote_timeout,omitempty"` // duration string like "15s"

	// Thresholds overrides tier thresholds per indicator key.
	Thresholds map[string]ThresholdOverride `json:"thresholds,omitempty"`
}

// ThresholdOverride replaces one or both tier thresholds of an indicator.
type ThresholdOverride struct {
	Good    *int `json:"good,omitempty"`
	Warning *int `json:"warning,omitempty"`
}

// EmptyIndicatorConfig returns a config with every field unset.
func EmptyIndicatorConfig() *IndicatorConfig {
	return &IndicatorConfig{}
}

// LoadIndicatorConfig loads an IndicatorConfig from a JSON file. The path
// must have a .json extension, be under 1MB and resolve inside the working
// directory or one of allowedDirs.
func LoadIndicatorConfig(path string, allowedDirs ...string) (*IndicatorConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	if err := security.ValidatePathWithinAllowedDirs(cleanPath, append([]string{cwd}, allowedDirs...)); err != nil {
		return nil, fmt.Errorf("config file rejected: %w", err)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyIndicatorConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath from the current directory or
// the repository root. Panics if the file cannot be loaded; intended for tests.
func MustLoadDefaultConfig() *IndicatorConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath, // from internal/<pkg>/
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		abs, err := filepath.Abs(path)
		if err != nil {
			continue
		}
		if cfg, err := LoadIndicatorConfig(abs, filepath.Dir(abs)); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are usable.
func (c *IndicatorConfig) Validate() error {
	if c.TimeZone != nil && *c.TimeZone != "" {
		if _, err := time.LoadLocation(*c.TimeZone); err != nil {
			return fmt.Errorf("invalid time_zone '%s': %w", *c.TimeZone, err)
		}
	}

	if c.RemoteTimeout != nil && *c.RemoteTimeout != "" {
		d, err := time.ParseDuration(*c.RemoteTimeout)
		if err != nil {
			return fmt.Errorf("invalid remote_timeout '%s': %w", *c.RemoteTimeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("remote_timeout must be positive, got %s", d)
		}
	}

	known := knownDefinitions()
	for _, key := range sortedKeys(c.Thresholds) {
		def, ok := known[key]
		if !ok {
			return fmt.Errorf("thresholds: unknown indicator %q", key)
		}
		th := c.Thresholds[key].apply(def.Thresholds)
		if th.Good > 1000 || th.Warning < 0 {
			return fmt.Errorf("thresholds: %s out of range (good=%d, warning=%d)", key, th.Good, th.Warning)
		}
		if err := th.Validate(); err != nil {
			return fmt.Errorf("thresholds: %s: %w", key, err)
		}
	}
	return nil
}

// GetListen returns the HTTP listen address.
func (c *IndicatorConfig) GetListen() string {
	if c.Listen == nil || *c.Listen == "" {
		return defaultListen
	}
	return *c.Listen
}

// GetDefaultRegion returns the region used when a request names none.
func (c *IndicatorConfig) GetDefaultRegion() string {
	if c.DefaultRegion == nil {
		return ""
	}
	return *c.DefaultRegion
}

// GetLocation returns the location reporting periods are derived in.
// Falls back to a fixed IST offset when the name cannot be loaded.
func (c *IndicatorConfig) GetLocation() *time.Location {
	name := defaultTimeZone
	if c.TimeZone != nil && *c.TimeZone != "" {
		name = *c.TimeZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("IST", 5*3600+30*60)
	}
	return loc
}

// GetRemoteTimeout returns the per-request timeout for the remote source.
func (c *IndicatorConfig) GetRemoteTimeout() time.Duration {
	if c.RemoteTimeout == nil || *c.RemoteTimeout == "" {
		return defaultRemoteTimeout
	}
	d, err := time.ParseDuration(*c.RemoteTimeout)
	if err != nil || d <= 0 {
		return defaultRemoteTimeout
	}
	return d
}

// Definitions returns the catalog for kind with any configured threshold
// overrides applied. The catalog itself is not modified.
func (c *IndicatorConfig) Definitions(kind indicators.Kind) []indicators.Definition {
	defs := indicators.Catalog(kind)
	if len(c.Thresholds) == 0 {
		return defs
	}
	overrides := make(map[string]indicators.Thresholds)
	for _, d := range defs {
		if o, ok := c.Thresholds[d.Key]; ok {
			overrides[d.Key] = o.apply(d.Thresholds)
		}
	}
	return indicators.WithThresholds(defs, overrides)
}

func (o ThresholdOverride) apply(base indicators.Thresholds) indicators.Thresholds {
	if o.Good != nil {
		base.Good = *o.Good
	}
	if o.Warning != nil {
		base.Warning = *o.Warning
	}
	return base
}

func knownDefinitions() map[string]indicators.Definition {
	out := make(map[string]indicators.Definition)
	for _, kind := range indicators.Kinds() {
		for _, d := range indicators.Catalog(kind) {
			out[d.Key] = d
		}
	}
	return out
}

func sortedKeys(m map[string]ThresholdOverride) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

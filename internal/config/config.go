// Package config loads and validates loom.yaml project configuration.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/loomui/loom/internal/errors"
)

const (
	// FileName is the name of the configuration file.
	FileName = "loom.yaml"

	// DefaultAddr is the default server listen address.
	DefaultAddr = ":8080"

	// DefaultExportDir is the default static export output directory.
	DefaultExportDir = "dist"

	// DefaultCachePath is the default export page cache location.
	DefaultCachePath = ".loom/cache.db"
)

// Config is the complete loom.yaml configuration.
type Config struct {
	// Name is the project name.
	Name string `yaml:"name"`

	// Server configures the live server.
	Server ServerConfig `yaml:"server,omitempty"`

	// Export configures static export.
	Export ExportConfig `yaml:"export,omitempty"`

	// path is where the config was loaded from.
	path string
}

// ServerConfig configures the live server.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `yaml:"addr,omitempty"`
}

// ExportConfig configures static export and publishing.
type ExportConfig struct {
	// Dir is the output directory for exported pages.
	Dir string `yaml:"dir,omitempty"`

	// Routes are the page routes to prerender.
	Routes []string `yaml:"routes,omitempty"`

	// CachePath locates the bbolt page cache.
	CachePath string `yaml:"cache_path,omitempty"`

	// S3 configures optional publishing to an S3 bucket.
	S3 S3Config `yaml:"s3,omitempty"`
}

// S3Config configures publishing exported pages to S3.
type S3Config struct {
	// Bucket is the destination bucket. Empty disables publishing.
	Bucket string `yaml:"bucket,omitempty"`

	// Prefix is prepended to every object key.
	Prefix string `yaml:"prefix,omitempty"`

	// Region overrides the ambient AWS region.
	Region string `yaml:"region,omitempty"`
}

// Load reads loom.yaml from the given directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// LoadFile reads a configuration file from an explicit path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E301").WithDetailf("no %s at %s", FileName, path)
		}
		return nil, errors.New("E302").Wrap(err)
	}

	cfg := &Config{path: path}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E302").WithDetailf("%s: %v", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a configuration with every default applied, for use
// when no loom.yaml exists.
func Default() *Config {
	cfg := &Config{Name: "loom-app"}
	cfg.applyDefaults()
	return cfg
}

// Path returns where the config was loaded from, or "".
func (c *Config) Path() string { return c.path }

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.path == "" {
		return "."
	}
	return filepath.Dir(c.path)
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Export.Dir == "" {
		c.Export.Dir = DefaultExportDir
	}
	if c.Export.CachePath == "" {
		c.Export.CachePath = DefaultCachePath
	}
}

// Validate checks the configuration for contradictions.
func (c *Config) Validate() error {
	if c.Name == "" {
		return errors.New("E302").WithDetailf("project name is required")
	}
	for _, route := range c.Export.Routes {
		if !strings.HasPrefix(route, "/") {
			return errors.New("E302").WithDetailf("export route %q must start with /", route)
		}
	}
	if c.Export.S3.Prefix != "" && c.Export.S3.Bucket == "" {
		return errors.New("E302").WithDetailf("s3 prefix set without a bucket")
	}
	return nil
}

// PublishEnabled reports whether exported pages should be uploaded.
func (c *Config) PublishEnabled() bool {
	return c.Export.S3.Bucket != ""
}

// ExportPath resolves the export directory against the config dir.
func (c *Config) ExportPath() string {
	if filepath.IsAbs(c.Export.Dir) {
		return c.Export.Dir
	}
	return filepath.Join(c.Dir(), c.Export.Dir)
}

// CachePath resolves the page cache location against the config dir.
func (c *Config) CachePath() string {
	if filepath.IsAbs(c.Export.CachePath) {
		return c.Export.CachePath
	}
	return filepath.Join(c.Dir(), c.Export.CachePath)
}

// Package config loads plotting defaults from a TOML file. Flags override
// file values, which override the built-in defaults; merging happens in the
// CLI layer.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/trellisplot/trellis/pkg/errors"
)

// DefaultFileName is the config file looked up in the working directory.
const DefaultFileName = "trellis.toml"

// Config is the on-disk configuration shape.
type Config struct {
	Facet   FacetConfig   `toml:"facet"`
	Cluster ClusterConfig `toml:"cluster"`
	Cache   CacheConfig   `toml:"cache"`
	Output  OutputConfig  `toml:"output"`
}

// FacetConfig carries facet grid defaults.
type FacetConfig struct {
	Size    float64 `toml:"size"`
	Aspect  float64 `toml:"aspect"`
	Palette string  `toml:"palette"`
}

// ClusterConfig carries clustering defaults.
type ClusterConfig struct {
	Metric string `toml:"metric"`
	Method string `toml:"method"`
	Fast   bool   `toml:"fast"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	// Backend is file, redis, or none. Empty means file.
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// OutputConfig carries render defaults.
type OutputConfig struct {
	Format string  `toml:"format"`
	Size   float64 `toml:"size"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Facet:   FacetConfig{Size: 3, Aspect: 1},
		Cluster: ClusterConfig{Metric: "euclidean", Method: "average"},
		Cache:   CacheConfig{Backend: "file"},
		Output:  OutputConfig{Format: "svg"},
	}
}

// Load reads a config file over the defaults. A missing file with an empty
// explicit path is not an error; a named path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if explicit {
			return cfg, errors.New(errors.ErrCodeNotFound, "config file %s not found", path)
		}
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parsing %s", filepath.Base(path))
	}
	return cfg, nil
}

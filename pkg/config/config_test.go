package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/trellisplot/trellis/pkg/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Facet.Size != 3 || cfg.Facet.Aspect != 1 {
		t.Errorf("facet defaults = %+v", cfg.Facet)
	}
	if cfg.Cluster.Metric != "euclidean" || cfg.Cluster.Method != "average" {
		t.Errorf("cluster defaults = %+v", cfg.Cluster)
	}
	if cfg.Output.Format != "svg" {
		t.Errorf("output default = %+v", cfg.Output)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trellis.toml")
	content := `
[facet]
size = 4.5
palette = "rainbow"

[cluster]
method = "ward"

[cache]
backend = "redis"
redis_addr = "localhost:6379"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Facet.Size != 4.5 {
		t.Errorf("Facet.Size = %v, want 4.5", cfg.Facet.Size)
	}
	if cfg.Facet.Palette != "rainbow" {
		t.Errorf("Facet.Palette = %q, want rainbow", cfg.Facet.Palette)
	}
	// Untouched keys keep their defaults.
	if cfg.Facet.Aspect != 1 {
		t.Errorf("Facet.Aspect = %v, want default 1", cfg.Facet.Aspect)
	}
	if cfg.Cluster.Method != "ward" {
		t.Errorf("Cluster.Method = %q, want ward", cfg.Cluster.Method)
	}
	if cfg.Cluster.Metric != "euclidean" {
		t.Errorf("Cluster.Metric = %q, want default euclidean", cfg.Cluster.Metric)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if errors.GetCode(err) != errors.ErrCodeNotFound {
		t.Errorf("code = %v, want NOT_FOUND", errors.GetCode(err))
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[facet\nsize="), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Load(path)
	if errors.GetCode(err) != errors.ErrCodeInvalidConfig {
		t.Errorf("code = %v, want INVALID_CONFIG", errors.GetCode(err))
	}
}

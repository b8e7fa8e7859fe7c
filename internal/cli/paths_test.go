package cli

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/rulebook/internal/config"
)

func TestDefaultCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := defaultCacheDir()
	if err != nil {
		t.Fatalf("defaultCacheDir() error: %v", err)
	}
	if !strings.HasSuffix(dir, filepath.Join(".cache", appName)) {
		t.Errorf("defaultCacheDir() = %q, want suffix .cache/%s", dir, appName)
	}
}

func TestDefaultCacheDirXDG(t *testing.T) {
	custom := filepath.Join(t.TempDir(), "xdg")
	t.Setenv("XDG_CACHE_HOME", custom)

	dir, err := defaultCacheDir()
	if err != nil {
		t.Fatalf("defaultCacheDir() error: %v", err)
	}
	if want := filepath.Join(custom, appName); dir != want {
		t.Errorf("defaultCacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirFromConfig(t *testing.T) {
	c := &CLI{Config: config.Default()}
	c.Config.Cache.Dir = "/srv/rulebook-cache"

	dir, err := c.cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if dir != "/srv/rulebook-cache" {
		t.Errorf("cacheDir() = %q", dir)
	}
}

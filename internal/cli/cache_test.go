package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/cascade/pkg/cache"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", "cascade")
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if dir != filepath.Join(xdg, "cascade") {
		t.Errorf("cacheDir() = %q, should be under XDG_CACHE_HOME", dir)
	}
}

func TestConfigDirXDG(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	dir, err := configDir()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(dir, xdg) || filepath.Base(dir) != "cascade" {
		t.Errorf("configDir() = %q", dir)
	}
}

func TestNewCacheNoCache(t *testing.T) {
	c, err := newCache(true)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(cache.NullCache); !ok {
		t.Errorf("newCache(true) = %T, want cache.NullCache", c)
	}
}

func TestCacheClearCommand(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	fc, err := cache.NewFileCache(filepath.Join(xdg, "cascade"))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, key := range []string{"a", "b", "c"} {
		if err := fc.Set(ctx, key, []byte(key), time.Hour); err != nil {
			t.Fatal(err)
		}
	}

	root := New(os.Stderr, LogInfo).RootCommand()
	root.SetArgs([]string{"cache", "clear"})
	if err := root.Execute(); err != nil {
		t.Fatalf("cache clear: %v", err)
	}

	if _, hit, _ := fc.Get(ctx, "a"); hit {
		t.Error("entry survived cache clear")
	}
}

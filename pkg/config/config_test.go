package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bastiangx/hanserve/pkg/dictionary"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "[server]\nmax_limit = 20\n")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	def := DefaultConfig()
	if cfg.Server.MaxLimit != 20 {
		t.Errorf("max_limit = %d, want 20", cfg.Server.MaxLimit)
	}
	if cfg.Server.MaxPrefix != def.Server.MaxPrefix || cfg.Engine.CacheSize != def.Engine.CacheSize {
		t.Errorf("unset keys lost their defaults: %+v", cfg)
	}
	if len(cfg.Dict.Sources) != len(dictionary.DefaultSources()) {
		t.Errorf("empty catalog should fall back to defaults, got %d sources", len(cfg.Dict.Sources))
	}
}

func TestLoadConfigSources(t *testing.T) {
	path := writeConfig(t, `
[dict]
dir = "/srv/dicts"

[[dict.sources]]
name = "mine"
path = "mine.tsv"
enabled = true
priority = 300
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Dict.Dir != "/srv/dicts" {
		t.Errorf("dir = %q", cfg.Dict.Dir)
	}
	want := dictionary.Source{Name: "mine", Path: "mine.tsv", Enabled: true, Priority: 300}
	if len(cfg.Dict.Sources) != 1 || cfg.Dict.Sources[0] != want {
		t.Errorf("sources = %+v, want [%+v]", cfg.Dict.Sources, want)
	}
}

func TestPartialRecovery(t *testing.T) {
	// max_limit has the wrong type, so the typed decode fails
	path := writeConfig(t, `
[server]
max_limit = "lots"
min_prefix = 2

[engine]
cache_size = 5

[[dict.sources]]
name = "a"
path = "a.json"
enabled = true

[[dict.sources]]
enabled = true

[metrics]
addr = ":9999"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.MaxLimit != DefaultConfig().Server.MaxLimit {
		t.Errorf("bad max_limit should keep the default, got %d", cfg.Server.MaxLimit)
	}
	if cfg.Server.MinPrefix != 2 || cfg.Engine.CacheSize != 5 || cfg.Metrics.Addr != ":9999" {
		t.Errorf("valid values were not recovered: %+v", cfg)
	}
	if len(cfg.Dict.Sources) != 1 || cfg.Dict.Sources[0].Name != "a" {
		t.Errorf("sources = %+v", cfg.Dict.Sources)
	}
}

func TestUnparseableFileUsesDefaults(t *testing.T) {
	path := writeConfig(t, "this is not [toml")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server != DefaultConfig().Server {
		t.Errorf("expected default server config, got %+v", cfg.Server)
	}
}

func TestInitConfigCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg, err := InitConfig(path)
	if err != nil {
		t.Fatalf("InitConfig: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file was not created: %v", err)
	}

	again, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if again.Server != cfg.Server || len(again.Dict.Sources) != len(cfg.Dict.Sources) {
		t.Errorf("written config does not load back: %+v", again)
	}
	if again.Dict.Sources[6] != cfg.Dict.Sources[6] {
		t.Errorf("source %+v changed to %+v", cfg.Dict.Sources[6], again.Dict.Sources[6])
	}
}

func TestLoadConfigWithPriority(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	custom := writeConfig(t, "[cli]\ndefault_limit = 3\n")
	cfg, used, err := LoadConfigWithPriority(custom)
	if err != nil || used != custom || cfg.CLI.DefaultLimit != 3 {
		t.Errorf("custom path: cfg=%+v used=%q err=%v", cfg.CLI, used, err)
	}

	cfg, used, err = LoadConfigWithPriority(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("fallback failed: %v", err)
	}
	if used == "" || cfg.CLI.DefaultLimit != DefaultConfig().CLI.DefaultLimit {
		t.Errorf("missing custom file should fall back to the default path, used %q", used)
	}
}

func TestUpdate(t *testing.T) {
	path := writeConfig(t, "")
	cfg := DefaultConfig()
	limit, minP, maxP := 5, 3, 1
	filter := true

	if err := cfg.Update(path, &limit, &minP, &maxP, &filter); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if cfg.Server.MaxLimit != 5 || !cfg.Server.EnableFilter {
		t.Errorf("update not applied: %+v", cfg.Server)
	}
	if cfg.Server.MaxPrefix != DefaultConfig().Server.MaxPrefix {
		t.Errorf("max_prefix below min_prefix should be reset, got %d", cfg.Server.MaxPrefix)
	}

	saved, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if saved.Server != cfg.Server {
		t.Errorf("saved %+v, want %+v", saved.Server, cfg.Server)
	}
}

func TestRebuildConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Setenv("HOME", home)
	t.Setenv("APPDATA", home)

	custom := writeConfig(t, "[server]\nmax_limit = 7\n")
	path, err := GetDefaultConfigPath()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(custom)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	rebuilt, err := RebuildConfigFile()
	if err != nil {
		t.Fatalf("RebuildConfigFile: %v", err)
	}
	if rebuilt != path {
		t.Errorf("rebuilt %q, want %q", rebuilt, path)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server != DefaultConfig().Server {
		t.Errorf("config was not reset: %+v", cfg.Server)
	}
}

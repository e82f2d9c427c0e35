// Copyright 2025 The HanServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main runs the hanserve pinyin suggestion server and its debug CLI.

hanserve loads pinyin dictionaries into a rune trie and answers two kinds
of lookups: prefix suggestions ranked by priority, and whole-sentence
composition over a syllable split of the input. It runs as a MessagePack
IPC server for input method front ends, or as an interactive CLI.

# Usage

Start the server with the default catalog and data directory:

	hanserve

Use another dictionary directory and enable debug logging:

	hanserve -data /path/to/dicts -d

Run the CLI:

	hanserve -c -limit 10

Pack a JSON dictionary into the faster msgpack form:

	hanserve -pack dicts/chinese/first_dict/dict.json

# Configuration

The TOML config holds server limits, the hot cache size and the dictionary
catalog. It is created with defaults on first run:

	[server]
	max_limit = 100
	min_prefix = 1
	max_prefix = 64

	[engine]
	cache_size = 10000

	[dict]
	dir = "dicts"

	[[dict.sources]]
	name = "基础词库"
	path = "chinese/first_dict/dict.json"
	enabled = true
	priority = 100

	[metrics]
	addr = ":9464"

Sources load highest priority first; an entry already present keeps the
position and priority of the source that loaded it first.

# Flags

	-version     show version
	-config      config file path
	-data        dictionary directory (overrides [dict] dir)
	-d           debug logging
	-c           CLI mode
	-limit       CLI suggestions shown
	-prmin       CLI minimum input length
	-prmax       CLI maximum input length
	-no-filter   CLI: search non-pinyin input too
	-cache       hot cache size, 0 disables
	-metrics     address for /metrics and /healthz
	-pack        convert a dictionary file to msgpack and exit
	-formats     list readable dictionary formats and exit
	-reset-config  rewrite the default config file with defaults and exit

The CLI flags fall back to the [cli] section of the config when not given.
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/bastiangx/hanserve/internal/cli"
	"github.com/bastiangx/hanserve/internal/logger"
	"github.com/bastiangx/hanserve/internal/observe"
	"github.com/bastiangx/hanserve/internal/utils"
	"github.com/bastiangx/hanserve/pkg/config"
	"github.com/bastiangx/hanserve/pkg/dictionary"
	"github.com/bastiangx/hanserve/pkg/engine"
	"github.com/bastiangx/hanserve/pkg/server"
)

const (
	Version = "0.3.0"
	gh      = "https://github.com/bastiangx/hanserve"
)

func main() {
	defaults := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	configPath := flag.String("config", "", "Path to config.toml")
	dataDir := flag.String("data", "", "Dictionary directory (default from config)")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	limit := flag.Int("limit", defaults.CLI.DefaultLimit, "Number of suggestions to show")
	minPrefix := flag.Int("prmin", defaults.CLI.DefaultMinLen, "Minimum input length")
	maxPrefix := flag.Int("prmax", defaults.CLI.DefaultMaxLen, "Maximum input length")
	noFilter := flag.Bool("no-filter", defaults.CLI.DefaultNoFilter, "Search input that is not plain pinyin")
	cacheSize := flag.Int("cache", -1, "Hot cache size, 0 disables (default from config)")
	metricsAddr := flag.String("metrics", "", "Serve /metrics and /healthz on this address")
	packPath := flag.String("pack", "", "Convert a dictionary file (see -formats) to msgpack and exit")
	listFormats := flag.Bool("formats", false, "List readable dictionary formats and exit")
	resetConfig := flag.Bool("reset-config", false, "Rewrite the default config file with defaults and exit")
	flag.Parse()

	if *showVersion {
		printVersion()
		return
	}
	if *listFormats {
		printFormats(os.Stdout)
		return
	}

	logger.Setup(*debugMode)

	if *packPath != "" {
		out, n, err := pack(*packPath)
		if err != nil {
			log.Fatalf("Packing %s: %v", *packPath, err)
		}
		log.Infof("Wrote %s entries to %s", utils.FormatWithCommas(n), out)
		return
	}

	if *resetConfig {
		path, err := config.RebuildConfigFile()
		if err != nil {
			log.Fatalf("Failed to rebuild config: %v", err)
		}
		log.Infof("Wrote default config to %s", path)
		return
	}

	cfg, usedConfig, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config: %s", config.GetActiveConfigPath(usedConfig))

	given := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { given[f.Name] = true })
	applyCLIDefaults(cfg.CLI, given, limit, minPrefix, maxPrefix, noFilter)

	if *cacheSize >= 0 {
		cfg.Engine.CacheSize = *cacheSize
	}
	if *metricsAddr != "" {
		cfg.Metrics.Addr = *metricsAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Addr != "" {
		shutdown, err := serveMetrics(ctx, cfg.Metrics.Addr)
		if err != nil {
			log.Fatalf("Failed to start metrics: %v", err)
		}
		defer shutdown()
	}

	dir := cfg.Dict.Dir
	if *dataDir != "" {
		dir = *dataDir
	}
	if resolver, err := utils.NewPathResolver(); err == nil {
		dir = resolver.GetDataDir(dir)
	} else {
		log.Warnf("Failed to initialize path resolver: %v", err)
	}
	log.Debugf("Using dictionary dir: %s", dir)

	newEngine := func() *engine.Engine {
		return engine.New(engine.WithCache(cfg.Engine.CacheSize))
	}
	catalog := dictionary.NewRuntimeCatalog(dictionary.NewLoader(dir, cfg.Dict.Parallelism), cfg.Dict.Sources)
	eng := newEngine()

	stats, err := catalog.Reload(ctx, eng)
	switch {
	case errors.Is(err, dictionary.ErrNoSources):
		log.Warn("No dictionary enabled, running with an empty index...")
	case err != nil:
		log.Fatalf("Failed to load dictionaries: %v", err)
	}
	metrics := observe.DefaultMetrics()
	for _, src := range stats.PerSource {
		if src.Err != nil {
			log.Warnf("Skipped %s (%s): %v", src.Name, src.Path, src.Err)
			continue
		}
		metrics.RecordDictionary(ctx, src.Name, src.Entries, src.Inserted)
		log.Debugf("Loaded %s: %s entries, %s new", src.Name,
			utils.FormatWithCommas(src.Entries), utils.FormatWithCommas(src.Inserted))
	}

	if *cliMode {
		h := cli.NewInputHandler(eng, *minPrefix, *maxPrefix, *limit, *noFilter)
		if err := h.Run(os.Stdin, os.Stdout); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	showStartupInfo(dir, stats)
	srv := server.NewServer(eng, cfg, usedConfig,
		server.WithMetrics(metrics),
		server.WithCatalog(catalog, newEngine),
	)
	if err := srv.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Server stopped: %v", err)
	}
}

// applyCLIDefaults takes CLI settings from the config for every flag the
// user did not pass.
func applyCLIDefaults(cli config.CliConfig, given map[string]bool, limit, minPrefix, maxPrefix *int, noFilter *bool) {
	if !given["limit"] {
		*limit = cli.DefaultLimit
	}
	if !given["prmin"] {
		*minPrefix = cli.DefaultMinLen
	}
	if !given["prmax"] {
		*maxPrefix = cli.DefaultMaxLen
	}
	if !given["no-filter"] {
		*noFilter = cli.DefaultNoFilter
	}
}

// serveMetrics installs the meter provider and serves it over HTTP until
// ctx ends. The returned func flushes the provider.
func serveMetrics(ctx context.Context, addr string) (func(), error) {
	provider, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceVersion: Version})
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", provider.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintln(w, engine.PongMessage)
	})
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("Metrics server: %v", err)
		}
	}()
	log.Debugf("Serving metrics on %s", addr)

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		if err := provider.Shutdown(shutdownCtx); err != nil {
			log.Warnf("Flushing metrics: %v", err)
		}
	}, nil
}

// pack rewrites a dictionary next to itself as .msgpack.
func pack(path string) (string, int, error) {
	entries, err := dictionary.ReadFile(path)
	if err != nil {
		return "", 0, err
	}
	out := strings.TrimSuffix(path, filepath.Ext(path)) + ".msgpack"
	f, err := os.Create(out)
	if err != nil {
		return "", 0, err
	}
	if err := dictionary.WriteMsgpack(f, entries); err != nil {
		f.Close()
		return "", 0, err
	}
	return out, len(entries), f.Close()
}

func printFormats(w io.Writer) {
	for _, f := range dictionary.ListSupportedFormats() {
		fmt.Fprintf(w, "%-26s %s\n", f.Description, strings.Join(f.Extensions, " "))
	}
}

func printVersion() {
	l := logger.NewWithConfig("", log.InfoLevel, false, false, log.TextFormatter)

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	l.SetStyles(styles)

	l.Print("")
	l.Print("[ HanServe ] pinyin suggestions and sentence composition")
	l.Print("", "version", Version)
	l.Print("")
	l.Print("use -h or --help to see available options")
	l.Print("Github Repo", "gh", gh)
}

// showStartupInfo prints a short banner to stderr, whatever the log level.
func showStartupInfo(dataDir string, stats dictionary.Stats) {
	current := log.GetLevel()
	log.SetLevel(log.InfoLevel)
	defer log.SetLevel(current)

	log.Infof("hanserve %s, pid [ %d ]", Version, os.Getpid())
	log.Infof("dicts: %d loaded, %d failed from ( %s )", stats.Loaded, stats.Failed, dataDir)
	log.Infof("entries: %s in %s", utils.FormatWithCommas(stats.Inserted), stats.Duration.Round(time.Millisecond))
	log.Info("status: ready")
}

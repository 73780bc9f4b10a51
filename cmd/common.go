package cmd

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"github.com/zalepa/bleaustats/config"
	"github.com/zalepa/bleaustats/fetch"
	"github.com/zalepa/bleaustats/parser"
)

// commonFlags are accepted by every subcommand.
type commonFlags struct {
	configPath *string
	verbose    *bool
	browser    *bool
	cacheDir   *string
}

func addCommonFlags(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		configPath: fs.String("config", "", "YAML config file"),
		verbose:    fs.Bool("v", false, "debug logging"),
		browser:    fs.Bool("browser", false, "render pages in headless Chrome instead of plain HTTP"),
		cacheDir:   fs.String("cache", "", "directory for the page cache (overrides config)"),
	}
}

// setup configures logging and loads the config named by the flags.
func (c commonFlags) setup() (config.Config, error) {
	setupLogging(*c.verbose)
	cfg, err := config.Load(*c.configPath)
	if err != nil {
		return cfg, err
	}
	if *c.browser {
		cfg.Browser = true
	}
	if *c.cacheDir != "" {
		cfg.CacheDir = *c.cacheDir
	}
	return cfg, nil
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)
}

// newGetter builds the page source described by cfg. The returned func
// releases the cache and browser.
func newGetter(ctx context.Context, cfg config.Config) (fetch.Getter, func(), error) {
	var cache *fetch.Cache
	if cfg.CacheDir != "" {
		c, err := fetch.OpenCache(cfg.CacheDir, cfg.CacheTTL)
		if err != nil {
			return nil, nil, err
		}
		cache = c
	}
	closeCache := func() {
		if cache != nil {
			if err := cache.Close(); err != nil {
				slog.Warn("closing page cache", "err", err)
			}
		}
	}

	if cfg.Browser {
		b, err := fetch.NewBrowser(ctx, cfg.UserAgent)
		if err != nil {
			closeCache()
			return nil, nil, err
		}
		return b, func() { b.Close(); closeCache() }, nil
	}

	f := fetch.New(fetch.Options{
		UserAgent:         cfg.UserAgent,
		Timeout:           cfg.Timeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Cache:             cache,
	})
	return f, closeCache, nil
}

// loadPage reads src, which is either an http(s) URL or a local HTML file.
// Links in a local file are resolved against base when it is set.
func loadPage(ctx context.Context, getter fetch.Getter, src, base string, sel parser.Selectors) (*parser.Page, error) {
	if isURL(src) {
		u, err := url.Parse(src)
		if err != nil {
			return nil, err
		}
		body, err := getter.Get(ctx, src)
		if err != nil {
			return nil, err
		}
		return parser.ReadPage(body, u, sel)
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}
	var u *url.URL
	if base != "" {
		if u, err = url.Parse(base); err != nil {
			return nil, fmt.Errorf("base url: %w", err)
		}
	}
	return parser.ReadPage(string(data), u, sel)
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

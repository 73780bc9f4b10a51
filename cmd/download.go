package cmd

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/zalepa/bleaustats/fetch"
	"github.com/zalepa/bleaustats/parser"
)

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// Download implements the "download" subcommand: save the areas index and
// every area page it links to, so later runs can work from local files.
func Download(args []string) {
	fs := flag.NewFlagSet("download", flag.ExitOnError)
	common := addCommonFlags(fs)
	dir := fs.String("dir", ".", "output directory for downloaded pages")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: bleaustats download <areas-url> [-dir path]\n")
		fs.PrintDefaults()
	}
	fs.Parse(reorderArgs(args))
	if fs.NArg() != 1 || !isURL(fs.Arg(0)) {
		fs.Usage()
		os.Exit(2)
	}

	cfg, err := common.setup()
	if err != nil {
		fatal("error loading config: %v", err)
	}
	if err := os.MkdirAll(*dir, 0755); err != nil {
		fatal("error creating output directory: %v", err)
	}

	ctx := context.Background()
	getter, release, err := newGetter(ctx, cfg)
	if err != nil {
		fatal("error opening page source: %v", err)
	}
	defer release()

	downloaded, skipped, err := downloadAreas(ctx, getter, fs.Arg(0), *dir, cfg.Selectors)
	if err != nil {
		fatal("error: %v", err)
	}
	fmt.Fprintf(os.Stderr, "Done: %d downloaded, %d skipped\n", downloaded, skipped)
}

// downloadAreas writes the index to dir/areas.html and each area page next
// to it. Pages already on disk are not fetched again; pages that fail are
// reported and skipped.
func downloadAreas(ctx context.Context, getter fetch.Getter, indexURL, dir string, sel parser.Selectors) (downloaded, skipped int, err error) {
	u, err := url.Parse(indexURL)
	if err != nil {
		return 0, 0, err
	}
	body, err := getter.Get(ctx, indexURL)
	if err != nil {
		return 0, 0, fmt.Errorf("fetching index: %w", err)
	}
	page, err := parser.ReadPage(body, u, sel)
	if err != nil {
		return 0, 0, err
	}
	links, err := page.AreaLinks()
	if err != nil {
		return 0, 0, err
	}
	if len(links) == 0 {
		return 0, 0, fmt.Errorf("no area links found on %s", indexURL)
	}
	if err := os.WriteFile(filepath.Join(dir, "areas.html"), []byte(body), 0644); err != nil {
		return 0, 0, err
	}

	for _, l := range links {
		outName := pageFileName(l.Href)
		outPath := filepath.Join(dir, outName)
		if _, err := os.Stat(outPath); err == nil {
			fmt.Fprintf(os.Stderr, "skip %s (already exists)\n", outName)
			skipped++
			continue
		}

		fmt.Fprintf(os.Stderr, "downloading %s -> %s\n", l.Href, outName)
		page, err := getter.Get(ctx, l.Href)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error downloading %s: %v\n", l.Href, err)
			continue
		}
		if err := os.WriteFile(outPath, []byte(page), 0644); err != nil {
			return downloaded, skipped, err
		}
		downloaded++
	}
	return downloaded, skipped, nil
}

// pageFileName derives a file name from the last path element of an area
// URL, e.g. https://bleau.info/cuvier -> cuvier.html.
func pageFileName(href string) string {
	name := "area"
	if u, err := url.Parse(href); err == nil {
		if base := path.Base(strings.TrimSuffix(u.Path, "/")); base != "." && base != "/" && base != "" {
			name = base
		}
	}
	name = strings.TrimSuffix(unsafeName.ReplaceAllString(name, "-"), ".html")
	return name + ".html"
}

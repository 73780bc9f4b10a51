package cmd

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Open implements the "open" subcommand: it picks the overview or the
// single-area flow from the page URL, the way the catalog routes pages.
func Open(args []string) {
	target := ""
	for _, a := range reorderArgs(args) {
		if !strings.HasPrefix(a, "-") {
			target = a
		}
	}
	if target == "" {
		fmt.Fprintf(os.Stderr, "Usage: bleaustats open <url> [flags of area or overview]\n")
		os.Exit(2)
	}

	flow, err := flowFor(target)
	if err != nil {
		fatal("error: %v", err)
	}
	switch flow {
	case "overview":
		Overview(args)
	default:
		Area(args)
	}
}

// flowFor returns "overview" for the areas index and "area" for anything
// else. The path is compared with its slashes removed.
func flowFor(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", rawURL, err)
	}
	if strings.ReplaceAll(u.Path, "/", "") == "areas" {
		return "overview", nil
	}
	return "area", nil
}

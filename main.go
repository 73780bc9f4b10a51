package main

import (
	"fmt"
	"os"

	"github.com/zalepa/bleaustats/cmd"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "area":
		cmd.Area(os.Args[2:])
	case "overview":
		cmd.Overview(os.Args[2:])
	case "open":
		cmd.Open(os.Args[2:])
	case "download":
		cmd.Download(os.Args[2:])
	case "web":
		cmd.Web(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: bleaustats <command>\n\nCommands:\n  area       Chart climb types per grade for one area page\n  overview   Measure every area on the areas index\n  open       Pick area or overview from the page URL\n  download   Save the areas index and every area page locally\n  web        Start the interactive dashboard\n")
}

package main

import (
	"github.com/five82/oneearth/internal/cli"
)

// Build info set via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123 -X main.date=2024-01-01 -X main.siteURL=https://one-earth.info"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	siteURL = ""
)

func main() {
	cli.SetVersionInfo(version, commit, date, siteURL)
	cli.Execute()
}

package main

import (
	_ "time/tzdata"

	"support-insights-go/internal/cli"
)

// version is set via ldflags: -X main.version=...
var version = "dev"

func main() {
	cli.Execute(version)
}

// Command server runs the interview backend HTTP API.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/dmitrijs2005/aiinterview/internal/server"
	"github.com/dmitrijs2005/aiinterview/internal/server/config"
)

// Set with -ldflags "-X main.buildVersion=... -X main.buildDate=...".
var (
	buildVersion = "N/A"
	buildDate    = "N/A"
)

func main() {
	fmt.Printf("Build version: %s\nBuild date: %s\n", buildVersion, buildDate)

	cfg := config.LoadConfig()

	app, err := server.NewApp(cfg)
	if err != nil {
		log.Fatalf("server init: %v", err)
	}

	app.Run(context.Background())
}

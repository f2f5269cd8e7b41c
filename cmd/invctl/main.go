// Command invctl is the operator CLI for the inventory service: it logs in,
// browses and adjusts products, scans codes, downloads reports, seeds data
// and runs end-to-end checks against a running server.
package main

import (
	"os"

	"github.com/fekuna/omnipos-inventory-service/config"
	"github.com/joho/godotenv"
)

// Version information (set via ldflags during build)
var (
	version = "dev"
	commit  = "none"
)

func main() {
	_ = godotenv.Load()
	if err := newRootCmd(config.LoadEnv()).Execute(); err != nil {
		os.Exit(1)
	}
}

// Package main is the entry point for the galley CLI.
//
// galley designs Oracle Cloud architectures inside a session, turns them
// into Terraform bundles and runs them through OCI Resource Manager.
//
// Commands: session, design, validate, synthesize, export, update-file,
// services, plan, apply, destroy, job, oci, doctor, version.
//
// For detailed usage information, run:
//
//	galley --help
package main

import (
	"fmt"
	"os"

	"github.com/sogawa-yk/Galley/cmd/galley/commands"
	"github.com/sogawa-yk/Galley/cmd/galley/handlers"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		if !handlers.IsReported(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

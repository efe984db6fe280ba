// Package main hosts the Marquee CLI entrypoint and command graph.
//
// The Cobra command tree covers one-shot recommendations and title search
// against the configured model artifacts, the HTTP server, account
// management, artifact checks, and configuration scaffolding. It centralizes
// dotenv loading, configuration resolution, and logger setup so subcommands
// stay small.
//
// Add functionality to the internal packages first, then surface it here.
package main

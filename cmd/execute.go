// Package cmd contains the CLI entry points for scout.
//
// Following the pattern used by kubectl, hugo, and other standard Go
// CLI tools, all application logic lives here and main.go stays a
// minimal entry point.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/halvard/scout/internal/log"
)

// Version information (injected at build time via ldflags).
var (
	AppVersion = "0.1.0"
	BuildTime  = "unknown"
	GitCommit  = "unknown"
)

// Execute is the main entry point for the scout CLI. It routes the
// first argument to a subcommand; version and help work even when the
// configuration is invalid.
func Execute() error {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "serve":
			return runServe()
		case "version", "--version", "-v":
			return printVersionInfo()
		case "help", "--help", "-h":
			printHelp()
			return nil
		default:
			printHelp()
			return fmt.Errorf("unknown command %q", os.Args[1])
		}
	}

	printHelp()
	return nil
}

// initLogger builds the process logger. DEBUG (any value) enables debug
// level; SCOUT_LOG_JSON switches to JSON output for log shippers.
func initLogger() log.Logger {
	cfg := log.Config{Level: slog.LevelInfo}
	if os.Getenv("DEBUG") != "" {
		cfg.Level = slog.LevelDebug
	}
	if os.Getenv("SCOUT_LOG_JSON") != "" {
		cfg.JSON = true
	}
	return log.New(cfg)
}

// printHelp displays the help message.
func printHelp() {
	fmt.Println("scout - conversational agent with layered web knowledge")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  scout serve [addr]   Start the HTTP API server")
	fmt.Println("  scout version        Show version information")
	fmt.Println("  scout help           Show this help")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  OLLAMA_API_URL       Generation backend base URL (default: http://localhost:11434)")
	fmt.Println("  OLLAMA_MODEL         Model name (default: qwen3:1.7b)")
	fmt.Println("  GOOGLE_API_KEY       Optional: enables web search")
	fmt.Println("  GOOGLE_CSE_ID        Optional: enables web search")
	fmt.Println("  SCOUT_REDIS_ADDR     Redis address for history (default: localhost:6379)")
	fmt.Println("  SCOUT_ADDR           HTTP listen address (default: 127.0.0.1:5050)")
	fmt.Println("  SCOUT_OTLP_ENDPOINT  Optional: OTLP trace collector (host:port)")
	fmt.Println("  DEBUG                Optional: enable debug logging")
}

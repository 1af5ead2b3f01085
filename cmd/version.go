package cmd

import (
	"fmt"
	"os"
)

// printVersionInfo displays version information. Credentials are never
// echoed, only their presence.
func printVersionInfo() error {
	fmt.Printf("scout v%s\n", AppVersion)
	fmt.Printf("Build: %s\n", BuildTime)
	fmt.Printf("Commit: %s\n", GitCommit)
	fmt.Println()

	if os.Getenv("GOOGLE_API_KEY") != "" && os.Getenv("GOOGLE_CSE_ID") != "" {
		fmt.Println("Web search: configured")
	} else {
		fmt.Println("Web search: not configured (set GOOGLE_API_KEY and GOOGLE_CSE_ID)")
	}
	return nil
}

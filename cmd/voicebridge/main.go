// Package main is the entry point for the voicebridge CLI.
//
// Usage:
//
//	voicebridge [flags] <command> [args]
//
// Commands:
//
//	serve      - Run the media bridge server
//	dial       - Place an outbound call into an AI meeting
//	sessions   - List live call sessions
//	version    - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/haivivi/voicebridge/cmd/voicebridge/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

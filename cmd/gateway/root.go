package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// cfgFile is the global --config flag. Empty means defaults plus
// environment overrides.
var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Stateful chat gateway for hosted LLM providers",
	Long: `Gateway keeps conversation sessions for clients of a hosted LLM provider.

A client opens a session with its own provider API key and then sends only
new messages. Replies are returned whole over HTTP or streamed over
Server-Sent Events or WebSocket, and every completed reply is appended to
the session history.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
}

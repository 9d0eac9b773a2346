package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	host   string
	player string
)

var rootCmd = &cobra.Command{
	Use:   "court-call-cli",
	Short: "A CLI to interact with the court-call server",
	Long: `A command-line interface for making requests to the various endpoints
of the court-call application.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&host, "host", "http://localhost:8080", "The host address of the server")
	rootCmd.PersistentFlags().StringVar(&player, "player", "", "The player ID to act as (sent as X-Player-ID)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your command '%s'", err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}

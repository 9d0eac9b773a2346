package main

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(eventCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(closeCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(finishCmd)
	rootCmd.AddCommand(addPlayerCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/health", "")
	},
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List all events",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/events", "")
	},
}

var eventCmd = &cobra.Command{
	Use:   "event [id]",
	Short: "Show one event with its registrations and schedule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/events/"+args[0], "")
	},
}

var registerCmd = &cobra.Command{
	Use:   "register [event-id]",
	Short: "Register the acting player for an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/events/"+args[0]+"/register", "")
	},
}

var closeCmd = &cobra.Command{
	Use:   "close [event-id]",
	Short: "Close registration for an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/events/"+args[0]+"/close", "")
	},
}

var startCmd = &cobra.Command{
	Use:   "start [event-id]",
	Short: "Start an event and plan its rounds",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/events/"+args[0]+"/start", "")
	},
}

var finishCmd = &cobra.Command{
	Use:   "finish [event-id]",
	Short: "Finish an event and apply ratings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/events/"+args[0]+"/finish", "")
	},
}

var addPlayerCmd = &cobra.Command{
	Use:   "add-player [player-id] [name]",
	Short: "Add a player to the club roster",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := fmt.Sprintf(`{"id": %q, "name": %q}`, args[0], args[1])
		return performRequest(http.MethodPost, "/players", body)
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the club rating table",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/leaderboard", "")
	},
}

var historyCmd = &cobra.Command{
	Use:   "history [player-id]",
	Short: "Show a player's rating history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/players/"+args[0]+"/history", "")
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Get the persistent business counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/stats", "")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/metrics", "")
	},
}

func performRequest(method, endpoint, body string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if player != "" {
		req.Header.Set("X-Player-ID", player)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(respBody))

	return nil
}

package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

var (
	statsKey     string
	ratingsSort  string
	ratingsLimit int
	sweepDryRun  bool
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(ratingsCmd)
	rootCmd.AddCommand(guildCmd("snapshot", "Show the guild's latest team snapshot"))
	rootCmd.AddCommand(guildCmd("tournament", "Show the guild's active tournament with its bracket"))
	rootCmd.AddCommand(guildCmd("arena", "Show the guild's running arena"))
	rootCmd.AddCommand(sweepCmd)

	statsCmd.Flags().StringVar(&statsKey, "key", "", "Show a single counter")
	ratingsCmd.Flags().StringVar(&ratingsSort, "sort", "rating_desc", "Sort order: rating_desc, rating_asc or id")
	ratingsCmd.Flags().IntVar(&ratingsLimit, "limit", 0, "Maximum number of entries")
	sweepCmd.Flags().BoolVar(&sweepDryRun, "dry-run", false, "Report without deleting channels")
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/health")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/metrics")
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show persisted command and announcement counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := "/api/stats"
		if statsKey != "" {
			endpoint += "?key=" + url.QueryEscape(statsKey)
		}
		return performRequest(http.MethodGet, endpoint)
	},
}

var ratingsCmd = &cobra.Command{
	Use:   "ratings",
	Short: "List stored ratings",
	Example: heredoc.Doc(`
		squadroll-cli ratings --sort rating_asc --limit 10
	`),
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{}
		q.Set("sort", ratingsSort)
		if ratingsLimit > 0 {
			q.Set("limit", strconv.Itoa(ratingsLimit))
		}
		return performRequest(http.MethodGet, "/api/ratings?"+q.Encode())
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete expired team voice channels",
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := "/voice/sweep"
		if sweepDryRun {
			endpoint += "?dry_run=true"
		}
		return performRequest(http.MethodPost, endpoint)
	},
}

func guildCmd(resource, short string) *cobra.Command {
	return &cobra.Command{
		Use:   resource,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if guild == "" {
				return errors.New("--guild is required")
			}
			return performRequest(http.MethodGet, "/api/guilds/"+url.PathEscape(guild)+"/"+resource)
		},
	}
}

func performRequest(method, endpoint string) error {
	target := host + endpoint
	fmt.Printf("Making request to %s\n", target)

	req, err := http.NewRequest(method, target, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}

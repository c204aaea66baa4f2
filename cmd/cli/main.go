package main

import (
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

var (
	host  string
	guild string
)

var rootCmd = &cobra.Command{
	Use:   "squadroll-cli",
	Short: "A CLI to interact with the squadroll server",
	Long: heredoc.Doc(`
		A command-line interface for the squadroll HTTP endpoints.

		Read commands hit the /api routes; guild scoped ones need --guild.
	`),
}

func init() {
	rootCmd.PersistentFlags().StringVar(&host, "host", "http://localhost:8080", "The host address of the server")
	rootCmd.PersistentFlags().StringVar(&guild, "guild", "", "The Discord guild id for guild scoped commands")
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

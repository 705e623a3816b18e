package search

import (
	"fmt"

	"github.com/spf13/cobra"

	"video-search/cmd/vcs/cmd/cli"
	"video-search/internal/app"
)

var (
	videoID string
	query   string
)

func init() {
	Cmd.Flags().StringVarP(&videoID, "video-id", "i", "", "restrict the search to one video (default all videos)")
	Cmd.Flags().StringVarP(&query, "query", "q", "", "what to look for")

	Cmd.MarkFlagRequired("query")
}

// Cmd represents the search command
var Cmd = &cobra.Command{
	Use:   "search",
	Short: "Find the timestamp where a topic is discussed",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := cli.FromContext(cmd.Context())
		if err != nil {
			return err
		}
		engine, cleanup, err := app.InitializeEngine(cmd.Context(), rt.Config, rt.Logger)
		if err != nil {
			return err
		}
		defer cleanup()

		res, err := engine.Lookup(cmd.Context(), videoID, query)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Message)
		if res.Found() {
			fmt.Fprintf(cmd.OutOrStdout(), "timestamp: %.2fs\n", *res.Timestamp)
		}
		return nil
	},
}

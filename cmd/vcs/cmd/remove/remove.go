package remove

import (
	"fmt"

	"github.com/spf13/cobra"

	"video-search/cmd/vcs/cmd/cli"
	"video-search/internal/app"
)

var videoID string

func init() {
	Cmd.Flags().StringVar(&videoID, "video", "", "id of the video to delete")
	Cmd.MarkFlagRequired("video")
}

// Cmd represents the delete command
var Cmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a video's fragments from the store",
	Long:  `Delete every fragment the catalog recorded for a video, then forget the video.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := cli.FromContext(cmd.Context())
		if err != nil {
			return err
		}
		pipeline, cleanup, err := app.InitializePipeline(cmd.Context(), rt.Config, rt.Logger, nil)
		if err != nil {
			return err
		}
		defer cleanup()

		n, err := pipeline.Remove(cmd.Context(), videoID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d fragments deleted\n", videoID, n)
		return nil
	},
}

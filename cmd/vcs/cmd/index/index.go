package index

import (
	"fmt"

	"github.com/spf13/cobra"

	"video-search/cmd/vcs/cmd/cli"
	"video-search/internal/app"
	"video-search/internal/app/ingest"
)

var (
	videoID           string
	transcriptionPath string
)

func init() {
	Cmd.Flags().StringVarP(&videoID, "video-id", "i", "", "id of the video the transcription belongs to")
	Cmd.Flags().StringVarP(&transcriptionPath, "transcription", "t", "", "transcription.json to index")

	Cmd.MarkFlagRequired("video-id")
	Cmd.MarkFlagRequired("transcription")
}

// Cmd represents the index command
var Cmd = &cobra.Command{
	Use:   "index",
	Short: "Chunk a transcription and add the chunks to the store",
	Long: `Chunk a transcription at every configured granularity and add the chunks as text fragments.

Works with both store kinds; the text store embeds chunks with the configured provider.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := cli.FromContext(cmd.Context())
		if err != nil {
			return err
		}
		progress := ingest.NewProgressManager(ingest.ProgressConfig{Enabled: ingest.ShouldShowProgress(false)})
		pipeline, cleanup, err := app.InitializePipeline(cmd.Context(), rt.Config, rt.Logger, progress)
		if err != nil {
			return err
		}
		defer cleanup()

		report, err := pipeline.IndexTranscription(cmd.Context(), videoID, transcriptionPath)
		progress.Wait()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d of %d chunks inserted\n", videoID, report.Inserted(), report.Total)
		return report.Err()
	},
}

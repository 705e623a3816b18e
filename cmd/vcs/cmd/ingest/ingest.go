package ingest

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"video-search/cmd/vcs/cmd/cli"
	"video-search/internal/app"
	"video-search/internal/app/ingest"
	"video-search/internal/app/media"
	"video-search/internal/app/model"
)

var (
	inputDir     string
	videoPath    string
	outputRoot   string
	showProgress bool
)

func init() {
	Cmd.Flags().StringVarP(&inputDir, "dir", "d", "", "directory of videos to ingest")
	Cmd.Flags().StringVarP(&videoPath, "video", "v", "", "single video to ingest")
	Cmd.Flags().StringVarP(&outputRoot, "output", "o", "./output", "output root for frames, audio and transcriptions")
	Cmd.Flags().BoolVar(&showProgress, "progress", false, "force progress bars even when stderr is not a terminal")

	Cmd.MarkFlagsOneRequired("dir", "video")
	Cmd.MarkFlagsMutuallyExclusive("dir", "video")
}

// Cmd represents the ingest command
var Cmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run videos through extraction, transcription and indexing",
	Long: `Run videos through the whole pipeline.

- Extract frames and the audio track
- Reuse <output>/<video_id>/transcription.json or transcribe the audio
- Chunk the transcript and insert text fragments (plus frames and audio for multimodal stores)
- Record each video and its fragment ids in the catalog`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := cli.FromContext(cmd.Context())
		if err != nil {
			return err
		}

		videos, err := collectVideos()
		if err != nil {
			return err
		}
		if len(videos) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no videos found")
			return nil
		}

		progress := ingest.NewProgressManager(ingest.ProgressConfig{Enabled: ingest.ShouldShowProgress(showProgress)})
		pipeline, cleanup, err := app.InitializePipeline(cmd.Context(), rt.Config, rt.Logger, progress)
		if err != nil {
			return err
		}
		defer cleanup()

		results, err := pipeline.IngestAll(cmd.Context(), videos)
		progress.Wait()
		for _, r := range results {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d text, %d frames, %d audio; %d of %d inserted\n",
				r.VideoID, r.TextChunks, r.Frames, r.AudioChunks, r.Report.Inserted(), r.Report.Total)
		}
		return err
	},
}

func collectVideos() ([]model.VideoFile, error) {
	if inputDir != "" {
		return media.VideoIDsFromDir(inputDir, outputRoot)
	}
	id := media.VideoID(videoPath)
	return []model.VideoFile{{ID: id, Path: videoPath, OutputDir: filepath.Join(outputRoot, id)}}, nil
}

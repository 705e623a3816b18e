package extract

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"video-search/cmd/vcs/cmd/cli"
	"video-search/internal/app"
	"video-search/internal/app/media"
)

var (
	videoPath     string
	outputRoot    string
	frameInterval int
	withAudio     bool
)

func init() {
	Cmd.Flags().StringVarP(&videoPath, "video", "v", "", "video file to extract")
	Cmd.Flags().StringVarP(&outputRoot, "output", "o", "./output", "output root; frames go to <output>/<video_id>")
	Cmd.Flags().IntVarP(&frameInterval, "frame-interval", "i", 0, "keep every n-th frame (default from settings)")
	Cmd.Flags().BoolVar(&withAudio, "audio", true, "also extract the audio track as PCM WAV")

	Cmd.MarkFlagRequired("video")
}

// Cmd represents the extract command
var Cmd = &cobra.Command{
	Use:   "extract",
	Short: "Sample frames and the audio track of a video",
	Long: `Sample every n-th frame of a video as JPEG with a timestamp table.

- Frames are written to <output>/<video_id>/frames
- frames_metadata.csv maps frame ids to timestamps
- video_metadata.json records fps, size and frame count`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := cli.FromContext(cmd.Context())
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		settings := rt.Settings()
		if frameInterval <= 0 {
			frameInterval = settings.Extraction.FrameInterval
		}

		videoID := media.VideoID(videoPath)
		outputDir := filepath.Join(outputRoot, videoID)
		extractor := app.ProvideExtractor(settings, rt.Logger)

		meta, err := extractor.Extract(ctx, videoPath, outputDir, videoID, frameInterval)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d frames at %.2f fps (%dx%d) -> %s\n",
			videoID, meta.TotalFrames, meta.FPS, meta.Width, meta.Height, outputDir)

		if withAudio {
			wav, err := extractor.ExtractAudio(ctx, videoPath, outputDir)
			if err != nil {
				return err
			}
			rt.Logger.Info("audio extracted", zap.String("path", wav))
			fmt.Fprintf(cmd.OutOrStdout(), "audio -> %s\n", wav)
		}
		return nil
	},
}

package transcribe

import (
	"fmt"

	"github.com/spf13/cobra"

	"video-search/cmd/vcs/cmd/cli"
	"video-search/internal/app"
	"video-search/internal/app/transcript"
	"video-search/internal/config"
)

var (
	audioPath  string
	outputPath string
	language   string
)

func init() {
	Cmd.Flags().StringVarP(&audioPath, "audio", "a", "", "audio file to transcribe")
	Cmd.Flags().StringVarP(&outputPath, "output", "o", "transcription.json", "where to write the transcription")
	Cmd.Flags().StringVarP(&language, "language", "l", "", "spoken language, ISO-639-1 (default from settings, empty auto-detects)")

	Cmd.MarkFlagRequired("audio")
}

// Cmd represents the transcribe command
var Cmd = &cobra.Command{
	Use:   "transcribe",
	Short: "Transcribe an audio file into timestamped segments",
	Long: `Transcribe an audio file with OpenAI Whisper and write transcription.json.

Requires OPENAI_API_KEY.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := cli.FromContext(cmd.Context())
		if err != nil {
			return err
		}
		if err := config.RequireProviderKey(rt.Config.Keys, "openai"); err != nil {
			return err
		}
		if language == "" {
			language = rt.Settings().Transcription.Language
		}

		transcriber := app.ProvideTranscriber(rt.Settings(), rt.Config.Keys, rt.Logger)
		trans, err := transcriber.Transcribe(cmd.Context(), audioPath, language)
		if err != nil {
			return err
		}
		if err := transcript.SaveTranscription(outputPath, trans); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d segments -> %s\n", len(trans.Segments), outputPath)
		return nil
	},
}

package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"video-search/cmd/vcs/cmd/cli"
	"video-search/cmd/vcs/cmd/collection"
	"video-search/cmd/vcs/cmd/extract"
	"video-search/cmd/vcs/cmd/index"
	"video-search/cmd/vcs/cmd/ingest"
	"video-search/cmd/vcs/cmd/query"
	"video-search/cmd/vcs/cmd/remove"
	"video-search/cmd/vcs/cmd/search"
	"video-search/cmd/vcs/cmd/serve"
	"video-search/cmd/vcs/cmd/transcribe"
	"video-search/cmd/vcs/cmd/version"
)

var (
	Verbose    bool
	ConfigPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vcs",
	Short: "Index videos and find the moment a topic is discussed",
	Long: `vcs indexes videos for similarity search and answers "where in this video is X".
- extract samples frames and the audio track
- transcribe and index turn speech into searchable transcript chunks
- ingest runs the whole pipeline over a directory of videos
- search, query and serve answer questions against the index`,
	SilenceUsage:     true,
	TraverseChildren: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == version.Cmd.Name() {
			return nil
		}
		rt, err := cli.Load(ConfigPath, Verbose)
		if err != nil {
			return err
		}
		cmd.SetContext(cli.WithRuntime(cmd.Context(), rt))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if rt, err := cli.FromContext(cmd.Context()); err == nil {
			_ = rt.Logger.Sync()
		}
	},
}

// Execute runs the command tree under ctx.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.AddCommand(extract.Cmd)
	rootCmd.AddCommand(transcribe.Cmd)
	rootCmd.AddCommand(index.Cmd)
	rootCmd.AddCommand(ingest.Cmd)
	rootCmd.AddCommand(search.Cmd)
	rootCmd.AddCommand(query.Cmd)
	rootCmd.AddCommand(collection.Cmd)
	rootCmd.AddCommand(remove.Cmd)
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "V", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&ConfigPath, "config", "c", "", "settings file (default $VCS_CONFIG, then built-in defaults)")
}

package query

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"video-search/cmd/vcs/cmd/cli"
	"video-search/internal/app"
	"video-search/internal/app/model"
	"video-search/internal/app/storage/vector"
)

var (
	value      string
	input      string
	output     string
	videoID    string
	limit      int
	allOutputs bool
)

func init() {
	Cmd.Flags().StringVar(&value, "value", "", "query text, or a file path for image and audio queries")
	Cmd.Flags().StringVar(&input, "input", "text", "query modality: text, image or audio")
	Cmd.Flags().StringVar(&output, "output", "", "only return fragments of this modality")
	Cmd.Flags().StringVarP(&videoID, "video-id", "i", "", "restrict results to one video")
	Cmd.Flags().IntVarP(&limit, "limit", "n", 0, "number of results (default from settings)")
	Cmd.Flags().BoolVar(&allOutputs, "all-outputs", false, "run one query per output modality and group the results")

	Cmd.MarkFlagRequired("value")
	Cmd.MarkFlagsMutuallyExclusive("output", "all-outputs")
}

// Cmd represents the query command
var Cmd = &cobra.Command{
	Use:   "query",
	Short: "Similarity search across text, frames and audio",
	Long: `Similarity search with a query of any modality.

Image and audio queries need a multimodal store; audio queries also need the vectorizer service.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := cli.FromContext(cmd.Context())
		if err != nil {
			return err
		}
		in, err := model.ParseModality(input)
		if err != nil {
			return err
		}

		engine, cleanup, err := app.InitializeEngine(cmd.Context(), rt.Config, rt.Logger)
		if err != nil {
			return err
		}
		defer cleanup()

		payload, err := vector.QueryValue(in, value)
		if err != nil {
			return err
		}

		if allOutputs {
			grouped, err := engine.CrossModal(cmd.Context(), payload, in)
			if err != nil {
				return err
			}
			for _, m := range model.Modalities {
				fmt.Fprintf(cmd.OutOrStdout(), "== %s\n", m)
				printResults(cmd.OutOrStdout(), grouped[m])
			}
			return nil
		}

		q := vector.Query{Value: payload, Input: in, VideoID: videoID, Limit: limit}
		if output != "" {
			if q.Output, err = model.ParseModality(output); err != nil {
				return err
			}
		}
		hits, err := engine.Store().Search(cmd.Context(), q)
		if err != nil {
			return err
		}
		printResults(cmd.OutOrStdout(), hits)
		return nil
	},
}

func printResults(w io.Writer, results []model.Result) {
	if len(results) == 0 {
		fmt.Fprintln(w, "no results")
		return
	}
	for i, r := range results {
		fmt.Fprintf(w, "%2d. %-6s %-20s %8.2fs  %.4f  %s\n",
			i+1, r.Fragment.MediaType, r.Fragment.VideoID, r.Fragment.StartSeconds(), r.Distance, r.Fragment.Path)
	}
}

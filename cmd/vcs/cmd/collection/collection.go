package collection

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"video-search/cmd/vcs/cmd/cli"
	"video-search/internal/app"
	"video-search/internal/app/storage/vector"
)

type manager interface {
	Collection() string
	CreateCollection(ctx context.Context, name string) error
	DeleteCollection(ctx context.Context, name string) error
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(deleteCmd)
}

// Cmd represents the collection command
var Cmd = &cobra.Command{
	Use:   "collection",
	Short: "Create or delete the store collection",
}

var createCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create the collection (default from settings) unless it exists",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, store vector.Store) error {
			m, ok := store.(manager)
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "text stores create their collection on first insert")
				return nil
			}
			name := nameOr(args, m.Collection())
			if err := m.CreateCollection(ctx, name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "collection %s ready\n", name)
			return nil
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Delete the collection (default from settings) and everything in it",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, store vector.Store) error {
			m, ok := store.(manager)
			if !ok {
				if err := store.DeleteAll(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "text collection deleted")
				return nil
			}
			name := nameOr(args, m.Collection())
			if err := m.DeleteCollection(ctx, name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "collection %s deleted\n", name)
			return nil
		})
	},
}

func withStore(cmd *cobra.Command, fn func(ctx context.Context, store vector.Store) error) error {
	rt, err := cli.FromContext(cmd.Context())
	if err != nil {
		return err
	}
	store, cleanup, err := app.InitializeStore(cmd.Context(), rt.Config, rt.Logger)
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(cmd.Context(), store)
}

func nameOr(args []string, fallback string) string {
	if len(args) > 0 {
		return args[0]
	}
	return fallback
}

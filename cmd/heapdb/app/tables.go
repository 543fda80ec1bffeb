package app

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/savrasov/HeapDB/src/app"
)

func initCreateTable() {
	var (
		attrs []string
		keys  []string
	)

	cmd := &cobra.Command{
		Use:   "create-table NAME",
		Short: "Create a table from an attribute list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := parseAttrSpec(attrs, keys)
			if err != nil {
				return err
			}

			return app.Execute(cmd.Context(), func(ctx context.Context, a *app.App) error {
				return a.Engine.CreateTable(ctx, args[0], schema)
			})
		},
	}

	cmd.Flags().StringArrayVar(&attrs, "attr", nil, "attribute as name:type[:len], repeatable")
	cmd.Flags().StringSliceVar(&keys, "keys", nil, "key attribute names (advisory)")

	rootCmd.AddCommand(cmd)
}

func initDropTable() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "drop-table NAME",
		Short: "Destroy a table and its page file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Execute(cmd.Context(), func(ctx context.Context, a *app.App) error {
				return a.Engine.DropTable(ctx, args[0])
			})
		},
	})
}

func initStats() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "stats NAME",
		Short: "Print table and buffer pool statistics as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Execute(cmd.Context(), func(ctx context.Context, a *app.App) error {
				st, err := a.Engine.Stats(ctx, args[0])
				if err != nil {
					return err
				}

				out, err := encodeStats(st)
				if err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), out)

				return nil
			})
		},
	})
}

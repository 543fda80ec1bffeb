package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/savrasov/HeapDB/src/app"
	"github.com/savrasov/HeapDB/src/query"
	"github.com/savrasov/HeapDB/src/storage"
	"github.com/savrasov/HeapDB/src/storage/record"
)

func parseRID(pageArg, slotArg string) (storage.RID, error) {
	page, err := strconv.Atoi(pageArg)
	if err != nil {
		return storage.RID{}, fmt.Errorf("invalid page %q: %w", pageArg, err)
	}

	slot, err := strconv.Atoi(slotArg)
	if err != nil {
		return storage.RID{}, fmt.Errorf("invalid slot %q: %w", slotArg, err)
	}

	return storage.RID{Page: page, Slot: slot}, nil
}

func formatRecord(rec *storage.Record, schema *storage.Schema) (string, error) {
	fields := make([]string, 0, schema.NumAttrs())
	for i := range schema.NumAttrs() {
		v, err := record.GetAttr(rec, schema, i)
		if err != nil {
			return "", err
		}

		fields = append(fields, fmt.Sprintf("%s=%s", schema.AttrNames[i], v.GoString()))
	}

	return fmt.Sprintf("%s {%s}", rec.ID, strings.Join(fields, ", ")), nil
}

func initInsert() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "insert NAME VALUE...",
		Short: "Insert one record, values in schema order",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Execute(cmd.Context(), func(ctx context.Context, a *app.App) error {
				t, err := a.Engine.Table(ctx, args[0])
				if err != nil {
					return err
				}

				values := args[1:]
				if len(values) != t.Schema.NumAttrs() {
					return fmt.Errorf(
						"table %q has %d attributes, got %d values",
						args[0], t.Schema.NumAttrs(), len(values),
					)
				}

				rec, err := record.NewRecord(t.Schema)
				if err != nil {
					return err
				}

				for i, raw := range values {
					v, err := parseValue(t.Schema.DataTypes[i], raw)
					if err != nil {
						return err
					}

					if err := record.SetAttr(rec, t.Schema, i, v); err != nil {
						return err
					}
				}

				if err := a.Engine.Insert(ctx, args[0], rec); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "inserted at %s\n", rec.ID)

				return nil
			})
		},
	})
}

func initGet() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "get NAME PAGE SLOT",
		Short: "Fetch one record by rid",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			rid, err := parseRID(args[1], args[2])
			if err != nil {
				return err
			}

			return app.Execute(cmd.Context(), func(ctx context.Context, a *app.App) error {
				rec, err := a.Engine.Get(ctx, args[0], rid)
				if err != nil {
					return err
				}

				t, err := a.Engine.Table(ctx, args[0])
				if err != nil {
					return err
				}

				line, err := formatRecord(rec, t.Schema)
				if err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), line)

				return nil
			})
		},
	})
}

func initDelete() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "delete NAME PAGE SLOT",
		Short: "Delete one record by rid",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			rid, err := parseRID(args[1], args[2])
			if err != nil {
				return err
			}

			return app.Execute(cmd.Context(), func(ctx context.Context, a *app.App) error {
				return a.Engine.Delete(ctx, args[0], rid)
			})
		},
	})
}

func initScan() {
	var (
		whereAttr  string
		whereOp    string
		whereValue string
	)

	cmd := &cobra.Command{
		Use:   "scan NAME",
		Short: "Scan a table, optionally filtered by --where-*",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Execute(cmd.Context(), func(ctx context.Context, a *app.App) error {
				t, err := a.Engine.Table(ctx, args[0])
				if err != nil {
					return err
				}

				cond, err := buildCondition(t.Schema, whereAttr, whereOp, whereValue)
				if err != nil {
					return err
				}

				recs, err := a.Engine.ScanAll(ctx, args[0], cond)
				if err != nil {
					return err
				}

				for _, rec := range recs {
					line, err := formatRecord(rec, t.Schema)
					if err != nil {
						return err
					}

					fmt.Fprintln(cmd.OutOrStdout(), line)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%d record(s)\n", len(recs))

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&whereAttr, "where-attr", "", "attribute name to filter on")
	cmd.Flags().StringVar(&whereOp, "where-op", "=", "comparison operator: = != < <= > >=")
	cmd.Flags().StringVar(&whereValue, "where-value", "", "constant to compare against")

	rootCmd.AddCommand(cmd)
}

func buildCondition(
	schema *storage.Schema,
	attr, op, value string,
) (record.Condition, error) {
	if attr == "" {
		return query.True(), nil
	}

	attrNum := -1
	for i, n := range schema.AttrNames {
		if n == attr {
			attrNum = i
			break
		}
	}
	if attrNum < 0 {
		return nil, fmt.Errorf("unknown attribute %q", attr)
	}

	v, err := parseValue(schema.DataTypes[attrNum], value)
	if err != nil {
		return nil, err
	}

	var cmpOp query.CmpOp
	switch op {
	case "=", "==":
		cmpOp = query.CmpEQ
	case "!=":
		cmpOp = query.CmpNE
	case "<":
		cmpOp = query.CmpLT
	case "<=":
		cmpOp = query.CmpLE
	case ">":
		cmpOp = query.CmpGT
	case ">=":
		cmpOp = query.CmpGE
	default:
		return nil, fmt.Errorf("unknown operator %q", op)
	}

	return query.NewComparison(cmpOp, query.NewAttrRef(attrNum), query.NewConst(v)), nil
}

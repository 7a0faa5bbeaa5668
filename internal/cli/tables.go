package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shopledger/internal/export"
	"github.com/mesh-intelligence/shopledger/internal/store"
	"github.com/mesh-intelligence/shopledger/pkg/types"
)

// table looks up name on b, naming the valid tables on failure.
func table(b *store.Backend, name string) (types.Table, error) {
	t, err := b.GetTable(name)
	if errors.Is(err, types.ErrTableNotFound) {
		return nil, tableNotFound(name)
	}
	return t, err
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <table> <id>",
		Short: "Get an entity by ID",
		Example: "  shopledger get products 1\n" +
			"  shopledger get employees 101",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			return a.withLedger(cmd, func(b *store.Backend) error {
				t, err := table(b, args[0])
				if err != nil {
					return err
				}
				entity, err := t.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), entity)
			})
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	var where []string
	cmd := &cobra.Command{
		Use:   "list <table>",
		Short: "List entities, optionally filtered by column equality",
		Example: "  shopledger list products --where category=Groceries\n" +
			"  shopledger list employees --where manager_id=null",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseFilter(where)
			if err != nil {
				return err
			}
			return a.withLedger(cmd, func(b *store.Backend) error {
				t, err := table(b, args[0])
				if err != nil {
					return err
				}
				entities, err := t.Fetch(cmd.Context(), filter)
				if err != nil {
					return err
				}
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), entities)
				}
				return export.WriteJSONL(cmd.OutOrStdout(), entities)
			})
		},
	}
	cmd.Flags().StringArrayVar(&where, "where", nil, "column=value filter (repeatable)")
	return cmd
}

func newCreateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create <table> <json|->",
		Short: "Create an entity from a JSON object",
		Long: "Create inserts one row. The JSON object uses column names as keys;\n" +
			"pass - to read it from standard input. Order items go through the\n" +
			"inventory guard.",
		Example: `  shopledger create customers '{"customer_id":21,"name":"Asha","email":"asha@example.com"}'`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readPayload(args[1], cmd.InOrStdin())
			if err != nil {
				return err
			}
			entity, err := decodeEntity(args[0], data)
			if err != nil {
				return err
			}
			return a.withLedger(cmd, func(b *store.Backend) error {
				t, err := table(b, args[0])
				if err != nil {
					return err
				}
				if err := t.Create(cmd.Context(), entity); err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), entity)
			})
		},
	}
}

func newUpdateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "update <table> <id> <json|->",
		Short:   "Update fields of an entity",
		Example: `  shopledger update products 1 '{"price":"85.00","stock":150}'`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			data, err := readPayload(args[2], cmd.InOrStdin())
			if err != nil {
				return err
			}
			fields, err := decodeFields(data)
			if err != nil {
				return err
			}
			return a.withLedger(cmd, func(b *store.Backend) error {
				t, err := table(b, args[0])
				if err != nil {
					return err
				}
				entity, err := t.Update(cmd.Context(), id, fields)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), entity)
			})
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <table> <id>",
		Short: "Delete an entity and apply its relationship policies",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			return a.withLedger(cmd, func(b *store.Backend) error {
				t, err := table(b, args[0])
				if err != nil {
					return err
				}
				if err := t.Delete(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s %d\n", args[0], id)
				return nil
			})
		},
	}
}

package cli

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shopledger/internal/store"
	"github.com/mesh-intelligence/shopledger/pkg/types"
)

func newOrderCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Order operations",
	}
	cmd.AddCommand(newOrderAddItemCmd(a))
	return cmd
}

func newOrderAddItemCmd(a *app) *cobra.Command {
	var (
		item  types.OrderItem
		price string
	)
	cmd := &cobra.Command{
		Use:   "add-item",
		Short: "Add an item to an order, taking it from product stock",
		Long: "add-item checks the product's stock and decrements it by the quantity\n" +
			"in the same unit of work. It fails without changing anything when\n" +
			"stock is short.",
		Example: "  shopledger order add-item --item 11 --order 4 --product 1 --qty 2 --price 80",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var missing []string
			for _, name := range []string{"item", "order", "product", "qty", "price"} {
				if !cmd.Flags().Changed(name) {
					missing = append(missing, "--"+name)
				}
			}
			if len(missing) > 0 {
				return usageError(fmt.Errorf("order add-item: missing %v", missing))
			}
			p, err := decimal.NewFromString(price)
			if err != nil {
				return usageError(fmt.Errorf("order add-item: invalid --price %q", price))
			}
			item.Price = p
			return a.withLedger(cmd, func(b *store.Backend) error {
				created, err := b.InsertOrderItem(cmd.Context(), item)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), created)
			})
		},
	}
	cmd.Flags().Int64Var(&item.OrderItemID, "item", 0, "order item id")
	cmd.Flags().Int64Var(&item.OrderID, "order", 0, "order id")
	cmd.Flags().Int64Var(&item.ProductID, "product", 0, "product id")
	cmd.Flags().Int64Var(&item.Quantity, "qty", 0, "quantity")
	cmd.Flags().StringVar(&price, "price", "", "unit price")
	return cmd
}

func newEmployeeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employee",
		Short: "Employee operations",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an employee, recording an audit snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withLedger(cmd, func(b *store.Backend) error {
				audit, err := b.DeleteEmployee(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), audit)
			})
		},
	})
	return cmd
}

func newHierarchyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "hierarchy",
		Short: "Show the employee management hierarchy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd, func(b *store.Backend) error {
				nodes, err := b.EmployeeHierarchy(cmd.Context())
				if err != nil {
					return err
				}
				return printReport(cmd.OutOrStdout(), a.flags.jsonMode, nodes)
			})
		},
	}
}

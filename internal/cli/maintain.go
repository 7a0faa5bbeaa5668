package cli

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shopledger/internal/store"
	"github.com/mesh-intelligence/shopledger/pkg/types"
)

func newMaintainCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maintain",
		Short: "Bulk maintenance operations",
	}
	cmd.AddCommand(
		newRaisePricesCmd(a),
		newRaiseSalariesCmd(a),
		newRestockCmd(a),
		newAddStockCmd(a),
		newPurgeInactiveCmd(a),
		newClearAuditCmd(a),
		newDeleteCustomerCmd(a),
	)
	return cmd
}

func parsePercent(s string) (decimal.Decimal, error) {
	p, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, usageError(fmt.Errorf("invalid --percent %q", s))
	}
	return p, nil
}

// parseDay parses a YYYY-MM-DD flag; empty means today.
func parseDay(flag, s string) (types.Date, error) {
	if s == "" {
		return types.Today(), nil
	}
	d, err := types.ParseDate(s)
	if err != nil {
		return types.Date{}, usageError(fmt.Errorf("invalid --%s: %w", flag, err))
	}
	return d, nil
}

func printCount(cmd *cobra.Command, jsonMode bool, what string, n int64) error {
	if jsonMode {
		return printJSON(cmd.OutOrStdout(), map[string]int64{what: n})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", what, n)
	return nil
}

func newRaisePricesCmd(a *app) *cobra.Command {
	var category, percent string
	cmd := &cobra.Command{
		Use:     "raise-prices",
		Short:   "Scale the price of every product in a category",
		Example: "  shopledger maintain raise-prices --category Electronics --percent 10",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePercent(percent)
			if err != nil {
				return err
			}
			return a.withLedger(cmd, func(b *store.Backend) error {
				n, err := b.AdjustCategoryPrices(cmd.Context(), category, p)
				if err != nil {
					return err
				}
				return printCount(cmd, a.flags.jsonMode, "updated", n)
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "product category")
	cmd.Flags().StringVar(&percent, "percent", "", "percentage change, may be negative")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("percent")
	return cmd
}

func newRaiseSalariesCmd(a *app) *cobra.Command {
	var (
		years   int
		percent string
		asOf    string
	)
	cmd := &cobra.Command{
		Use:     "raise-salaries",
		Short:   "Raise the salary of employees with enough tenure",
		Example: "  shopledger maintain raise-salaries --years 5 --percent 10",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePercent(percent)
			if err != nil {
				return err
			}
			day, err := parseDay("as-of", asOf)
			if err != nil {
				return err
			}
			return a.withLedger(cmd, func(b *store.Backend) error {
				n, err := b.RaiseSalaries(cmd.Context(), years, p, day.Time)
				if err != nil {
					return err
				}
				return printCount(cmd, a.flags.jsonMode, "updated", n)
			})
		},
	}
	cmd.Flags().IntVar(&years, "years", 5, "minimum years since hire")
	cmd.Flags().StringVar(&percent, "percent", "", "percentage raise")
	cmd.Flags().StringVar(&asOf, "as-of", "", "reference date YYYY-MM-DD (default: today)")
	_ = cmd.MarkFlagRequired("percent")
	return cmd
}

func newRestockCmd(a *app) *cobra.Command {
	var (
		shipment types.Shipment
		date     string
	)
	cmd := &cobra.Command{
		Use:     "restock",
		Short:   "Record a supplier shipment and add it to product stock",
		Example: "  shopledger maintain restock --shipment 1 --product 4 --qty 50",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay("date", date)
			if err != nil {
				return err
			}
			shipment.ShipmentDate = day
			return a.withLedger(cmd, func(b *store.Backend) error {
				if err := b.ReceiveShipments(cmd.Context(), []types.Shipment{shipment}); err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), shipment)
			})
		},
	}
	cmd.Flags().Int64Var(&shipment.ShipmentID, "shipment", 0, "shipment id")
	cmd.Flags().Int64Var(&shipment.ProductID, "product", 0, "product id")
	cmd.Flags().Int64Var(&shipment.Quantity, "qty", 0, "quantity received")
	cmd.Flags().StringVar(&date, "date", "", "shipment date YYYY-MM-DD (default: today)")
	for _, f := range []string{"shipment", "product", "qty"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newAddStockCmd(a *app) *cobra.Command {
	var product, qty int64
	cmd := &cobra.Command{
		Use:   "add-stock",
		Short: "Add units to a product's stock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd, func(b *store.Backend) error {
				p, err := b.AddProductStock(cmd.Context(), product, qty)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), p)
			})
		},
	}
	cmd.Flags().Int64Var(&product, "product", 0, "product id")
	cmd.Flags().Int64Var(&qty, "qty", 0, "units to add")
	_ = cmd.MarkFlagRequired("product")
	_ = cmd.MarkFlagRequired("qty")
	return cmd
}

func newPurgeInactiveCmd(a *app) *cobra.Command {
	var since string
	cmd := &cobra.Command{
		Use:   "purge-inactive",
		Short: "Delete customers with no order on or after --since",
		Long: "purge-inactive deletes customers through the regular delete path, so\n" +
			"their orders, items and payments go with them.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := types.ParseDate(since)
			if err != nil {
				return usageError(fmt.Errorf("invalid --since: %w", err))
			}
			return a.withLedger(cmd, func(b *store.Backend) error {
				ids, err := b.PurgeInactiveCustomers(cmd.Context(), day.Time)
				if err != nil {
					return err
				}
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), ids)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d customers %v\n", len(ids), ids)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&since, "since", time.Now().AddDate(-1, 0, 0).Format(types.DateLayout), "cutoff date YYYY-MM-DD")
	return cmd
}

func newClearAuditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-audit",
		Short: "Remove every employee audit record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd, func(b *store.Backend) error {
				n, err := b.ClearEmployeeAudit(cmd.Context())
				if err != nil {
					return err
				}
				return printCount(cmd, a.flags.jsonMode, "cleared", n)
			})
		},
	}
}

func newDeleteCustomerCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-customer <id>",
		Short: "Delete a customer only if they have no orders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withLedger(cmd, func(b *store.Backend) error {
				if err := b.DeleteCustomerIfNoOrders(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted customers %d\n", id)
				return nil
			})
		},
	}
}

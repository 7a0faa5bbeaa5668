package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shopledger/internal/store"
)

// reportParams carries the flags shared by report and export.
type reportParams struct {
	year       int
	month      int
	customerID int64
}

func (p *reportParams) bind(cmd *cobra.Command) {
	now := time.Now()
	cmd.PersistentFlags().IntVar(&p.year, "year", now.Year(), "year for monthly-sales and sales")
	cmd.PersistentFlags().IntVar(&p.month, "month", int(now.Month()), "month (1-12) for sales")
	cmd.PersistentFlags().Int64Var(&p.customerID, "customer", 0, "customer id for customer-orders")
}

type report struct {
	name  string
	short string
	// perCustomer reports run only when --customer is given.
	perCustomer bool
	run         func(ctx context.Context, b *store.Backend, p reportParams) (any, error)
}

var reports = []report{
	{
		name:  "top-products",
		short: "Products by total quantity sold",
		run: func(ctx context.Context, b *store.Backend, _ reportParams) (any, error) {
			return b.TopSellingProducts(ctx)
		},
	},
	{
		name:  "store-revenue",
		short: "Revenue per store",
		run: func(ctx context.Context, b *store.Backend, _ reportParams) (any, error) {
			return b.StoreRevenue(ctx)
		},
	},
	{
		name:  "hierarchy",
		short: "Employee management hierarchy",
		run: func(ctx context.Context, b *store.Backend, _ reportParams) (any, error) {
			return b.EmployeeHierarchy(ctx)
		},
	},
	{
		name:  "customer-spending",
		short: "Lifetime spend per customer",
		run: func(ctx context.Context, b *store.Backend, _ reportParams) (any, error) {
			return b.CustomerSpending(ctx)
		},
	},
	{
		name:  "monthly-sales",
		short: "Per-store revenue by month for --year",
		run: func(ctx context.Context, b *store.Backend, p reportParams) (any, error) {
			return b.MonthlySales(ctx, p.year)
		},
	},
	{
		name:  "sales",
		short: "Per-store item sales for --year and --month",
		run: func(ctx context.Context, b *store.Backend, p reportParams) (any, error) {
			return b.SalesReport(ctx, p.year, p.month)
		},
	},
	{
		name:        "customer-orders",
		short:       "Orders of --customer by date",
		perCustomer: true,
		run: func(ctx context.Context, b *store.Backend, p reportParams) (any, error) {
			return b.CustomerOrders(ctx, p.customerID)
		},
	},
}

func findReport(name string) (report, error) {
	i := slices.IndexFunc(reports, func(r report) bool { return r.name == name })
	if i < 0 {
		return report{}, usageError(fmt.Errorf("unknown report %q (valid: %s)", name, strings.Join(reportNames(), ", ")))
	}
	return reports[i], nil
}

func reportNames() []string {
	names := make([]string, len(reports))
	for i, r := range reports {
		names[i] = r.name
	}
	return names
}

func (r report) check(p reportParams) error {
	if r.perCustomer && p.customerID <= 0 {
		return usageError(fmt.Errorf("%s: --customer is required", r.name))
	}
	return nil
}

func newReportCmd(a *app) *cobra.Command {
	var params reportParams
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a report",
	}
	params.bind(cmd)
	for _, r := range reports {
		cmd.AddCommand(&cobra.Command{
			Use:   r.name,
			Short: r.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := r.check(params); err != nil {
					return err
				}
				return a.withLedger(cmd, func(b *store.Backend) error {
					rows, err := r.run(cmd.Context(), b, params)
					if err != nil {
						return err
					}
					return printReport(cmd.OutOrStdout(), a.flags.jsonMode, rows)
				})
			},
		})
	}
	return cmd
}

// Package cli implements the shopledger command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/shopledger/internal/paths"
	"github.com/mesh-intelligence/shopledger/internal/store"
	"github.com/mesh-intelligence/shopledger/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
}

// app carries what the root command resolves before any subcommand runs.
type app struct {
	flags     rootFlags
	configDir string
	settings  settings
	log       *zap.Logger
}

// NewRootCmd creates the top-level "shopledger" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{log: zap.NewNop()}

	root := &cobra.Command{
		Use:   "shopledger",
		Short: "A retail ledger with enforced inventory and audit rules",
		Long: "shopledger keeps stores, employees, customers, products and orders in a\n" +
			"relational store, enforcing stock checks on order items and auditing\n" +
			"employee deletions.",
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.prepare,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
		},
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: platform data dir)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError(err)
	})

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newSeedCmd(a),
		newGetCmd(a),
		newListCmd(a),
		newCreateCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newOrderCmd(a),
		newEmployeeCmd(a),
		newHierarchyCmd(a),
		newReportCmd(a),
		newExportCmd(a),
		newDumpCmd(a),
		newImportCmd(a),
		newMaintainCmd(a),
	)
	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
	}
	return exitCode(err)
}

// prepare loads .env, the config file and the logger.
func (a *app) prepare(cmd *cobra.Command, args []string) error {
	// A missing .env is normal.
	_ = godotenv.Load()

	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return systemError(err)
	}
	a.configDir = configDir

	s, err := loadConfig(configDir)
	if err != nil {
		return err
	}
	a.settings = s

	log, err := newLogger(cmd.ErrOrStderr(), s.LogLevel, s.LogFormat)
	if err != nil {
		return err
	}
	a.log = log
	return nil
}

// dataDir resolves the data directory: --data-dir, then the environment,
// then config.yaml, then the platform default.
func (a *app) dataDir() (string, error) {
	return paths.ResolveDataDir(a.flags.dataDir, a.settings.DataDir)
}

// openLedger attaches a backend. The caller must Detach it.
func (a *app) openLedger(ctx context.Context) (*store.Backend, error) {
	dataDir, err := a.dataDir()
	if err != nil {
		return nil, systemError(fmt.Errorf("resolving data dir: %w", err))
	}
	backend := store.NewBackend(store.WithLogger(a.log))
	if err := backend.Attach(ctx, a.settings.ledgerConfig(dataDir)); err != nil {
		if errors.Is(err, types.ErrBackendUnknown) || errors.Is(err, types.ErrDSNRequired) || errors.Is(err, types.ErrBackendEmpty) {
			return nil, fmt.Errorf("attaching ledger: %w", err)
		}
		return nil, systemError(fmt.Errorf("attaching ledger: %w", err))
	}
	return backend, nil
}

// withLedger runs fn against an attached backend and detaches afterwards.
func (a *app) withLedger(cmd *cobra.Command, fn func(b *store.Backend) error) error {
	backend, err := a.openLedger(cmd.Context())
	if err != nil {
		return err
	}
	defer backend.Detach()
	return fn(backend)
}

// exitError pins an error to an exit code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func systemError(err error) error {
	return &exitError{code: exitSysError, err: err}
}

func usageError(err error) error {
	return &exitError{code: exitUserError, err: err}
}

// exitCode maps an error to the process exit code. Transient failures and
// I/O are system errors; everything else is the caller's to fix.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if errors.Is(err, types.ErrTransientUnavailable) {
		return exitSysError
	}
	return exitUserError
}

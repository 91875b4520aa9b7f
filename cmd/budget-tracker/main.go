// Command budget-tracker is the command line front end of the ledger.
//
// Every command prints JSON on stdout. Entity input is a JSON object passed
// with --data or, when --data is empty or "-", read from stdin.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/recipereverie-droid/Budget-Tracker/internal/backend"
	"github.com/recipereverie-droid/Budget-Tracker/internal/cli"
	"github.com/recipereverie-droid/Budget-Tracker/internal/config"
	"github.com/recipereverie-droid/Budget-Tracker/internal/core"
	"github.com/recipereverie-droid/Budget-Tracker/internal/log"
)

type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	userID      string
	data        string
	envFile     string
	backendType string

	cfg     *config.Config
	logger  *log.Logger
	backend *backend.BackendResult
}

func main() {
	if err := execute(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var verr *core.ValidationError
		if errors.As(err, &verr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// execute runs one command line and releases the backend afterwards.
func execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	a := &app{in: in, out: out, errOut: errOut}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	if a.backend != nil && a.backend.Cleanup != nil {
		if cerr := a.backend.Cleanup(); cerr != nil {
			a.logger.Warn("Failed to close backend", log.FieldError, cerr)
		}
	}
	return err
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "budget-tracker",
		Short: "Personal finance ledger",
		Long: `budget-tracker records income and expenses against categories, keeps
budgets and savings goals up to date and raises notifications when a
budget threshold or goal milestone is crossed.

Storage and optional collaborators (AMQP, Google Sheets) are configured
through the environment; see .env.example.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.userID, "user", "", "ID of the acting user")
	root.PersistentFlags().StringVar(&a.data, "data", "", `JSON input object ("-" or empty reads stdin)`)
	root.PersistentFlags().StringVar(&a.envFile, "env-file", "", "Load environment from this file instead of .env")
	root.PersistentFlags().StringVar(&a.backendType, "backend", "",
		fmt.Sprintf("Override DATA_BACKEND (%s)", strings.Join(backend.GetBackendTypeStrings(), "|")))

	root.AddCommand(
		a.userCmd(),
		a.categoryCmd(),
		a.transactionCmd(),
		a.goalCmd(),
		a.budgetCmd(),
		a.settingsCmd(),
		a.summaryCmd(),
		a.notificationsCmd(),
		a.backupCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.envFile != "" {
		cli.LoadEnvFile(a.envFile)
	} else {
		cli.LoadEnvFile()
	}

	cfg, err := cli.LoadAndValidateConfig(func(c *config.Config) {
		if a.backendType != "" {
			c.DataBackend = a.backendType
		}
	})
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = cli.SetupLogger(cfg, a.errOut, log.ComponentCLI)

	res, err := cli.OpenBackend(cmd.Context(), cfg, a.logger)
	if err != nil {
		return err
	}
	a.backend = res
	return nil
}

func (a *app) requireUser() (string, error) {
	if strings.TrimSpace(a.userID) == "" {
		return "", errors.New("--user is required")
	}
	return a.userID, nil
}

// input decodes the JSON object given by --data or stdin. Numbers are kept
// as json.Number so amounts never pass through a float.
func (a *app) input() (map[string]any, error) {
	var r io.Reader = strings.NewReader(a.data)
	if a.data == "" || a.data == "-" {
		r = a.in
	}
	dec := json.NewDecoder(r)
	dec.UseNumber()
	raw := map[string]any{}
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("no JSON input given (use --data or stdin)")
		}
		return nil, fmt.Errorf("decode input: %w", err)
	}
	return raw, nil
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

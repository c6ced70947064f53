package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sheetwright/engine/internal/appdirs"
	"sheetwright/engine/internal/engine"
	"sheetwright/engine/internal/env"
	"sheetwright/engine/internal/errinfo"
	"sheetwright/engine/internal/logging"
	"sheetwright/engine/internal/rpc"
)

func main() {
	root := &cobra.Command{
		Use:           "sheetwright-engine",
		Short:         "Spreadsheet action engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newApplyCmd(), newKindsCmd())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON-RPC protocol over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func serve() error {
	envResult := env.LoadDotenv()
	debug := env.Bool("SHEETWRIGHT_DEBUG")
	dataDir, err := appdirs.DataDir()
	if err != nil {
		return fmt.Errorf("engine init: %w", err)
	}
	logSetup, logErr := logging.NewFileLogger(dataDir, debug)
	logger := logSetup.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	logger = logger.With("component", "engine")
	if logSetup.Enabled {
		logger.Info("engine.logging_enabled", "path", logSetup.Path)
	}
	if envResult.Loaded {
		logger.Debug("engine.env_loaded", "path", envResult.Path, "keys", envResult.Applied)
	}
	if envResult.Err != nil {
		logger.Warn("engine.env_load_failed", "path", envResult.Path, "error", envResult.Err.Error())
	}
	if logErr != nil {
		logger.Warn("engine.log_setup_failed", "error", logErr.Error())
	}
	if logSetup.Close != nil {
		defer logSetup.Close()
	}

	eng, err := engine.New(engine.WithLogger(logger))
	if err != nil {
		logger.Error("engine.init_failed", "error", err.Error())
		return fmt.Errorf("engine init: %w", err)
	}
	server := rpc.NewServer(engine.APIVersion, os.Stdin, os.Stdout, logger)
	eng.SetNotifier(server.Notify)

	register := func(method string, fn func(context.Context, json.RawMessage) (any, *errinfo.ErrorInfo)) {
		server.Register(method, func(ctx context.Context, params json.RawMessage) (any, *rpc.Error) {
			result, errInfo := fn(ctx, params)
			if errInfo != nil {
				return nil, rpc.ErrorFrom(errInfo)
			}
			return result, nil
		})
	}

	register("engine.ping", eng.EnginePing)
	register("catalog.list", eng.CatalogList)

	register("workbook.open", eng.WorkbookOpen)
	register("workbook.save", eng.WorkbookSave)

	register("proposal.submit", eng.ProposalSubmit)
	register("proposal.state", eng.ProposalState)
	register("proposal.select", eng.ProposalSelect)
	register("proposal.preview", eng.ProposalPreview)
	register("proposal.apply", eng.ProposalApply)
	register("proposal.dismiss", eng.ProposalDismiss)

	register("history.list", eng.HistoryList)
	register("history.undo", eng.HistoryUndo)

	if err := server.Serve(context.Background()); err != nil {
		logger.Error("rpc.server_error", "error", err.Error())
		return fmt.Errorf("rpc server: %w", err)
	}
	return nil
}

// newApplyCmd runs a batch file against a workbook in one shot, without the
// RPC round trips. Useful for scripting and for reproducing host sessions.
func newApplyCmd() *cobra.Command {
	var create, save bool
	cmd := &cobra.Command{
		Use:   "apply <workbook.xlsx> <batch.json>",
		Short: "Apply a JSON batch of actions to a workbook",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return applyBatch(cmd, args[0], args[1], create, save)
		},
	}
	cmd.Flags().BoolVar(&create, "create", false, "create the workbook if it does not exist")
	cmd.Flags().BoolVar(&save, "save", true, "save the workbook after applying")
	return cmd
}

func applyBatch(cmd *cobra.Command, workbookPath, batchPath string, create, save bool) error {
	batch, err := os.ReadFile(batchPath)
	if err != nil {
		return fmt.Errorf("read batch: %w", err)
	}
	if !json.Valid(batch) {
		return fmt.Errorf("batch %s is not valid JSON", batchPath)
	}

	eng, err := engine.New()
	if err != nil {
		return fmt.Errorf("engine init: %w", err)
	}
	ctx := cmd.Context()

	openParams, err := json.Marshal(map[string]any{"path": workbookPath, "create": create})
	if err != nil {
		return err
	}
	if _, errInfo := eng.WorkbookOpen(ctx, openParams); errInfo != nil {
		return fmt.Errorf("open workbook: %s", errInfo.Error())
	}
	if _, errInfo := eng.ProposalSubmit(ctx, batch); errInfo != nil {
		return fmt.Errorf("submit batch: %s", errInfo.Error())
	}
	result, errInfo := eng.ProposalApply(ctx, nil)
	if errInfo != nil {
		return fmt.Errorf("apply batch: %s", errInfo.Error())
	}
	if save {
		if _, errInfo := eng.WorkbookSave(ctx, nil); errInfo != nil {
			return fmt.Errorf("save workbook: %s", errInfo.Error())
		}
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func newKindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the supported action kinds",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := engine.New()
			if err != nil {
				return err
			}
			for _, entry := range eng.Registry().Kinds() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", entry.Kind, entry.Doc)
			}
			return nil
		},
	}
}

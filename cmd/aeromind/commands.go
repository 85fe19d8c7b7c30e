package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Rohit-Gupta-126/aeromind/internal/api"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				logger.Error("startup failed", zap.Error(err))
				return err
			}
			defer a.Close()

			srv := api.NewServer(cfg.Server, api.Deps{
				Workflow: a.workflow,
				Indexer:  a.indexer,
				Store:    a.store,
				Cache:    a.cache,
			}, logger)
			return srv.Run(ctx)
		},
	}
}

func indexCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Rebuild the vector index from the documents directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			if dir != "" {
				cfg.Ingestion.DocumentsDir = dir
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.indexer.BuildIndex(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d documents (%d chunks), %d skipped. Generation %d.\n",
				stats.Documents, stats.Chunks, len(stats.Skipped), stats.Generation)
			for _, s := range stats.Skipped {
				fmt.Fprintf(cmd.OutOrStdout(), "  skipped %s: %s\n", s.Path, s.Reason)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "path", "", "documents directory (overrides DOCUMENTS_DIR)")
	return cmd
}

func askCmd() *cobra.Command {
	var question string
	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Answer one question and print the JSON response",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len([]rune(question)) < 3 {
				return errors.New(`please provide -q "your question" (at least 3 characters)`)
			}
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(a.workflow.Run(ctx, question))
		},
	}
	cmd.Flags().StringVarP(&question, "question", "q", "", "question text")
	return cmd
}

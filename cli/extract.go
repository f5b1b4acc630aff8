package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/xiaot623/gogo/replay/internal/config"
	"github.com/xiaot623/gogo/replay/internal/domain"
	"github.com/xiaot623/gogo/replay/internal/repository"
	"github.com/xiaot623/gogo/replay/internal/service"
)

func newExtractCmd() *cobra.Command {
	var (
		checkpointsDir string
		outputDir      string
		name           string
		workers        int
		dbURL          string
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Build per-agent timelines from simulate-*.json checkpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if workers > 0 {
				cfg.ReadWorkers = workers
			}
			if name == "" {
				name = filepath.Base(filepath.Clean(checkpointsDir))
			}

			var catalog repository.Catalog
			if dbURL != "" {
				c, err := repository.NewSQLiteCatalog(dbURL)
				if err != nil {
					return err
				}
				defer c.Close()
				catalog = c
			}

			svc := service.New(catalog, cfg, nil)
			report, err := svc.ExtractDir(cmd.Context(), name, checkpointsDir, outputDir)
			out := cmd.OutOrStdout()
			switch {
			case service.IsEmpty(err):
				fmt.Fprintf(out, "no simulate-*.json files found in %s\n", checkpointsDir)
				return nil
			case errors.Is(err, domain.ErrMissingInput):
				return fmt.Errorf("checkpoints folder does not exist: %s", checkpointsDir)
			case err != nil:
				return err
			}

			errs := cmd.ErrOrStderr()
			for _, w := range report.Warnings {
				fmt.Fprintf(errs, "warning: %s\n", w)
			}
			for _, f := range report.Failures {
				fmt.Fprintf(errs, "failed: %s: %s\n", f.File, f.Error)
			}
			for _, a := range report.Agents {
				fmt.Fprintf(out, "saved %s: %s (%d entries)\n", a.Name, a.TimelinePath, a.TotalSteps)
				fmt.Fprintf(out, "  simplified: %s\n", a.SimplifiedPath)
			}
			fmt.Fprintf(out, "summary: %s\n", report.SummaryPath)
			fmt.Fprintf(out, "extracted %d agents from %d checkpoints (%d failed)\n",
				len(report.Agents), report.TotalCheckpoints, len(report.Failures))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&checkpointsDir, "checkpoints", "", "checkpoints folder (e.g. results/checkpoints/sim-5-agent-6h)")
	flags.StringVar(&outputDir, "output", "", "output folder (default <checkpoints>/agent_logs)")
	flags.StringVar(&name, "name", "", "simulation name recorded in the catalog (default checkpoints folder name)")
	flags.IntVar(&workers, "workers", 0, "number of checkpoint files read concurrently")
	flags.StringVar(&dbURL, "db", "", "record the extraction in this SQLite catalog")
	cmd.MarkFlagRequired("checkpoints")

	return cmd
}

package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/piwi3910/SlabGen/internal/engine"
	"github.com/piwi3910/SlabGen/internal/importer"
	"github.com/piwi3910/SlabGen/internal/model"
)

// errNoRequests is returned when a batch file yields nothing to run.
var errNoRequests = errors.New("no valid requests in batch file")

func newBatchCmd(c *cli) *cobra.Command {
	var (
		sf     settingsFlags
		of     outputFlags
		strict bool
	)
	cmd := &cobra.Command{
		Use:   "batch <file.csv|file.xlsx|file.toml|file.yaml>",
		Short: "Run every request of a batch file",
		Long: `Reads slab requests from a CSV or Excel sheet (columns label, thickness,
width, depth, miller, padding; headers are detected) or from a TOML or YAML
job file that may also carry a settings block and a unit cell. Flags
override the job file's settings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := c.log()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			result, job := importer.ImportFile(args[0])
			for _, w := range result.Warnings {
				log.Warn("import warning", zap.String("file", args[0]), zap.String("detail", w))
			}
			for _, e := range result.Errors {
				log.Error("import error", zap.String("file", args[0]), zap.String("detail", e))
			}
			if len(result.Errors) > 0 && strict {
				return fmt.Errorf("%w: %s", model.ErrInvalidRequest, strings.Join(result.Errors, "; "))
			}
			if len(result.Requests) == 0 {
				return errNoRequests
			}

			settings := model.DefaultSettings()
			cfg.ApplyToSettings(&settings)
			cellPath := cfg.UnitCellPath
			if job != nil {
				job.Settings.Apply(&settings)
				if job.Cell != "" {
					cellPath = job.Cell
				}
			}
			sf.apply(cmd.Flags(), &settings)
			if sf.cell != "" {
				cellPath = sf.cell
			}

			cell, source, err := loadCell(cellPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
			defer stop()

			gen := engine.New(settings, engine.WithLogger(log))
			runs := make([]model.RunResult, 0, len(result.Requests))
			for _, req := range result.Requests {
				run, err := gen.Generate(ctx, cell, req)
				if err != nil {
					return fmt.Errorf("request %q: %w", req.DisplayName(), err)
				}
				run.Cell = source
				runs = append(runs, run)
			}

			printRuns(cmd.OutOrStdout(), runs)
			return c.writeOutputs(&cfg, runs, settings.OutputDir, of)
		},
	}

	sf.register(cmd.Flags())
	of.register(cmd.Flags())
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when any row of the batch file is invalid")
	return cmd
}

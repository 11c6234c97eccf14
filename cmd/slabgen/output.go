package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/piwi3910/SlabGen/internal/export"
	"github.com/piwi3910/SlabGen/internal/model"
	"github.com/piwi3910/SlabGen/internal/project"
)

// outputFlags select the reports written after a run.
type outputFlags struct {
	report   string
	labels   string
	summary  string
	dxf      bool
	manifest string
}

func (of *outputFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&of.report, "report", "", "Write a PDF report to this path")
	fs.StringVar(&of.labels, "labels", "", "Write QR-coded slab labels (PDF) to this path")
	fs.StringVar(&of.summary, "summary", "", "Write an XLSX summary to this path")
	fs.BoolVar(&of.dxf, "dxf", false, "Write a DXF plan view per slab into the output directory")
	fs.StringVar(&of.manifest, "manifest", "", "Write a JSON manifest of the runs to this path")
}

// writeOutputs writes the selected reports. A written manifest is recorded
// in the app config's recent runs.
func (c *cli) writeOutputs(cfg *model.AppConfig, runs []model.RunResult, outDir string, of outputFlags) error {
	log := c.log()

	if of.report != "" {
		if err := export.ExportPDF(of.report, runs); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		log.Info("report written", zap.String("file", of.report))
	}
	if of.labels != "" {
		if err := export.ExportLabels(of.labels, runs); err != nil {
			return fmt.Errorf("failed to write labels: %w", err)
		}
		log.Info("labels written", zap.String("file", of.labels))
	}
	if of.summary != "" {
		if err := export.ExportXLSX(of.summary, runs); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
		log.Info("summary written", zap.String("file", of.summary))
	}
	if of.dxf {
		paths, err := export.ExportDXFAll(outDir, runs)
		if err != nil {
			return fmt.Errorf("failed to write drawings: %w", err)
		}
		log.Info("drawings written", zap.Int("count", len(paths)), zap.String("dir", outDir))
	}
	if of.manifest != "" {
		if err := project.SaveManifest(of.manifest, project.NewManifest(runs...)); err != nil {
			return err
		}
		log.Info("manifest written", zap.String("file", of.manifest))

		cfg.AddRecentRun(of.manifest)
		if err := project.SaveAppConfig(c.configPath, *cfg); err != nil {
			log.Warn("failed to record recent run", zap.Error(err))
		}
	}
	return nil
}

// printRuns writes one line per slab variant.
func printRuns(w io.Writer, runs []model.RunResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "REQUEST\tMILLER\tORTH\t#\tSHIFT\tSUPERCELL\tATOMS\tFORMULA\tA x B x C (A)\tFILES")
	for _, run := range runs {
		for _, s := range run.Slabs {
			files := "-"
			if len(s.Files) > 0 {
				files = fmt.Sprintf("%s (+%d)", s.Files[0], len(s.Files)-1)
				if len(s.Files) == 1 {
					files = s.Files[0]
				}
			} else if len(s.Planned) > 0 {
				files = "(dry run) " + s.Planned[0]
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.4f\t%dx%d\t%d\t%s\t%.2f x %.2f x %.2f\t%s\n",
				run.Request.DisplayName(), s.Miller, s.OrthMiller, s.Index, s.Shift,
				s.MultA, s.MultB, s.Atoms, s.Formula, s.Lengths[0], s.Lengths[1], s.Lengths[2], files)
		}
	}
	tw.Flush()

	st := model.SummarizeRuns(runs)
	fmt.Fprintf(w, "\n%d request(s), %d slab(s), %d atoms, %d file(s)\n", st.Runs, st.Slabs, st.Atoms, st.Files)
}

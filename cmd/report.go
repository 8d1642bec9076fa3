package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mzview/core/msdata"
	"mzview/core/report"

	"github.com/spf13/cobra"
)

var (
	reportOutput    string
	reportTitle     string
	reportTopN      int
	reportTargetMz  float64
	reportTolerance float64
	reportLogoPath  string
)

var reportCmd = &cobra.Command{
	Use:   "report <file.mzML>",
	Short: "Render a PDF report for an mzML file.",
	Long: `report parses an mzML file and writes a PDF report with the TIC, an
optional EIC for a target mass, and the top peaks, without starting the
server.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		exp, err := msdata.FromReader(f, msdata.Limits{})
		if err != nil {
			return fmt.Errorf("could not parse %s: %w", args[0], err)
		}

		params := report.Params{
			Title:       reportTitle,
			SourceFile:  filepath.Base(args[0]),
			GeneratedAt: time.Now(),
			Footer:      "Generated by mzview",
		}

		if tic, err := exp.TIC(); err == nil {
			params.TIC = tic
		}
		if reportTargetMz > 0 {
			params.HasEIC = true
			params.TargetMz = reportTargetMz
			params.Tolerance = reportTolerance
			params.EIC = exp.EIC(reportTargetMz, reportTolerance)
		}
		if rows, err := exp.PeakTable(); err == nil {
			params.Peaks = msdata.TopN(rows, reportTopN)
		}

		if reportLogoPath != "" {
			logoFile, err := os.Open(reportLogoPath)
			if err != nil {
				return err
			}
			logo, err := report.PrepareLogo(logoFile, 600)
			logoFile.Close()
			if err != nil {
				return fmt.Errorf("could not read logo %s: %w", reportLogoPath, err)
			}
			params.Logo = logo
		}

		renderer := report.NewRenderer(report.ChartOptions{})
		pdfBytes, err := renderer.Build(params)
		if err != nil {
			return fmt.Errorf("could not build report: %w", err)
		}

		output := reportOutput
		if output == "" {
			base := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			output = base + "_report.pdf"
		}
		if err := os.WriteFile(output, pdfBytes, 0o644); err != nil {
			return err
		}
		fmt.Printf("Wrote %s (%d bytes)\n", output, len(pdfBytes))
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "output PDF path (default <input>_report.pdf)")
	reportCmd.Flags().StringVarP(&reportTitle, "title", "t", "Mass Spectrometry Report", "report title")
	reportCmd.Flags().IntVarP(&reportTopN, "top", "n", 10, "number of top peaks in the table")
	reportCmd.Flags().Float64Var(&reportTargetMz, "mz", 0, "target mass for an EIC section (0 disables)")
	reportCmd.Flags().Float64Var(&reportTolerance, "tol", 0.5, "mass tolerance for the EIC section")
	reportCmd.Flags().StringVar(&reportLogoPath, "logo", "", "path to a PNG/JPEG logo for the report header")
	rootCmd.AddCommand(reportCmd)
}

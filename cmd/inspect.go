package cmd

import (
	"fmt"
	"os"

	"mzview/core/msdata"

	"github.com/spf13/cobra"
)

var inspectTopN int

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.mzML>",
	Short: "Print a summary of an mzML file.",
	Long: `inspect parses an mzML file and prints its spectrum and chromatogram
counts together with the most intense peaks, without starting the server.`,
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

		fmt.Printf("File:          %s\n", args[0])
		if exp.RunID != "" {
			fmt.Printf("Run ID:        %s\n", exp.RunID)
		}
		fmt.Printf("Spectra:       %d\n", len(exp.Spectra))
		fmt.Printf("Chromatograms: %d\n", len(exp.Chromatograms))
		fmt.Printf("Peaks:         %d\n", exp.NumPeaks())

		rows, err := exp.PeakTable()
		if err != nil {
			fmt.Println("\nNo mass spectra data available.")
			return nil
		}

		top := msdata.TopN(rows, inspectTopN)
		fmt.Printf("\nTop %d peaks:\n", len(top))
		fmt.Printf("%14s %20s %14s\n", "m/z", "Retention Time (s)", "Intensity")
		for _, row := range top {
			fmt.Printf("%14.4f %20.2f %14.1f\n", row.Mz, row.RetentionTime, row.Intensity)
		}
		return nil
	},
}

func init() {
	inspectCmd.Flags().IntVarP(&inspectTopN, "top", "n", 10, "number of top peaks to print")
	rootCmd.AddCommand(inspectCmd)
}

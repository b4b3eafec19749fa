package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/notas/internal/app"
	"github.com/heartmarshall/notas/internal/app/dataset"
)

func newDatasetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Offline vocabulary dataset tools",
	}
	cmd.AddCommand(newDatasetCleanCmd(), newDatasetImportCmd())
	return cmd
}

func newDatasetCleanCmd() *cobra.Command {
	var in, out string

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Deduplicate, standardize and sort a JSON dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, closeLog, err := app.Setup(cfg.Log, false)
			if err != nil {
				return err
			}
			defer closeLog()

			report, err := dataset.CleanFile(logger, in, out)
			if err != nil {
				return err
			}
			cmd.Printf("Cleaning complete. Reduced from %d to %d unique words.\n", report.Before, report.After)
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "dataset JSON file")
	cmd.Flags().StringVar(&out, "out", "", "output file (default: rewrite --in)")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func newDatasetImportCmd() *cobra.Command {
	var (
		xlsx, out string
		clean     bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Convert an .xlsx word list into a JSON dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if out == "" {
				return errors.New("--out is required")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, closeLog, err := app.Setup(cfg.Log, false)
			if err != nil {
				return err
			}
			defer closeLog()

			report, err := dataset.ImportWorkbook(logger, xlsx, out, clean)
			if err != nil {
				return err
			}
			cmd.Printf("Imported %d words into %s.\n", report.After, out)
			return nil
		},
	}
	cmd.Flags().StringVar(&xlsx, "xlsx", "", "source workbook")
	cmd.Flags().StringVar(&out, "out", "", "destination JSON file")
	cmd.Flags().BoolVar(&clean, "clean", false, "clean the dataset before writing")
	_ = cmd.MarkFlagRequired("xlsx")
	return cmd
}

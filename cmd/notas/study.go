package main

import (
	"github.com/spf13/cobra"

	"github.com/heartmarshall/notas/internal/app"
	"github.com/heartmarshall/notas/internal/domain"
)

func newStudyCmd() *cobra.Command {
	var levelFlag string

	cmd := &cobra.Command{
		Use:   "study",
		Short: "Start a study session in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			level, err := domain.ParseLevel(levelFlag)
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return app.Study(cmd.Context(), cfg, level)
		},
	}
	cmd.Flags().StringVarP(&levelFlag, "level", "l", string(domain.LevelA1), "initial CEFR level (A1-C2)")
	return cmd
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/acadrisk/acadrisk/internal/application/usecase"
)

func newModelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Inspect the model artifact",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "inspect",
		Short: "Report which model would be served and what it expects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			return render(cmd, usecase.NewModelStatus(s.predictor, s.load).Execute(cmd.Context()))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "analyze",
		Short: "Report feature importances and canned scenario outcomes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			resp, err := usecase.NewAnalyzeModel(s.predictor).Execute(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd, resp)
		},
	})

	return cmd
}

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/acadrisk/acadrisk/internal/application/dto"
	"github.com/acadrisk/acadrisk/internal/application/usecase"
	"github.com/acadrisk/acadrisk/internal/infrastructure/kafka"
)

func newPredictCmd() *cobra.Command {
	var features, file, studentID string

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Score one student record",
		Example: `  riskctl predict --features '{"attendance": 62, "study_hours": 8, "activities": "low"}'
  riskctl predict --file student.json -o yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := readFeatures(features, file)
			if err != nil {
				return err
			}

			s, err := openSession(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			uc := usecase.NewPredictSingle(s.predictor, nil, kafka.NewLogPublisher(s.logger), s.logger)
			resp, err := uc.Execute(cmd.Context(), dto.PredictSingleRequest{Features: raw, StudentID: studentID})
			if err != nil {
				return err
			}
			return render(cmd, resp)
		},
	}

	cmd.Flags().StringVar(&features, "features", "", "Feature record as a JSON object")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the feature record from a JSON file")
	cmd.Flags().StringVar(&studentID, "student-id", "", "Student identifier to attach to the prediction")
	cmd.MarkFlagsMutuallyExclusive("features", "file")
	return cmd
}

func readFeatures(inline, file string) (map[string]any, error) {
	var data []byte
	switch {
	case inline != "":
		data = []byte(inline)
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read features: %w", err)
		}
		data = b
	default:
		return nil, errors.New("one of --features or --file is required")
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("features must be a JSON object: %w", err)
	}
	return raw, nil
}

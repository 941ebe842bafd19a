// Package cli implements the riskctl command line tool.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/acadrisk/acadrisk/internal/application/dto"
	"github.com/acadrisk/acadrisk/internal/domain/service"
	"github.com/acadrisk/acadrisk/internal/infrastructure/ml"
	"github.com/acadrisk/acadrisk/pkg/observability"
)

// version is set via -ldflags at build time.
var version = "(devel)"

// NewRootCmd builds the riskctl command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "riskctl",
		Short:         "Score student records against the academic risk model",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("model", envOr("MODEL_PATH", "./model.json"), "Model artifact path or s3://bucket/key (overrides MODEL_PATH)")
	root.PersistentFlags().StringP("output", "o", "json", "Output format: json or yaml")
	root.PersistentFlags().String("log-level", "warn", "Log level written to stderr")

	root.AddCommand(newPredictCmd())
	root.AddCommand(newBatchCmd())
	root.AddCommand(newModelCmd())
	root.AddCommand(newTokenCmd())
	root.AddCommand(newDevCertsCmd())
	root.AddCommand(newHealthCmd())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "riskctl", version)
		},
	})
	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	return observability.InitLogger(observability.LogConfig{
		Level:  level,
		Format: "text",
		Output: cmd.ErrOrStderr(),
	})
}

// session bundles the predictor loaded for one command.
type session struct {
	predictor *service.Predictor
	load      dto.ModelLoad
	logger    *slog.Logger
}

func openSession(ctx context.Context, cmd *cobra.Command) (*session, error) {
	logger := newLogger(cmd)
	location, _ := cmd.Flags().GetString("model")

	source, err := ml.OpenSource(ctx, location, ml.S3Config{
		Region:   os.Getenv("AWS_REGION"),
		Endpoint: os.Getenv("S3_ENDPOINT"),
	})
	if err != nil {
		return nil, err
	}
	provider := ml.NewProvider(source, logger)
	oracle := provider.Oracle(ctx)
	status := provider.Status(ctx)

	load := dto.ModelLoad{
		Location:       status.Location,
		ArtifactExists: status.ArtifactExists,
		LoadedAt:       status.LoadedAt,
	}
	if status.Err != nil {
		load.Error = status.Err.Error()
	}
	return &session{
		predictor: service.NewPredictor(oracle, logger),
		load:      load,
		logger:    logger,
	}, nil
}

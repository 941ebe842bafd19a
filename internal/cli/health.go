package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	grpcpresentation "github.com/acadrisk/acadrisk/internal/presentation/grpc"
	"github.com/acadrisk/acadrisk/pkg/tlsutil"
)

func newHealthCmd() *cobra.Command {
	var (
		addr, caFile       string
		useTLS, skipVerify bool
		timeout            time.Duration
	)

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check a running predictiond over its gRPC health service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			creds := insecure.NewCredentials()
			if useTLS || caFile != "" || skipVerify {
				var err error
				creds, err = tlsutil.ClientCredentials(caFile, skipVerify)
				if err != nil {
					return err
				}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			status, err := checkHealth(ctx, addr, creds)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), status)
			if status != healthpb.HealthCheckResponse_SERVING {
				return fmt.Errorf("predictiond at %s is %s", addr, status)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:"+envOr("GRPC_PORT", "9090"), "predictiond gRPC address")
	cmd.Flags().BoolVar(&useTLS, "tls", false, "Dial with TLS using the system roots")
	cmd.Flags().StringVar(&caFile, "ca", "", "CA certificate to trust, such as the one from dev-certs (implies --tls)")
	cmd.Flags().BoolVar(&skipVerify, "insecure", false, "Skip server certificate verification (implies --tls)")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Deadline for the check")
	return cmd
}

func checkHealth(ctx context.Context, addr string, creds credentials.TransportCredentials) (healthpb.HealthCheckResponse_ServingStatus, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(creds))
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{
		Service: grpcpresentation.ServiceName,
	})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, fmt.Errorf("health check %s: %w", addr, err)
	}
	return resp.GetStatus(), nil
}

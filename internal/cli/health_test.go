package cli

import (
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	grpcpresentation "github.com/acadrisk/acadrisk/internal/presentation/grpc"
	"github.com/acadrisk/acadrisk/pkg/tlsutil"
)

// startHealthServer serves the gRPC health service on a loopback port and
// returns its address.
func startHealthServer(t *testing.T, status healthpb.HealthCheckResponse_ServingStatus, opts ...grpc.ServerOption) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := grpc.NewServer(opts...)
	hs := health.NewServer()
	hs.SetServingStatus(grpcpresentation.ServiceName, status)
	healthpb.RegisterHealthServer(srv, hs)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)
	return lis.Addr().String()
}

func TestHealthCommand(t *testing.T) {
	certDir := t.TempDir()
	files, err := tlsutil.WriteDevCerts(certDir, []string{"127.0.0.1"})
	require.NoError(t, err)
	serverCreds, err := tlsutil.ServerCredentials(files)
	require.NoError(t, err)
	caFile := filepath.Join(certDir, tlsutil.CAFile)

	plain := startHealthServer(t, healthpb.HealthCheckResponse_SERVING)
	draining := startHealthServer(t, healthpb.HealthCheckResponse_NOT_SERVING)
	secured := startHealthServer(t, healthpb.HealthCheckResponse_SERVING, grpc.Creds(serverCreds))

	tests := []struct {
		name    string
		args    []string
		wantOut string
		wantErr string
	}{
		{
			name:    "plaintext",
			args:    []string{"--addr", plain},
			wantOut: "SERVING\n",
		},
		{
			name:    "tls with the dev CA",
			args:    []string{"--addr", secured, "--ca", caFile},
			wantOut: "SERVING\n",
		},
		{
			name:    "tls skipping verification",
			args:    []string{"--addr", secured, "--insecure"},
			wantOut: "SERVING\n",
		},
		{
			name:    "not serving",
			args:    []string{"--addr", draining},
			wantOut: "NOT_SERVING\n",
			wantErr: "is NOT_SERVING",
		},
		{
			name:    "untrusted certificate",
			args:    []string{"--addr", secured, "--tls", "--timeout", "2s"},
			wantErr: "health check",
		},
		{
			name:    "unreadable CA",
			args:    []string{"--addr", secured, "--ca", filepath.Join(certDir, "absent.pem")},
			wantErr: "read CA",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, append([]string{"health"}, tt.args...)...)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantOut, out)
		})
	}
}

func TestDevCertsCommand(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "certs")
	out, err := runCLI(t, "dev-certs", "--out", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "TLS_CERT_FILE="+filepath.Join(dir, tlsutil.ServerCertFile))
	assert.Contains(t, out, "TLS_KEY_FILE="+filepath.Join(dir, tlsutil.ServerKeyFile))
	for _, name := range []string{tlsutil.CAFile, tlsutil.ServerCertFile, tlsutil.ServerKeyFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

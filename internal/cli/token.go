package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/acadrisk/acadrisk/pkg/auth"
	"github.com/acadrisk/acadrisk/pkg/tlsutil"
)

func newTokenCmd() *cobra.Command {
	var (
		subject, secret, keyFile, issuer string
		roles                            []string
		ttl                              time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a JWT for calling the prediction service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := auth.JWTConfig{Secret: secret, Issuer: issuer, Expiration: ttl}
			if keyFile != "" {
				pem, err := auth.LoadKeyFromFile(keyFile)
				if err != nil {
					return err
				}
				cfg.PrivateKeyPEM = string(pem)
			}
			if !cfg.Enabled() {
				return errors.New("a signing key is required: set --secret, JWT_SECRET or --private-key")
			}

			svc, err := auth.NewJWTService(cfg)
			if err != nil {
				return err
			}
			token, err := svc.GenerateToken(subject, roles)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "riskctl", "Token subject")
	cmd.Flags().StringSliceVar(&roles, "role", []string{auth.RoleFaculty}, "Roles to grant (repeatable)")
	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "HMAC secret (defaults to JWT_SECRET)")
	cmd.Flags().StringVar(&keyFile, "private-key", "", "RSA private key PEM file for RS256 tokens")
	cmd.Flags().StringVar(&issuer, "issuer", envOr("JWT_ISSUER", "acadrisk"), "Token issuer")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	return cmd
}

func newDevCertsCmd() *cobra.Command {
	var (
		outDir string
		hosts  []string
	)

	cmd := &cobra.Command{
		Use:   "dev-certs",
		Short: "Generate a development CA and predictiond certificate for gRPC TLS",
		RunE: func(cmd *cobra.Command, _ []string) error {
			files, err := tlsutil.WriteDevCerts(outDir, hosts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "TLS_CERT_FILE=%s\n", files.CertFile)
			fmt.Fprintf(out, "TLS_KEY_FILE=%s\n", files.KeyFile)
			fmt.Fprintf(out, "# riskctl health --ca %s\n", filepath.Join(outDir, tlsutil.CAFile))
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "./certs", "Output directory")
	cmd.Flags().StringSliceVar(&hosts, "host", tlsutil.DefaultHosts, "Names and IPs predictiond is reached by")
	return cmd
}

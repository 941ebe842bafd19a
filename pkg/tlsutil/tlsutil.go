// Package tlsutil loads TLS material for the predictiond listeners and the
// riskctl client, and issues throwaway certificates for local development.
package tlsutil

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"

	"google.golang.org/grpc/credentials"
)

// File names written by WriteDevCerts.
const (
	CAFile         = "acadrisk-ca.pem"
	ServerCertFile = "predictiond.pem"
	ServerKeyFile  = "predictiond-key.pem"
)

// DevCertLifetime bounds how long a development server certificate is valid.
const DevCertLifetime = 90 * 24 * time.Hour

// DefaultHosts are the names predictiond is reached by locally and inside a
// container network.
var DefaultHosts = []string{"localhost", "127.0.0.1", "::1", "predictiond"}

// Files names a certificate and key pair on disk.
type Files struct {
	CertFile string
	KeyFile  string
}

// Enabled reports whether both files are set.
func (f Files) Enabled() bool {
	return f.CertFile != "" && f.KeyFile != ""
}

// ServerConfig loads a server tls.Config from cert and key files.
func ServerConfig(files Files) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(files.CertFile, files.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("tlsutil: load server key pair: %w", err)
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

// ServerCredentials loads gRPC transport credentials from cert and key files.
func ServerCredentials(files Files) (credentials.TransportCredentials, error) {
	cfg, err := ServerConfig(files)
	if err != nil {
		return nil, err
	}
	return credentials.NewTLS(cfg), nil
}

// ClientCredentials builds gRPC credentials for dialing predictiond. caFile
// adds a trusted root such as the one from WriteDevCerts; empty means the
// system pool.
func ClientCredentials(caFile string, insecureSkipVerify bool) (credentials.TransportCredentials, error) {
	cfg := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: insecureSkipVerify, //nolint:gosec // opt-in from riskctl --insecure
	}
	if caFile == "" {
		return credentials.NewTLS(cfg), nil
	}

	data, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("tlsutil: read CA %s: %w", caFile, err)
	}
	roots := x509.NewCertPool()
	if !roots.AppendCertsFromPEM(data) {
		return nil, fmt.Errorf("tlsutil: no certificates in %s", caFile)
	}
	cfg.RootCAs = roots
	return credentials.NewTLS(cfg), nil
}

// DevCerts is a PEM-encoded development CA and the predictiond serving pair
// it signed. The CA key is discarded after signing.
type DevCerts struct {
	CA         []byte
	ServerCert []byte
	ServerKey  []byte
}

// IssueDevCerts creates a CA and a predictiond certificate valid for hosts.
// IP literals become IP SANs; everything else becomes a DNS SAN.
func IssueDevCerts(hosts []string, now time.Time) (*DevCerts, error) {
	if len(hosts) == 0 {
		return nil, errors.New("tlsutil: at least one host is required")
	}

	caKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("tlsutil: generate CA key: %w", err)
	}
	caTmpl := &x509.Certificate{
		Subject:               pkix.Name{Organization: []string{"acadrisk"}, CommonName: "acadrisk development CA"},
		NotBefore:             now.Add(-time.Minute),
		NotAfter:              now.Add(DevCertLifetime),
		KeyUsage:              x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
		MaxPathLenZero:        true,
	}
	caDER, err := sign(caTmpl, caTmpl, caKey.Public(), caKey)
	if err != nil {
		return nil, fmt.Errorf("tlsutil: sign CA: %w", err)
	}
	caCert, err := x509.ParseCertificate(caDER)
	if err != nil {
		return nil, fmt.Errorf("tlsutil: parse CA: %w", err)
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("tlsutil: generate predictiond key: %w", err)
	}
	leaf := &x509.Certificate{
		Subject:     pkix.Name{Organization: []string{"acadrisk"}, CommonName: "predictiond"},
		NotBefore:   now.Add(-time.Minute),
		NotAfter:    now.Add(DevCertLifetime),
		KeyUsage:    x509.KeyUsageDigitalSignature,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	for _, h := range hosts {
		if ip := net.ParseIP(h); ip != nil {
			leaf.IPAddresses = append(leaf.IPAddresses, ip)
			continue
		}
		leaf.DNSNames = append(leaf.DNSNames, h)
	}
	leafDER, err := sign(leaf, caCert, key.Public(), caKey)
	if err != nil {
		return nil, fmt.Errorf("tlsutil: sign predictiond certificate: %w", err)
	}
	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("tlsutil: marshal predictiond key: %w", err)
	}

	return &DevCerts{
		CA:         pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: caDER}),
		ServerCert: pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: leafDER}),
		ServerKey:  pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER}),
	}, nil
}

// WriteDevCerts issues development certificates for hosts into dir and
// returns the serving pair to set as TLS_CERT_FILE and TLS_KEY_FILE.
func WriteDevCerts(dir string, hosts []string) (Files, error) {
	certs, err := IssueDevCerts(hosts, time.Now())
	if err != nil {
		return Files{}, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Files{}, fmt.Errorf("tlsutil: create %s: %w", dir, err)
	}

	files := Files{
		CertFile: filepath.Join(dir, ServerCertFile),
		KeyFile:  filepath.Join(dir, ServerKeyFile),
	}
	writes := []struct {
		path string
		data []byte
		mode os.FileMode
	}{
		{filepath.Join(dir, CAFile), certs.CA, 0o644},
		{files.CertFile, certs.ServerCert, 0o644},
		{files.KeyFile, certs.ServerKey, 0o600},
	}
	for _, w := range writes {
		if err := os.WriteFile(w.path, w.data, w.mode); err != nil {
			return Files{}, fmt.Errorf("tlsutil: write %s: %w", w.path, err)
		}
	}
	return files, nil
}

func sign(tmpl, parent *x509.Certificate, pub crypto.PublicKey, signer crypto.Signer) ([]byte, error) {
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, err
	}
	tmpl.SerialNumber = serial
	return x509.CreateCertificate(rand.Reader, tmpl, parent, pub, signer)
}

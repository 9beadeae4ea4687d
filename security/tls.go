package security

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// TLSConfig is the client-side TLS setup for a backend endpoint: a private
// CA, a client certificate for mTLS, or both.
type TLSConfig struct {
	// CAFile is a PEM bundle that replaces the system roots.
	CAFile string `mapstructure:"ca_file" yaml:"ca_file"`

	// CertFile and KeyFile present a client certificate. Both or neither.
	CertFile string `mapstructure:"cert_file" yaml:"cert_file"`
	KeyFile  string `mapstructure:"key_file" yaml:"key_file"`

	// ServerName overrides the name checked against the server certificate.
	ServerName string `mapstructure:"server_name" yaml:"server_name"`

	// MinVersion is "1.2" or "1.3". Empty means 1.2.
	MinVersion string `mapstructure:"min_version" yaml:"min_version"`

	// SkipVerify accepts any server certificate. Local development only.
	SkipVerify bool `mapstructure:"skip_verify" yaml:"skip_verify"`
}

var tlsVersions = map[string]uint16{
	"":    tls.VersionTLS12,
	"1.2": tls.VersionTLS12,
	"1.3": tls.VersionTLS13,
}

// Enabled reports whether any setting differs from the default transport.
func (c *TLSConfig) Enabled() bool {
	if c == nil {
		return false
	}
	return c.CAFile != "" || c.CertFile != "" || c.ServerName != "" || c.MinVersion != "" || c.SkipVerify
}

// Validate checks the settings without touching the filesystem.
func (c *TLSConfig) Validate() error {
	if c == nil {
		return nil
	}
	if (c.CertFile == "") != (c.KeyFile == "") {
		return fmt.Errorf("security: cert_file and key_file must be set together")
	}
	if _, ok := tlsVersions[c.MinVersion]; !ok {
		return fmt.Errorf("security: unsupported min_version %q", c.MinVersion)
	}
	return nil
}

// Build loads the referenced files into a *tls.Config. A nil or empty
// config yields nil so callers keep the default transport.
func (c *TLSConfig) Build() (*tls.Config, error) {
	if !c.Enabled() {
		return nil, nil
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	out := &tls.Config{
		MinVersion:         tlsVersions[c.MinVersion],
		ServerName:         c.ServerName,
		InsecureSkipVerify: c.SkipVerify, //nolint:gosec // opt-in for local backends
	}
	if c.CAFile != "" {
		pem, err := os.ReadFile(c.CAFile)
		if err != nil {
			return nil, fmt.Errorf("security: read ca_file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("security: no certificates in %s", c.CAFile)
		}
		out.RootCAs = pool
	}
	if c.CertFile != "" {
		cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("security: load client certificate: %w", err)
		}
		out.Certificates = []tls.Certificate{cert}
	}
	return out, nil
}

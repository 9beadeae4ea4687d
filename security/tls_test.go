package security

import (
	"crypto/tls"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func writeCA(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ca.pem")
	data := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: srv.Certificate().Raw})
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuild_NilAndEmpty(t *testing.T) {
	var nilCfg *TLSConfig
	if got, err := nilCfg.Build(); got != nil || err != nil {
		t.Errorf("nil config: %v, %v", got, err)
	}
	if got, err := (&TLSConfig{}).Build(); got != nil || err != nil {
		t.Errorf("empty config: %v, %v", got, err)
	}
}

func TestBuild_TrustsPrivateCA(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	tlsCfg, err := (&TLSConfig{CAFile: writeCA(t, srv), MinVersion: "1.2"}).Build()
	if err != nil {
		t.Fatal(err)
	}
	if tlsCfg.MinVersion != tls.VersionTLS12 {
		t.Errorf("MinVersion = %x", tlsCfg.MinVersion)
	}

	client := &http.Client{Transport: &http.Transport{TLSClientConfig: tlsCfg}}
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("request with private CA failed: %v", err)
	}
	_ = resp.Body.Close()

	// Without the CA the same server is rejected.
	if _, err := http.Get(srv.URL); err == nil {
		t.Error("expected verification failure with system roots")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     TLSConfig
		wantErr bool
	}{
		{"empty", TLSConfig{}, false},
		{"cert without key", TLSConfig{CertFile: "c.pem"}, true},
		{"key without cert", TLSConfig{KeyFile: "k.pem"}, true},
		{"tls13", TLSConfig{MinVersion: "1.3"}, false},
		{"bad version", TLSConfig{MinVersion: "1.0"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestBuild_MissingFiles(t *testing.T) {
	if _, err := (&TLSConfig{CAFile: "/nonexistent/ca.pem"}).Build(); err == nil {
		t.Error("expected error for missing CA file")
	}
	empty := filepath.Join(t.TempDir(), "empty.pem")
	_ = os.WriteFile(empty, []byte("not pem"), 0o600)
	if _, err := (&TLSConfig{CAFile: empty}).Build(); err == nil {
		t.Error("expected error for CA file without certificates")
	}
}

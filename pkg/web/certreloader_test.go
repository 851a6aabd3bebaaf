package web

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func writeTestCert(t *testing.T, certPath, keyPath, cn string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	tmpl := x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject:      pkix.Name{CommonName: cn},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(time.Hour),
	}

	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatal(err)
	}

	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(certPath, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(keyPath, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestCertReloader(t *testing.T) {
	dir := t.TempDir()
	certPath := filepath.Join(dir, "cert.pem")
	keyPath := filepath.Join(dir, "key.pem")
	writeTestCert(t, certPath, keyPath, "cert-v1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cr, err := NewCertReloader(ctx, certPath, keyPath, log.New(io.Discard))
	if err != nil {
		t.Fatalf("failed to create reloader: %v", err)
	}

	getCert := cr.GetCertificateFunc()
	cert1, err := getCert(nil)
	if err != nil {
		t.Fatal(err)
	}

	writeTestCert(t, certPath, keyPath, "cert-v2")
	if err := cr.Reload(); err != nil {
		t.Fatal(err)
	}

	cert2, err := getCert(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cert1 == cert2 {
		t.Fatal("certificate was not reloaded")
	}

	// A broken key pair keeps the last good certificate.
	if err := os.WriteFile(keyPath, []byte("garbage"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := cr.Reload(); err == nil {
		t.Fatal("expected reload error")
	}

	cert3, err := getCert(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cert3 != cert2 {
		t.Fatal("certificate changed after failed reload")
	}
}

func TestCertReloaderMissingFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := NewCertReloader(context.Background(), filepath.Join(dir, "cert.pem"), filepath.Join(dir, "key.pem"), log.New(io.Discard))
	if err == nil {
		t.Fatal("expected error for missing key pair")
	}
}

package web

import (
	"context"
	"crypto/tls"
	"sync"

	"github.com/charmbracelet/log"
)

// CertReloader serves a TLS certificate that can be swapped at runtime.
type CertReloader struct {
	certMu   sync.RWMutex
	cert     *tls.Certificate
	certPath string
	keyPath  string
	logger   *log.Logger
}

// NewCertReloader loads the key pair and, on unix, reloads it on SIGHUP
// until ctx is done.
func NewCertReloader(ctx context.Context, certPath, keyPath string, logger *log.Logger) (*CertReloader, error) {
	cr := &CertReloader{
		certPath: certPath,
		keyPath:  keyPath,
		logger:   logger,
	}

	if err := cr.Reload(); err != nil {
		return nil, err
	}

	cr.watch(ctx)

	return cr, nil
}

// Reload loads the key pair from disk. The current certificate is kept
// when loading fails.
func (cr *CertReloader) Reload() error {
	cert, err := tls.LoadX509KeyPair(cr.certPath, cr.keyPath)
	if err != nil {
		return err
	}

	cr.certMu.Lock()
	defer cr.certMu.Unlock()
	cr.cert = &cert
	return nil
}

// GetCertificateFunc returns a function that can be used with tls.Config.GetCertificate.
func (cr *CertReloader) GetCertificateFunc() func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	return func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
		cr.certMu.RLock()
		defer cr.certMu.RUnlock()
		return cr.cert, nil
	}
}

package util

import (
	"crypto/x509"
	"fmt"
	"os"
	"strings"
)

// TrustOutcome is the result of a trust store mutation.
type TrustOutcome int

const (
	// TrustUnsupported means this OS has no trust store step.
	TrustUnsupported TrustOutcome = iota
	TrustInstalled
	TrustRemoved
	// TrustFailed means the store exists but refused the change.
	TrustFailed
)

func (o TrustOutcome) String() string {
	switch o {
	case TrustInstalled:
		return "installed"
	case TrustRemoved:
		return "removed"
	case TrustFailed:
		return "failed"
	default:
		return "unsupported"
	}
}

// TrustStore installs and removes a certificate authority in the OS trust store.
// Certificates are passed DER encoded.
type TrustStore interface {
	Install(der []byte) (TrustOutcome, error)
	Remove(der []byte) (TrustOutcome, error)
}

// UnsupportedStore is used where the client does not read the OS trust store.
type UnsupportedStore struct{}

func (UnsupportedStore) Install([]byte) (TrustOutcome, error) { return TrustUnsupported, nil }
func (UnsupportedStore) Remove([]byte) (TrustOutcome, error)  { return TrustUnsupported, nil }

// CertutilStore manages a Windows machine store via certutil.
type CertutilStore struct {
	// Store defaults to "Root".
	Store string
}

func (s CertutilStore) store() string {
	if s.Store == "" {
		return "Root"
	}
	return s.Store
}

// Install adds the certificate, replacing an existing copy.
func (s CertutilStore) Install(der []byte) (TrustOutcome, error) {
	f, err := os.CreateTemp("", "serverselector-*.cer")
	if err != nil {
		return TrustFailed, err
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(der); err != nil {
		f.Close()
		return TrustFailed, err
	}
	if err := f.Close(); err != nil {
		return TrustFailed, err
	}

	if out, err := RunCommandFn("certutil", "-addstore", "-f", s.store(), f.Name()); err != nil {
		return TrustFailed, fmt.Errorf("certutil -addstore: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return TrustInstalled, nil
}

// Remove deletes the certificate by serial number.
func (s CertutilStore) Remove(der []byte) (TrustOutcome, error) {
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return TrustFailed, fmt.Errorf("parsing certificate: %w", err)
	}
	serial := fmt.Sprintf("%x", cert.SerialNumber)
	if out, err := RunCommandFn("certutil", "-delstore", s.store(), serial); err != nil {
		return TrustFailed, fmt.Errorf("certutil -delstore: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return TrustRemoved, nil
}

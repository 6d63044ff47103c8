package util

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"io/fs"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"time"

	"software.sslmate.com/src/go-pkcs12"
)

// Asset file names, shipped next to the executable.
const (
	CAPEMFilename    = "myCA.pem"
	CAPFXFilename    = "myCA.pfx"
	ServerCertName   = "server.crt"
	ServerKeyName    = "server.key"
	PatchedLibraryFn = "sodium.dll"
)

// GenerateCerts generates a CA and a server certificate for the private
// server covering hosts. It writes myCA.pem, myCA.pfx (CA and key, protected
// by pfxPassword), server.crt and server.key to dir.
func GenerateCerts(dir string, hosts []string, pfxPassword string) error {
	if len(hosts) == 0 {
		return fmt.Errorf("no hostnames for the server certificate")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	caPriv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return err
	}

	caTpl := x509.Certificate{
		SerialNumber: randomSerial(),
		Subject: pkix.Name{
			CommonName:   "Good SSL Ca",
			Organization: []string{"ServerSelector"},
		},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(10 * 365 * 24 * time.Hour), // 10 years
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
	}

	caBytes, err := x509.CreateCertificate(rand.Reader, &caTpl, &caTpl, &caPriv.PublicKey, caPriv)
	if err != nil {
		return err
	}
	caCert, err := x509.ParseCertificate(caBytes)
	if err != nil {
		return err
	}

	servPriv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return err
	}

	servTpl := x509.Certificate{
		SerialNumber: randomSerial(),
		Subject: pkix.Name{
			CommonName:   hosts[0],
			Organization: []string{"ServerSelector"},
		},
		NotBefore:   time.Now().Add(-time.Hour),
		NotAfter:    time.Now().Add(2 * 365 * 24 * time.Hour),
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		KeyUsage:    x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		DNSNames:    hosts,
	}

	servBytes, err := x509.CreateCertificate(rand.Reader, &servTpl, caCert, &servPriv.PublicKey, caPriv)
	if err != nil {
		return err
	}

	pfx, err := pkcs12.Modern.Encode(caPriv, caCert, nil, pfxPassword)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", CAPFXFilename, err)
	}

	if err := writePem(filepath.Join(dir, CAPEMFilename), "CERTIFICATE", caBytes); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, CAPFXFilename), pfx, 0600); err != nil {
		return err
	}
	if err := writePem(filepath.Join(dir, ServerCertName), "CERTIFICATE", servBytes); err != nil {
		return err
	}
	return writePem(filepath.Join(dir, ServerKeyName), "RSA PRIVATE KEY", x509.MarshalPKCS1PrivateKey(servPriv))
}

func randomSerial() *big.Int {
	n, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 62))
	if err != nil {
		return big.NewInt(time.Now().UnixNano())
	}
	return n
}

func writePem(path, type_ string, bytes []byte) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return pem.Encode(out, &pem.Block{Type: type_, Bytes: bytes})
}

// LoadCertificate returns the DER certificate stored at path: a PKCS#12
// archive (.pfx/.p12, with or without key), a PEM file, or raw DER.
func LoadCertificate(path, password string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pfx", ".p12":
		if _, cert, _, err := pkcs12.DecodeChain(data, password); err == nil {
			return cert.Raw, nil
		}
		certs, err := pkcs12.DecodeTrustStore(data, password)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		if len(certs) == 0 {
			return nil, fmt.Errorf("%s holds no certificate", path)
		}
		return certs[0].Raw, nil
	}

	for rest := data; ; {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type == "CERTIFICATE" {
			return block.Bytes, nil
		}
	}
	if _, err := x509.ParseCertificate(data); err != nil {
		return nil, fmt.Errorf("%s is not a certificate: %w", path, err)
	}
	return data, nil
}

// Assets holds the files installed by a private-server switch.
type Assets struct {
	CAPEM          []byte
	TrustCert      []byte
	PatchedLibrary []byte
}

// LoadAssets reads the assets from dir. Missing files are left empty; the
// trust certificate comes from myCA.pfx, or myCA.pem when there is no pfx.
func LoadAssets(dir, password string) (*Assets, error) {
	a := &Assets{}
	var err error
	if a.CAPEM, err = readOptional(filepath.Join(dir, CAPEMFilename)); err != nil {
		return nil, err
	}
	if a.PatchedLibrary, err = readOptional(filepath.Join(dir, PatchedLibraryFn)); err != nil {
		return nil, err
	}

	pfx := filepath.Join(dir, CAPFXFilename)
	if _, statErr := os.Stat(pfx); statErr == nil {
		if a.TrustCert, err = LoadCertificate(pfx, password); err != nil {
			return nil, err
		}
	} else if len(a.CAPEM) > 0 {
		if a.TrustCert, err = LoadCertificate(filepath.Join(dir, CAPEMFilename), ""); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func readOptional(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

package util

import (
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCerts(t *testing.T) {
	dir := t.TempDir()
	hosts := []string{"global-lobby.nikke-kr.com", "cloud.nikke-kr.com"}
	require.NoError(t, GenerateCerts(dir, hosts, "changeit"))

	for _, name := range []string{CAPEMFilename, CAPFXFilename, ServerCertName, ServerKeyName} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	caDER, err := LoadCertificate(filepath.Join(dir, CAPEMFilename), "")
	require.NoError(t, err)
	ca, err := x509.ParseCertificate(caDER)
	require.NoError(t, err)
	assert.True(t, ca.IsCA)
	assert.Equal(t, "Good SSL Ca", ca.Subject.CommonName)

	servPEM, err := os.ReadFile(filepath.Join(dir, ServerCertName))
	require.NoError(t, err)
	block, _ := pem.Decode(servPEM)
	require.NotNil(t, block)
	serv, err := x509.ParseCertificate(block.Bytes)
	require.NoError(t, err)
	assert.Equal(t, hosts, serv.DNSNames)

	pool := x509.NewCertPool()
	pool.AddCert(ca)
	_, err = serv.Verify(x509.VerifyOptions{DNSName: "cloud.nikke-kr.com", Roots: pool})
	assert.NoError(t, err)
}

func TestGenerateCerts_NoHosts(t *testing.T) {
	assert.Error(t, GenerateCerts(t.TempDir(), nil, ""))
}

func TestLoadCertificate_PFXMatchesPEM(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, GenerateCerts(dir, []string{"global-lobby.nikke-kr.com"}, "changeit"))

	fromPEM, err := LoadCertificate(filepath.Join(dir, CAPEMFilename), "")
	require.NoError(t, err)
	fromPFX, err := LoadCertificate(filepath.Join(dir, CAPFXFilename), "changeit")
	require.NoError(t, err)
	assert.Equal(t, fromPEM, fromPFX)

	_, err = LoadCertificate(filepath.Join(dir, CAPFXFilename), "wrong")
	assert.Error(t, err)
}

func TestLoadCertificate_DERAndGarbage(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, GenerateCerts(dir, []string{"global-lobby.nikke-kr.com"}, "changeit"))
	der, err := LoadCertificate(filepath.Join(dir, CAPEMFilename), "")
	require.NoError(t, err)

	derPath := filepath.Join(dir, "ca.cer")
	require.NoError(t, os.WriteFile(derPath, der, 0o644))
	got, err := LoadCertificate(derPath, "")
	require.NoError(t, err)
	assert.Equal(t, der, got)

	junk := filepath.Join(dir, "junk.pem")
	require.NoError(t, os.WriteFile(junk, []byte("not a cert"), 0o644))
	_, err = LoadCertificate(junk, "")
	assert.Error(t, err)
}

func TestLoadAssets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, GenerateCerts(dir, []string{"global-lobby.nikke-kr.com"}, "changeit"))
	require.NoError(t, os.Remove(filepath.Join(dir, CAPFXFilename)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, PatchedLibraryFn), []byte("patched"), 0o644))

	a, err := LoadAssets(dir, "")
	require.NoError(t, err)
	assert.Contains(t, string(a.CAPEM), "BEGIN CERTIFICATE")
	assert.Equal(t, []byte("patched"), a.PatchedLibrary)
	// no pfx: trust cert comes from the PEM
	assert.NotEmpty(t, a.TrustCert)
}

func TestLoadAssets_Empty(t *testing.T) {
	a, err := LoadAssets(t.TempDir(), "")
	require.NoError(t, err)
	assert.Empty(t, a.CAPEM)
	assert.Empty(t, a.TrustCert)
	assert.Empty(t, a.PatchedLibrary)
}

//go:build windows

package util

// NewSystemTrustStore returns the local machine Root store.
func NewSystemTrustStore() TrustStore {
	return CertutilStore{Store: "Root"}
}

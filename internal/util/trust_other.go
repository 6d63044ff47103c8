//go:build !windows

package util

// NewSystemTrustStore returns a store that reports the step as unsupported.
// Under wine the client only reads the bundled PEM files.
func NewSystemTrustStore() TrustStore {
	return UnsupportedStore{}
}

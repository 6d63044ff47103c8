package selector

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/octopilot/server-selector/internal/util"
	"github.com/rs/zerolog"
)

// AnchorMarker tags the CA appended to a client certificate bundle.
const AnchorMarker = "Good SSL Ca"

const anchorHeader = "\n" + AnchorMarker + "\n===============================\n"

// AnchorManager adds the private CA to PEM bundles and to the OS trust store.
type AnchorManager struct {
	store util.TrustStore
	log   zerolog.Logger
}

// NewAnchorManager returns a manager using store for the OS step.
func NewAnchorManager(store util.TrustStore, log zerolog.Logger) *AnchorManager {
	if store == nil {
		store = util.UnsupportedStore{}
	}
	return &AnchorManager{store: store, log: log}
}

// readBundle returns the bundle text, or ok=false when it is not installed.
func readBundle(path string) (string, bool, error) {
	if path == "" {
		return "", false, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

// HasAnchor reports whether the bundle at path carries the marker.
// A missing bundle has nothing to check and reports true.
func HasAnchor(path string) (bool, error) {
	text, ok, err := readBundle(path)
	if err != nil || !ok {
		return true, err
	}
	return strings.Contains(text, AnchorMarker), nil
}

// Install appends the marker and caPEM to every existing bundle lacking it.
func (m *AnchorManager) Install(paths []string, caPEM []byte) error {
	for _, p := range paths {
		text, ok, err := readBundle(p)
		if err != nil {
			return fmt.Errorf("reading certificate bundle %s: %w", p, err)
		}
		if !ok || strings.Contains(text, AnchorMarker) {
			continue
		}
		if err := writeKeepMode(p, []byte(text+anchorHeader+string(caPEM))); err != nil {
			return fmt.Errorf("writing certificate bundle %s: %w", p, err)
		}
		m.log.Debug().Str("bundle", p).Msg("appended trust anchor")
	}
	return nil
}

// Revert truncates every existing bundle at the first marker.
func (m *AnchorManager) Revert(paths []string) error {
	for _, p := range paths {
		text, ok, err := readBundle(p)
		if err != nil {
			return fmt.Errorf("reading certificate bundle %s: %w", p, err)
		}
		if !ok {
			continue
		}
		idx := strings.Index(text, AnchorMarker)
		if idx == -1 {
			continue
		}
		if idx > 0 && text[idx-1] == '\n' {
			idx--
		}
		if err := writeKeepMode(p, []byte(text[:idx])); err != nil {
			return fmt.Errorf("writing certificate bundle %s: %w", p, err)
		}
		m.log.Debug().Str("bundle", p).Msg("removed trust anchor")
	}
	return nil
}

// InstallTrustStoreEntry is best effort; failures are logged, never returned.
func (m *AnchorManager) InstallTrustStoreEntry(der []byte) util.TrustOutcome {
	out, err := m.store.Install(der)
	if err != nil {
		m.log.Warn().Err(err).Msg("could not add CA to the system trust store")
	}
	return out
}

// RemoveTrustStoreEntry is best effort; the entry may not be installed at all.
func (m *AnchorManager) RemoveTrustStoreEntry(der []byte) util.TrustOutcome {
	out, err := m.store.Remove(der)
	if err != nil {
		m.log.Debug().Err(err).Msg("could not remove CA from the system trust store")
	}
	return out
}

func writeKeepMode(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if st, err := os.Stat(path); err == nil {
		mode = st.Mode().Perm()
	}
	return os.WriteFile(path, data, mode)
}

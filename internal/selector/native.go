package selector

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultPristineMaxSize is the largest size of an unpatched sodium.dll.
const DefaultPristineMaxSize = 307200

// LibraryState describes the installed native library.
type LibraryState string

const (
	LibraryMissing  LibraryState = "missing"
	LibraryPristine LibraryState = "pristine"
	LibraryPatched  LibraryState = "patched"
)

// LibraryGuard backs up the client's native library before it is replaced.
type LibraryGuard struct {
	// PristineMaxSize: a library this size or smaller is the original.
	PristineMaxSize int64
	// PristineSHA256, when set, replaces the size check with a digest match.
	PristineSHA256 []string

	log zerolog.Logger
}

// NewLibraryGuard returns a guard using the size threshold.
func NewLibraryGuard(log zerolog.Logger) *LibraryGuard {
	return &LibraryGuard{PristineMaxSize: DefaultPristineMaxSize, log: log}
}

func (g *LibraryGuard) isPristine(data []byte) bool {
	if len(g.PristineSHA256) > 0 {
		sum := sha256.Sum256(data)
		digest := hex.EncodeToString(sum[:])
		return slices.ContainsFunc(g.PristineSHA256, func(d string) bool {
			return strings.EqualFold(d, digest)
		})
	}
	return int64(len(data)) <= g.PristineMaxSize
}

// EnsureBackup copies the installed library to backup when it still looks original.
func (g *LibraryGuard) EnsureBackup(installed, backup string) (bool, error) {
	data, err := os.ReadFile(installed)
	if errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("%w at path %s", ErrNativeLibraryMissing, installed)
	}
	if err != nil {
		return false, err
	}
	if !g.isPristine(data) {
		g.log.Debug().Str("library", installed).Int("size", len(data)).Msg("library already patched, keeping backup")
		return false, nil
	}
	if err := os.WriteFile(backup, data, 0o644); err != nil {
		return false, fmt.Errorf("writing native library backup: %w", err)
	}
	g.log.Info().Str("backup", backup).Msg("backed up original native library")
	return true, nil
}

// Install overwrites the installed library. It never creates it.
func (g *LibraryGuard) Install(patched []byte, installed string) error {
	if _, err := os.Stat(installed); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: expected native library to exist at path %s", ErrNativeLibraryMissing, installed)
		}
		return err
	}
	if err := writeKeepMode(installed, patched); err != nil {
		return fmt.Errorf("writing native library: %w", err)
	}
	return nil
}

// Restore copies the backup over the installed library.
func (g *LibraryGuard) Restore(backup, installed string) error {
	data, err := os.ReadFile(backup)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: repair the game in the launcher, then switch to the private server and back to official", ErrBackupMissing)
	}
	if err != nil {
		return err
	}
	if err := writeKeepMode(installed, data); err != nil {
		return fmt.Errorf("restoring native library: %w", err)
	}
	return nil
}

// State classifies the installed library without touching it.
func (g *LibraryGuard) State(installed string) (LibraryState, error) {
	data, err := os.ReadFile(installed)
	if errors.Is(err, fs.ErrNotExist) {
		return LibraryMissing, nil
	}
	if err != nil {
		return "", err
	}
	if g.isPristine(data) {
		return LibraryPristine, nil
	}
	return LibraryPatched, nil
}

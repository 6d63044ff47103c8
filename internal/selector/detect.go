package selector

import (
	"errors"
	"io/fs"
	"os"
	"strings"
)

// Mode is the redirection currently in effect. It is derived from the hosts
// file on every call, never stored.
type Mode int

const (
	ModeOfficial Mode = iota
	ModePrivate
	ModePrivateOffline
)

func (m Mode) String() string {
	switch m {
	case ModePrivate:
		return "private"
	case ModePrivateOffline:
		return "private-offline"
	default:
		return "official"
	}
}

// DetectMode looks for the sentinel hostnames in the hosts file. Plain
// case-sensitive substring match: a commented-out sentinel still counts.
func DetectMode(hostsPath string, cfg HostsConfig) (Mode, error) {
	data, err := os.ReadFile(hostsPath)
	if err != nil {
		return ModeOfficial, err
	}
	text := string(data)
	if !strings.Contains(text, cfg.Primary) {
		return ModeOfficial, nil
	}
	if strings.Contains(text, cfg.Secondary) {
		return ModePrivateOffline, nil
	}
	return ModePrivate, nil
}

// Diagnosis is the one-line result of CheckIntegrity.
type Diagnosis string

const (
	DiagnosisOfficial             Diagnosis = "Official server"
	DiagnosisLauncherPatchMissing Diagnosis = "SSL Cert Patch missing Launcher"
	DiagnosisGamePatchMissing     Diagnosis = "SSL Cert Patch missing Game"
	DiagnosisOK                   Diagnosis = "OK"
)

// DetectMode reports the mode of the primary hosts file.
func (s *Switcher) DetectMode() (Mode, error) {
	return DetectMode(s.paths.HostsFile, s.hostsCfg)
}

// CheckIntegrity verifies that both certificate bundles carry the trust anchor
// while a private server is in use. Read only.
func (s *Switcher) CheckIntegrity() (Diagnosis, error) {
	mode, err := s.DetectMode()
	if err != nil {
		return "", err
	}
	if mode == ModeOfficial {
		return DiagnosisOfficial, nil
	}

	ok, err := HasAnchor(s.paths.LauncherBundle)
	if err != nil {
		return "", err
	}
	if !ok {
		return DiagnosisLauncherPatchMissing, nil
	}

	ok, err = HasAnchor(s.paths.GameBundle)
	if err != nil {
		return "", err
	}
	if !ok {
		return DiagnosisGamePatchMissing, nil
	}
	return DiagnosisOK, nil
}

// HostsFileStatus describes one hosts-like file.
type HostsFileStatus struct {
	Path     string
	Present  bool
	HasBlock bool
}

// BundleStatus describes one certificate bundle.
type BundleStatus struct {
	Name    string
	Path    string
	Present bool
	Patched bool
}

// Report is the detailed result of Verify.
type Report struct {
	Mode          Mode
	HostsFiles    []HostsFileStatus
	Bundles       []BundleStatus
	Library       LibraryState
	BackupPresent bool
}

// Verify inspects every artifact the switch touches. It never writes.
func (s *Switcher) Verify() (*Report, error) {
	mode, err := s.DetectMode()
	if err != nil {
		return nil, err
	}
	r := &Report{Mode: mode}

	for _, p := range s.paths.hostsFiles() {
		st := HostsFileStatus{Path: p}
		data, err := os.ReadFile(p)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			st.Present = true
			text := string(data)
			st.HasBlock = containsFold(text, s.hostsCfg.StartMarker) && containsFold(text, s.hostsCfg.EndMarker)
		}
		r.HostsFiles = append(r.HostsFiles, st)
	}

	for _, b := range []struct{ name, path string }{
		{"launcher", s.paths.LauncherBundle},
		{"game", s.paths.GameBundle},
	} {
		text, ok, err := readBundle(b.path)
		if err != nil {
			return nil, err
		}
		r.Bundles = append(r.Bundles, BundleStatus{
			Name:    b.name,
			Path:    b.path,
			Present: ok,
			Patched: ok && strings.Contains(text, AnchorMarker),
		})
	}

	guard := s.newGuard(s.log)
	if r.Library, err = guard.State(s.paths.NativeLibrary); err != nil {
		return nil, err
	}
	if _, err := os.Stat(s.paths.NativeLibraryBackup); err == nil {
		r.BackupPresent = true
	}
	return r, nil
}

// Problems lists what is out of place for the detected mode.
func (r *Report) Problems() []string {
	var out []string
	private := r.Mode != ModeOfficial
	for _, h := range r.HostsFiles {
		switch {
		case !h.Present:
			out = append(out, "hosts file missing: "+h.Path)
		case private && !h.HasBlock:
			out = append(out, "hosts block missing: "+h.Path)
		case !private && h.HasBlock:
			out = append(out, "stale hosts block: "+h.Path)
		}
	}
	for _, b := range r.Bundles {
		if b.Present && b.Patched != private {
			if private {
				out = append(out, "SSL Cert Patch missing "+b.Name)
			} else {
				out = append(out, "SSL Cert Patch still present in "+b.Name)
			}
		}
	}
	switch {
	case r.Library == LibraryMissing:
		out = append(out, "native library missing")
	case private && r.Library != LibraryPatched:
		out = append(out, "native library not patched")
	case !private && r.Library == LibraryPatched:
		out = append(out, "native library still patched")
	}
	if private && !r.BackupPresent {
		out = append(out, "native library backup missing")
	}
	return out
}

package selector

import (
	"errors"
	"fmt"
	"net/netip"

	"github.com/google/uuid"
	"github.com/octopilot/server-selector/internal/util"
	"github.com/rs/zerolog"
)

// Paths are the files a switch reads and rewrites.
type Paths struct {
	HostsFile string
	// WineHostsFile is the hosts file inside the wine prefix. Empty when the
	// client runs natively.
	WineHostsFile string

	LauncherBundle string
	GameBundle     string

	NativeLibrary       string
	NativeLibraryBackup string
}

func (p Paths) hostsFiles() []string {
	files := []string{p.HostsFile}
	if p.WineHostsFile != "" {
		files = append(files, p.WineHostsFile)
	}
	return files
}

func (p Paths) bundles() []string {
	return []string{p.LauncherBundle, p.GameBundle}
}

// Assets are shipped next to the selector and installed on activation.
type Assets struct {
	// CAPEM is appended to the client certificate bundles.
	CAPEM []byte
	// TrustCert is the DER form of the CA for the OS trust store. Optional.
	TrustCert []byte
	// PatchedLibrary replaces the client's native library.
	PatchedLibrary []byte
}

// Result is the outcome of one switch.
type Result struct {
	OK  bool
	Err error
	// PlatformSupported reports whether the trust store step exists on this OS.
	// It says nothing about the hosts or library steps.
	PlatformSupported bool
	TrustStore        util.TrustOutcome
	BackupTaken       bool
	RunID             string
}

func (r *Result) fail(err error) (*Result, error) {
	r.OK = false
	r.Err = err
	return r, err
}

// Switcher moves the client between the official and a private server.
// It keeps no state between calls; every call re-reads the files. Calls must
// not overlap.
type Switcher struct {
	paths    Paths
	assets   Assets
	hostsCfg HostsConfig
	store    util.TrustStore
	log      zerolog.Logger

	pristineMaxSize int64
	pristineSHA256  []string
}

// Option configures a Switcher.
type Option func(*Switcher)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Switcher) { s.log = l }
}

// WithTrustStore sets the OS trust store capability.
func WithTrustStore(ts util.TrustStore) Option {
	return func(s *Switcher) { s.store = ts }
}

// WithHostsConfig replaces the managed block layout.
func WithHostsConfig(cfg HostsConfig) Option {
	return func(s *Switcher) { s.hostsCfg = cfg }
}

// WithPristineCheck sets how an untouched native library is recognised.
// Zero maxSize keeps the default threshold.
func WithPristineCheck(maxSize int64, sha256 []string) Option {
	return func(s *Switcher) {
		if maxSize > 0 {
			s.pristineMaxSize = maxSize
		}
		s.pristineSHA256 = sha256
	}
}

// New returns a Switcher for the given installation.
func New(paths Paths, assets Assets, opts ...Option) *Switcher {
	s := &Switcher{
		paths:           paths,
		assets:          assets,
		hostsCfg:        DefaultHostsConfig(),
		store:           util.UnsupportedStore{},
		log:             zerolog.Nop(),
		pristineMaxSize: DefaultPristineMaxSize,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Switcher) newGuard(log zerolog.Logger) *LibraryGuard {
	return &LibraryGuard{
		PristineMaxSize: s.pristineMaxSize,
		PristineSHA256:  s.pristineSHA256,
		log:             log,
	}
}

func (s *Switcher) begin(op string) (*Result, zerolog.Logger) {
	id := uuid.NewString()
	res := &Result{OK: true, RunID: id, TrustStore: util.TrustUnsupported}
	return res, s.log.With().Str("run", id).Str("op", op).Logger()
}

func hostsError(path string, err error) error {
	var hwe *HostsWriteError
	if errors.As(err, &hwe) {
		return err
	}
	return &HostsWriteError{Path: path, Err: err}
}

// ActivateOfficial removes every trace of the private server and restores the
// original native library. A missing backup aborts with ErrBackupMissing; the
// hosts files and bundles have been reverted by then and are not rolled back.
func (s *Switcher) ActivateOfficial() (*Result, error) {
	res, log := s.begin("official")
	hosts := NewHostsEditor(s.hostsCfg, log)
	anchors := NewAnchorManager(s.store, log)
	guard := s.newGuard(log)

	for _, p := range s.paths.hostsFiles() {
		if _, err := hosts.RemoveManagedBlock(p); err != nil {
			return res.fail(hostsError(p, err))
		}
	}

	if len(s.assets.TrustCert) > 0 {
		res.TrustStore = anchors.RemoveTrustStoreEntry(s.assets.TrustCert)
	}
	res.PlatformSupported = res.TrustStore != util.TrustUnsupported

	if err := anchors.Revert(s.paths.bundles()); err != nil {
		return res.fail(err)
	}

	if err := guard.Restore(s.paths.NativeLibraryBackup, s.paths.NativeLibrary); err != nil {
		log.Error().Err(err).Msg("restoring native library")
		return res.fail(err)
	}

	log.Info().Msg("switched to official server")
	return res, nil
}

// ActivatePrivate points the client at ip. Previous redirections are removed
// first, so repeated calls with any ip converge on one consistent setup.
func (s *Switcher) ActivatePrivate(ip string, offline bool) (*Result, error) {
	res, log := s.begin("private")

	if _, err := netip.ParseAddr(ip); err != nil {
		return res.fail(fmt.Errorf("invalid server address %q: %w", ip, err))
	}
	if len(s.assets.CAPEM) == 0 || len(s.assets.PatchedLibrary) == 0 {
		return res.fail(fmt.Errorf("CA certificate and patched native library must be loaded"))
	}

	hosts := NewHostsEditor(s.hostsCfg, log)
	anchors := NewAnchorManager(s.store, log)
	guard := s.newGuard(log)

	for _, p := range s.paths.hostsFiles() {
		if _, err := hosts.RemoveManagedBlock(p); err != nil {
			return res.fail(hostsError(p, err))
		}
	}
	for _, p := range s.paths.hostsFiles() {
		if err := hosts.AppendManagedBlock(p, ip, offline); err != nil {
			return res.fail(hostsError(p, err))
		}
	}

	if len(s.assets.TrustCert) > 0 {
		res.TrustStore = anchors.InstallTrustStoreEntry(s.assets.TrustCert)
	}
	res.PlatformSupported = res.TrustStore != util.TrustUnsupported

	taken, err := guard.EnsureBackup(s.paths.NativeLibrary, s.paths.NativeLibraryBackup)
	if err != nil {
		return res.fail(err)
	}
	res.BackupTaken = taken
	if err := guard.Install(s.assets.PatchedLibrary, s.paths.NativeLibrary); err != nil {
		return res.fail(err)
	}

	if err := anchors.Revert(s.paths.bundles()); err != nil {
		return res.fail(err)
	}
	if err := anchors.Install(s.paths.bundles(), s.assets.CAPEM); err != nil {
		return res.fail(err)
	}

	log.Info().Str("ip", ip).Bool("offline", offline).Msg("switched to private server")
	return res, nil
}

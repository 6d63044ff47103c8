package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/octopilot/server-selector/internal/selector"
	"github.com/octopilot/server-selector/internal/util"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// newTrustStore is a var so tests never touch the real trust store.
var newTrustStore = util.NewSystemTrustStore

// session is what the switching commands share: the resolved installation,
// a logger and the engine.
type session struct {
	cfg      *util.PathsConfig
	paths    util.InstallPaths
	log      zerolog.Logger
	closer   io.Closer
	switcher *selector.Switcher
}

func (s *session) Close() error {
	return s.closer.Close()
}

// openSession resolves the installation. With needGameRoot the game root must
// exist unless the installation file names every client path itself.
func openSession(cmd *cobra.Command, needGameRoot bool) (*session, error) {
	log, closer, err := util.NewLogger(util.GetLogLevel(), util.GetLogFile(), cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	s := &session{log: log, closer: closer}

	s.cfg, err = util.LoadPathsConfig(util.GetPathsFile())
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("reading installation file: %w", err)
	}

	gameRoot := util.GetGameRoot(s.cfg)
	if needGameRoot && !clientPathsConfigured(s.cfg) {
		if err := util.ValidateGameRoot(gameRoot); err != nil {
			closer.Close()
			return nil, fmt.Errorf("%w (set --game-root or SERVERSELECTOR_GAME_ROOT)", err)
		}
	}

	s.paths = util.ResolveInstallPaths(s.cfg, gameRoot, util.CurrentOS)
	if s.paths.WineHostsFile != "" {
		if _, err := os.Stat(s.paths.WineHostsFile); err != nil {
			log.Debug().Str("file", s.paths.WineHostsFile).Msg("no wine prefix, skipping its hosts file")
			s.paths.WineHostsFile = ""
		}
	}

	hostsCfg, err := hostsConfig(s.cfg)
	if err != nil {
		closer.Close()
		return nil, err
	}

	assets, err := util.LoadAssets(util.GetAssetsDir(s.cfg), s.cfg.TrustCertPassword)
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("loading assets: %w", err)
	}

	s.switcher = selector.New(
		selector.Paths{
			HostsFile:           s.paths.HostsFile,
			WineHostsFile:       s.paths.WineHostsFile,
			LauncherBundle:      s.paths.LauncherBundle,
			GameBundle:          s.paths.GameBundle,
			NativeLibrary:       s.paths.NativeLibrary,
			NativeLibraryBackup: s.paths.NativeLibraryBackup,
		},
		selector.Assets{
			CAPEM:          assets.CAPEM,
			TrustCert:      assets.TrustCert,
			PatchedLibrary: assets.PatchedLibrary,
		},
		selector.WithLogger(log),
		selector.WithTrustStore(newTrustStore()),
		selector.WithHostsConfig(hostsCfg),
		selector.WithPristineCheck(s.cfg.PristineMaxSize, s.cfg.PristineSHA256),
	)
	return s, nil
}

func clientPathsConfigured(cfg *util.PathsConfig) bool {
	return cfg.LauncherBundle != "" && cfg.GameBundle != "" && cfg.NativeLibrary != ""
}

// hostsConfig applies the installation file's additions to the default block.
func hostsConfig(cfg *util.PathsConfig) (selector.HostsConfig, error) {
	hc := selector.DefaultHostsConfig()
	if cfg.SinkholeAddress != "" {
		hc.SinkholeAddr = cfg.SinkholeAddress
	}
	for _, h := range cfg.ExtraHosts {
		hc.Mappings = append(hc.Mappings, selector.Mapping{Host: h})
	}
	if err := hc.Validate(); err != nil {
		return hc, fmt.Errorf("installation file: %w", err)
	}
	return hc, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func printResult(w io.Writer, res *selector.Result) {
	if res == nil {
		return
	}
	if res.PlatformSupported {
		fmt.Fprintf(w, "System trust store: %s\n", res.TrustStore)
	}
	if res.BackupTaken {
		fmt.Fprintln(w, "Backed up the original native library.")
	}
}

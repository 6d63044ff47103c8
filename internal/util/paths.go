package util

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const PathsFilename = "serverselector.yaml"

// PathsConfig is the optional installation file. Every path may use
// ${VAR}, $VAR and ${VAR:-default}.
type PathsConfig struct {
	GameRoot            string `yaml:"game_root" toml:"game_root"`
	HostsFile           string `yaml:"hosts_file" toml:"hosts_file"`
	WineHostsFile       string `yaml:"wine_hosts_file" toml:"wine_hosts_file"`
	LauncherBundle      string `yaml:"launcher_bundle" toml:"launcher_bundle"`
	GameBundle          string `yaml:"game_bundle" toml:"game_bundle"`
	NativeLibrary       string `yaml:"native_library" toml:"native_library"`
	NativeLibraryBackup string `yaml:"native_library_backup" toml:"native_library_backup"`
	AssetsDir           string `yaml:"assets_dir" toml:"assets_dir"`

	PristineMaxSize int64    `yaml:"pristine_max_size" toml:"pristine_max_size"`
	PristineSHA256  []string `yaml:"pristine_sha256" toml:"pristine_sha256"`

	SinkholeAddress string   `yaml:"sinkhole_address" toml:"sinkhole_address"`
	ExtraHosts      []string `yaml:"extra_hosts" toml:"extra_hosts"`

	TrustCertPassword string `yaml:"trust_cert_password" toml:"trust_cert_password"`
}

// LoadPathsConfig reads a YAML or TOML (by extension) installation file.
// A missing file is an empty config.
func LoadPathsConfig(path string) (*PathsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &PathsConfig{}, nil
		}
		return nil, err
	}

	var cfg PathsConfig
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	for _, p := range []*string{
		&cfg.GameRoot, &cfg.HostsFile, &cfg.WineHostsFile, &cfg.LauncherBundle,
		&cfg.GameBundle, &cfg.NativeLibrary, &cfg.NativeLibraryBackup, &cfg.AssetsDir,
	} {
		*p = interpolate(*p)
	}
	return &cfg, nil
}

// InstallPaths are the absolute locations a switch works on.
type InstallPaths struct {
	HostsFile           string
	WineHostsFile       string
	LauncherBundle      string
	GameBundle          string
	NativeLibrary       string
	NativeLibraryBackup string
}

// Layout of a game root, used for anything the installation file leaves out.
const (
	launcherBundleRel = "launcher/cacert.pem"
	gameBundleRel     = "game/cacert.pem"
	nativeLibraryRel  = "game/sodium.dll"
	backupSuffix      = ".bak"
)

// ResolveInstallPaths fills the gaps in cfg from gameRoot and the OS.
// The wine hosts file only applies on linux.
func ResolveInstallPaths(cfg *PathsConfig, gameRoot, goos string) InstallPaths {
	if cfg == nil {
		cfg = &PathsConfig{}
	}
	pick := func(v, rel string) string {
		if v != "" {
			return v
		}
		return filepath.Join(gameRoot, filepath.FromSlash(rel))
	}

	p := InstallPaths{
		HostsFile:      cfg.HostsFile,
		LauncherBundle: pick(cfg.LauncherBundle, launcherBundleRel),
		GameBundle:     pick(cfg.GameBundle, gameBundleRel),
		NativeLibrary:  pick(cfg.NativeLibrary, nativeLibraryRel),
	}
	if p.HostsFile == "" {
		p.HostsFile = DefaultHostsPath(goos)
	}
	p.NativeLibraryBackup = cfg.NativeLibraryBackup
	if p.NativeLibraryBackup == "" {
		p.NativeLibraryBackup = p.NativeLibrary + backupSuffix
	}
	if goos == "linux" {
		p.WineHostsFile = cfg.WineHostsFile
		if p.WineHostsFile == "" {
			p.WineHostsFile = DefaultWineHostsPath()
		}
	}
	return p
}

// DefaultHostsPath is the system hosts file for goos.
func DefaultHostsPath(goos string) string {
	if goos == "windows" {
		winDir := os.Getenv("WINDIR")
		if winDir == "" {
			winDir = `C:\Windows`
		}
		return filepath.Join(winDir, "System32", "drivers", "etc", "hosts")
	}
	return "/etc/hosts"
}

// DefaultWineHostsPath is the hosts file of the wine prefix.
func DefaultWineHostsPath() string {
	prefix := os.Getenv("WINEPREFIX")
	if prefix == "" {
		home, _ := os.UserHomeDir()
		prefix = filepath.Join(home, ".wine")
	}
	return filepath.Join(prefix, "drive_c", "windows", "system32", "drivers", "etc", "hosts")
}

// ValidateGameRoot checks that root is an existing directory.
func ValidateGameRoot(root string) error {
	if root == "" {
		return fmt.Errorf("game root is not set")
	}
	st, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("game root %s: %w", root, err)
	}
	if !st.IsDir() {
		return fmt.Errorf("game root %s is not a directory", root)
	}
	return nil
}

// reVarDefault matches ${VAR:-default}.
var reVarDefault = regexp.MustCompile(`\$\{([^}:]+):-([^}]*)\}`)

// interpolate expands environment variable references in s:
//   - ${VAR}           → value of VAR, empty if unset
//   - $VAR             → value of VAR, empty if unset
//   - ${VAR:-default}  → value of VAR if set and non-empty, else "default"
//
// A leading ~ is the home directory.
func interpolate(s string) string {
	// default form first, os.ExpandEnv does not know it
	result := reVarDefault.ReplaceAllStringFunc(s, func(match string) string {
		sub := reVarDefault.FindStringSubmatch(match)
		if len(sub) != 3 {
			return match
		}
		key, defaultVal := sub[1], sub[2]
		if v := os.Getenv(key); v != "" {
			return v
		}
		return defaultVal
	})
	result = os.ExpandEnv(result)
	if strings.HasPrefix(result, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			result = filepath.Join(home, result[1:])
		}
	}
	return strings.TrimSpace(result)
}

// CurrentOS is runtime.GOOS; a var so tests can pretend.
var CurrentOS = runtime.GOOS

package util

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Setting keys. Each is read from SERVERSELECTOR_<KEY> first, then viper
// (flags bound by the root command).
const (
	KeyGameRoot  = "GAME_ROOT"
	KeyPathsFile = "PATHS_FILE"
	KeyLogLevel  = "LOG_LEVEL"
	KeyLogFile   = "LOG_FILE"
	KeyAssetsDir = "ASSETS_DIR"
)

const envPrefix = "SERVERSELECTOR_"

func getSetting(key string) string {
	if val := os.Getenv(envPrefix + key); val != "" {
		return val
	}
	return viper.GetString(key)
}

// GetGameRoot resolves the client installation directory.
// Priority:
// 1. Env: SERVERSELECTOR_GAME_ROOT
// 2. Flag/config: GAME_ROOT via viper
// 3. game_root in the installation file
func GetGameRoot(cfg *PathsConfig) string {
	if val := getSetting(KeyGameRoot); val != "" {
		return val
	}
	if cfg != nil {
		return cfg.GameRoot
	}
	return ""
}

// GetPathsFile returns the installation file location, defaulting to
// <user config dir>/serverselector/serverselector.yaml.
func GetPathsFile() string {
	if val := getSetting(KeyPathsFile); val != "" {
		return val
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return PathsFilename
	}
	return filepath.Join(dir, "serverselector", PathsFilename)
}

// GetAssetsDir returns where myCA.pem, myCA.pfx and sodium.dll live.
// Falls back to the installation file, then to the executable's directory.
func GetAssetsDir(cfg *PathsConfig) string {
	if val := getSetting(KeyAssetsDir); val != "" {
		return val
	}
	if cfg != nil && cfg.AssetsDir != "" {
		return cfg.AssetsDir
	}
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// GetLogLevel defaults to "info".
func GetLogLevel() string {
	if val := getSetting(KeyLogLevel); val != "" {
		return val
	}
	return "info"
}

// GetLogFile is empty unless file logging was requested.
func GetLogFile() string {
	return getSetting(KeyLogFile)
}

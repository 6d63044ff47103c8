package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/octopilot/server-selector/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "serverselector",
	Short: "Switch the NIKKE client between the official and a private server.",
	Long: `serverselector redirects the game client to a private server by editing the
hosts file, adding a private CA to the client's certificate bundles and
replacing the client's native crypto library. "official" undoes all of it.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.serverselector.yaml)")
	flags.String("game-root", "", "NIKKE installation directory (contains launcher/ and game/)")
	flags.String("paths-file", "", "installation file overriding individual paths (yaml or toml)")
	flags.String("assets-dir", "", "directory holding myCA.pem, myCA.pfx and sodium.dll")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-file", "", "also write logs to this rotated file")

	for key, name := range map[string]string{
		util.KeyGameRoot:  "game-root",
		util.KeyPathsFile: "paths-file",
		util.KeyAssetsDir: "assets-dir",
		util.KeyLogLevel:  "log-level",
		util.KeyLogFile:   "log-file",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(name))
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(filepath.Dir(util.GetPathsFile()))
		viper.SetConfigName(".serverselector")
	}

	viper.SetEnvPrefix("SERVERSELECTOR")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/octopilot/server-selector/internal/util"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print which server the client is pointed at.",
	Long: `Prints official, private or private-offline, read from the hosts file.
With --watch the mode is printed again whenever the hosts file changes.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		watch, _ := cmd.Flags().GetBool("watch")

		s, err := openSession(cmd, false)
		if err != nil {
			return err
		}
		defer s.Close()

		mode, err := s.switcher.DetectMode()
		if err != nil {
			return fmt.Errorf("reading hosts file: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), mode)
		if !watch {
			return nil
		}

		ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
		defer stop()

		last := mode
		return util.WatchFile(ctx, s.paths.HostsFile, func() {
			mode, err := s.switcher.DetectMode()
			if err != nil {
				s.log.Warn().Err(err).Msg("re-reading hosts file")
				return
			}
			if mode != last {
				last = mode
				fmt.Fprintln(cmd.OutOrStdout(), mode)
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().Bool("watch", false, "Keep running and print the mode whenever it changes")
}

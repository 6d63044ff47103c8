package cmd

import (
	"fmt"

	"github.com/octopilot/server-selector/internal/util"
	"github.com/spf13/cobra"
)

var privateCmd = &cobra.Command{
	Use:   "private",
	Short: "Point the client at a private server.",
	Long: `Writes the hosts block, installs the private CA and swaps in the patched
native library. --ip accepts an address or a hostname (resolved once, IPv4
preferred). --offline also redirects the cloud endpoint.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("ip")
		offline, _ := cmd.Flags().GetBool("offline")

		ip, err := util.ResolveServerIP(addr)
		if err != nil {
			return err
		}

		s, err := openSession(cmd, true)
		if err != nil {
			return err
		}
		defer s.Close()

		res, err := s.switcher.ActivatePrivate(ip, offline)
		printResult(cmd.OutOrStdout(), res)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Switched to private server %s.\n", ip)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(privateCmd)
	privateCmd.Flags().String("ip", "", "Private server address or hostname")
	privateCmd.Flags().Bool("offline", false, "Also redirect the cloud endpoint")
	_ = privateCmd.MarkFlagRequired("ip")
}

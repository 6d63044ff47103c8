package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var officialCmd = &cobra.Command{
	Use:          "official",
	Short:        "Undo every private server change.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, true)
		if err != nil {
			return err
		}
		defer s.Close()

		res, err := s.switcher.ActivateOfficial()
		printResult(cmd.OutOrStdout(), res)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Switched to official server.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(officialCmd)
}

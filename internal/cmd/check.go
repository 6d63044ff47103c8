package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the certificate patches are still in place.",
	Long: `Game and launcher updates replace the certificate bundles. check reports
which one lost the private CA. --verbose inspects every file the switch
touches and exits non-zero when anything is out of place.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")

		s, err := openSession(cmd, true)
		if err != nil {
			return err
		}
		defer s.Close()

		out := cmd.OutOrStdout()
		if !verbose {
			d, err := s.switcher.CheckIntegrity()
			if err != nil {
				return err
			}
			fmt.Fprintln(out, d)
			return nil
		}

		r, err := s.switcher.Verify()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Mode:            %s\n", r.Mode)
		for _, h := range r.HostsFiles {
			fmt.Fprintf(out, "Hosts file:      %s (present=%t block=%t)\n", h.Path, h.Present, h.HasBlock)
		}
		for _, b := range r.Bundles {
			fmt.Fprintf(out, "Bundle %-8s  %s (present=%t patched=%t)\n", b.Name+":", b.Path, b.Present, b.Patched)
		}
		fmt.Fprintf(out, "Native library:  %s (backup=%t)\n", r.Library, r.BackupPresent)

		problems := r.Problems()
		if len(problems) == 0 {
			fmt.Fprintln(out, "OK")
			return nil
		}
		for _, p := range problems {
			fmt.Fprintf(out, "  - %s\n", p)
		}
		return fmt.Errorf("%d problem(s) found", len(problems))
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolP("verbose", "v", false, "Inspect hosts files, bundles and the native library")
}

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/octopilot/server-selector/internal/util"
	"github.com/spf13/cobra"
)

var generateCACmd = &cobra.Command{
	Use:   "generate-ca",
	Short: "Generate the private CA and the private server's certificate.",
	Long: `Writes myCA.pem and myCA.pfx (the CA installed into the client) and
server.crt/server.key (for the private server, valid for every redirected
hostname). Existing files are kept unless --force is given.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		force, _ := cmd.Flags().GetBool("force")
		trust, _ := cmd.Flags().GetBool("trust")
		password, _ := cmd.Flags().GetString("password")

		cfg, err := util.LoadPathsConfig(util.GetPathsFile())
		if err != nil {
			return fmt.Errorf("reading installation file: %w", err)
		}
		if dir == "" {
			dir = util.GetAssetsDir(cfg)
		}
		if !cmd.Flags().Changed("password") && cfg.TrustCertPassword != "" {
			password = cfg.TrustCertPassword
		}

		hc, err := hostsConfig(cfg)
		if err != nil {
			return err
		}

		caPEM := filepath.Join(dir, util.CAPEMFilename)
		if _, err := os.Stat(caPEM); err == nil && !force {
			return fmt.Errorf("%s already exists, use --force to replace it", caPEM)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Generating CA and server certificate in %s\n", dir)
		if err := util.GenerateCerts(dir, hc.ManagedHosts(), password); err != nil {
			return fmt.Errorf("failed to generate certs: %w", err)
		}

		if trust {
			der, err := util.LoadCertificate(caPEM, "")
			if err != nil {
				return err
			}
			outcome, err := newTrustStore().Install(der)
			if err != nil {
				// the files are usable without it
				fmt.Fprintf(cmd.ErrOrStderr(), "Failed to trust cert: %v\n", err)
			}
			fmt.Fprintf(out, "System trust store: %s\n", outcome)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCACmd)
	generateCACmd.Flags().String("dir", "", "Output directory (default: assets directory)")
	generateCACmd.Flags().String("password", "", "Password protecting myCA.pfx (default: trust_cert_password from the installation file)")
	generateCACmd.Flags().Bool("force", false, "Replace an existing CA")
	generateCACmd.Flags().Bool("trust", false, "Also add the CA to the system trust store")
}

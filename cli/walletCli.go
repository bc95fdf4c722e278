package cli

import (
	"fmt"

	"offline-reconciler-go/wallets"

	"github.com/spf13/cobra"
)

func newWalletCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Create or show a wallet keypair",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			w, err := wallets.NewWallet(cfg.Node.DataDir, name)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), w.Address())
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "default", "wallet name")
	return cmd
}

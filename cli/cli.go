package cli

import (
	"offline-reconciler-go/config"

	"github.com/spf13/cobra"
)

var cfgFile string

func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "reconciler",
		Short:         "Offline transaction reconciliation engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(
		&cfgFile, "config", "c", "", "config file (yaml, json or toml)",
	)

	root.AddCommand(
		newNodeCmd(),
		newWalletCmd(),
		newProposeCmd(),
		newSyncCmd(),
		newDemoCmd(),
	)
	return root
}

func Run() error {
	return newRootCmd().Execute()
}

package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"offline-reconciler-go/config"
	"offline-reconciler-go/nodes"

	"github.com/spf13/cobra"
)

func newNodeCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Accept proposals over tcp and sync them to the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Node.Port = port
			}
			return startReconcilerNode(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "3000", "port number to use")
	return cmd
}

func startReconcilerNode(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	submitter, err := newSubmitter(cfg)
	if err != nil {
		return err
	}
	r, db, err := openReconciler(cfg, submitter)
	if err != nil {
		return err
	}
	defer db.Close()

	n := nodes.NewReconcilerNode(cfg.Node.Port, r)
	return n.Run(ctx, cfg.Reconcile.SyncInterval)
}

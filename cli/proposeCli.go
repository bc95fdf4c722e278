package cli

import (
	"fmt"

	"offline-reconciler-go/keys"
	"offline-reconciler-go/nodes"
	"offline-reconciler-go/transactions"
	"offline-reconciler-go/wallets"

	"github.com/spf13/cobra"
)

func newProposeCmd() *cobra.Command {
	var (
		name      string
		to        string
		amount    string
		memo      string
		witnesses []string
		targets   []string
		sync      bool
	)
	cmd := &cobra.Command{
		Use:   "propose",
		Short: "Sign and mine a payment, then hand it to reconciler nodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if _, err := keys.ParseAddress(to); err != nil {
				return fmt.Errorf("recipient: %w", err)
			}
			stroops, err := transactions.ParseAmount(amount)
			if err != nil {
				return err
			}
			w, err := wallets.NewWallet(cfg.Node.DataDir, name)
			if err != nil {
				return err
			}
			if len(targets) == 0 {
				targets = []string{cfg.Node.Port}
			}

			proposer := nodes.NewProposerNode(
				w, byte(cfg.Mining.Difficulty), cfg.Mining.Workers, targets...,
			)
			sealed, err := proposer.Propose(cmd.Context(), []nodes.Payment{{
				Recipient: to,
				Amount:    stroops,
				Memo:      memo,
				Witnesses: witnesses,
			}})
			if err != nil {
				return err
			}
			for _, b := range sealed {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", b.TxId(), b.Hash)
			}
			if sync {
				return proposer.RequestSync()
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "wallet", "w", "default", "wallet name")
	cmd.Flags().StringVar(&to, "to", "", "recipient address")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "amount, up to 7 decimal places")
	cmd.Flags().StringVar(&memo, "memo", "", "optional memo")
	cmd.Flags().StringSliceVar(&witnesses, "witness", nil, "addresses of co-signing peers")
	cmd.Flags().StringSliceVar(&targets, "node", nil, "reconciler ports or addresses")
	cmd.Flags().BoolVar(&sync, "sync", false, "request a sync pass after delivery")
	cmd.MarkFlagRequired("to")
	cmd.MarkFlagRequired("amount")
	return cmd
}

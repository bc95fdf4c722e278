package cli

import (
	"context"
	"fmt"
	"io"
	"offline-reconciler-go/blocks"
	"offline-reconciler-go/keys"
	"offline-reconciler-go/ledger"
	"offline-reconciler-go/pow"
	"offline-reconciler-go/reconciler"
	"offline-reconciler-go/resolver"
	"offline-reconciler-go/transactions"
	"offline-reconciler-go/wallets"
	"time"

	"github.com/spf13/cobra"
)

// friendbot hands out 10000 units to every demo account
const DEMO_FUNDING = 10000 * transactions.AMOUNT_SCALE

type demoUser struct {
	name   string
	wallet *wallets.Wallet
}

type demoProposal struct {
	sender     *demoUser
	recipient  *demoUser
	amount     uint64
	difficulty byte
	witnesses  int
	// offset from the shared offline timestamp
	offset int64
}

func newDemoCmd() *cobra.Command {
	var (
		csvPath     string
		showMetrics bool
	)
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Replay the four-user offline conflict scenario on an in-memory ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			outcomes, names, err := runDemo(cmd.Context(), coordinatorConfig(cfg), out)
			if err != nil {
				return err
			}
			err = printOutcomes(out, outcomes, names)
			if err != nil {
				return err
			}
			if len(csvPath) != 0 {
				err = exportCSV(csvPath, outcomes, names)
				if err != nil {
					return err
				}
			}
			if showMetrics {
				return printMetrics(out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "export settled transactions to this csv file")
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "print metrics after the run")
	return cmd
}

func demoUsers() ([]*demoUser, error) {
	var users []*demoUser
	for _, name := range []string{"Alice", "Bob", "Charlie", "Dave"} {
		kp, err := keys.GenerateKey()
		if err != nil {
			return nil, err
		}
		users = append(users, &demoUser{name: name, wallet: wallets.FromKeyPair(kp)})
	}
	return users, nil
}

func (p *demoProposal) seal(ctx context.Context, now int64) (*blocks.Block, error) {
	tx, err := p.sender.wallet.NewPayment(p.recipient.wallet.Address(), p.amount, "")
	if err != nil {
		return nil, err
	}
	signatures := make([]string, p.witnesses)
	for i := range signatures {
		signatures[i] = fmt.Sprintf("v%d", i+1)
	}
	block := blocks.NewBlock(
		[]transactions.Transaction{*tx},
		blocks.BlockInfo{PreviousHash: blocks.ROOT_HASH, Difficulty: p.difficulty},
		signatures,
	)
	block.Timestamp = now + p.offset
	return pow.Seal(ctx, block)
}

// runDemo funds four accounts and lets three of them double spend while
// offline: Bob's heavier proposal, Alice's better-witnessed one and
// Charlie's earlier one should settle first.
func runDemo(
	ctx context.Context, cc reconciler.CoordinatorConfig, out io.Writer,
) ([]reconciler.Outcome, map[string]string, error) {
	users, err := demoUsers()
	if err != nil {
		return nil, nil, err
	}
	alice, bob, charlie, dave := users[0], users[1], users[2], users[3]

	l := ledger.NewMemoryLedger()
	names := map[string]string{}
	for _, u := range users {
		names[u.wallet.Address()] = u.name
		err = l.Fund(u.wallet.Address(), DEMO_FUNDING)
		if err != nil {
			return nil, nil, err
		}
	}

	unit := transactions.AMOUNT_SCALE
	proposals := []demoProposal{
		{sender: bob, recipient: charlie, amount: 10 * unit, difficulty: 3, witnesses: 1},
		{sender: bob, recipient: dave, amount: 10 * unit, difficulty: 1, witnesses: 1},
		{sender: alice, recipient: bob, amount: 10 * unit, difficulty: 1, witnesses: 3},
		{sender: alice, recipient: dave, amount: 10 * unit, difficulty: 1, witnesses: 1},
		{sender: charlie, recipient: dave, amount: 10 * unit, difficulty: 1, witnesses: 1},
		{sender: charlie, recipient: alice, amount: 10 * unit, difficulty: 1, witnesses: 1, offset: 1},
	}

	r := reconciler.NewReconciler(
		reconciler.NewCoordinator(resolver.NewResolver(true), l, cc), nil, true,
	)
	now := time.Now().UnixMilli()
	for i := range proposals {
		b, err := proposals[i].seal(ctx, now)
		if err != nil {
			return nil, nil, err
		}
		_, err = r.SubmitProposal(b)
		if err != nil {
			return nil, nil, err
		}
		fmt.Fprintf(
			out, "%s -> %s recorded offline (difficulty %d, %d signatures)\n",
			proposals[i].sender.name, proposals[i].recipient.name,
			b.Difficulty, b.SignatureCount(),
		)
	}
	fmt.Fprintln(out)

	outcomes, err := r.Sync(ctx)
	if err != nil {
		return nil, nil, err
	}
	return outcomes, names, nil
}

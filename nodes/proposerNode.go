package nodes

import (
	"context"
	"log"
	"offline-reconciler-go/blocks"
	"offline-reconciler-go/p2p"
	"offline-reconciler-go/pow"
	"offline-reconciler-go/transactions"
	"offline-reconciler-go/wallets"
)

type Payment struct {
	Recipient string
	Amount    uint64
	Memo      string
	// addresses of peers that co-signed the intent while offline
	Witnesses []string
}

// ProposerNode records payments offline, mines them into proposals and
// hands them to every known reconciler once connectivity returns.
type ProposerNode struct {
	Node
	wallet     *wallets.Wallet
	miners     *pow.MinerPool
	difficulty byte
}

func NewProposerNode(
	wallet *wallets.Wallet, difficulty byte, workers int, reconcilers ...string,
) *ProposerNode {
	p := ProposerNode{
		Node: Node{
			id: p2p.NodeId{
				Kind:    p2p.PROPOSER_NODE,
				Account: wallet.Address(),
			},
			version: p2p.PROTOCOL_VERSION,
		},
		wallet:     wallet,
		miners:     pow.NewMinerPool(workers),
		difficulty: difficulty,
	}
	for _, addr := range reconcilers {
		p.AppendPeer(p2p.NodeId{Ip: p2p.Address(addr), Kind: p2p.RECONCILER_NODE})
	}
	return &p
}

// Mine signs and seals one proposal per payment, in payment order.
func (p *ProposerNode) Mine(
	ctx context.Context, payments []Payment,
) ([]*blocks.Block, error) {
	jobs := make([]pow.MiningJob, 0, len(payments))
	for i, pay := range payments {
		tx, err := p.wallet.NewPayment(pay.Recipient, pay.Amount, pay.Memo)
		if err != nil {
			return nil, err
		}
		signatures := append([]string{p.wallet.Address()}, pay.Witnesses...)
		jobs = append(jobs, pow.MiningJob{
			Transactions: []transactions.Transaction{*tx},
			Info: blocks.BlockInfo{
				Index:        uint64(i),
				PreviousHash: blocks.ROOT_HASH,
				Difficulty:   p.difficulty,
			},
			Signatures: signatures,
		})
	}

	log.Printf("mining %d proposals at difficulty %d\n", len(jobs), p.difficulty)
	return p.miners.MineAll(ctx, jobs)
}

// Propose mines the payments and broadcasts the proposals.
func (p *ProposerNode) Propose(
	ctx context.Context, payments []Payment,
) ([]*blocks.Block, error) {
	sealed, err := p.Mine(ctx, payments)
	if err != nil {
		return nil, err
	}
	for _, b := range sealed {
		payload, err := p.proposalPayload(b)
		if err != nil {
			return nil, err
		}
		log.Printf("broadcasting proposal %s\n", b.TxId())
		err = p.broadcast(payload)
		if err != nil {
			return sealed, err
		}
	}
	return sealed, nil
}

func (p *ProposerNode) RequestSync() error {
	payload, err := p.syncPayload()
	if err != nil {
		return err
	}
	return p.broadcast(payload)
}

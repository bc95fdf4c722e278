package pow

import (
	"context"
	"offline-reconciler-go/blocks"
	"offline-reconciler-go/transactions"

	"golang.org/x/sync/errgroup"
)

const DEFAULT_MINERS = 4

type MiningJob struct {
	Transactions []transactions.Transaction
	Info         blocks.BlockInfo
	Signatures   []string
}

// MinerPool mines independent proposals in parallel, bounded by its worker count.
type MinerPool struct {
	workers int
}

func NewMinerPool(workers int) *MinerPool {
	if workers <= 0 {
		workers = DEFAULT_MINERS
	}
	return &MinerPool{workers: workers}
}

// MineAll returns sealed blocks in job order. The first failure cancels the rest.
func (p *MinerPool) MineAll(
	ctx context.Context, jobs []MiningJob,
) ([]*blocks.Block, error) {
	sealed := make([]*blocks.Block, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			b, err := MineBlock(gctx, job.Transactions, job.Info, job.Signatures)
			if err != nil {
				return err
			}
			sealed[i] = b
			return nil
		})
	}
	err := g.Wait()
	if err != nil {
		return nil, err
	}
	return sealed, nil
}

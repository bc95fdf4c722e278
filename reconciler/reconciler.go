package reconciler

import (
	"context"
	"fmt"
	"log"
	"offline-reconciler-go/blocks"
	"offline-reconciler-go/database"
	"offline-reconciler-go/epoch"
	"offline-reconciler-go/memory"
	"offline-reconciler-go/pow"
	"offline-reconciler-go/transactions"
	"sync"
	"time"
)

// Reconciler takes proposals in, keeps them until a sync pass settles them,
// and records what happened to each transaction.
type Reconciler struct {
	pool             *memory.ProposalPool
	coordinator      *Coordinator
	db               *database.Database // nil keeps everything in memory
	verifySignatures bool
	epoch            *epoch.Epoch

	// context of the running sync loop
	runCtx context.Context
	syncMu sync.Mutex

	// orders proposal writes against residual rewrites
	persistMu sync.Mutex
}

func NewReconciler(
	coordinator *Coordinator,
	db *database.Database,
	verifySignatures bool,
) *Reconciler {
	r := &Reconciler{
		pool:             memory.NewProposalPool(),
		coordinator:      coordinator,
		db:               db,
		verifySignatures: verifySignatures,
		runCtx:           context.Background(),
	}
	r.epoch = epoch.NewEpoch(r.syncRoutine)
	return r
}

func (r *Reconciler) Pool() *memory.ProposalPool {
	return r.pool
}

// Load restores the residual set persisted by an earlier run.
func (r *Reconciler) Load() (int, error) {
	if r.db == nil {
		return 0, nil
	}
	stored, err := r.db.GetAllProposals()
	if err != nil {
		return 0, err
	}

	n := 0
	for i := range stored {
		res, err := r.pool.Add(&stored[i])
		if err != nil {
			log.Printf("dropping stored proposal %s: %v\n", stored[i].TxId(), err)
			continue
		}
		if res == memory.ADD_ACCEPTED {
			n++
		}
	}
	log.Printf("restored %d proposals\n", n)
	return n, nil
}

func (r *Reconciler) checkSignatures(block *blocks.Block) error {
	for i := range block.Transactions {
		ok, err := block.Transactions[i].Verify()
		if err != nil {
			return fmt.Errorf("%w: %v", pow.ErrMalformedBlock, err)
		}
		if !ok {
			return fmt.Errorf(
				"%w: %s: %v", pow.ErrMalformedBlock,
				block.Transactions[i].ID, transactions.ErrInvalidSignature,
			)
		}
	}
	return nil
}

// SubmitProposal validates a sealed block and stores it until the next sync.
func (r *Reconciler) SubmitProposal(block *blocks.Block) (memory.AddResult, error) {
	if r.verifySignatures {
		err := r.checkSignatures(block)
		if err != nil {
			return 0, err
		}
	}

	// a sync settling the block right after Add must rewrite the residual
	// set only once the block has been written
	r.persistMu.Lock()
	defer r.persistMu.Unlock()
	res, err := r.pool.Add(block)
	if err != nil {
		return 0, err
	}
	if res == memory.ADD_DUPLICATE || r.db == nil {
		return res, nil
	}
	return res, r.db.PutProposal(block)
}

// Sync finalizes everything pooled. Settled proposals leave the pool,
// failed ones stay for the next pass. Only one sync runs at a time.
func (r *Reconciler) Sync(ctx context.Context) ([]Outcome, error) {
	r.syncMu.Lock()
	defer r.syncMu.Unlock()

	grouped := r.pool.Collect()
	if len(grouped) == 0 {
		log.Println("nothing to sync")
		return nil, nil
	}
	log.Printf("syncing %d senders\n", len(grouped))

	outcomes := r.coordinator.Finalize(ctx, grouped)
	r.applyOutcomes(outcomes)
	return outcomes, r.persist(outcomes)
}

// Retry resubmits the retryable outcomes of an earlier sync.
func (r *Reconciler) Retry(
	ctx context.Context, outcomes []Outcome, includeFailed bool,
) ([]Outcome, error) {
	r.syncMu.Lock()
	defer r.syncMu.Unlock()

	retried := r.coordinator.Retry(ctx, outcomes, includeFailed)
	r.applyOutcomes(retried)
	return retried, r.persist(retried)
}

// applyOutcomes moves every block to its new pool status. A block with
// several transactions is settled only when all of them are.
func (r *Reconciler) applyOutcomes(outcomes []Outcome) {
	settled := map[string]memory.Status{}
	var order []string
	for _, o := range outcomes {
		id := o.Block.TxId()
		current, seen := settled[id]
		if !seen {
			order = append(order, id)
			settled[id] = o.Status.PoolStatus()
			continue
		}
		if current.IsTerminal() && !o.Status.IsSuccess() {
			settled[id] = memory.FAILED
		}
	}
	for _, id := range order {
		r.pool.SetStatus(id, settled[id])
	}
}

func (r *Reconciler) persist(outcomes []Outcome) error {
	if r.db == nil {
		return nil
	}
	for i := range outcomes {
		err := r.db.PutOutcome(outcomes[i].Record())
		if err != nil {
			return err
		}
	}
	r.persistMu.Lock()
	defer r.persistMu.Unlock()
	return r.db.ReplaceResidual(r.pool.Snapshot())
}

func (r *Reconciler) Outcomes() ([]database.OutcomeRecord, error) {
	if r.db == nil {
		return nil, nil
	}
	return r.db.GetAllOutcomes()
}

func (r *Reconciler) syncRoutine() {
	_, err := r.Sync(r.runCtx)
	if err != nil {
		log.Printf("sync failed: %v\n", err)
	}
}

// Trigger requests a sync pass from the running sync loop.
func (r *Reconciler) Trigger() {
	r.epoch.Trigger()
}

// Run drives sync passes every interval and on Trigger until ctx is done.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) {
	log.Printf("auto sync every %s\n", interval)
	r.runCtx = ctx
	r.epoch.StartEpochRoutine(ctx, interval)
}

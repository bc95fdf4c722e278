package reconciler

import (
	"context"
	"errors"
	"log"
	"offline-reconciler-go/blocks"
	"offline-reconciler-go/ledger"
	"offline-reconciler-go/metrics"
	"offline-reconciler-go/resolver"
	"offline-reconciler-go/transactions"
	"time"

	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	DEFAULT_WORKERS        = 4
	DEFAULT_SUBMIT_TIMEOUT = 30 * time.Second
)

type CoordinatorConfig struct {
	Workers       int
	SubmitTimeout time.Duration
	SubmitRate    float64 // submissions per second across all senders, 0 disables
	SubmitBurst   int
	HaltOnFailure bool
}

// Coordinator turns grouped proposals into ordered ledger submissions.
// Senders are processed concurrently; a sender's ranks are submitted one
// after another in rank order.
type Coordinator struct {
	resolver  *resolver.Resolver
	submitter ledger.Submitter
	cfg       CoordinatorConfig
	limiter   *rate.Limiter
}

func NewCoordinator(
	res *resolver.Resolver,
	submitter ledger.Submitter,
	cfg CoordinatorConfig,
) *Coordinator {
	if cfg.Workers <= 0 {
		cfg.Workers = DEFAULT_WORKERS
	}
	if cfg.SubmitTimeout <= 0 {
		cfg.SubmitTimeout = DEFAULT_SUBMIT_TIMEOUT
	}
	c := &Coordinator{
		resolver:  res,
		submitter: submitter,
		cfg:       cfg,
	}
	if cfg.SubmitRate > 0 {
		burst := cfg.SubmitBurst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.SubmitRate), burst)
	}
	return c
}

// Finalize resolves and submits every sender's proposals. The result is
// grouped by sender (sorted) and in rank order within each sender.
func (c *Coordinator) Finalize(
	ctx context.Context, grouped map[string][]blocks.Block,
) []Outcome {
	senders := make([]string, 0, len(grouped))
	for s, proposals := range grouped {
		if len(proposals) > 0 {
			senders = append(senders, s)
		}
	}
	slices.Sort(senders)

	results := make([][]Outcome, len(senders))
	var g errgroup.Group
	g.SetLimit(c.cfg.Workers)
	for i, sender := range senders {
		i, sender := i, sender
		g.Go(func() error {
			ranked, err := c.resolver.Resolve(grouped[sender])
			if err != nil {
				return nil
			}
			for _, r := range ranked {
				log.Printf(
					"sender %s rank %d: %s (%s)\n",
					sender, r.Rank, r.Block.TxId(), r.Reason,
				)
			}
			results[i] = c.submitSequence(ctx, sender, ranked)
			return nil
		})
	}
	_ = g.Wait()

	var outcomes []Outcome
	for _, r := range results {
		outcomes = append(outcomes, r...)
	}
	return outcomes
}

func (c *Coordinator) submitSequence(
	ctx context.Context, sender string, ranked []resolver.Ranked,
) []Outcome {
	outcomes := make([]Outcome, 0, len(ranked))
	halted := false
	for _, r := range ranked {
		for _, tx := range r.Block.Transactions {
			out := Outcome{
				Sender:      sender,
				Transaction: tx,
				Block:       r.Block,
				Rank:        r.Rank,
				Reason:      r.Reason,
			}
			if halted {
				out.Status = SKIPPED
				metrics.SubmissionsTotal.WithLabelValues(SKIPPED.ToString()).Inc()
			} else {
				c.submitOne(ctx, &out)
				if !out.Status.IsSuccess() && c.cfg.HaltOnFailure {
					halted = true
				}
			}
			outcomes = append(outcomes, out)
		}
	}
	return outcomes
}

func (c *Coordinator) submitOne(ctx context.Context, out *Outcome) {
	start := time.Now()
	hash, err := c.submit(ctx, &out.Transaction)
	metrics.SubmissionDuration.Observe(time.Since(start).Seconds())

	out.Status, out.Hash, out.Err = classify(hash, err)
	metrics.SubmissionsTotal.WithLabelValues(out.Status.ToString()).Inc()
	if out.Err != nil && out.Status != DUPLICATE {
		log.Printf(
			"submission of %s %s: %v\n",
			out.Transaction.ID, out.Status.ToString(), out.Err,
		)
	} else {
		log.Printf(
			"submission of %s %s: %s\n",
			out.Transaction.ID, out.Status.ToString(), out.Hash,
		)
	}
}

func (c *Coordinator) submit(
	ctx context.Context, tx *transactions.Transaction,
) (string, error) {
	if c.limiter != nil {
		err := c.limiter.Wait(ctx)
		if err != nil {
			return "", err
		}
	}
	sctx, cancel := context.WithTimeout(ctx, c.cfg.SubmitTimeout)
	defer cancel()
	return c.submitter.Submit(sctx, tx)
}

func classify(hash string, err error) (OutcomeStatus, string, error) {
	switch {
	case err == nil:
		return SUBMITTED, hash, nil
	case errors.Is(err, ledger.ErrAlreadySettled):
		return DUPLICATE, hash, err
	case errors.Is(err, context.DeadlineExceeded):
		return TIMEOUT, "", err
	default:
		return FAILED, "", err
	}
}

// Retry resubmits timed-out and skipped outcomes, and failed ones when
// includeFailed is set, keeping the finalized order of each sender.
// Outcomes that are not retried are returned unchanged.
func (c *Coordinator) Retry(
	ctx context.Context, outcomes []Outcome, includeFailed bool,
) []Outcome {
	retried := append([]Outcome(nil), outcomes...)
	bySender := map[string][]int{}
	var senders []string
	for i, o := range retried {
		eligible := o.Status == TIMEOUT || o.Status == SKIPPED ||
			(includeFailed && o.Status == FAILED)
		if !eligible {
			continue
		}
		if _, ok := bySender[o.Sender]; !ok {
			senders = append(senders, o.Sender)
		}
		bySender[o.Sender] = append(bySender[o.Sender], i)
	}

	var g errgroup.Group
	g.SetLimit(c.cfg.Workers)
	for _, sender := range senders {
		indices := bySender[sender]
		g.Go(func() error {
			halted := false
			for _, idx := range indices {
				out := &retried[idx]
				if halted {
					out.Status, out.Hash, out.Err = SKIPPED, "", nil
					continue
				}
				c.submitOne(ctx, out)
				if !out.Status.IsSuccess() && c.cfg.HaltOnFailure {
					halted = true
				}
			}
			return nil
		})
	}
	_ = g.Wait()
	return retried
}

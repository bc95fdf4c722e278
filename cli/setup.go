package cli

import (
	"fmt"
	"log"
	"offline-reconciler-go/config"
	"offline-reconciler-go/database"
	"offline-reconciler-go/ledger"
	"offline-reconciler-go/reconciler"
	"offline-reconciler-go/resolver"
)

func newSubmitter(cfg *config.Config) (ledger.Submitter, error) {
	switch cfg.Ledger.Kind {
	case config.LEDGER_MEMORY:
		return newMemoryLedger(&cfg.Ledger)
	case config.LEDGER_HORIZON:
		return ledger.NewHorizonClient(
			cfg.Ledger.BaseURL, cfg.Ledger.Timeout, cfg.Ledger.RetryCount,
		), nil
	default:
		return nil, fmt.Errorf("unknown ledger kind %q", cfg.Ledger.Kind)
	}
}

// newMemoryLedger opens every account listed under ledger.fund,
// the way a testnet friendbot would.
func newMemoryLedger(cfg *config.LedgerConfig) (*ledger.MemoryLedger, error) {
	funding, err := cfg.Funding()
	if err != nil {
		return nil, err
	}
	log.Println("using the in-memory ledger, settlements are not persisted")
	if len(funding) == 0 {
		log.Println("ledger.fund is empty, every submission will fail with an unknown account")
	}

	l := ledger.NewMemoryLedger()
	for address, amount := range funding {
		err = l.Fund(address, amount)
		if err != nil {
			return nil, err
		}
	}
	return l, nil
}

func coordinatorConfig(cfg *config.Config) reconciler.CoordinatorConfig {
	return reconciler.CoordinatorConfig{
		Workers:       cfg.Reconcile.Workers,
		SubmitTimeout: cfg.Reconcile.SubmitTimeout,
		SubmitRate:    cfg.Reconcile.SubmitRate,
		SubmitBurst:   cfg.Reconcile.SubmitBurst,
		HaltOnFailure: cfg.Reconcile.HaltOnFailure,
	}
}

// openReconciler builds the reconciler over the node's database and
// restores the residual set. The caller closes the database.
func openReconciler(
	cfg *config.Config, submitter ledger.Submitter,
) (*reconciler.Reconciler, *database.Database, error) {
	db, err := database.Open(cfg.Node.DataDir, cfg.Node.Id)
	if err != nil {
		return nil, nil, err
	}

	coordinator := reconciler.NewCoordinator(
		resolver.NewResolver(cfg.Resolver.IdTieBreak), submitter, coordinatorConfig(cfg),
	)
	r := reconciler.NewReconciler(coordinator, &db, cfg.Node.VerifySignatures)
	_, err = r.Load()
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return r, &db, nil
}

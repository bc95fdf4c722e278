package reconciler

import (
	"log"
	"offline-reconciler-go/blocks"
	"offline-reconciler-go/database"
	"offline-reconciler-go/memory"
	"offline-reconciler-go/transactions"
	"time"
)

type OutcomeStatus byte

const (
	SUBMITTED OutcomeStatus = iota + 1
	FAILED
	TIMEOUT
	// the ledger had already settled the transaction
	DUPLICATE
	// not attempted because an earlier rank failed under halt-on-failure
	SKIPPED
)

func (s OutcomeStatus) ToString() string {
	switch s {
	case SUBMITTED:
		return "submitted"
	case FAILED:
		return "failed"
	case TIMEOUT:
		return "timeout"
	case DUPLICATE:
		return "duplicate"
	case SKIPPED:
		return "skipped"
	default:
		log.Panicf("unknown outcome status %d", s)
	}
	return ""
}

func (s OutcomeStatus) IsSuccess() bool {
	return s == SUBMITTED || s == DUPLICATE
}

// PoolStatus maps a submission outcome onto the proposal lifecycle.
func (s OutcomeStatus) PoolStatus() memory.Status {
	switch s {
	case SUBMITTED:
		return memory.SUBMITTED
	case DUPLICATE:
		return memory.DUPLICATE_SKIPPED
	default:
		return memory.FAILED
	}
}

type Outcome struct {
	Sender      string
	Transaction transactions.Transaction
	Block       blocks.Block
	Rank        int
	Reason      string
	Status      OutcomeStatus
	Hash        string
	Err         error
}

func (o *Outcome) Record() *database.OutcomeRecord {
	rec := &database.OutcomeRecord{
		TxId:       o.Transaction.ID,
		Sender:     o.Sender,
		Recipient:  o.Transaction.Recipient,
		Amount:     o.Transaction.Amount,
		Rank:       o.Rank,
		Reason:     o.Reason,
		Status:     o.Status.ToString(),
		Hash:       o.Hash,
		RecordedAt: time.Now().UnixMilli(),
	}
	if o.Err != nil {
		rec.Error = o.Err.Error()
	}
	return rec
}

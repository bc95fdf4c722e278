package ledger

import (
	"context"
	"errors"
	"fmt"
	"offline-reconciler-go/transactions"
)

var (
	// ErrAlreadySettled means the ledger has already applied this transaction.
	// Submit returns the original settlement hash alongside it.
	ErrAlreadySettled = errors.New("transaction already settled")
	ErrUnderfunded    = errors.New("insufficient balance")
	ErrUnknownAccount = errors.New("unknown account")
)

// Submitter exchanges a finalized transaction for a settlement hash.
// Submitting the same transaction twice must not settle it twice.
type Submitter interface {
	Submit(ctx context.Context, tx *transactions.Transaction) (string, error)
}

// SubmissionError is a rejection reported by a remote ledger.
type SubmissionError struct {
	StatusCode int
	Body       string
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("ledger rejected submission (%d): %s", e.StatusCode, e.Body)
}

package ledger

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"offline-reconciler-go/accounts"
	"offline-reconciler-go/common"
	"offline-reconciler-go/transactions"
	"sync"
	"time"

	"golang.org/x/crypto/sha3"
)

type Settlement struct {
	Hash        string
	Transaction transactions.Transaction
	Sequence    uint64
}

// MemoryLedger is an in-process ledger that settles each transaction id once.
type MemoryLedger struct {
	sync.Mutex
	accounts map[string]*accounts.AccountState
	settled  map[string]string
	history  []Settlement
	// simulated network latency per submission
	latency time.Duration
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		accounts: map[string]*accounts.AccountState{},
		settled:  map[string]string{},
	}
}

func (l *MemoryLedger) SetLatency(d time.Duration) {
	l.Lock()
	defer l.Unlock()
	l.latency = d
}

// Fund credits an account, creating it if needed.
func (l *MemoryLedger) Fund(address string, amount uint64) error {
	l.Lock()
	defer l.Unlock()
	state := l.accountSafe(address)
	if !state.Add(amount) {
		return fmt.Errorf("funding %s overflows", address)
	}
	log.Printf("funded %s with %s\n", address, transactions.FormatAmount(amount))
	return nil
}

func (l *MemoryLedger) accountSafe(address string) *accounts.AccountState {
	state, ok := l.accounts[address]
	if !ok {
		state = &accounts.AccountState{}
		l.accounts[address] = state
	}
	return state
}

func (l *MemoryLedger) Balance(address string) (uint64, bool) {
	l.Lock()
	defer l.Unlock()
	state, ok := l.accounts[address]
	if !ok {
		return 0, false
	}
	return state.Balance, true
}

func (l *MemoryLedger) Settled(txId string) (string, bool) {
	l.Lock()
	defer l.Unlock()
	hash, ok := l.settled[txId]
	return hash, ok
}

func (l *MemoryLedger) History() []Settlement {
	l.Lock()
	defer l.Unlock()
	return append([]Settlement(nil), l.history...)
}

func (l *MemoryLedger) Submit(
	ctx context.Context, tx *transactions.Transaction,
) (string, error) {
	l.Lock()
	latency := l.latency
	l.Unlock()
	if latency > 0 {
		timer := time.NewTimer(latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	l.Lock()
	defer l.Unlock()
	if hash, ok := l.settled[tx.ID]; ok {
		return hash, ErrAlreadySettled
	}

	err := tx.ContentsCheck()
	if err != nil {
		return "", err
	}
	from, ok := l.accounts[tx.Sender]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownAccount, tx.Sender)
	}
	to := l.accountSafe(tx.Recipient)
	if !from.Subtract(tx.Amount) {
		return "", fmt.Errorf(
			"%w: %s has %s, needs %s", ErrUnderfunded, tx.Sender,
			transactions.FormatAmount(from.Balance), tx.AmountString(),
		)
	}
	if !to.Add(tx.Amount) {
		from.Add(tx.Amount)
		return "", fmt.Errorf("crediting %s overflows", tx.Recipient)
	}
	seq := from.NextSequence()

	enc, err := common.Canonical(tx)
	if err != nil {
		return "", err
	}
	sum := sha3.Sum256(enc)
	hash := hex.EncodeToString(sum[:])

	l.settled[tx.ID] = hash
	l.history = append(l.history, Settlement{
		Hash: hash, Transaction: *tx, Sequence: seq,
	})
	return hash, nil
}

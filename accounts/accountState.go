package accounts

import "math"

// AccountState is a ledger account: its balance in stroops and the
// sequence number bumped by every settled payment.
type AccountState struct {
	Sequence uint64
	Balance  uint64
}

func (as *AccountState) Subtract(amount uint64) bool {
	if amount > as.Balance {
		return false
	}

	as.Balance -= amount
	return true
}

func (as *AccountState) Add(amount uint64) bool {
	max := math.MaxUint64 - as.Balance
	if amount > max {
		return false
	}

	as.Balance += amount
	return true
}

func (as *AccountState) NextSequence() uint64 {
	as.Sequence++
	return as.Sequence
}

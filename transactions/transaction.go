package transactions

import (
	"encoding/base64"
	"errors"
	"offline-reconciler-go/common"
	"offline-reconciler-go/keys"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidSignature = errors.New("transaction signature is invalid")

type Transaction struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Amount    uint64 `json:"amount"`
	Timestamp int64  `json:"timestamp"`
	Signature string `json:"signature"`
	Nonce     string `json:"nonce"`
	Memo      string `json:"memo,omitempty"`
}

// signed part, everything but the signature
type unsignedTransaction struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Amount    uint64 `json:"amount"`
	Timestamp int64  `json:"timestamp"`
	Nonce     string `json:"nonce"`
	Memo      string `json:"memo,omitempty"`
}

func NewTransaction(
	sender string, recipient string, amount uint64, memo string,
) *Transaction {
	return &Transaction{
		ID:        uuid.NewString(),
		Sender:    sender,
		Recipient: recipient,
		Amount:    amount,
		Timestamp: time.Now().UnixMilli(),
		Nonce:     uuid.NewString(),
		Memo:      memo,
	}
}

func (tx *Transaction) ContentsCheck() error {
	if len(tx.ID) == 0 {
		return errors.New("id is empty")
	}
	if tx.Timestamp == 0 {
		return errors.New("timestamp is zero")
	}
	if tx.Amount == 0 {
		return errors.New("amount is zero")
	}
	if len(tx.Sender) == 0 || len(tx.Recipient) == 0 {
		return errors.New("sender or recipient is empty")
	}
	if tx.Sender == tx.Recipient {
		return errors.New("sender and recipient are the same")
	}
	if len(tx.Nonce) == 0 {
		return errors.New("nonce is empty")
	}
	return nil
}

func (tx *Transaction) SigningPayload() ([]byte, error) {
	return common.Canonical(unsignedTransaction{
		ID:        tx.ID,
		Sender:    tx.Sender,
		Recipient: tx.Recipient,
		Amount:    tx.Amount,
		Timestamp: tx.Timestamp,
		Nonce:     tx.Nonce,
		Memo:      tx.Memo,
	})
}

// Verify checks the signature against the sender's public key.
func (tx *Transaction) Verify() (bool, error) {
	err := tx.ContentsCheck()
	if err != nil {
		return false, err
	}

	pubKey, err := keys.ParseAddress(tx.Sender)
	if err != nil {
		return false, err
	}
	sig, err := base64.StdEncoding.DecodeString(tx.Signature)
	if err != nil {
		return false, nil
	}
	payload, err := tx.SigningPayload()
	if err != nil {
		return false, err
	}
	return common.QuickVerify(sig, pubKey, payload), nil
}

func (tx *Transaction) AmountString() string {
	return FormatAmount(tx.Amount)
}

package pow

import (
	"encoding/hex"
	"offline-reconciler-go/blocks"
	"offline-reconciler-go/common"

	"golang.org/x/crypto/sha3"
)

// hashed fields, in this order; the hash and cumulative work are not part of it
type hashInput struct {
	Index        uint64   `json:"index"`
	PreviousHash string   `json:"previousHash"`
	Timestamp    int64    `json:"timestamp"`
	Transactions []string `json:"transactions"`
	Nonce        uint64   `json:"nonce"`
	Difficulty   byte     `json:"difficulty"`
}

// HashBlock commits to the block metadata and the ids of its transactions.
// Transaction contents are covered by their own signatures.
func HashBlock(b *blocks.Block) (string, error) {
	return hashWithNonce(b, b.Nonce)
}

func hashWithNonce(b *blocks.Block, nonce uint64) (string, error) {
	data, err := common.Canonical(hashInput{
		Index:        b.Index,
		PreviousHash: b.PreviousHash,
		Timestamp:    b.Timestamp,
		Transactions: b.TxIds(),
		Nonce:        nonce,
		Difficulty:   b.Difficulty,
	})
	if err != nil {
		return "", err
	}
	hash := sha3.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

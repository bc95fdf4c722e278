package blocks

import (
	"errors"
	"offline-reconciler-go/transactions"
	"time"
)

const (
	ROOT_HASH = "0"
	// largest difficulty whose work still fits in uint64
	MAX_DIFFICULTY byte = 63
)

var ErrEmptyBlock = errors.New("block has no transactions")

type BlockInfo struct {
	Index        uint64 `json:"index"`
	PreviousHash string `json:"previousHash"`
	Difficulty   byte   `json:"difficulty"`
}

type Block struct {
	BlockInfo
	Timestamp      int64                      `json:"timestamp"`
	Transactions   []transactions.Transaction `json:"transactions"`
	Nonce          uint64                     `json:"nonce"`
	Hash           string                     `json:"hash"`
	Signatures     []string                   `json:"signatures"`
	CumulativeWork uint64                     `json:"cumulativeWork"`
}

func NewBlock(
	txs []transactions.Transaction,
	info BlockInfo,
	signatures []string,
) *Block {
	if len(info.PreviousHash) == 0 {
		info.PreviousHash = ROOT_HASH
	}
	block := Block{
		BlockInfo:    info,
		Timestamp:    time.Now().UnixMilli(),
		Transactions: txs,
		Signatures:   signatures,
		Hash:         "",
		Nonce:        0,
	}
	return &block
}

// CalculateWork returns 2^difficulty.
func CalculateWork(difficulty byte) uint64 {
	if difficulty > MAX_DIFFICULTY {
		return 0
	}
	return uint64(1) << difficulty
}

func (b *Block) Work() uint64 {
	return CalculateWork(b.Difficulty)
}

func (b *Block) IsSealed() bool {
	return len(b.Hash) != 0
}

// Sender is the sender of the first transaction, the bucket the block belongs to.
func (b *Block) Sender() string {
	if len(b.Transactions) == 0 {
		return ""
	}
	return b.Transactions[0].Sender
}

func (b *Block) TxId() string {
	if len(b.Transactions) == 0 {
		return ""
	}
	return b.Transactions[0].ID
}

func (b *Block) TxIds() []string {
	ids := make([]string, 0, len(b.Transactions))
	for _, tx := range b.Transactions {
		ids = append(ids, tx.ID)
	}
	return ids
}

func (b *Block) SignatureCount() int {
	return len(b.Signatures)
}

func (b *Block) StructureCheck() error {
	if len(b.Transactions) == 0 {
		return ErrEmptyBlock
	}
	if b.Difficulty > MAX_DIFFICULTY {
		return errors.New("difficulty is out of range")
	}
	for i := range b.Transactions {
		err := b.Transactions[i].ContentsCheck()
		if err != nil {
			return err
		}
	}
	return nil
}

// Copy returns a deep copy so callers cannot mutate a sealed block in place.
func (b Block) Copy() Block {
	c := b
	c.Transactions = append([]transactions.Transaction(nil), b.Transactions...)
	c.Signatures = append([]string(nil), b.Signatures...)
	return c
}

package blocks

import (
	"testing"

	"offline-reconciler-go/transactions"

	"github.com/stretchr/testify/assert"
)

func TestCalculateWork(t *testing.T) {
	assert.Equal(t, uint64(1), CalculateWork(0))
	assert.Equal(t, uint64(8), CalculateWork(3))
	assert.Equal(t, uint64(1)<<63, CalculateWork(MAX_DIFFICULTY))
	assert.Equal(t, uint64(0), CalculateWork(MAX_DIFFICULTY+1))
}

func TestNewBlockDefaults(t *testing.T) {
	tx := transactions.NewTransaction("a", "b", 1, "")
	b := NewBlock([]transactions.Transaction{*tx}, BlockInfo{Difficulty: 2}, []string{"v1"})

	assert.Equal(t, ROOT_HASH, b.PreviousHash)
	assert.False(t, b.IsSealed())
	assert.NotZero(t, b.Timestamp)
	assert.Equal(t, "a", b.Sender())
	assert.Equal(t, tx.ID, b.TxId())
	assert.Equal(t, []string{tx.ID}, b.TxIds())
	assert.Equal(t, 1, b.SignatureCount())
	assert.Equal(t, uint64(4), b.Work())
	assert.NoError(t, b.StructureCheck())
}

func TestStructureCheck(t *testing.T) {
	empty := NewBlock(nil, BlockInfo{}, nil)
	assert.ErrorIs(t, empty.StructureCheck(), ErrEmptyBlock)
	assert.Equal(t, "", empty.Sender())
	assert.Equal(t, "", empty.TxId())

	tx := transactions.NewTransaction("a", "b", 1, "")
	hard := NewBlock([]transactions.Transaction{*tx}, BlockInfo{Difficulty: 64}, nil)
	assert.Error(t, hard.StructureCheck())

	bad := transactions.NewTransaction("a", "a", 1, "")
	invalid := NewBlock([]transactions.Transaction{*bad}, BlockInfo{}, nil)
	assert.Error(t, invalid.StructureCheck())
}

func TestCopyIsDeep(t *testing.T) {
	tx := transactions.NewTransaction("a", "b", 1, "")
	b := NewBlock([]transactions.Transaction{*tx}, BlockInfo{}, []string{"v1"})
	c := b.Copy()
	c.Signatures[0] = "changed"
	c.Transactions[0].Amount = 99

	assert.Equal(t, "v1", b.Signatures[0])
	assert.Equal(t, uint64(1), b.Transactions[0].Amount)
}

package pow

import (
	"context"
	"strings"
	"testing"
	"time"

	"offline-reconciler-go/blocks"
	"offline-reconciler-go/transactions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTxs() []transactions.Transaction {
	tx := transactions.NewTransaction("alice", "bob", 10, "")
	return []transactions.Transaction{*tx}
}

func mined(t *testing.T, difficulty byte) *blocks.Block {
	t.Helper()
	b, err := MineBlock(
		context.Background(), testTxs(),
		blocks.BlockInfo{Difficulty: difficulty}, []string{"v1"},
	)
	require.NoError(t, err)
	return b
}

func TestHashBlockIsDeterministic(t *testing.T) {
	b := mined(t, 1)
	h1, err := HashBlock(b)
	require.NoError(t, err)
	h2, err := HashBlock(b)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
	assert.Equal(t, strings.ToLower(h1), h1)
}

func TestHashIgnoresTransactionContent(t *testing.T) {
	b := mined(t, 1)
	b.Transactions[0].Amount = 999
	b.Signatures = append(b.Signatures, "v2")
	h, err := HashBlock(b)
	require.NoError(t, err)
	assert.Equal(t, b.Hash, h)
}

func TestMineBlockSatisfiesDifficulty(t *testing.T) {
	for _, d := range []byte{0, 1, 2, 3} {
		b := mined(t, d)
		assert.True(t, strings.HasPrefix(b.Hash, strings.Repeat("0", int(d))))
		assert.Equal(t, uint64(1)<<d, b.CumulativeWork)
		assert.GreaterOrEqual(t, b.Nonce, uint64(1))

		recomputed, err := HashBlock(b)
		require.NoError(t, err)
		assert.Equal(t, b.Hash, recomputed)
		assert.NoError(t, Validate(b))
	}
}

func TestValidateDetectsTampering(t *testing.T) {
	cases := map[string]func(b *blocks.Block){
		"index":         func(b *blocks.Block) { b.Index++ },
		"previous hash": func(b *blocks.Block) { b.PreviousHash = "abc" },
		"timestamp":     func(b *blocks.Block) { b.Timestamp++ },
		"nonce":         func(b *blocks.Block) { b.Nonce++ },
		"difficulty":    func(b *blocks.Block) { b.Difficulty++ },
		"tx id":         func(b *blocks.Block) { b.Transactions[0].ID = "other" },
		"hash":          func(b *blocks.Block) { b.Hash = "00" + b.Hash[2:] + "x" },
		"work":          func(b *blocks.Block) { b.CumulativeWork = 1 << 20 },
		"unsealed":      func(b *blocks.Block) { b.Hash = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			b := mined(t, 2)
			mutate(b)
			assert.ErrorIs(t, Validate(b), ErrMalformedBlock)
		})
	}
}

func TestMineBlockRejectsBadInput(t *testing.T) {
	_, err := MineBlock(context.Background(), nil, blocks.BlockInfo{}, nil)
	assert.ErrorIs(t, err, ErrMalformedBlock)

	_, err = MineBlock(
		context.Background(), testTxs(),
		blocks.BlockInfo{Difficulty: blocks.MAX_DIFFICULTY + 1}, nil,
	)
	assert.ErrorIs(t, err, ErrMalformedBlock)

	b := blocks.NewBlock(testTxs(), blocks.BlockInfo{Difficulty: blocks.MAX_DIFFICULTY + 1}, nil)
	_, err = Seal(context.Background(), b)
	assert.ErrorIs(t, err, ErrDifficultyTooHigh)
}

func TestMiningCanBeCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := MineBlock(ctx, testTxs(), blocks.BlockInfo{Difficulty: 40}, nil)
	assert.ErrorIs(t, err, ErrMiningCancelled)
}

func TestMinerPool(t *testing.T) {
	jobs := make([]MiningJob, 6)
	for i := range jobs {
		jobs[i] = MiningJob{
			Transactions: testTxs(),
			Info:         blocks.BlockInfo{Index: uint64(i), Difficulty: byte(i % 3)},
		}
	}

	sealed, err := NewMinerPool(2).MineAll(context.Background(), jobs)
	require.NoError(t, err)
	require.Len(t, sealed, len(jobs))
	for i, b := range sealed {
		assert.Equal(t, uint64(i), b.Index)
		assert.NoError(t, Validate(b))
	}
}

func TestMinerPoolStopsOnFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	jobs := []MiningJob{
		{Transactions: testTxs(), Info: blocks.BlockInfo{Difficulty: 1}},
		{Transactions: testTxs(), Info: blocks.BlockInfo{Difficulty: 40}},
	}
	_, err := NewMinerPool(0).MineAll(ctx, jobs)
	assert.ErrorIs(t, err, ErrMiningCancelled)
}

package pow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"offline-reconciler-go/blocks"
	"offline-reconciler-go/metrics"
	"offline-reconciler-go/transactions"
	"strings"
	"time"
)

const (
	MAX_NONCE = math.MaxUint64
	// how many attempts between context checks
	CANCEL_CHECK_INTERVAL = 1024
)

var (
	ErrMalformedBlock     = errors.New("malformed block")
	ErrMiningCancelled    = errors.New("mining cancelled")
	ErrDifficultyTooHigh  = errors.New("difficulty too high")
	ErrNonceSpaceExceeded = errors.New("nonce space exhausted")
)

type ProofOfWork struct {
	block      *blocks.Block
	difficulty byte
	target     string
}

func MineBlock(
	ctx context.Context,
	txs []transactions.Transaction,
	info blocks.BlockInfo,
	signatures []string,
) (*blocks.Block, error) {
	block := blocks.NewBlock(txs, info, signatures)
	err := block.StructureCheck()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBlock, err)
	}
	return Seal(ctx, block)
}

// Seal mines an unsealed block in place.
func Seal(ctx context.Context, block *blocks.Block) (*blocks.Block, error) {
	if block.Difficulty > blocks.MAX_DIFFICULTY {
		return nil, fmt.Errorf(
			"%w: %d, max %d", ErrDifficultyTooHigh, block.Difficulty, blocks.MAX_DIFFICULTY,
		)
	}

	pow := NewProofOfWork(block)
	nonce, hash, err := pow.Run(ctx)
	if err != nil {
		return nil, err
	}

	block.Hash = hash
	block.Nonce = nonce
	block.CumulativeWork = block.Work()
	return block, nil
}

func NewProofOfWork(b *blocks.Block) *ProofOfWork {
	pow := ProofOfWork{
		block:      b,
		difficulty: b.Difficulty,
		target:     strings.Repeat("0", int(b.Difficulty)),
	}
	return &pow
}

func (pow *ProofOfWork) Run(ctx context.Context) (uint64, string, error) {
	var hash string
	var nonce uint64 = 1
	var err error

	start := time.Now()
	log.Printf("mining a new block, difficulty %d\n", pow.difficulty)
	for {
		if nonce%CANCEL_CHECK_INTERVAL == 0 {
			if ctxErr := ctx.Err(); ctxErr != nil {
				log.Printf("mining aborted after %d attempts\n", nonce)
				return 0, "", fmt.Errorf("%w: %v", ErrMiningCancelled, ctxErr)
			}
		}

		hash, err = hashWithNonce(pow.block, nonce)
		if err != nil {
			return 0, "", err
		}
		if strings.HasPrefix(hash, pow.target) {
			break
		}
		if nonce == MAX_NONCE {
			return 0, "", ErrNonceSpaceExceeded
		}
		nonce++
	}
	metrics.MiningDuration.Observe(time.Since(start).Seconds())
	log.Printf("mined hash:\n%s\n", hash)
	return nonce, hash, nil
}

// Validate recomputes the hash and checks every sealed-field invariant.
func (pow *ProofOfWork) Validate() error {
	b := pow.block
	if !b.IsSealed() {
		return fmt.Errorf("%w: block is not sealed", ErrMalformedBlock)
	}
	err := b.StructureCheck()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBlock, err)
	}

	hash, err := HashBlock(b)
	if err != nil {
		return err
	}
	if hash != b.Hash {
		return fmt.Errorf(
			"%w: hash mismatch, received %s recomputed %s",
			ErrMalformedBlock, b.Hash, hash,
		)
	}
	if !strings.HasPrefix(hash, pow.target) {
		return fmt.Errorf("%w: proof of work not satisfied", ErrMalformedBlock)
	}
	if b.CumulativeWork != b.Work() {
		return fmt.Errorf(
			"%w: cumulative work %d does not match difficulty %d",
			ErrMalformedBlock, b.CumulativeWork, b.Difficulty,
		)
	}
	return nil
}

func Validate(b *blocks.Block) error {
	return NewProofOfWork(b).Validate()
}

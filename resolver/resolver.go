package resolver

import (
	"errors"
	"fmt"
	"offline-reconciler-go/blocks"
	"strings"

	"golang.org/x/exp/slices"
)

const (
	REASON_SOLE             = "Sole Transaction"
	REASON_HEAVY_WORK       = "Heavy Work (1st)"
	REASON_HIGH_SIG_COUNT   = "High Sig Count (1st)"
	REASON_EARLIEST         = "Earliest Timestamp (1st)"
	REASON_NEXT_IN_SEQUENCE = "Next in Sequence (Timestamp Rank %d)"
)

var ErrNoProposals = errors.New("no proposals to resolve")

type Ranked struct {
	Block  blocks.Block
	Rank   int
	Reason string
}

// Resolver orders one sender's competing proposals.
//
// Candidates are ranked by cumulative work (higher first), then signature
// count (more first), then block timestamp (earlier first). With IdTieBreak
// set, exact ties fall back to ascending transaction id; otherwise they keep
// their input order.
type Resolver struct {
	IdTieBreak bool
}

func NewResolver(idTieBreak bool) *Resolver {
	return &Resolver{IdTieBreak: idTieBreak}
}

func SequenceReason(rank int) string {
	return fmt.Sprintf(REASON_NEXT_IN_SEQUENCE, rank)
}

// Dedup drops every block whose transaction id was already seen.
func Dedup(proposals []blocks.Block) []blocks.Block {
	seen := map[string]bool{}
	unique := make([]blocks.Block, 0, len(proposals))
	for _, p := range proposals {
		id := p.TxId()
		if seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, p.Copy())
	}
	return unique
}

func (r *Resolver) compare(a, b blocks.Block) int {
	if wa, wb := a.Work(), b.Work(); wa != wb {
		if wa > wb {
			return -1
		}
		return 1
	}
	if sa, sb := a.SignatureCount(), b.SignatureCount(); sa != sb {
		if sa > sb {
			return -1
		}
		return 1
	}
	if a.Timestamp != b.Timestamp {
		if a.Timestamp < b.Timestamp {
			return -1
		}
		return 1
	}
	if r.IdTieBreak {
		return strings.Compare(a.TxId(), b.TxId())
	}
	return 0
}

// Resolve emits the canonical order for one sender's proposals.
// The winner is re-selected from the remaining set at every rank, and only
// rank 1 is justified against its runner-up.
func (r *Resolver) Resolve(proposals []blocks.Block) ([]Ranked, error) {
	if len(proposals) == 0 {
		return nil, ErrNoProposals
	}

	remaining := Dedup(proposals)
	ranked := make([]Ranked, 0, len(remaining))
	for rank := 1; len(remaining) > 0; rank++ {
		slices.SortStableFunc(remaining, r.compare)
		best := remaining[0]
		remaining = remaining[1:]

		var reason string
		if rank == 1 {
			reason = firstReason(best, remaining)
		} else {
			reason = SequenceReason(rank)
		}
		ranked = append(ranked, Ranked{
			Block:  best,
			Rank:   rank,
			Reason: reason,
		})
	}
	return ranked, nil
}

func firstReason(best blocks.Block, remaining []blocks.Block) string {
	if len(remaining) == 0 {
		return REASON_SOLE
	}
	next := remaining[0]
	if best.Work() > next.Work() {
		return REASON_HEAVY_WORK
	}
	if best.SignatureCount() > next.SignatureCount() {
		return REASON_HIGH_SIG_COUNT
	}
	return REASON_EARLIEST
}

// ResolveAll resolves every sender independently; senders never influence
// each other's order.
func (r *Resolver) ResolveAll(
	grouped map[string][]blocks.Block,
) map[string][]Ranked {
	resolved := make(map[string][]Ranked, len(grouped))
	for sender, proposals := range grouped {
		ranked, err := r.Resolve(proposals)
		if err != nil {
			continue
		}
		resolved[sender] = ranked
	}
	return resolved
}

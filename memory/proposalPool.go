package memory

import (
	"log"
	"offline-reconciler-go/blocks"
	"offline-reconciler-go/metrics"
	"offline-reconciler-go/pow"
	"sync"

	"golang.org/x/exp/slices"
)

type entry struct {
	block  blocks.Block
	status Status
}

// bucket holds one sender's proposals in arrival order.
type bucket struct {
	sync.Mutex
	entries map[string]*entry
	order   []string
	// set once the bucket has been drained out of the pool
	retired bool
}

func newBucket() *bucket {
	return &bucket{entries: map[string]*entry{}}
}

func (b *bucket) blocks() []blocks.Block {
	out := make([]blocks.Block, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.entries[id].block.Copy())
	}
	return out
}

func (b *bucket) delete(id string) {
	delete(b.entries, id)
	if idx := slices.Index(b.order, id); idx >= 0 {
		b.order = slices.Delete(b.order, idx, idx+1)
	}
}

// ProposalPool keeps outstanding proposals partitioned by sender.
// Writers to the same sender serialize on that sender's bucket;
// different senders only share the read lock on the bucket index.
type ProposalPool struct {
	sync.RWMutex
	buckets map[string]*bucket
	// tx id -> sender, for lookups by id
	index sync.Map
}

func NewProposalPool() *ProposalPool {
	return &ProposalPool{
		buckets: map[string]*bucket{},
	}
}

func (p *ProposalPool) bucketFor(sender string, create bool) *bucket {
	p.RLock()
	b, ok := p.buckets[sender]
	p.RUnlock()
	if ok || !create {
		return b
	}

	p.Lock()
	defer p.Unlock()
	b, ok = p.buckets[sender]
	if !ok {
		b = newBucket()
		p.buckets[sender] = b
	}
	return b
}

// Add validates and stores a sealed block. A transaction id that is already
// pooled yields ADD_DUPLICATE and leaves the pool untouched.
func (p *ProposalPool) Add(block *blocks.Block) (AddResult, error) {
	err := pow.Validate(block)
	if err != nil {
		metrics.ProposalsTotal.WithLabelValues("malformed").Inc()
		return 0, err
	}

	sender := block.Sender()
	id := block.TxId()
	var b *bucket
	for {
		b = p.bucketFor(sender, true)
		b.Lock()
		if !b.retired {
			break
		}
		b.Unlock()
	}
	defer b.Unlock()

	_, loaded := p.index.LoadOrStore(id, sender)
	if loaded {
		log.Printf("transaction %s is already pooled, skipping\n", id)
		metrics.ProposalsTotal.WithLabelValues("duplicate").Inc()
		return ADD_DUPLICATE, nil
	}
	b.entries[id] = &entry{block: block.Copy(), status: PENDING}
	b.order = append(b.order, id)

	metrics.ProposalsTotal.WithLabelValues("added").Inc()
	metrics.PendingProposals.Inc()
	return ADD_ACCEPTED, nil
}

func (p *ProposalPool) AllForSender(sender string) []blocks.Block {
	b := p.bucketFor(sender, false)
	if b == nil {
		return nil
	}
	b.Lock()
	defer b.Unlock()
	return b.blocks()
}

func (p *ProposalPool) Remove(txId string) bool {
	sender, ok := p.index.Load(txId)
	if !ok {
		return false
	}
	b := p.bucketFor(sender.(string), false)
	if b == nil {
		return false
	}
	b.Lock()
	defer b.Unlock()
	if _, ok := b.entries[txId]; !ok {
		return false
	}
	b.delete(txId)
	p.index.Delete(txId)
	metrics.PendingProposals.Dec()
	return true
}

// DrainAll empties the pool and returns everything grouped by sender.
func (p *ProposalPool) DrainAll() map[string][]blocks.Block {
	p.Lock()
	buckets := p.buckets
	p.buckets = map[string]*bucket{}
	p.Unlock()

	drained := map[string][]blocks.Block{}
	for sender, b := range buckets {
		b.Lock()
		if len(b.order) > 0 {
			drained[sender] = b.blocks()
		}
		for _, id := range b.order {
			p.index.Delete(id)
			metrics.PendingProposals.Dec()
		}
		b.entries = map[string]*entry{}
		b.order = nil
		b.retired = true
		b.Unlock()
	}
	return drained
}

// Collect returns every pooled proposal grouped by sender and marks them ranked.
// Unlike DrainAll the proposals stay until a terminal outcome removes them.
func (p *ProposalPool) Collect() map[string][]blocks.Block {
	collected := map[string][]blocks.Block{}
	for _, sender := range p.Senders() {
		b := p.bucketFor(sender, false)
		if b == nil {
			continue
		}
		b.Lock()
		if len(b.order) > 0 {
			collected[sender] = b.blocks()
		}
		for _, e := range b.entries {
			e.status = RANKED
		}
		b.Unlock()
	}
	return collected
}

func (p *ProposalPool) Status(txId string) (Status, bool) {
	sender, ok := p.index.Load(txId)
	if !ok {
		return 0, false
	}
	b := p.bucketFor(sender.(string), false)
	if b == nil {
		return 0, false
	}
	b.Lock()
	defer b.Unlock()
	e, ok := b.entries[txId]
	if !ok {
		return 0, false
	}
	return e.status, true
}

// SetStatus records an outcome. Terminal statuses remove the proposal.
func (p *ProposalPool) SetStatus(txId string, status Status) bool {
	if status.IsTerminal() {
		return p.Remove(txId)
	}
	sender, ok := p.index.Load(txId)
	if !ok {
		return false
	}
	b := p.bucketFor(sender.(string), false)
	if b == nil {
		return false
	}
	b.Lock()
	defer b.Unlock()
	e, ok := b.entries[txId]
	if !ok {
		return false
	}
	e.status = status
	return true
}

// Senders returns the senders that currently have proposals, sorted.
func (p *ProposalPool) Senders() []string {
	p.RLock()
	defer p.RUnlock()
	senders := make([]string, 0, len(p.buckets))
	for s, b := range p.buckets {
		b.Lock()
		n := len(b.order)
		b.Unlock()
		if n > 0 {
			senders = append(senders, s)
		}
	}
	slices.Sort(senders)
	return senders
}

func (p *ProposalPool) Len() int {
	p.RLock()
	defer p.RUnlock()
	n := 0
	for _, b := range p.buckets {
		b.Lock()
		n += len(b.order)
		b.Unlock()
	}
	return n
}

// Snapshot copies every pooled proposal without changing its status.
func (p *ProposalPool) Snapshot() []blocks.Block {
	var all []blocks.Block
	for _, sender := range p.Senders() {
		all = append(all, p.AllForSender(sender)...)
	}
	return all
}

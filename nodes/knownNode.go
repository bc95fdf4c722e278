package nodes

import (
	"offline-reconciler-go/p2p"
	"sync"

	"golang.org/x/exp/slices"
)

// KnownNodes is the set of reconcilers a proposer delivers to.
type KnownNodes struct {
	sync.Mutex
	peers []p2p.NodeId
}

func (kn *KnownNodes) AppendPeer(id ...p2p.NodeId) {
	kn.Lock()
	defer kn.Unlock()
	for _, peer := range id {
		if !slices.Contains(kn.peers, peer) {
			kn.peers = append(kn.peers, peer)
		}
	}
}

func (kn *KnownNodes) RemovePeer(id p2p.NodeId) bool {
	kn.Lock()
	defer kn.Unlock()
	idx := slices.Index(kn.peers, id)
	if idx < 0 {
		return false
	}
	kn.peers = slices.Delete(kn.peers, idx, idx+1)
	return true
}

func (kn *KnownNodes) Peers() []p2p.NodeId {
	kn.Lock()
	defer kn.Unlock()
	return slices.Clone(kn.peers)
}

func (kn *KnownNodes) PeerLen() int {
	kn.Lock()
	defer kn.Unlock()
	return len(kn.peers)
}

package nodes

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"offline-reconciler-go/blocks"
	"offline-reconciler-go/common"
	"offline-reconciler-go/p2p"
	"time"
)

const DIAL_TIMEOUT = 5 * time.Second

var ErrNoPeers = errors.New("no reachable reconciler")

type Node struct {
	id      p2p.NodeId
	version byte
	KnownNodes
}

func (n *Node) Id() p2p.NodeId {
	return n.id
}

func send(to string, data []byte) error {
	conn, err := net.DialTimeout(p2p.TCP, to, DIAL_TIMEOUT)
	if err != nil {
		return fmt.Errorf("%s is not available: %w", to, err)
	}
	defer conn.Close()

	_, err = io.Copy(conn, bytes.NewReader(data))
	return err
}

// broadcast delivers data to every known peer. Unreachable peers are
// forgotten; it fails only when nobody received the data.
func (n *Node) broadcast(data []byte) error {
	delivered := 0
	for _, peer := range n.Peers() {
		err := send(peer.Ip, data)
		if err != nil {
			log.Println(err)
			n.RemovePeer(peer)
			continue
		}
		delivered++
	}
	if delivered == 0 {
		return ErrNoPeers
	}
	return nil
}

func (n *Node) proposalPayload(block *blocks.Block) ([]byte, error) {
	msg := p2p.ProposalMsg{
		From:    n.id,
		Version: n.version,
		Block:   *block,
	}
	enc, err := common.Encode(msg)
	if err != nil {
		return nil, err
	}
	return p2p.PROPOSAL_MSG.MakePayload(enc), nil
}

func (n *Node) syncPayload() ([]byte, error) {
	enc, err := common.Encode(p2p.SyncMsg{From: n.id, Version: n.version})
	if err != nil {
		return nil, err
	}
	return p2p.SYNC_MSG.MakePayload(enc), nil
}

// SendProposal delivers one sealed block to the reconciler at addr.
func SendProposal(from p2p.NodeId, addr string, block *blocks.Block) error {
	n := Node{id: from, version: p2p.PROTOCOL_VERSION}
	payload, err := n.proposalPayload(block)
	if err != nil {
		return err
	}
	return send(addr, payload)
}

// SendSync asks the reconciler at addr to run a sync pass.
func SendSync(from p2p.NodeId, addr string) error {
	n := Node{id: from, version: p2p.PROTOCOL_VERSION}
	payload, err := n.syncPayload()
	if err != nil {
		return err
	}
	return send(addr, payload)
}

package nodes

import (
	"context"
	"errors"
	"log"
	"net"
	"offline-reconciler-go/common"
	"offline-reconciler-go/memory"
	"offline-reconciler-go/p2p"
	"offline-reconciler-go/reconciler"
	"sync"
	"time"
)

// ReconcilerNode accepts proposals over TCP and feeds them to a Reconciler.
type ReconcilerNode struct {
	Node
	*reconciler.Reconciler
	listener net.Listener
	wg       sync.WaitGroup
}

func NewReconcilerNode(port string, r *reconciler.Reconciler) *ReconcilerNode {
	return &ReconcilerNode{
		Node: Node{
			id:      p2p.NewNodeId(port, p2p.RECONCILER_NODE),
			version: p2p.PROTOCOL_VERSION,
		},
		Reconciler: r,
	}
}

// Listen binds the node's address. Port "0" picks a free port.
func (n *ReconcilerNode) Listen() error {
	listener, err := net.Listen(p2p.TCP, n.id.Ip)
	if err != nil {
		return err
	}
	n.listener = listener
	n.id.Ip = listener.Addr().String()
	log.Printf("reconciler node is listening at %s", n.id.Ip)
	return nil
}

func (n *ReconcilerNode) Addr() string {
	return n.id.Ip
}

// Run serves connections and auto-syncs every syncInterval until ctx is done.
func (n *ReconcilerNode) Run(ctx context.Context, syncInterval time.Duration) error {
	if n.listener == nil {
		err := n.Listen()
		if err != nil {
			return err
		}
	}
	defer n.wg.Wait()

	go n.Reconciler.Run(ctx, syncInterval)
	go func() {
		<-ctx.Done()
		n.listener.Close()
	}()

	for {
		conn, err := n.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}

		n.wg.Add(1)
		go func() {
			defer n.wg.Done()
			n.handleConnection(conn)
		}()
	}
}

func (n *ReconcilerNode) handleConnection(conn net.Conn) {
	defer conn.Close()
	request, err := p2p.ReadFrame(conn)
	if err != nil {
		log.Printf("reading from %s: %v\n", conn.RemoteAddr(), err)
		return
	}

	msgKind, body, err := p2p.SplitPayload(request)
	if err != nil {
		log.Println(err)
		return
	}
	if !msgKind.IsKnown() {
		log.Println("unknown message skipping...")
		return
	}
	log.Printf("received msg '%s'\n", msgKind.ToString())

	switch msgKind {
	case p2p.PROPOSAL_MSG:
		err = n.handleProposal(body)
	case p2p.SYNC_MSG:
		err = n.handleSync(body)
	}
	// a bad message from one peer must not stop the node
	if err != nil {
		log.Printf("handling '%s': %v\n", msgKind.ToString(), err)
	}
}

func (n *ReconcilerNode) handleProposal(raw []byte) error {
	msg, err := common.Decode[p2p.ProposalMsg](raw)
	if err != nil {
		return err
	}
	err = p2p.CheckVersion(msg.Version)
	if err != nil {
		return err
	}

	res, err := n.SubmitProposal(&msg.Block)
	if err != nil {
		return err
	}
	if res == memory.ADD_DUPLICATE {
		log.Printf("proposal %s from %s already pooled\n", msg.Block.TxId(), msg.From)
		return nil
	}
	log.Printf(
		"pooled proposal %s from %s, current pool size: %d\n",
		msg.Block.TxId(), msg.From, n.Pool().Len(),
	)
	return nil
}

func (n *ReconcilerNode) handleSync(raw []byte) error {
	msg, err := common.Decode[p2p.SyncMsg](raw)
	if err != nil {
		return err
	}
	err = p2p.CheckVersion(msg.Version)
	if err != nil {
		return err
	}
	log.Printf("sync requested by %s\n", msg.From)
	n.Trigger()
	return nil
}

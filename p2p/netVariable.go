package p2p

import (
	"fmt"
	"log"
	"strings"
)

const (
	TCP         = "tcp"
	ADDRESS_FMT = "localhost:%s"
)

type NodeKind byte

const (
	RECONCILER_NODE NodeKind = iota + 1
	PROPOSER_NODE
)

func (nk NodeKind) ToString() string {
	switch nk {
	case RECONCILER_NODE:
		return "reconciler node"
	case PROPOSER_NODE:
		return "proposer node"
	default:
		log.Panicf("unknown value %d", nk)
		return ""
	}
}

type NodeId struct {
	// listening address, empty for nodes that only dial out
	Ip   string
	Kind NodeKind

	// base58 account of a proposer
	Account string `json:",omitempty"`
}

func (id NodeId) String() string {
	if len(id.Account) != 0 {
		return "account " + id.Account
	}
	return id.Ip
}

func NewNodeId(port string, kind NodeKind) NodeId {
	return NodeId{
		Ip:   fmt.Sprintf(ADDRESS_FMT, port),
		Kind: kind,
	}
}

// Address accepts either a bare port or host:port.
func Address(portOrAddr string) string {
	if strings.Contains(portOrAddr, ":") {
		return portOrAddr
	}
	return fmt.Sprintf(ADDRESS_FMT, portOrAddr)
}
